package server

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(nil, nil, log.New(io.Discard))
}

func newTestClient(h *Hub, buffer int) *Client {
	return &Client{
		send:   make(chan []byte, buffer),
		hub:    h,
		logger: h.logger,
	}
}

func TestSendAfterCloseDoesNotPanic(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, 1)
	c.close()

	assert.NotPanics(t, func() {
		c.Send([]byte("hello"))
	})
}

func TestClientCloseIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h, 1)

	assert.NotPanics(t, func() {
		c.close()
		c.close()
	})
}

func TestSlowConsumerDropSurvivesConcurrentSends(t *testing.T) {
	h := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := newTestClient(h, 1)
	h.register <- c

	// Saturate the buffer so the next broadcast drops the client while
	// another goroutine keeps sending to it.
	c.Send([]byte("fill"))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.Send([]byte("state"))
		}
	}()

	h.broadcast <- []byte("state")
	wg.Wait()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.closed
	}, time.Second, 5*time.Millisecond)
}

func TestRegisterAfterShutdownDoesNotBlock(t *testing.T) {
	h := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()
	<-h.done

	released := make(chan struct{})
	go func() {
		c := newTestClient(h, 1)
		select {
		case h.register <- c:
		case <-h.done:
		}
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		close(released)
	}()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("register blocked after hub shutdown")
	}
}

func TestShutdownClosesAllClients(t *testing.T) {
	h := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	c := newTestClient(h, 1)
	h.register <- c
	cancel()
	<-h.done

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	assert.True(t, closed)

	assert.NotPanics(t, func() {
		c.Send([]byte("late"))
	})
}
