// Package game implements the blackjack rules as a reducer over an
// immutable table state. Every mutation flows through Reducer.Reduce with a
// tagged action; invalid actions return the state unchanged apart from an
// advisory message. Side effects (the dealer delay and AI decisions) live in
// the table driver, which observes reduced states and dispatches further
// actions.
package game
