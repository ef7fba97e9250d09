package game

import "fmt"

// ResolveDealerTurn runs the dealer policy against a snapshot of the state
// and settles every bet. The result is dispatched back through the reducer
// as a ProcessDealerTurn; the snapshot keeps the resolution consistent even
// if observers read the state while the dealer delay is pending.
//
// Bets are escrowed when placed, so losing branches pay nothing here while
// winning branches return the escrow plus winnings.
func ResolveDealerTurn(s State) ProcessDealerTurn {
	dealer := DealerPlay(s.Dealer, s.Deck)

	players := clonePlayers(s.Players)
	for i := range players {
		settle(&players[i], dealer)
	}

	return ProcessDealerTurn{
		Players: players,
		Dealer:  dealer,
		Deck:    s.Deck,
	}
}

// settle applies the payout precedence order for one player: bust, player
// blackjack, mutual blackjack, dealer bust, score comparison, push, loss.
func settle(p *Player, dealer Dealer) {
	switch {
	case p.HasBusted:
		p.ResultMessage = fmt.Sprintf("Busted! -$%d", p.Bet)

	case p.HasBlackjack && !dealer.HasBlackjack:
		win := p.Bet * 3 / 2 // 3:2, floored
		p.Chips += p.Bet + win
		p.ResultMessage = fmt.Sprintf("Blackjack! +$%d", win)

	case p.HasBlackjack && dealer.HasBlackjack:
		p.Chips += p.Bet
		p.ResultMessage = "Push!"

	case dealer.HasBusted:
		p.Chips += p.Bet * 2
		p.ResultMessage = fmt.Sprintf("Dealer busted! +$%d", p.Bet)

	case p.Score > dealer.Score:
		p.Chips += p.Bet * 2
		p.ResultMessage = fmt.Sprintf("You win! +$%d", p.Bet)

	case p.Score == dealer.Score:
		p.Chips += p.Bet
		p.ResultMessage = "Push!"

	default:
		p.ResultMessage = fmt.Sprintf("Dealer wins! -$%d", p.Bet)
	}
}
