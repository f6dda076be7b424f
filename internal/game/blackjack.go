package game

type BlackjackPhase string

const (
	PhasePlayerTurn BlackjackPhase = "player_turn"
	PhaseDealerTurn BlackjackPhase = "dealer_turn"
	PhaseSettled    BlackjackPhase = "settled"
)

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomePush Outcome = "push"
)

const (
	blackjackTarget = 21
	dealerStandsOn  = 17
)

// Blackjack is one hand against the dealer. The deck is shuffled once when
// the hand is dealt.
type Blackjack struct {
	Bet     int64
	Deck    *Deck
	Player  []Card
	Dealer  []Card
	Phase   BlackjackPhase
	Outcome Outcome
}

func NewBlackjack(src Source, bet int64) *Blackjack {
	deck := NewDeck()
	deck.Shuffle(src)
	b := &Blackjack{Bet: bet, Deck: deck, Phase: PhasePlayerTurn}
	b.Player = append(b.Player, deck.Deal())
	b.Dealer = append(b.Dealer, deck.Deal())
	b.Player = append(b.Player, deck.Deal())
	b.Dealer = append(b.Dealer, deck.Deal())
	return b
}

// Hit draws a card for the player. Going over 21 settles the hand as a loss.
func (b *Blackjack) Hit() error {
	if b.Phase != PhasePlayerTurn {
		return ErrNotPlayerTurn
	}
	b.Player = append(b.Player, b.Deck.Deal())
	if total, _ := HandValue(b.Player); total > blackjackTarget {
		b.settle(OutcomeLose)
	}
	return nil
}

// Stand hands over to the dealer, who draws below 17, then settles.
func (b *Blackjack) Stand() error {
	if b.Phase != PhasePlayerTurn {
		return ErrNotPlayerTurn
	}
	b.Phase = PhaseDealerTurn
	for {
		total, _ := HandValue(b.Dealer)
		if total >= dealerStandsOn {
			break
		}
		b.Dealer = append(b.Dealer, b.Deck.Deal())
	}

	player, _ := HandValue(b.Player)
	dealer, _ := HandValue(b.Dealer)
	switch {
	case dealer > blackjackTarget || player > dealer:
		b.settle(OutcomeWin)
	case player == dealer:
		b.settle(OutcomePush)
	default:
		b.settle(OutcomeLose)
	}
	return nil
}

// Payout is the gross amount returned to the player after settlement: the
// stake plus winnings on a win, the stake on a push.
func (b *Blackjack) Payout() int64 {
	switch b.Outcome {
	case OutcomeWin:
		return b.Bet * 2
	case OutcomePush:
		return b.Bet
	default:
		return 0
	}
}

func (b *Blackjack) settle(o Outcome) {
	b.Outcome = o
	b.Phase = PhaseSettled
}

// HandValue counts aces as 11, demoting them to 1 while the total is over 21.
func HandValue(cards []Card) (total int, soft bool) {
	aces := 0
	for _, c := range cards {
		switch {
		case c.Rank == Ace:
			aces++
			total += 11
		case c.Rank >= Ten:
			total += 10
		default:
			total += int(c.Rank)
		}
	}
	for total > blackjackTarget && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}
