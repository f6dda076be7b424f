package game

import (
	"strings"

	"github.com/shopspring/decimal"
)

type BaccaratSide string

const (
	SidePlayer BaccaratSide = "player"
	SideBanker BaccaratSide = "banker"
	SideTie    BaccaratSide = "tie"
)

var baccaratMultipliers = map[BaccaratSide]decimal.Decimal{
	SidePlayer: decimal.NewFromInt(2),
	SideBanker: decimal.RequireFromString("1.95"),
	SideTie:    decimal.NewFromInt(8),
}

type BaccaratResult struct {
	Choice      BaccaratSide
	Player      []Card
	Banker      []Card
	PlayerValue int
	BankerValue int
	Winner      BaccaratSide
	Payout      int64
}

func ParseBaccaratSide(s string) (BaccaratSide, error) {
	side := BaccaratSide(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := baccaratMultipliers[side]; !ok {
		return "", ErrInvalidChoice
	}
	return side, nil
}

// PlayBaccarat deals two cards to each side with no third-card rule.
func PlayBaccarat(src Source, bet int64, choice BaccaratSide) (BaccaratResult, error) {
	if _, ok := baccaratMultipliers[choice]; !ok {
		return BaccaratResult{}, ErrInvalidChoice
	}
	deck := NewDeck()
	deck.Shuffle(src)
	res := BaccaratResult{Choice: choice}
	res.Player = append(res.Player, deck.Deal())
	res.Banker = append(res.Banker, deck.Deal())
	res.Player = append(res.Player, deck.Deal())
	res.Banker = append(res.Banker, deck.Deal())
	return scoreBaccarat(res, bet), nil
}

func scoreBaccarat(res BaccaratResult, bet int64) BaccaratResult {
	res.PlayerValue = BaccaratValue(res.Player)
	res.BankerValue = BaccaratValue(res.Banker)
	switch {
	case res.PlayerValue > res.BankerValue:
		res.Winner = SidePlayer
	case res.BankerValue > res.PlayerValue:
		res.Winner = SideBanker
	default:
		res.Winner = SideTie
	}
	if res.Winner == res.Choice {
		res.Payout = BaccaratPayout(bet, res.Choice)
	}
	return res
}

// BaccaratPayout is the gross amount paid on a winning bet, rounded down.
func BaccaratPayout(bet int64, side BaccaratSide) int64 {
	m, ok := baccaratMultipliers[side]
	if !ok {
		return 0
	}
	return decimal.NewFromInt(bet).Mul(m).Floor().IntPart()
}

func BaccaratValue(cards []Card) int {
	total := 0
	for _, c := range cards {
		if c.Rank < Ten {
			total += int(c.Rank)
		}
	}
	return total % 10
}
