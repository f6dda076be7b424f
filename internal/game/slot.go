package game

import "strings"

var SlotSymbols = []string{"🍒", "🍋", "🔔", "⭐", "💎"}

const (
	SlotReels          = 3
	SlotTripleMultiple = 10
	SlotPairMultiple   = 2
)

type SlotResult struct {
	Reels      [SlotReels]int
	Matches    int
	Multiplier int64
	Payout     int64
}

func SpinSlot(src Source, bet int64) SlotResult {
	var reels [SlotReels]int
	for i := range reels {
		reels[i] = src.Intn(len(SlotSymbols))
	}
	return ScoreSlot(reels, bet)
}

// ScoreSlot pays bet x10 for three of a kind and bet x2 for exactly two.
func ScoreSlot(reels [SlotReels]int, bet int64) SlotResult {
	res := SlotResult{Reels: reels, Matches: maxOfAKind(reels)}
	switch res.Matches {
	case 3:
		res.Multiplier = SlotTripleMultiple
	case 2:
		res.Multiplier = SlotPairMultiple
	}
	res.Payout = bet * res.Multiplier
	return res
}

func (r SlotResult) String() string {
	parts := make([]string, len(r.Reels))
	for i, s := range r.Reels {
		parts[i] = SlotSymbols[s]
	}
	return strings.Join(parts, " | ")
}

func maxOfAKind(reels [SlotReels]int) int {
	best := 1
	counts := map[int]int{}
	for _, s := range reels {
		counts[s]++
		if counts[s] > best {
			best = counts[s]
		}
	}
	return best
}
