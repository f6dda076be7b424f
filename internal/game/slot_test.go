package game

import "testing"

func TestSlotTriplePaysJackpot(t *testing.T) {
	for sym := range SlotSymbols {
		res := SpinSlot(&scriptSource{vals: []int{sym}}, 100)
		if res.Matches != 3 || res.Payout != 100*SlotTripleMultiple {
			t.Fatalf("symbol %d: unexpected result %+v", sym, res)
		}
	}
}

func TestSlotPayoutTable(t *testing.T) {
	tests := []struct {
		reels [SlotReels]int
		want  int64
	}{
		{[SlotReels]int{0, 0, 0}, 500},
		{[SlotReels]int{1, 1, 4}, 100},
		{[SlotReels]int{2, 3, 2}, 100},
		{[SlotReels]int{4, 0, 0}, 100},
		{[SlotReels]int{0, 1, 2}, 0},
	}
	for _, tt := range tests {
		if got := ScoreSlot(tt.reels, 50).Payout; got != tt.want {
			t.Fatalf("reels %v payout = %d, want %d", tt.reels, got, tt.want)
		}
	}
}

func TestSlotStringUsesSymbols(t *testing.T) {
	res := ScoreSlot([SlotReels]int{0, 1, 2}, 1)
	want := SlotSymbols[0] + " | " + SlotSymbols[1] + " | " + SlotSymbols[2]
	if res.String() != want {
		t.Fatalf("String() = %q, want %q", res.String(), want)
	}
}
