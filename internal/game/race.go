package game

import (
	"fmt"
	"strings"
)

const (
	RaceHorses      = 7
	RaceTrackLength = 20
	RaceMaxTicks    = 40
	RaceMaxStep     = 3
	RaceMultiplier  = 5
)

// Race is the position state of one horse race. Horses are numbered 1..7.
type Race struct {
	Positions [RaceHorses]int
	Ticks     int
	Winner    int
	Done      bool
}

func NewRace() *Race {
	return &Race{}
}

func ValidHorse(h int) bool {
	return h >= 1 && h <= RaceHorses
}

// Advance moves every horse by Intn(3) and reports whether the race is over.
// When several horses cross in the same tick the lowest number wins. After
// RaceMaxTicks without a finisher the race ends with Winner 0.
func (r *Race) Advance(src Source) bool {
	if r.Done {
		return true
	}
	r.Ticks++
	for i := range r.Positions {
		r.Positions[i] += src.Intn(RaceMaxStep)
	}
	for i, pos := range r.Positions {
		if pos >= RaceTrackLength {
			r.Winner = i + 1
			r.Done = true
			return true
		}
	}
	if r.Ticks >= RaceMaxTicks {
		r.Done = true
	}
	return r.Done
}

func (r *Race) Track() string {
	var b strings.Builder
	for i, pos := range r.Positions {
		p := min(pos, RaceTrackLength)
		fmt.Fprintf(&b, "%d |%s🐎%s|\n", i+1, strings.Repeat("·", p), strings.Repeat(" ", RaceTrackLength-p))
	}
	return b.String()
}
