package announce

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Announcer publishes the result of a lottery draw somewhere users read it.
type Announcer interface {
	Announce(ctx context.Context, a Announcement) error
}

type Winner struct {
	UserID  string
	Matches int
	Amount  int64
}

type Announcement struct {
	DrawDate time.Time
	Numbers  []int
	Tickets  int
	Winners  []Winner
}

func (a Announcement) Title() string {
	return "🎟️ Lottery draw " + a.DrawDate.Format("2006-01-02")
}

func (a Announcement) Description() string {
	nums := make([]string, len(a.Numbers))
	for i, n := range a.Numbers {
		nums[i] = fmt.Sprintf("`%02d`", n)
	}
	return fmt.Sprintf("Winning numbers: %s\nTickets sold: %d", strings.Join(nums, " "), a.Tickets)
}

func (a Announcement) WinnerLines() []string {
	lines := make([]string, 0, len(a.Winners))
	for _, w := range a.Winners {
		lines = append(lines, fmt.Sprintf("<@%s> matched %d and won %d", w.UserID, w.Matches, w.Amount))
	}
	return lines
}

// Text renders the announcement as a plain chat message.
func (a Announcement) Text() string {
	var b strings.Builder
	b.WriteString("**" + a.Title() + "**\n")
	b.WriteString(a.Description())
	if len(a.Winners) == 0 {
		b.WriteString("\nNo winners this time.")
		return b.String()
	}
	for _, line := range a.WinnerLines() {
		b.WriteString("\n" + line)
	}
	return b.String()
}

// Discard drops announcements. It stands in when no destination is set.
type Discard struct{}

func (Discard) Announce(context.Context, Announcement) error { return nil }
