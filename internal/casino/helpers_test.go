package casino

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"casino-bot/internal/announce"
	"casino-bot/internal/ledger"
	"casino-bot/internal/testutil"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// scriptSource replays fixed values, each reduced modulo n.
type scriptSource struct {
	vals []int
	i    int
}

func (s *scriptSource) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T) (*Service, *testutil.MemStore, *testClock) {
	t.Helper()
	mem := testutil.NewMemStore()
	svc := New(Config{
		DailyClaimAmount: 1000,
		TicketPrice:      100,
		Admins:           []string{"admin"},
	}, ledger.New(mem, 1000), mem)
	clock := &testClock{now: testNow}
	svc.now = clock.Now
	svc.blackjack.SetClock(clock.Now)
	return svc, mem, clock
}

func invoke(command, userID string, opts map[string]string) Invocation {
	return Invocation{Command: command, UserID: userID, ChannelID: "chan-1", Options: opts}
}

func mustCode(t *testing.T, err error, code string) {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error %s, got %v", code, err)
	}
	if verr.Code != code {
		t.Fatalf("expected code %s, got %s", code, verr.Code)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("validation error %s does not unwrap to ErrValidation", code)
	}
}

type recordingPublisher struct {
	mu    sync.Mutex
	posts []string
	edits []string
}

func (p *recordingPublisher) Post(_ context.Context, _, content string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, content)
	return "msg-1", nil
}

func (p *recordingPublisher) Edit(_ context.Context, _, _, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits = append(p.edits, content)
	return nil
}

type recordingAnnouncer struct {
	mu   sync.Mutex
	sent []announce.Announcement
}

func (a *recordingAnnouncer) Announce(_ context.Context, ann announce.Announcement) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, ann)
	return nil
}
