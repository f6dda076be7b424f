package announce

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	colorGold       = 0xF1C40F
	maxWinnerFields = 25
)

// Webhook posts draw results to a Discord webhook as a single embed.
// Server errors and rate limits are retried with exponential backoff.
type Webhook struct {
	client    *HTTPClient
	endpoint  string
	RetryMax  int
	RetryBase time.Duration
}

func NewWebhook(client *HTTPClient, endpoint string) *Webhook {
	return &Webhook{client: client, endpoint: strings.TrimSpace(endpoint), RetryMax: 3, RetryBase: time.Second}
}

func (w *Webhook) Announce(ctx context.Context, a Announcement) error {
	payload := webhookPayload(a)
	attempt := 0
	for {
		status, _, err := w.client.PostJSON(ctx, w.endpoint, payload)
		if err == nil {
			metricAnnounceSentTotal.Add(1)
			return nil
		}
		if !retryable(status) || attempt >= w.RetryMax {
			metricAnnounceFailedTotal.Add(1)
			return err
		}
		attempt++
		metricAnnounceRetryTotal.Add(1)
		delay := w.RetryBase * time.Duration(1<<(attempt-1))
		log.Warn().Err(err).Int("status", status).Int("attempt", attempt).Dur("delay", delay).Msg("announce retry")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func retryable(status int) bool {
	return status == 0 || status == http.StatusTooManyRequests || status >= 500
}

func webhookPayload(a Announcement) map[string]any {
	type embedField struct {
		Name   string `json:"name"`
		Value  string `json:"value"`
		Inline bool   `json:"inline"`
	}
	fields := make([]embedField, 0, len(a.Winners))
	for i, line := range a.WinnerLines() {
		if i == maxWinnerFields {
			break
		}
		fields = append(fields, embedField{Name: "Winner", Value: line})
	}
	embed := map[string]any{
		"title":       a.Title(),
		"description": a.Description(),
		"fields":      fields,
		"color":       colorGold,
	}
	if len(a.Winners) == 0 {
		embed["footer"] = map[string]string{"text": "No winners this time."}
	}
	return map[string]any{
		"embeds": []map[string]any{embed},
	}
}
