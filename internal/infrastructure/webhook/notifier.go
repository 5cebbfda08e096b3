package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const embedColor = 0x6366F1

// Notice describes one verification event posted to a guild's webhook.
// ConflictingUsernames is non-empty only when alt notification applies.
type Notice struct {
	Username             string
	DiscordID            string
	ConflictingUsernames []string
}

// Notifier posts verification notices to a guild-configured webhook URL.
// Delivery is best-effort; callers log and swallow failures.
type Notifier interface {
	Send(ctx context.Context, url string, n Notice) error
}

type notifier struct {
	httpClient *http.Client
}

func NewNotifier() Notifier {
	return &notifier{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Timestamp string       `json:"timestamp"`
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

func (s *notifier) Send(ctx context.Context, url string, n Notice) error {
	fields := []embedField{
		{Name: "User", Value: fmt.Sprintf("%s (<@%s>)", n.Username, n.DiscordID), Inline: true},
		{Name: "ID", Value: n.DiscordID, Inline: true},
	}
	if len(n.ConflictingUsernames) > 0 {
		fields = append(fields, embedField{
			Name:  "⚠️ Alt Detection",
			Value: "Matching IP with: " + strings.Join(n.ConflictingUsernames, ", "),
		})
	}

	body, err := json.Marshal(payload{Embeds: []embed{{
		Title:     "✅ New Verification",
		Color:     embedColor,
		Fields:    fields,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: delivering notice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: delivery returned status %d", resp.StatusCode)
	}
	return nil
}
