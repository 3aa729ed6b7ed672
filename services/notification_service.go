package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"daoHiveAPI/internal/store"
	"daoHiveAPI/internal/types/challenge"
	"daoHiveAPI/internal/types/workproof"
)

const (
	webhookUsername  = "DAOhive"
	webhookAvatarURL = "https://app.daohive.xyz/daohive-logo.png"
)

// DiscordMessage is the webhook payload Discord expects.
type DiscordMessage struct {
	Content   string `json:"content"`
	Embeds    any    `json:"embeds"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// NotificationService posts room lifecycle messages to each room's configured
// Discord webhook. A room without a webhook is a normal, silent no-op.
// Delivery failures are returned to the caller so the trigger infrastructure
// can redeliver the event; sending the same message twice is acceptable.
type NotificationService struct {
	store         store.Store
	client        *http.Client
	logWebhookURL string
}

func NewNotificationService(st store.Store, logWebhookURL string) *NotificationService {
	return &NotificationService{
		store:         st,
		client:        &http.Client{Timeout: 10 * time.Second},
		logWebhookURL: logWebhookURL,
	}
}

func (s *NotificationService) NotifyChallengeCreated(ctx context.Context, c *challenge.Challenge) error {
	content := fmt.Sprintf(
		"**New Challenge**\n%s (%g XP)\nOpen the room to submit your proof of work.",
		c.Title, float64(c.Weight),
	)
	return s.notifyRoom(ctx, c.RoomID, content)
}

func (s *NotificationService) NotifyWorkProofCreated(ctx context.Context, p *workproof.WorkProof) error {
	content := fmt.Sprintf(
		"**New Proof of Work**\n%s submitted a new proof of work (%g XP pending verification).",
		s.displayName(ctx, p.Author), float64(p.Weight),
	)
	return s.notifyRoom(ctx, p.RoomID, content)
}

// NotifyWorkProofUpdated fires only when the post-update verification state
// is verified or reverted. Pending is the default state and would re-fire on
// every unrelated field edit otherwise. Repeated qualifying updates each
// re-fire; delivery is at-least-once, not exactly-once.
func (s *NotificationService) NotifyWorkProofUpdated(ctx context.Context, p *workproof.WorkProof) error {
	var content string
	switch p.Status() {
	case workproof.StatusVerified:
		content = fmt.Sprintf(
			"**Proof of Work Verified**\n%s earned %g XP.",
			s.displayName(ctx, p.Author), float64(p.Weight),
		)
	case workproof.StatusReverted:
		content = fmt.Sprintf(
			"**Proof of Work Flagged**\nA submission by %s was rejected by a verifier.",
			s.displayName(ctx, p.Author),
		)
	default:
		return nil
	}
	return s.notifyRoom(ctx, p.RoomID, content)
}

// LogEvent forwards an operational message to the fixed logging webhook.
// Best effort: failures are logged, never propagated.
func (s *NotificationService) LogEvent(ctx context.Context, content string) {
	if s.logWebhookURL == "" {
		return
	}
	payload := struct {
		Content string `json:"content"`
	}{Content: content}
	if err := s.post(ctx, s.logWebhookURL, payload); err != nil {
		log.Printf("Failed to post to logging webhook: %v", err)
	}
}

func (s *NotificationService) notifyRoom(ctx context.Context, roomID, content string) error {
	r, err := s.store.Room(ctx, roomID)
	if err != nil {
		return fmt.Errorf("failed to load room %s for notification: %w", roomID, err)
	}

	if r.DiscordNotificationWebhook == "" {
		log.Printf("Room %s has no notification webhook configured, skipping", roomID)
		return nil
	}

	msg := &DiscordMessage{
		Content:   content,
		Embeds:    nil,
		Username:  webhookUsername,
		AvatarURL: webhookAvatarURL,
	}
	if err := s.post(ctx, r.DiscordNotificationWebhook, msg); err != nil {
		return fmt.Errorf("failed to deliver notification for room %s: %w", roomID, err)
	}
	return nil
}

func (s *NotificationService) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// displayName resolves an account to its profile name, falling back to a
// shortened address when there is no profile.
func (s *NotificationService) displayName(ctx context.Context, account string) string {
	u, err := s.store.User(ctx, account)
	if err != nil || u.Name == "" {
		return shortAddress(account)
	}
	return u.Name
}

func shortAddress(account string) string {
	if len(account) <= 10 {
		return account
	}
	return account[:6] + "..." + account[len(account)-4:]
}
