package domain

import "time"

// Server is the per-guild policy record. One row per guild the bot is in,
// keyed by guild_id. Settings fields are only touched by an explicit
// settings update; guild sync preserves them.
type Server struct {
	GuildID       string    `json:"guild_id" dynamodbav:"guild_id"`
	Name          string    `json:"name" dynamodbav:"name"`
	Icon          *string   `json:"icon,omitempty" dynamodbav:"icon"`
	Slug          string    `json:"slug" dynamodbav:"slug"`
	MemberCount   int       `json:"member_count" dynamodbav:"member_count"`
	VerifiedCount int       `json:"verified_count" dynamodbav:"verified_count"`
	VerifyRoleID  *string   `json:"verify_role_id,omitempty" dynamodbav:"verify_role_id"`
	WebhookURL    *string   `json:"webhook_url,omitempty" dynamodbav:"webhook_url"`
	AltBlocking   bool      `json:"alt_blocking" dynamodbav:"alt_blocking"`
	AltNotify     bool      `json:"alt_notify" dynamodbav:"alt_notify"`
	VerifyLogs    bool      `json:"verify_logs" dynamodbav:"verify_logs"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

// DefaultServer returns the policy defaults applied when a guild has no
// stored row yet: alt blocking, alt notify and verify logging all on.
func DefaultServer(guildID string) *Server {
	return &Server{
		GuildID:     guildID,
		AltBlocking: true,
		AltNotify:   true,
		VerifyLogs:  true,
	}
}

// UpdateSettingsRequest carries the settings a dashboard admin may change.
// Absent toggles fall back to their defaults; an empty role or webhook
// clears the field.
type UpdateSettingsRequest struct {
	VerifyRoleID *string `json:"verify_role_id"`
	WebhookURL   *string `json:"webhook_url" validate:"omitempty,url"`
	AltBlocking  *bool   `json:"alt_blocking"`
	AltNotify    *bool   `json:"alt_notify"`
	VerifyLogs   *bool   `json:"verify_logs"`
}
