package domain

import "time"

// VerifiedMember status values.
const (
	StatusVerified = "verified"
	StatusFlagged  = "flagged"
	StatusPending  = "pending"
)

// IPUnknown marks a verification whose originating IP could not be
// determined. Alt detection never treats it as a shared-origin signal.
const IPUnknown = "unknown"

// VerifiedMember records one verified guild membership, keyed by
// (guild_id, discord_id). A repeat verification overwrites the row.
// OAuth credentials are long-lived secrets and are never serialized
// to the dashboard.
type VerifiedMember struct {
	GuildID      string    `json:"guild_id" dynamodbav:"guild_id"`
	DiscordID    string    `json:"discord_id" dynamodbav:"discord_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	Avatar       *string   `json:"avatar,omitempty" dynamodbav:"avatar"`
	AccessToken  string    `json:"-" dynamodbav:"access_token"`
	RefreshToken string    `json:"-" dynamodbav:"refresh_token"`
	IPAddress    string    `json:"ip_address" dynamodbav:"ip_address"`
	IsAlt        bool      `json:"is_alt" dynamodbav:"is_alt"`
	Status       string    `json:"status" dynamodbav:"status"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
}

// PullMembersRequest asks to replay every verified member of the source
// guild into the target guild, optionally granting a role.
type PullMembersRequest struct {
	SourceGuildID string `json:"source_guild_id" validate:"required"`
	TargetGuildID string `json:"target_guild_id" validate:"required"`
	RoleID        string `json:"role_id"`
}
