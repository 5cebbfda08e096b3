package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/member-cord/internal/domain"
	"github.com/member-cord/internal/infrastructure/discord"
	"github.com/member-cord/internal/infrastructure/webhook"
	"github.com/member-cord/internal/pkg/id"
)

// Outcome is the verification flow's only externally visible contract;
// the transport turns it into a redirect query parameter.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeTokenFailed     Outcome = "token_failed"
	OutcomeUserFetchFailed Outcome = "user_fetch_failed"
	OutcomeAltDetected     Outcome = "alt_detected"
	OutcomeUnknown         Outcome = "unknown"
)

// Result is what a completed verification attempt reports.
type Result struct {
	Outcome Outcome
	Member  *domain.VerifiedMember
}

// MemberStore is the minimal member-table interface the flow requires.
type MemberStore interface {
	Put(ctx context.Context, m *domain.VerifiedMember) error
	ListByGuildAndIP(ctx context.Context, guildID, ip string) ([]domain.VerifiedMember, error)
	CountByGuild(ctx context.Context, guildID string) (int, error)
}

// ServerStore is the minimal server-table interface the flow requires.
type ServerStore interface {
	Get(ctx context.Context, guildID string) (*domain.Server, error)
	Update(ctx context.Context, guildID string, updates map[string]interface{}) error
}

// Gateway is the slice of the Discord client the flow drives.
type Gateway interface {
	ExchangeCode(ctx context.Context, code string) (*discord.Tokens, error)
	CurrentUser(ctx context.Context, accessToken string) (*discord.User, error)
	AddGuildMember(ctx context.Context, guildID, userID, accessToken string, roles []string) (discord.JoinResult, error)
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
}

type Service interface {
	Verify(ctx context.Context, code, guildID, clientIP string) Result
}

type service struct {
	members  MemberStore
	servers  ServerStore
	gateway  Gateway
	notifier webhook.Notifier
	detector *Detector
}

func NewService(members MemberStore, servers ServerStore, gateway Gateway, notifier webhook.Notifier) Service {
	return &service{
		members:  members,
		servers:  servers,
		gateway:  gateway,
		notifier: notifier,
		detector: NewDetector(members),
	}
}

// Verify runs the whole callback flow: token exchange, user lookup, alt
// check, policy gate, persist, guild join, optional role assignment,
// count update and webhook notice. Persistence happens before the join
// so the membership record survives a failing Discord call; join and
// webhook failures never roll it back.
func (s *service) Verify(ctx context.Context, code, guildID, clientIP string) Result {
	attemptID := id.New()

	tokens, err := s.gateway.ExchangeCode(ctx, code)
	if err != nil {
		slog.Error("verification: token exchange failed", "attempt_id", attemptID, "guild_id", guildID, "err", err)
		return Result{Outcome: OutcomeTokenFailed}
	}

	user, err := s.gateway.CurrentUser(ctx, tokens.AccessToken)
	if err != nil {
		slog.Error("verification: user lookup failed", "attempt_id", attemptID, "guild_id", guildID, "err", err)
		return Result{Outcome: OutcomeUserFetchFailed}
	}

	isAlt, conflicting, err := s.detector.Detect(ctx, guildID, clientIP, user.ID)
	if err != nil {
		slog.Error("verification: alt detection failed", "attempt_id", attemptID, "guild_id", guildID, "discord_id", user.ID, "err", err)
		return Result{Outcome: OutcomeUnknown}
	}

	server, err := s.servers.Get(ctx, guildID)
	haveServer := err == nil
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("verification: loading server settings failed", "attempt_id", attemptID, "guild_id", guildID, "err", err)
			return Result{Outcome: OutcomeUnknown}
		}
		server = domain.DefaultServer(guildID)
	}

	// Hard gate: a blocked alt leaves no trace and never reaches Discord.
	if isAlt && server.AltBlocking {
		slog.Info("verification: alt blocked", "attempt_id", attemptID, "guild_id", guildID,
			"discord_id", user.ID, "conflicts", len(conflicting))
		return Result{Outcome: OutcomeAltDetected}
	}

	member := &domain.VerifiedMember{
		GuildID:      guildID,
		DiscordID:    user.ID,
		Username:     user.DisplayName(),
		Avatar:       user.Avatar,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IPAddress:    clientIP,
		IsAlt:        isAlt,
		Status:       domain.StatusVerified,
		CreatedAt:    time.Now().UTC(),
	}
	if isAlt {
		member.Status = domain.StatusFlagged
	}
	if err := s.members.Put(ctx, member); err != nil {
		slog.Error("verification: persisting member failed", "attempt_id", attemptID, "guild_id", guildID, "discord_id", user.ID, "err", err)
		return Result{Outcome: OutcomeUnknown}
	}

	var roles []string
	if server.VerifyRoleID != nil && *server.VerifyRoleID != "" {
		roles = []string{*server.VerifyRoleID}
	}
	join, err := s.gateway.AddGuildMember(ctx, guildID, user.ID, tokens.AccessToken, roles)
	if err != nil {
		// Verification state is independent of live guild membership; the
		// record stands and a fresh manual action is the only retry path.
		slog.Warn("verification: guild join failed", "attempt_id", attemptID, "guild_id", guildID, "discord_id", user.ID, "err", err)
	}
	if join == discord.JoinAlreadyMember && len(roles) > 0 {
		// The add-member call does not apply roles to existing members.
		if err := s.gateway.AddMemberRole(ctx, guildID, user.ID, roles[0]); err != nil {
			slog.Warn("verification: role assignment failed", "attempt_id", attemptID, "guild_id", guildID, "discord_id", user.ID, "err", err)
		}
	}

	if haveServer {
		s.updateVerifiedCount(ctx, attemptID, guildID)
	}

	if haveServer && server.VerifyLogs && server.WebhookURL != nil && *server.WebhookURL != "" {
		notice := webhook.Notice{Username: member.Username, DiscordID: member.DiscordID}
		if isAlt && server.AltNotify {
			notice.ConflictingUsernames = conflicting
		}
		if err := s.notifier.Send(ctx, *server.WebhookURL, notice); err != nil {
			slog.Warn("verification: webhook delivery failed", "attempt_id", attemptID, "guild_id", guildID, "err", err)
		}
	}

	slog.Info("verification: member verified", "attempt_id", attemptID, "guild_id", guildID,
		"discord_id", member.DiscordID, "status", member.Status, "join_result", int(join))
	return Result{Outcome: OutcomeSuccess, Member: member}
}

// updateVerifiedCount recomputes the guild's verified-member count from
// the store and writes it back. Recompute-then-write, not increment, so
// concurrent verifications stay correct.
func (s *service) updateVerifiedCount(ctx context.Context, attemptID, guildID string) {
	count, err := s.members.CountByGuild(ctx, guildID)
	if err != nil {
		slog.Warn("verification: recomputing verified count failed", "attempt_id", attemptID, "guild_id", guildID, "err", err)
		return
	}
	if err := s.servers.Update(ctx, guildID, map[string]interface{}{"verified_count": count}); err != nil {
		slog.Warn("verification: writing verified count failed", "attempt_id", attemptID, "guild_id", guildID, "err", err)
	}
}
