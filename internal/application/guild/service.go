package guild

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/member-cord/internal/domain"
	"github.com/member-cord/internal/infrastructure/discord"
	"github.com/member-cord/internal/pkg/slug"
)

// ServerStore is the slice of the server table the guild operations use.
type ServerStore interface {
	UpsertSynced(ctx context.Context, s *domain.Server) error
	List(ctx context.Context) ([]domain.Server, error)
	Update(ctx context.Context, guildID string, updates map[string]interface{}) error
}

// Gateway is the slice of the Discord client guild sync drives.
type Gateway interface {
	ListGuilds(ctx context.Context) ([]discord.Guild, error)
	GuildMemberCount(ctx context.Context, guildID string) (int, error)
}

type Service interface {
	Sync(ctx context.Context) ([]domain.Server, error)
	List(ctx context.Context) ([]domain.Server, error)
	UpdateSettings(ctx context.Context, guildID string, req domain.UpdateSettingsRequest) error
}

type service struct {
	servers ServerStore
	gateway Gateway
}

func NewService(servers ServerStore, gateway Gateway) Service {
	return &service{servers: servers, gateway: gateway}
}

// Sync reconciles the bot's live guild list with the store. The guild
// list fetch is fatal; the per-guild member count is best-effort and
// degrades to zero. Settings fields survive the upsert untouched.
func (s *service) Sync(ctx context.Context) ([]domain.Server, error) {
	guilds, err := s.gateway.ListGuilds(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch guild list: %w", err)
	}

	for _, g := range guilds {
		count, err := s.gateway.GuildMemberCount(ctx, g.ID)
		if err != nil {
			slog.Warn("guild sync: member count fetch failed", "guild_id", g.ID, "err", err)
			count = 0
		}

		server := &domain.Server{
			GuildID:     g.ID,
			Name:        g.Name,
			Slug:        slug.Make(g.Name),
			MemberCount: count,
		}
		if g.Icon != nil && *g.Icon != "" {
			u := discord.IconURL(g.ID, *g.Icon)
			server.Icon = &u
		}

		if err := s.servers.UpsertSynced(ctx, server); err != nil {
			return nil, fmt.Errorf("upsert guild %s: %w", g.ID, err)
		}
	}

	return s.servers.List(ctx)
}

func (s *service) List(ctx context.Context) ([]domain.Server, error) {
	return s.servers.List(ctx)
}

// UpdateSettings writes only the admin-configurable policy fields.
// Missing toggles fall back to true, an empty role or webhook clears
// the field — matching what the dashboard settings form submits.
func (s *service) UpdateSettings(ctx context.Context, guildID string, req domain.UpdateSettingsRequest) error {
	if guildID == "" {
		return fmt.Errorf("guild_id required: %w", domain.ErrBadRequest)
	}
	return s.servers.Update(ctx, guildID, map[string]interface{}{
		"verify_role_id": strOrNil(req.VerifyRoleID),
		"webhook_url":    strOrNil(req.WebhookURL),
		"alt_blocking":   boolOr(req.AltBlocking, true),
		"alt_notify":     boolOr(req.AltNotify, true),
		"verify_logs":    boolOr(req.VerifyLogs, true),
	})
}

func strOrNil(p *string) interface{} {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
