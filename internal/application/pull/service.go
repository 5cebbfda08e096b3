package pull

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/member-cord/internal/domain"
	"github.com/member-cord/internal/infrastructure/discord"
	"github.com/member-cord/internal/pkg/id"
	"golang.org/x/time/rate"
)

// Result aggregates a bulk pull: every member either joined (or already
// was in the target guild) or counted as failed; nothing aborts the batch.
type Result struct {
	Added  int `json:"added"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// MemberStore is the slice of the member table a pull reads.
type MemberStore interface {
	ListByGuild(ctx context.Context, guildID string) ([]domain.VerifiedMember, error)
}

// Gateway is the slice of the Discord client a pull drives.
type Gateway interface {
	AddGuildMember(ctx context.Context, guildID, userID, accessToken string, roles []string) (discord.JoinResult, error)
	AddMemberRole(ctx context.Context, guildID, userID, roleID string) error
}

type Service interface {
	Pull(ctx context.Context, sourceGuildID, targetGuildID, roleID string) (*Result, error)
}

type service struct {
	members MemberStore
	gateway Gateway
	limiter *rate.Limiter
}

// NewService builds a pull service pacing Discord calls at one per delay.
// The limiter is a floor between consecutive calls, not a target rate.
func NewService(members MemberStore, gateway Gateway, delay time.Duration) Service {
	if delay <= 0 {
		delay = time.Second
	}
	return &service{
		members: members,
		gateway: gateway,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Pull replays every verified member of the source guild into the target
// guild, sequentially and rate-limited. A member whose join fails counts
// as failed and the batch continues. Cancelling the context stops the
// job between iterations; the counts accumulated so far are returned
// alongside the context error.
func (s *service) Pull(ctx context.Context, sourceGuildID, targetGuildID, roleID string) (*Result, error) {
	if sourceGuildID == "" || targetGuildID == "" {
		return nil, fmt.Errorf("source_guild_id and target_guild_id required: %w", domain.ErrBadRequest)
	}

	members, err := s.members.ListByGuild(ctx, sourceGuildID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no verified members in source guild: %w", domain.ErrBadRequest)
	}

	jobID := id.New()
	var roles []string
	if roleID != "" {
		roles = []string{roleID}
	}

	res := &Result{Total: len(members)}
	for _, m := range members {
		if err := s.limiter.Wait(ctx); err != nil {
			slog.Warn("pull: cancelled", "job_id", jobID, "added", res.Added, "failed", res.Failed, "total", res.Total)
			return res, err
		}

		join, err := s.gateway.AddGuildMember(ctx, targetGuildID, m.DiscordID, m.AccessToken, roles)
		if err != nil || join == discord.JoinFailed {
			res.Failed++
			slog.Warn("pull: member join failed", "job_id", jobID, "discord_id", m.DiscordID, "err", err)
			continue
		}
		res.Added++

		if join == discord.JoinAlreadyMember && roleID != "" {
			if err := s.gateway.AddMemberRole(ctx, targetGuildID, m.DiscordID, roleID); err != nil {
				slog.Warn("pull: role assignment failed", "job_id", jobID, "discord_id", m.DiscordID, "err", err)
			}
		}
	}

	slog.Info("pull: complete", "job_id", jobID, "source_guild_id", sourceGuildID,
		"target_guild_id", targetGuildID, "added", res.Added, "failed", res.Failed, "total", res.Total)
	return res, nil
}
