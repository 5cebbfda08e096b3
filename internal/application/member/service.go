package member

import (
	"context"

	"github.com/member-cord/internal/domain"
)

// Store is the slice of the member table the listing uses.
type Store interface {
	ListByGuild(ctx context.Context, guildID string) ([]domain.VerifiedMember, error)
	ListAll(ctx context.Context) ([]domain.VerifiedMember, error)
}

type Service interface {
	// List returns verified members, scoped to a guild when guildID is
	// non-empty. OAuth credentials never leave the domain type's
	// json-suppressed fields.
	List(ctx context.Context, guildID string) ([]domain.VerifiedMember, error)
}

type service struct {
	members Store
}

func NewService(members Store) Service {
	return &service{members: members}
}

func (s *service) List(ctx context.Context, guildID string) ([]domain.VerifiedMember, error) {
	if guildID != "" {
		return s.members.ListByGuild(ctx, guildID)
	}
	return s.members.ListAll(ctx)
}
