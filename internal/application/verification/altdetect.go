package verification

import (
	"context"

	"github.com/member-cord/internal/domain"
)

// Detector decides alt status from stored members sharing an originating IP.
type Detector struct {
	members MemberStore
}

func NewDetector(members MemberStore) *Detector {
	return &Detector{members: members}
}

// Detect reports whether another member of the guild already verified
// from candidateIP, along with the usernames of the conflicting rows for
// logging and webhook notices. An undetermined IP is never a shared
// signal: when candidateIP is the "unknown" sentinel the answer is
// always not-alt, otherwise every client behind a broken proxy chain
// would flag every other one.
func (d *Detector) Detect(ctx context.Context, guildID, candidateIP, candidateDiscordID string) (bool, []string, error) {
	if candidateIP == "" || candidateIP == domain.IPUnknown {
		return false, nil, nil
	}
	rows, err := d.members.ListByGuildAndIP(ctx, guildID, candidateIP)
	if err != nil {
		return false, nil, err
	}
	var conflicting []string
	for _, m := range rows {
		if m.DiscordID == candidateDiscordID {
			continue
		}
		conflicting = append(conflicting, m.Username)
	}
	return len(conflicting) > 0, conflicting, nil
}
