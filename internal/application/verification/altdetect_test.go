package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/member-cord/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDetect_ConflictingMember(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("ListByGuildAndIP", mock.Anything, "g1", "1.2.3.4").Return([]domain.VerifiedMember{
		{GuildID: "g1", DiscordID: "u1", Username: "first", IPAddress: "1.2.3.4"},
	}, nil)

	d := NewDetector(ms)
	isAlt, conflicting, err := d.Detect(context.Background(), "g1", "1.2.3.4", "u2")

	require.NoError(t, err)
	assert.True(t, isAlt)
	assert.Equal(t, []string{"first"}, conflicting)
}

func TestDetect_OwnRowIsNotAConflict(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("ListByGuildAndIP", mock.Anything, "g1", "1.2.3.4").Return([]domain.VerifiedMember{
		{GuildID: "g1", DiscordID: "u1", Username: "alice", IPAddress: "1.2.3.4"},
	}, nil)

	d := NewDetector(ms)
	isAlt, conflicting, err := d.Detect(context.Background(), "g1", "1.2.3.4", "u1")

	require.NoError(t, err)
	assert.False(t, isAlt)
	assert.Empty(t, conflicting)
}

func TestDetect_NoMatches(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("ListByGuildAndIP", mock.Anything, "g1", "9.9.9.9").Return([]domain.VerifiedMember{}, nil)

	d := NewDetector(ms)
	isAlt, conflicting, err := d.Detect(context.Background(), "g1", "9.9.9.9", "u1")

	require.NoError(t, err)
	assert.False(t, isAlt)
	assert.Empty(t, conflicting)
}

func TestDetect_UnknownIPNeverMatches(t *testing.T) {
	ms := &mockMemberStore{}

	d := NewDetector(ms)
	isAlt, conflicting, err := d.Detect(context.Background(), "g1", domain.IPUnknown, "u2")

	require.NoError(t, err)
	assert.False(t, isAlt)
	assert.Empty(t, conflicting)
	ms.AssertNotCalled(t, "ListByGuildAndIP", mock.Anything, mock.Anything, mock.Anything)
}

func TestDetect_EmptyIPNeverMatches(t *testing.T) {
	ms := &mockMemberStore{}

	d := NewDetector(ms)
	isAlt, _, err := d.Detect(context.Background(), "g1", "", "u2")

	require.NoError(t, err)
	assert.False(t, isAlt)
	ms.AssertNotCalled(t, "ListByGuildAndIP", mock.Anything, mock.Anything, mock.Anything)
}

func TestDetect_StoreError(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("ListByGuildAndIP", mock.Anything, "g1", "1.2.3.4").Return(nil, errors.New("query failed"))

	d := NewDetector(ms)
	_, _, err := d.Detect(context.Background(), "g1", "1.2.3.4", "u2")

	require.Error(t, err)
}
