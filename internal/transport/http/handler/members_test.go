package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/member-cord/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMemberSvc struct{ mock.Mock }

func (m *mockMemberSvc) List(ctx context.Context, guildID string) ([]domain.VerifiedMember, error) {
	args := m.Called(ctx, guildID)
	if rows, _ := args.Get(0).([]domain.VerifiedMember); rows != nil {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestListMembers_ScopedToGuild(t *testing.T) {
	svc := &mockMemberSvc{}
	svc.On("List", mock.Anything, "g1").Return([]domain.VerifiedMember{
		{GuildID: "g1", DiscordID: "u1", Username: "alice", AccessToken: "at"},
	}, nil)
	h := NewMemberHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/members?guild_id=g1", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	var members []map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&members))
	require.Len(t, members, 1)
	assert.Equal(t, "u1", members[0]["discord_id"])
	// OAuth tokens never reach the dashboard.
	_, hasToken := members[0]["access_token"]
	assert.False(t, hasToken)
}

func TestListMembers_AllGuilds(t *testing.T) {
	svc := &mockMemberSvc{}
	svc.On("List", mock.Anything, "").Return([]domain.VerifiedMember{
		{GuildID: "g1", DiscordID: "u1"},
		{GuildID: "g2", DiscordID: "u2"},
	}, nil)
	h := NewMemberHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/members", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	var members []domain.VerifiedMember
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&members))
	assert.Len(t, members, 2)
}

func TestListMembers_StoreError(t *testing.T) {
	svc := &mockMemberSvc{}
	svc.On("List", mock.Anything, "g1").Return(nil, errors.New("scan failed"))
	h := NewMemberHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/members?guild_id=g1", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
