package guild

import (
	"context"
	"errors"
	"testing"

	"github.com/member-cord/internal/domain"
	"github.com/member-cord/internal/infrastructure/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockServerStore struct{ mock.Mock }

func (m *mockServerStore) UpsertSynced(ctx context.Context, s *domain.Server) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockServerStore) List(ctx context.Context) ([]domain.Server, error) {
	args := m.Called(ctx)
	if rows, _ := args.Get(0).([]domain.Server); rows != nil {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockServerStore) Update(ctx context.Context, guildID string, updates map[string]interface{}) error {
	return m.Called(ctx, guildID, updates).Error(0)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) ListGuilds(ctx context.Context) ([]discord.Guild, error) {
	args := m.Called(ctx)
	if gs, _ := args.Get(0).([]discord.Guild); gs != nil {
		return gs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockGateway) GuildMemberCount(ctx context.Context, guildID string) (int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Error(1)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// --- Sync ---

func TestSync_UpsertsEachGuildWithSlug(t *testing.T) {
	ss := &mockServerStore{}
	gw := &mockGateway{}

	gw.On("ListGuilds", mock.Anything).Return([]discord.Guild{
		{ID: "g1", Name: "Ice Lounge!!", Icon: strPtr("abc123")},
	}, nil)
	gw.On("GuildMemberCount", mock.Anything, "g1").Return(42, nil)
	ss.On("UpsertSynced", mock.Anything, mock.MatchedBy(func(s *domain.Server) bool {
		return s.GuildID == "g1" && s.Slug == "ice-lounge" && s.MemberCount == 42 &&
			s.Icon != nil && *s.Icon == discord.IconURL("g1", "abc123")
	})).Return(nil)
	ss.On("List", mock.Anything).Return([]domain.Server{{GuildID: "g1"}}, nil)

	svc := NewService(ss, gw)
	out, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Len(t, out, 1)
	ss.AssertExpectations(t)
}

func TestSync_CountFailureDegradesToZero(t *testing.T) {
	ss := &mockServerStore{}
	gw := &mockGateway{}

	gw.On("ListGuilds", mock.Anything).Return([]discord.Guild{{ID: "g1", Name: "Guild"}}, nil)
	gw.On("GuildMemberCount", mock.Anything, "g1").Return(0, errors.New("missing intent"))
	ss.On("UpsertSynced", mock.Anything, mock.MatchedBy(func(s *domain.Server) bool {
		return s.MemberCount == 0 && s.Icon == nil
	})).Return(nil)
	ss.On("List", mock.Anything).Return([]domain.Server{{GuildID: "g1"}}, nil)

	svc := NewService(ss, gw)
	_, err := svc.Sync(context.Background())

	require.NoError(t, err)
	ss.AssertExpectations(t)
}

func TestSync_GuildListFetchFails(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListGuilds", mock.Anything).Return(nil, errors.New("401"))

	svc := NewService(&mockServerStore{}, gw)
	_, err := svc.Sync(context.Background())

	require.Error(t, err)
}

func TestSync_DuplicateNamesKeepDistinctGuildIDs(t *testing.T) {
	ss := &mockServerStore{}
	gw := &mockGateway{}

	gw.On("ListGuilds", mock.Anything).Return([]discord.Guild{
		{ID: "g1", Name: "Gaming Hub"},
		{ID: "g2", Name: "Gaming Hub"},
	}, nil)
	gw.On("GuildMemberCount", mock.Anything, mock.Anything).Return(1, nil)
	ss.On("UpsertSynced", mock.Anything, mock.MatchedBy(func(s *domain.Server) bool {
		return s.GuildID == "g1" && s.Slug == "gaming-hub"
	})).Return(nil).Once()
	ss.On("UpsertSynced", mock.Anything, mock.MatchedBy(func(s *domain.Server) bool {
		return s.GuildID == "g2" && s.Slug == "gaming-hub"
	})).Return(nil).Once()
	ss.On("List", mock.Anything).Return([]domain.Server{{GuildID: "g1"}, {GuildID: "g2"}}, nil)

	svc := NewService(ss, gw)
	out, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Len(t, out, 2)
	ss.AssertExpectations(t)
}

// --- UpdateSettings ---

func TestUpdateSettings_MissingGuildID(t *testing.T) {
	svc := NewService(&mockServerStore{}, &mockGateway{})
	err := svc.UpdateSettings(context.Background(), "", domain.UpdateSettingsRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdateSettings_MissingTogglesDefaultTrue(t *testing.T) {
	ss := &mockServerStore{}
	ss.On("Update", mock.Anything, "g1", mock.MatchedBy(func(m map[string]interface{}) bool {
		return m["alt_blocking"] == true && m["alt_notify"] == true && m["verify_logs"] == true &&
			m["verify_role_id"] == nil && m["webhook_url"] == nil
	})).Return(nil)

	svc := NewService(ss, &mockGateway{})
	err := svc.UpdateSettings(context.Background(), "g1", domain.UpdateSettingsRequest{})

	require.NoError(t, err)
	ss.AssertExpectations(t)
}

func TestUpdateSettings_ExplicitValues(t *testing.T) {
	ss := &mockServerStore{}
	ss.On("Update", mock.Anything, "g1", mock.MatchedBy(func(m map[string]interface{}) bool {
		return m["alt_blocking"] == false && m["verify_role_id"] == "role1" &&
			m["webhook_url"] == "https://discord.com/api/webhooks/x"
	})).Return(nil)

	svc := NewService(ss, &mockGateway{})
	err := svc.UpdateSettings(context.Background(), "g1", domain.UpdateSettingsRequest{
		AltBlocking:  boolPtr(false),
		VerifyRoleID: strPtr("role1"),
		WebhookURL:   strPtr("https://discord.com/api/webhooks/x"),
	})

	require.NoError(t, err)
	ss.AssertExpectations(t)
}

func TestUpdateSettings_EmptyStringsClearFields(t *testing.T) {
	ss := &mockServerStore{}
	ss.On("Update", mock.Anything, "g1", mock.MatchedBy(func(m map[string]interface{}) bool {
		return m["verify_role_id"] == nil && m["webhook_url"] == nil
	})).Return(nil)

	svc := NewService(ss, &mockGateway{})
	err := svc.UpdateSettings(context.Background(), "g1", domain.UpdateSettingsRequest{
		VerifyRoleID: strPtr(""),
		WebhookURL:   strPtr(""),
	})

	require.NoError(t, err)
	ss.AssertExpectations(t)
}
