package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/member-cord/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockGuildSvc struct{ mock.Mock }

func (m *mockGuildSvc) Sync(ctx context.Context) ([]domain.Server, error) {
	args := m.Called(ctx)
	if s, _ := args.Get(0).([]domain.Server); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockGuildSvc) List(ctx context.Context) ([]domain.Server, error) {
	args := m.Called(ctx)
	if s, _ := args.Get(0).([]domain.Server); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockGuildSvc) UpdateSettings(ctx context.Context, guildID string, req domain.UpdateSettingsRequest) error {
	return m.Called(ctx, guildID, req).Error(0)
}

// withChiGuildID injects a chi URL param "guildID" into the request context.
func withChiGuildID(r *http.Request, guildID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("guildID", guildID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --- List ---

func TestListServers_HappyPath(t *testing.T) {
	svc := &mockGuildSvc{}
	svc.On("List", mock.Anything).Return([]domain.Server{{GuildID: "g1", Slug: "guild-one"}}, nil)
	h := NewServerHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/servers", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	var servers []domain.Server
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&servers))
	require.Len(t, servers, 1)
	assert.Equal(t, "g1", servers[0].GuildID)
}

func TestListServers_StoreError(t *testing.T) {
	svc := &mockGuildSvc{}
	svc.On("List", mock.Anything).Return(nil, errors.New("scan failed"))
	h := NewServerHandler(svc)

	r := httptest.NewRequest(http.MethodGet, "/v1/servers", nil)
	rr := httptest.NewRecorder()
	h.List(rr, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- Sync ---

func TestSyncServers_HappyPath(t *testing.T) {
	svc := &mockGuildSvc{}
	svc.On("Sync", mock.Anything).Return([]domain.Server{{GuildID: "g1"}, {GuildID: "g2"}}, nil)
	h := NewServerHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/servers/sync", nil)
	rr := httptest.NewRecorder()
	h.Sync(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	var servers []domain.Server
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&servers))
	assert.Len(t, servers, 2)
	svc.AssertExpectations(t)
}

func TestSyncServers_GatewayError(t *testing.T) {
	svc := &mockGuildSvc{}
	svc.On("Sync", mock.Anything).Return(nil, errors.New("fetch guild list: 401"))
	h := NewServerHandler(svc)

	r := httptest.NewRequest(http.MethodPost, "/v1/servers/sync", nil)
	rr := httptest.NewRecorder()
	h.Sync(rr, r)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- UpdateSettings ---

func TestUpdateSettings_InvalidBody(t *testing.T) {
	h := NewServerHandler(&mockGuildSvc{})
	r := withChiGuildID(httptest.NewRequest(http.MethodPut, "/v1/servers/g1/settings", bytes.NewBufferString("not-json")), "g1")
	rr := httptest.NewRecorder()
	h.UpdateSettings(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateSettings_InvalidWebhookURL(t *testing.T) {
	h := NewServerHandler(&mockGuildSvc{})
	body, _ := json.Marshal(map[string]string{"webhook_url": "not a url"})
	r := withChiGuildID(httptest.NewRequest(http.MethodPut, "/v1/servers/g1/settings", bytes.NewReader(body)), "g1")
	rr := httptest.NewRecorder()
	h.UpdateSettings(rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateSettings_HappyPath(t *testing.T) {
	svc := &mockGuildSvc{}
	svc.On("UpdateSettings", mock.Anything, "g1", mock.MatchedBy(func(req domain.UpdateSettingsRequest) bool {
		return req.VerifyRoleID != nil && *req.VerifyRoleID == "role1" &&
			req.AltBlocking != nil && !*req.AltBlocking
	})).Return(nil)
	h := NewServerHandler(svc)

	body, _ := json.Marshal(map[string]interface{}{"verify_role_id": "role1", "alt_blocking": false})
	r := withChiGuildID(httptest.NewRequest(http.MethodPut, "/v1/servers/g1/settings", bytes.NewReader(body)), "g1")
	rr := httptest.NewRecorder()
	h.UpdateSettings(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestUpdateSettings_ServiceBadRequest(t *testing.T) {
	svc := &mockGuildSvc{}
	svc.On("UpdateSettings", mock.Anything, "", mock.Anything).Return(domain.ErrBadRequest)
	h := NewServerHandler(svc)

	body, _ := json.Marshal(map[string]interface{}{})
	r := withChiGuildID(httptest.NewRequest(http.MethodPut, "/v1/servers//settings", bytes.NewReader(body)), "")
	rr := httptest.NewRecorder()
	h.UpdateSettings(rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
