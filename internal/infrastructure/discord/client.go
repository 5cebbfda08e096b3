package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/member-cord/internal/config"
	"golang.org/x/oauth2"
)

const cdnBaseURL = "https://cdn.discordapp.com"

// User is the portion of Discord's /users/@me response this service needs.
type User struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	GlobalName string  `json:"global_name"`
	Avatar     *string `json:"avatar"`
}

// DisplayName prefers the user's global display name over the login username.
func (u *User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// Guild is one entry of the bot's /users/@me/guilds response.
type Guild struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Icon *string `json:"icon"`
}

// Tokens is the credential pair from a completed authorization-code exchange.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// JoinResult classifies the outcome of an add-guild-member call.
type JoinResult int

const (
	// JoinFailed covers every non-2xx status.
	JoinFailed JoinResult = iota
	// JoinAdded means the user was newly added to the guild (HTTP 201,
	// or any other 2xx apart from 204).
	JoinAdded
	// JoinAlreadyMember means the user was already in the guild (HTTP 204).
	// The add-member call does not apply roles in that case.
	JoinAlreadyMember
)

// Client is a thin wrapper over the Discord REST API: OAuth code exchange,
// user lookup, guild listing and member add/role assignment. It carries no
// business logic; callers interpret the results.
type Client struct {
	httpClient *http.Client
	oauth      *oauth2.Config
	botToken   string
	baseURL    string
}

func NewClient(cfg *config.Config) *Client {
	base := strings.TrimRight(cfg.DiscordAPIBaseURL, "/")
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		oauth: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "guilds.join"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/oauth2/authorize",
				TokenURL: base + "/oauth2/token",
			},
		},
		botToken: cfg.DiscordBotToken,
		baseURL:  base,
	}
}

// ExchangeCode trades a single-use authorization code for the user's
// access/refresh token pair. Replaying a callback with the same code
// fails here.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Tokens, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("discord: exchanging oauth code: %w", err)
	}
	return &Tokens{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}, nil
}

// CurrentUser fetches the profile of the user the access token belongs to.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/@me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord: fetching current user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord: /users/@me returned status %d", resp.StatusCode)
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("discord: decoding /users/@me response: %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("discord: /users/@me returned a user without an id")
	}
	return &u, nil
}

// ListGuilds returns every guild the bot is a member of.
func (c *Client) ListGuilds(ctx context.Context) ([]Guild, error) {
	resp, err := c.doBot(ctx, http.MethodGet, "/users/@me/guilds", nil)
	if err != nil {
		return nil, fmt.Errorf("discord: fetching guild list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord: guild list returned status %d", resp.StatusCode)
	}
	var guilds []Guild
	if err := json.NewDecoder(resp.Body).Decode(&guilds); err != nil {
		return nil, fmt.Errorf("discord: decoding guild list: %w", err)
	}
	return guilds, nil
}

// GuildMemberCount fetches a guild's approximate member count.
func (c *Client) GuildMemberCount(ctx context.Context, guildID string) (int, error) {
	resp, err := c.doBot(ctx, http.MethodGet, "/guilds/"+guildID+"?with_counts=true", nil)
	if err != nil {
		return 0, fmt.Errorf("discord: fetching guild %s: %w", guildID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("discord: guild %s returned status %d", guildID, resp.StatusCode)
	}
	var g struct {
		ApproximateMemberCount int `json:"approximate_member_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&g); err != nil {
		return 0, fmt.Errorf("discord: decoding guild %s: %w", guildID, err)
	}
	return g.ApproximateMemberCount, nil
}

// AddGuildMember joins a user into a guild using the bot's credentials
// plus the user's OAuth access token (guilds.join scope). 201 (and any
// other 2xx body-bearing response) means newly added, 204 means the user
// was already a member — not an error.
func (c *Client) AddGuildMember(ctx context.Context, guildID, userID, accessToken string, roles []string) (JoinResult, error) {
	body := map[string]interface{}{"access_token": accessToken}
	if len(roles) > 0 {
		body["roles"] = roles
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return JoinFailed, err
	}

	resp, err := c.doBot(ctx, http.MethodPut, "/guilds/"+guildID+"/members/"+userID, payload)
	if err != nil {
		return JoinFailed, fmt.Errorf("discord: adding member %s to guild %s: %w", userID, guildID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return JoinAlreadyMember, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return JoinAdded, nil
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return JoinFailed, fmt.Errorf("discord: add member %s to guild %s returned status %d: %s",
			userID, guildID, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
}

// AddMemberRole grants a role to an existing guild member.
func (c *Client) AddMemberRole(ctx context.Context, guildID, userID, roleID string) error {
	resp, err := c.doBot(ctx, http.MethodPut, "/guilds/"+guildID+"/members/"+userID+"/roles/"+roleID, nil)
	if err != nil {
		return fmt.Errorf("discord: assigning role %s in guild %s: %w", roleID, guildID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("discord: assign role %s in guild %s returned status %d", roleID, guildID, resp.StatusCode)
	}
	return nil
}

// IconURL builds the CDN URL for a guild icon hash.
func IconURL(guildID, iconHash string) string {
	return fmt.Sprintf("%s/icons/%s/%s.png", cdnBaseURL, guildID, iconHash)
}

func (c *Client) doBot(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.botToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpClient.Do(req)
}
