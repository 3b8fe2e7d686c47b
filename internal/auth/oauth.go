package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// DiscordEndpoint is Discord's OAuth2 endpoint.
var DiscordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/api/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// DiscordUser holds the profile returned by Discord's /users/@me.
type DiscordUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
}

// DisplayName prefers the global name over the username.
func (u DiscordUser) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// OAuthProvider handles the Discord OAuth2 login flow.
type OAuthProvider struct {
	config  *oauth2.Config
	apiBase string
}

// NewDiscordOAuth creates a provider for Discord sign-in. apiBase is the
// REST root used to fetch the signed-in user.
func NewDiscordOAuth(clientID, clientSecret, redirectURL, apiBase string) *OAuthProvider {
	return newOAuthProvider(clientID, clientSecret, redirectURL, apiBase, DiscordEndpoint)
}

func newOAuthProvider(clientID, clientSecret, redirectURL, apiBase string, endpoint oauth2.Endpoint) *OAuthProvider {
	return &OAuthProvider{
		apiBase: strings.TrimRight(apiBase, "/"),
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"identify"},
			Endpoint:     endpoint,
		},
	}
}

// LoginURL returns the OAuth2 authorization URL with a state parameter.
func (p *OAuthProvider) LoginURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "none"))
}

// Exchange trades an authorization code for the signed-in Discord user.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*DiscordUser, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(p.apiBase + "/users/@me")
	if err != nil {
		return nil, fmt.Errorf("oauth user request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("oauth user status %d: %s", resp.StatusCode, body)
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("oauth user decode: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("oauth user: missing id")
	}
	return &user, nil
}
