// Package discord resolves Discord user ids to display names.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/internal/repository"
	"github.com/freeeve/domtracker/pkg/dominions"
)

// UserDirectory looks up users through the Discord REST API.
type UserDirectory struct {
	baseURL string
	token   string
	cache   repository.NameCache
	httpC   *http.Client
}

// NewUserDirectory creates a directory. cache may be nil.
func NewUserDirectory(baseURL, botToken string, cache repository.NameCache) *UserDirectory {
	return &UserDirectory{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   botToken,
		cache:   cache,
		httpC:   &http.Client{Timeout: 10 * time.Second},
	}
}

type discordUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name"`
}

// DisplayName returns the name a user shows in Discord. Failures wrap
// dominions.ErrIdentityResolutionFailed.
func (d *UserDirectory) DisplayName(ctx context.Context, userID string) (string, error) {
	if d.cache != nil {
		name, ok, err := d.cache.GetName(ctx, userID)
		if err != nil {
			log.Warn().Err(err).Str("userId", userID).Msg("Name cache read failed")
		} else if ok {
			return name, nil
		}
	}

	user, err := d.fetchUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: user %s: %w", dominions.ErrIdentityResolutionFailed, userID, err)
	}
	name := user.GlobalName
	if name == "" {
		name = user.Username
	}

	if d.cache != nil {
		if err := d.cache.SetName(ctx, userID, name); err != nil {
			log.Warn().Err(err).Str("userId", userID).Msg("Name cache write failed")
		}
	}
	return name, nil
}

func (d *UserDirectory) fetchUser(ctx context.Context, userID string) (*discordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/users/"+userID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+d.token)

	resp, err := d.httpC.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}

	var user discordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}
