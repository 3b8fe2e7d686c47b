// Package gamehost fetches live snapshots from Dominions game hosts.
package gamehost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/pkg/dominions"
)

// Client is an HTTP client for the status endpoint of a game host.
type Client struct {
	httpC *http.Client
}

// NewClient creates a Client whose requests give up after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{httpC: &http.Client{Timeout: timeout}}
}

type rawNation struct {
	NationID  uint32 `json:"nation_id"`
	Status    int    `json:"status"`
	Submitted int    `json:"submitted"`
	Connected bool   `json:"connected"`
}

type rawSnapshot struct {
	GameName  string      `json:"game_name"`
	Era       int         `json:"era"`
	Turn      int         `json:"turn"`
	TurnTimer int         `json:"turn_timer"`
	Nations   []rawNation `json:"nations"`
}

// GameData fetches the current snapshot from the host at address
// ("host:port" or a full URL).
func (c *Client) GameData(ctx context.Context, address string) (dominions.GameData, error) {
	url := statusURL(address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return dominions.GameData{}, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpC.Do(req)
	if err != nil {
		return dominions.GameData{}, fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return dominions.GameData{}, fmt.Errorf("status %s returned %d: %s", url, resp.StatusCode, body)
	}

	var raw rawSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return dominions.GameData{}, fmt.Errorf("decode status: %w", err)
	}
	return convert(raw), nil
}

func statusURL(address string) string {
	address = strings.TrimRight(address, "/")
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}
	return address + "/status"
}

// convert maps the wire snapshot onto the catalog. Empty slots are dropped.
func convert(raw rawSnapshot) dominions.GameData {
	game := dominions.GameData{
		GameName:  raw.GameName,
		Turn:      raw.Turn,
		TurnTimer: raw.TurnTimer,
		Nations:   make([]dominions.NationDetails, 0, len(raw.Nations)),
	}
	for _, rn := range raw.Nations {
		status := dominions.NationStatusFromInt(rn.Status)
		if status == dominions.StatusEmpty {
			continue
		}
		nation, ok := dominions.NationByID(rn.NationID)
		if !ok {
			log.Warn().Uint32("nationId", rn.NationID).Str("game", raw.GameName).Msg("Unknown nation id from game host")
			nation = dominions.PlaceholderNation(rn.NationID, dominions.Era(raw.Era))
		}
		game.Nations = append(game.Nations, dominions.NationDetails{
			Nation:    nation,
			Status:    status,
			Submitted: dominions.SubmissionFromInt(rn.Submitted),
			Connected: rn.Connected,
		})
	}
	return game
}
