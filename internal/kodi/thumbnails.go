package kodi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Belphemur/KodiPresence/internal/config"
)

const imagePrefix = "image://"

type activePlayer struct {
	PlayerID int    `json:"playerid"`
	Type     string `json:"type"`
}

type artResult struct {
	Item struct {
		Art map[string]string `json:"art"`
	} `json:"item"`
}

// Thumbnail returns the decoded thumbnail URL of the item in the first active player.
// It returns an empty string when nothing is playing or the item has no thumbnail.
// Unlike the polling fetches it makes a single attempt.
func (c *Client) Thumbnail(ctx context.Context) (string, error) {
	logger := config.GetLogger()

	var players rpcResponse[[]activePlayer]
	if err := c.call(ctx, newRequest("Player.GetActivePlayers", nil), &players); err != nil {
		return "", fmt.Errorf("get active players: %w", err)
	}
	if players.Result == nil || len(*players.Result) == 0 {
		logger.Debug().Msg("No active players found")
		return "", nil
	}
	playerID := (*players.Result)[0].PlayerID

	var art rpcResponse[artResult]
	req := newRequest("Player.GetItem", itemParams{PlayerID: playerID, Properties: []string{"art"}})
	if err := c.call(ctx, req, &art); err != nil {
		return "", fmt.Errorf("get artwork: %w", err)
	}
	if art.Result == nil || art.Result.Item.Art["thumb"] == "" {
		logger.Debug().Int("player_id", playerID).Msg("No thumbs available")
		return "", nil
	}

	thumb := CleanImageURL(art.Result.Item.Art["thumb"])
	logger.Debug().Str("url", thumb).Msg("Resolved Kodi thumbnail")
	return thumb, nil
}

// CleanImageURL turns a Kodi image:// artwork reference into the URL it wraps.
// Undecodable input is returned with only the prefix removed.
func CleanImageURL(raw string) string {
	trimmed := strings.TrimPrefix(raw, imagePrefix)
	decoded, err := url.PathUnescape(trimmed)
	if err != nil {
		decoded = trimmed
	}
	if strings.HasPrefix(raw, imagePrefix) {
		decoded = strings.TrimSuffix(decoded, "/")
	}
	return decoded
}
