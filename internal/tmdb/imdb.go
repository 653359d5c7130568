package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Belphemur/KodiPresence/internal/apperrors"
	"github.com/Belphemur/KodiPresence/internal/models"
	"github.com/Belphemur/KodiPresence/internal/parser"
)

// imdbTitle fetches and parses the IMDb title page of imdbID.
func (c *Client) imdbTitle(ctx context.Context, imdbID string) (models.IMDBTitle, error) {
	pageURL := fmt.Sprintf("%s/title/%s/", c.imdbBaseURL, imdbID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return models.IMDBTitle{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.IMDBTitle{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.IMDBTitle{}, &apperrors.HTTPStatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := parser.NewUTF8Reader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return models.IMDBTitle{}, fmt.Errorf("detect charset of %s: %w", pageURL, err)
	}
	return c.imdbParser.ParseHtml(body)
}
