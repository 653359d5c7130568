// Package tmdb resolves Kodi items against The Movie Database, with IMDb title pages as a poster fallback.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Belphemur/KodiPresence/internal/apperrors"
	"github.com/Belphemur/KodiPresence/internal/client"
	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/Belphemur/KodiPresence/internal/models"
	"github.com/Belphemur/KodiPresence/internal/parser"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"

	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p/w500"
	defaultIMDBBaseURL  = "https://www.imdb.com"
)

// Options configures a Client. Empty URLs fall back to the public endpoints.
type Options struct {
	APIKey       string
	Language     string
	BaseURL      string
	ImageBaseURL string
	IMDBBaseURL  string
	HTTPClient   *http.Client
}

// Client is a minimal TMDB v3 client covering search, external ids and posters
type Client struct {
	httpClient   *http.Client
	apiKey       string
	language     string
	baseURL      string
	imageBaseURL string
	imdbBaseURL  string
	imdbParser   parser.SingleResultParser[models.IMDBTitle]

	// searches keeps the last search results so the TMDB and IMDb id lookups
	// of the same item share one search request.
	searches *lru.LRU[string, int]
}

// New creates a Client from explicit options
func New(opts Options) *Client {
	c := &Client{
		httpClient:   opts.HTTPClient,
		apiKey:       opts.APIKey,
		language:     opts.Language,
		baseURL:      strings.TrimSuffix(opts.BaseURL, "/"),
		imageBaseURL: strings.TrimSuffix(opts.ImageBaseURL, "/"),
		imdbBaseURL:  strings.TrimSuffix(opts.IMDBBaseURL, "/"),
		imdbParser:   parser.NewIMDBTitleParser(),
		searches:     lru.NewLRU[string, int](64, nil, 10*time.Minute),
	}
	if c.httpClient == nil {
		c.httpClient = client.New(client.Options{Timeout: 10 * time.Second, UserAgent: config.GetUserAgent()})
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.imageBaseURL == "" {
		c.imageBaseURL = defaultImageBaseURL
	}
	if c.imdbBaseURL == "" {
		c.imdbBaseURL = defaultIMDBBaseURL
	}
	return c
}

// NewClient creates a Client from the application configuration
func NewClient(cfg *config.Config) *Client {
	return New(Options{
		APIKey:   cfg.TMDB.APIKey,
		Language: cfg.TMDB.Language,
		BaseURL:  cfg.TMDB.BaseURL,
		HTTPClient: client.New(client.Options{
			Timeout:   config.ParseDuration("tmdb.timeout", cfg.TMDB.Timeout, 10*time.Second),
			UserAgent: cfg.UserAgent,
		}),
	})
}

// MediaTypeFor maps a Kodi item type to the TMDB media type; other types have none.
func MediaTypeFor(itemType models.ItemType) string {
	switch itemType {
	case models.ItemMovie:
		return MediaTypeMovie
	case models.ItemEpisode:
		return MediaTypeTV
	default:
		return ""
	}
}

// LookupTMDBID searches TMDB for the movie title or the episode's show title.
// An empty string means TMDB has no match.
func (c *Client) LookupTMDBID(ctx context.Context, info models.PlaybackInfo) (string, error) {
	id, err := c.search(ctx, info)
	if err != nil || id == 0 {
		return "", err
	}
	return strconv.Itoa(id), nil
}

// LookupIMDBID resolves the IMDb id of the item through its TMDB external ids.
func (c *Client) LookupIMDBID(ctx context.Context, info models.PlaybackInfo) (string, error) {
	id, err := c.search(ctx, info)
	if err != nil || id == 0 {
		return "", err
	}
	return c.externalIMDBID(ctx, strconv.Itoa(id), MediaTypeFor(info.Type))
}

// LookupMediaType returns "movie" or "tv" without a remote call.
func (c *Client) LookupMediaType(_ context.Context, info models.PlaybackInfo) (string, error) {
	return MediaTypeFor(info.Type), nil
}

// ImageURL returns the poster URL of a TMDB title, falling back to the IMDb
// page's og:image when TMDB has no poster.
func (c *Client) ImageURL(ctx context.Context, tmdbID, mediaType string) (string, error) {
	logger := config.GetLogger()
	if tmdbID == "" || mediaType == "" {
		return "", nil
	}

	var details struct {
		PosterPath string `json:"poster_path"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("/%s/%s", mediaType, url.PathEscape(tmdbID)), nil, &details)
	if errors.Is(err, &apperrors.ErrNotFound{}) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if details.PosterPath != "" {
		return c.imageBaseURL + details.PosterPath, nil
	}

	logger.Debug().Str("tmdbId", tmdbID).Str("mediaType", mediaType).Msg("No TMDB poster, trying IMDb")
	imdbID, err := c.externalIMDBID(ctx, tmdbID, mediaType)
	if err != nil || imdbID == "" {
		return "", err
	}
	title, err := c.imdbTitle(ctx, imdbID)
	if err != nil {
		return "", err
	}
	return title.PosterURL, nil
}

// IMDBURL builds the public IMDb page of a title.
func (c *Client) IMDBURL(_ context.Context, imdbID string) (string, error) {
	if imdbID == "" {
		return "", nil
	}
	return fmt.Sprintf("%s/title/%s/", defaultIMDBBaseURL, imdbID), nil
}

// search returns the id of the first search result, retrying once with the
// diacritics folded away. 0 means no match.
func (c *Client) search(ctx context.Context, info models.PlaybackInfo) (int, error) {
	logger := config.GetLogger()

	mediaType := MediaTypeFor(info.Type)
	query := info.Title
	if info.Type == models.ItemEpisode {
		query = info.ShowTitle
	}
	query = strings.TrimSpace(query)
	if mediaType == "" || query == "" {
		return 0, nil
	}

	memoKey := mediaType + "|" + query
	if id, ok := c.searches.Get(memoKey); ok {
		return id, nil
	}

	queries := []string{query}
	if folded := FoldTitle(query); folded != query {
		queries = append(queries, folded)
	}

	for _, q := range queries {
		var page struct {
			Results []struct {
				ID int `json:"id"`
			} `json:"results"`
		}
		params := url.Values{"query": {q}}
		if err := c.getJSON(ctx, "/search/"+mediaType, params, &page); err != nil {
			return 0, fmt.Errorf("search %s %q: %w", mediaType, q, err)
		}
		if len(page.Results) > 0 {
			id := page.Results[0].ID
			logger.Debug().Str("query", q).Str("mediaType", mediaType).Int("tmdbId", id).Msg("TMDB search matched")
			c.searches.Add(memoKey, id)
			return id, nil
		}
	}

	logger.Info().Str("query", query).Str("mediaType", mediaType).Msg("No TMDB match")
	c.searches.Add(memoKey, 0)
	return 0, nil
}

func (c *Client) externalIMDBID(ctx context.Context, tmdbID, mediaType string) (string, error) {
	var ids struct {
		IMDBID string `json:"imdb_id"`
	}
	err := c.getJSON(ctx, fmt.Sprintf("/%s/%s/external_ids", mediaType, url.PathEscape(tmdbID)), nil, &ids)
	if errors.Is(err, &apperrors.ErrNotFound{}) {
		return "", nil
	}
	return ids.IMDBID, err
}

// getJSON issues an authenticated GET on the TMDB API. 404 maps to ErrNotFound.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	bearer := isReadAccessToken(c.apiKey)
	if c.apiKey != "" && !bearer {
		params.Set("api_key", c.apiKey)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return apperrors.NewNotFoundError("tmdb resource", path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		_, _ = io.Copy(io.Discard, resp.Body)
		return &apperrors.HTTPStatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// isReadAccessToken reports whether key is a v4 read access token (a JWT) rather than a v3 API key.
func isReadAccessToken(key string) bool {
	return strings.HasPrefix(key, "eyJ") && strings.Count(key, ".") == 2
}
