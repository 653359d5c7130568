// Package metadata resolves external identifiers, artwork and links for the item Kodi is playing.
package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/Belphemur/KodiPresence/internal/cache"
	"github.com/Belphemur/KodiPresence/internal/config"
	"github.com/Belphemur/KodiPresence/internal/models"
)

// Service performs the remote lookups. Empty results with a nil error mean "not found".
type Service interface {
	LookupTMDBID(ctx context.Context, info models.PlaybackInfo) (string, error)
	LookupIMDBID(ctx context.Context, info models.PlaybackInfo) (string, error)
	LookupMediaType(ctx context.Context, info models.PlaybackInfo) (string, error)
	ImageURL(ctx context.Context, tmdbID, mediaType string) (string, error)
	IMDBURL(ctx context.Context, imdbID string) (string, error)
}

// Cache groups, also used as metric labels and Redis key namespaces
const (
	GroupTMDBID    = "tmdb_id"
	GroupIMDBID    = "imdb_id"
	GroupMediaType = "media_type"
	GroupImageURL  = "image_url"
	GroupIMDBURL   = "imdb_url"
)

// Resolver memoises every Service lookup in its own cache table
type Resolver struct {
	service    Service
	tmdbIDs    *cache.Resolver
	imdbIDs    *cache.Resolver
	mediaTypes *cache.Resolver
	imageURLs  *cache.Resolver
	imdbURLs   *cache.Resolver
}

// NewResolver creates the five lookup tables with the named cache provider.
// base.Group is overwritten per table.
func NewResolver(service Service, provider string, base cache.ProviderConfig) (*Resolver, error) {
	groups := []string{GroupTMDBID, GroupIMDBID, GroupMediaType, GroupImageURL, GroupIMDBURL}
	resolvers := make([]*cache.Resolver, 0, len(groups))

	for _, group := range groups {
		cfg := base
		cfg.Group = group
		c, err := cache.New(provider, cfg)
		if err != nil {
			for _, r := range resolvers {
				_ = r.Close()
			}
			return nil, fmt.Errorf("create %s cache: %w", group, err)
		}
		resolvers = append(resolvers, cache.NewResolver(c))
	}

	return &Resolver{
		service:    service,
		tmdbIDs:    resolvers[0],
		imdbIDs:    resolvers[1],
		mediaTypes: resolvers[2],
		imageURLs:  resolvers[3],
		imdbURLs:   resolvers[4],
	}, nil
}

// Resolve returns what could be resolved for info. Lookup failures do not stop
// the other lookups; they are joined into the returned error alongside the
// partial result. Only movies and episodes are looked up.
func (r *Resolver) Resolve(ctx context.Context, info models.PlaybackInfo) (models.ResolvedMetadata, error) {
	var meta models.ResolvedMetadata
	if r.service == nil || (info.Type != models.ItemMovie && info.Type != models.ItemEpisode) {
		return meta, nil
	}

	logger := config.GetLogger()
	key := fmt.Sprintf("%s_%d", info.Type, info.ID)
	var errs []error

	var err error
	meta.TMDBID, err = r.tmdbIDs.GetOrResolve(key, func() (string, error) {
		return r.service.LookupTMDBID(ctx, info)
	})
	errs = append(errs, wrap(GroupTMDBID, err))

	meta.IMDBID, err = r.imdbIDs.GetOrResolve(key, func() (string, error) {
		return r.service.LookupIMDBID(ctx, info)
	})
	errs = append(errs, wrap(GroupIMDBID, err))

	meta.MediaType, err = r.mediaTypes.GetOrResolve(key, func() (string, error) {
		return r.service.LookupMediaType(ctx, info)
	})
	errs = append(errs, wrap(GroupMediaType, err))

	if meta.TMDBID != "" && meta.MediaType != "" {
		imageKey := fmt.Sprintf("%s_%s", meta.TMDBID, meta.MediaType)
		meta.ImageURL, err = r.imageURLs.GetOrResolve(imageKey, func() (string, error) {
			return r.service.ImageURL(ctx, meta.TMDBID, meta.MediaType)
		})
		errs = append(errs, wrap(GroupImageURL, err))
	}

	if meta.IMDBID != "" {
		meta.IMDBURL, err = r.imdbURLs.GetOrResolve(meta.IMDBID, func() (string, error) {
			return r.service.IMDBURL(ctx, meta.IMDBID)
		})
		errs = append(errs, wrap(GroupIMDBURL, err))
	}

	logger.Debug().
		Str("key", key).
		Str("tmdbId", meta.TMDBID).
		Str("imdbId", meta.IMDBID).
		Str("mediaType", meta.MediaType).
		Str("imageUrl", meta.ImageURL).
		Msg("Resolved metadata")

	return meta, errors.Join(errs...)
}

// Close releases every cache table.
func (r *Resolver) Close() error {
	return errors.Join(
		r.tmdbIDs.Close(),
		r.imdbIDs.Close(),
		r.mediaTypes.Close(),
		r.imageURLs.Close(),
		r.imdbURLs.Close(),
	)
}

func wrap(group string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("resolve %s: %w", group, err)
}
