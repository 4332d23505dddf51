package service

import (
	"context"
	"time"

	"github.com/kapu/member-directory-go/internal/constants"
	"github.com/kapu/member-directory-go/internal/domain"
	"github.com/kapu/member-directory-go/internal/source"
	"github.com/kapu/member-directory-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Cache is the slice of the cache service the directory needs. A nil Cache
// disables caching entirely.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Directory loads, maps, and merges the two weakly-joined collections: the
// primary profile list and the optional image library.
type Directory struct {
	src     source.RecordSource
	mapper  *Mapper
	cache   Cache
	siteURL string
	logger  *zap.Logger
}

func NewDirectory(src source.RecordSource, mapper *Mapper, cache Cache, siteURL string, logger *zap.Logger) *Directory {
	return &Directory{
		src:     src,
		mapper:  mapper,
		cache:   cache,
		siteURL: siteURL,
		logger:  logger,
	}
}

// Load reads both collections concurrently, joins them, and returns the
// merged profile set. A primary-source failure fails the whole load; a
// secondary-source failure degrades to primary-only photos.
func (d *Directory) Load(ctx context.Context, listID, imageListID string) ([]domain.Profile, error) {
	if listID == "" {
		return []domain.Profile{}, nil
	}

	var (
		profiles   []domain.Profile
		index      map[string]string
		primaryErr error
	)

	p := pool.New().WithMaxGoroutines(2)
	p.Go(func() {
		profiles, primaryErr = d.loadProfiles(ctx, listID)
	})
	p.Go(func() {
		index = d.loadImageIndex(ctx, imageListID)
	})
	p.Wait()

	if primaryErr != nil {
		return nil, primaryErr
	}

	merged := MergeProfiles(profiles, index)
	d.logger.Info("Directory loaded",
		zap.String("list_id", listID),
		zap.Int("profiles", len(merged)),
		zap.Int("image_keys", len(index)),
	)
	return merged, nil
}

// ListOptions enumerates selectable lists for the setup UI. It never fails:
// an upstream error degrades to the sentinel option so the rest of the UI
// keeps working.
func (d *Directory) ListOptions(ctx context.Context) []domain.ListOption {
	lists, err := d.cachedLists(ctx)
	if err != nil {
		d.logger.Error("Failed to enumerate lists", zap.Error(err))
		return []domain.ListOption{{Key: "", Text: "Failed to load lists"}}
	}

	options := make([]domain.ListOption, 0, len(lists))
	for _, l := range lists {
		options = append(options, domain.ListOption{Key: l.ID, Text: l.Title})
	}
	return options
}

func (d *Directory) loadProfiles(ctx context.Context, listID string) ([]domain.Profile, error) {
	rows, err := d.cachedRows(ctx, "directory:rows:"+listID, listID, ProfileFields,
		constants.CacheTTL.ProfilePage)
	if err != nil {
		return nil, errors.NewSourceError("failed to load profiles", "primary", statusOf(err), err)
	}
	return d.mapper.MapProfiles(rows), nil
}

// loadImageIndex is best-effort: any failure logs and yields an empty index,
// never an error.
func (d *Directory) loadImageIndex(ctx context.Context, imageListID string) map[string]string {
	if imageListID == "" {
		return nil
	}

	rows, err := d.cachedRows(ctx, "directory:imagerows:"+imageListID, imageListID, ImageFields,
		constants.CacheTTL.ImageIndex)
	if err != nil {
		d.logger.Warn("Image library read failed, proceeding without cross-referenced photos",
			zap.String("image_list_id", imageListID),
			zap.Error(err),
		)
		return nil
	}
	return BuildImageIndex(rows, d.siteURL)
}

// cachedRows reads one projected page, preferring the shared cache. Cache
// outages are logged and bypassed.
func (d *Directory) cachedRows(ctx context.Context, key, listID string, fields []string, ttl time.Duration) ([]map[string]any, error) {
	if d.cache != nil {
		var cached []map[string]any
		if hit, err := d.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := d.src.Items(ctx, listID, fields, constants.SourceConfig.MaxItems)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, rows, ttl); err != nil {
			d.logger.Warn("Failed to cache source rows", zap.String("key", key), zap.Error(err))
		}
	}
	return rows, nil
}

func (d *Directory) cachedLists(ctx context.Context) ([]domain.ListInfo, error) {
	const key = "directory:lists"

	if d.cache != nil {
		var cached []domain.ListInfo
		if hit, err := d.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	lists, err := d.src.Lists(ctx)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, lists, constants.CacheTTL.ListCatalog); err != nil {
			d.logger.Warn("Failed to cache list catalog", zap.Error(err))
		}
	}
	return lists, nil
}

func statusOf(err error) int {
	if srcErr, ok := err.(*errors.SourceError); ok {
		return srcErr.StatusCode
	}
	return 502
}
