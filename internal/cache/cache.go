package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ashok9315-cmyk/profolia.art/internal/storage"
	"github.com/ashok9315-cmyk/profolia.art/internal/types"
	"github.com/ashok9315-cmyk/profolia.art/internal/types/media"
)

// CacheService wraps storage with Redis caching. Portfolio pages read a
// profile's media list far more often than owners change it, so the list is
// the main thing worth caching.
type CacheService struct {
	storage storage.Storage
	redis   *redis.Client
}

// NewCacheService creates a new cache service
func NewCacheService(storage storage.Storage, redisClient *redis.Client) *CacheService {
	return &CacheService{
		storage: storage,
		redis:   redisClient,
	}
}

// Cache key patterns
const (
	ProfileKey      = "profile:%s"       // profile:profileID
	ProfileMediaKey = "media:profile:%s" // media:profile:profileID
)

// Cache durations
const (
	ProfileCacheDuration = 5 * time.Minute // Profiles rarely change
	MediaCacheDuration   = 2 * time.Minute // Media lists change on upload/reorder
)

// GetProfile returns the cached profile or fetches it from the database
func (c *CacheService) GetProfile(id string) (types.Profile, error) {
	ctx := context.Background()
	key := fmt.Sprintf(ProfileKey, id)

	// Try cache first
	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var profile types.Profile
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			return profile, nil
		}
	}

	// Cache miss - fetch from database
	profile, err := c.storage.GetProfile(id)
	if err != nil {
		return types.Profile{}, err
	}

	// Cache the result
	data, _ := json.Marshal(profile)
	c.redis.Set(ctx, key, data, ProfileCacheDuration)

	return profile, nil
}

// ListMediaByProfile returns the cached media list or fetches it from the
// database
func (c *CacheService) ListMediaByProfile(profileID string) ([]media.MediaAsset, error) {
	ctx := context.Background()
	key := fmt.Sprintf(ProfileMediaKey, profileID)

	// Try cache first
	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var assets []media.MediaAsset
		if err := json.Unmarshal([]byte(cached), &assets); err == nil {
			return assets, nil
		}
	}

	// Cache miss - fetch from database
	assets, err := c.storage.ListMediaByProfile(profileID)
	if err != nil {
		return nil, err
	}

	// Cache the result
	data, _ := json.Marshal(assets)
	c.redis.Set(ctx, key, data, MediaCacheDuration)

	return assets, nil
}

// InvalidateProfileMedia clears the cached media list after any write
func (c *CacheService) InvalidateProfileMedia(ctx context.Context, profileID string) {
	c.redis.Del(ctx, fmt.Sprintf(ProfileMediaKey, profileID))
}

// Methods that pass through to storage (implement storage.Storage interface)

func (c *CacheService) CreateProfile(username, profession string) (types.Profile, error) {
	return c.storage.CreateProfile(username, profession)
}

func (c *CacheService) CreateMediaAsset(asset *media.MediaAsset) (*media.MediaAsset, error) {
	created, err := c.storage.CreateMediaAsset(asset)
	if err != nil {
		return nil, err
	}

	c.InvalidateProfileMedia(context.Background(), created.ProfileID)
	return created, nil
}

func (c *CacheService) GetMediaAsset(id string) (*media.MediaAsset, error) {
	// Individual assets are fetched for ownership checks and deletes, where
	// a stale read would be worse than the extra query.
	return c.storage.GetMediaAsset(id)
}

func (c *CacheService) DeleteMediaAsset(id string) error {
	// Look the asset up first so the right profile's list gets invalidated.
	asset, err := c.storage.GetMediaAsset(id)
	if err != nil {
		return err
	}

	if err := c.storage.DeleteMediaAsset(id); err != nil {
		return err
	}

	c.InvalidateProfileMedia(context.Background(), asset.ProfileID)
	return nil
}

func (c *CacheService) UpdateDisplayOrder(profileID string, orderedIDs []string) error {
	if err := c.storage.UpdateDisplayOrder(profileID, orderedIDs); err != nil {
		return err
	}

	c.InvalidateProfileMedia(context.Background(), profileID)
	return nil
}

func (c *CacheService) NextDisplayOrder(profileID string) (int, error) {
	return c.storage.NextDisplayOrder(profileID)
}

func (c *CacheService) ObjectKeys() (map[string]struct{}, error) {
	return c.storage.ObjectKeys()
}
