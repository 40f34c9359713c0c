package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/user"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const profileTTL = 15 * time.Minute

// ProfileCache is a redis read-through cache in front of the users
// collection. Profile projections change rarely, so a short TTL keeps the
// review and listing enrichment paths off the primary store.
type ProfileCache struct {
	client *redis.Client
	repo   user.ProfileRepository
	logger *logger.Logger
}

func NewProfileCache(addr string, repo user.ProfileRepository, log *logger.Logger) (*ProfileCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &ProfileCache{
		client: client,
		repo:   repo,
		logger: log.Named("ProfileCache"),
	}, nil
}

func profileKey(userID string) string {
	return "user_profile:" + userID
}

// GetProfile serves from redis when possible and falls back to the
// underlying repository. Cache failures degrade to the repository; they are
// never surfaced to the caller.
func (c *ProfileCache) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err == nil {
		var profile user.Profile
		if err := json.Unmarshal(data, &profile); err == nil {
			return &profile, nil
		}
		c.logger.Warn("Corrupt cached profile, refetching", zap.String("user_id", userID))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Profile cache read failed, falling back to store", zap.Error(err), zap.String("user_id", userID))
	}

	profile, err := c.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, profile)
	return profile, nil
}

// GetProfiles resolves each ID through the cache and batches the misses
// into a single repository call.
func (c *ProfileCache) GetProfiles(ctx context.Context, userIDs []string) (map[string]*user.Profile, error) {
	profiles := make(map[string]*user.Profile, len(userIDs))
	var misses []string

	for _, id := range userIDs {
		data, err := c.client.Get(ctx, profileKey(id)).Bytes()
		if err != nil {
			misses = append(misses, id)
			continue
		}
		var profile user.Profile
		if err := json.Unmarshal(data, &profile); err != nil {
			misses = append(misses, id)
			continue
		}
		profiles[id] = &profile
	}

	if len(misses) > 0 {
		fetched, err := c.repo.GetProfiles(ctx, misses)
		if err != nil {
			return nil, err
		}
		for id, profile := range fetched {
			profiles[id] = profile
			c.set(ctx, profile)
		}
	}
	return profiles, nil
}

func (c *ProfileCache) set(ctx context.Context, profile *user.Profile) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKey(profile.ID), data, profileTTL).Err(); err != nil {
		c.logger.Warn("Profile cache write failed", zap.Error(err), zap.String("user_id", profile.ID))
	}
}

// Close releases the redis connection.
func (c *ProfileCache) Close() error {
	return c.client.Close()
}
