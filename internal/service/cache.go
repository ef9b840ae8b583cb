package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abygeorge8848/VolunteeringPortal/internal/model"
	"github.com/abygeorge8848/VolunteeringPortal/pkg/redis"
)

// cacheStore subset of the redis client used by read caches
type cacheStore interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// newCacheStore avoids wrapping a nil *redis.Client in a non-nil interface
func newCacheStore(rdb *redis.Client) cacheStore {
	if rdb == nil {
		return nil
	}
	return rdb
}

// ── credentials ──

const credentialKeyPrefix = "cred:"

// credential what login needs to verify a password and describe the account
type credential struct {
	ID            int64     `json:"id"`
	Role          string    `json:"role"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Username      string    `json:"username,omitempty"`
	VolunteerCode string    `json:"volunteer_code,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// credentialCache caches credential records by login name. Every write to a
// password or account must call invalidate for the affected login.
type credentialCache struct {
	store  cacheStore
	ttl    time.Duration
	logger *zap.Logger
}

func newCredentialCache(store cacheStore, ttl time.Duration, logger *zap.Logger) *credentialCache {
	return &credentialCache{store: store, ttl: ttl, logger: logger}
}

func credentialKey(role, login string) string {
	return credentialKeyPrefix + role + ":" + login
}

func (c *credentialCache) get(ctx context.Context, role, login string) (*credential, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	var cred credential
	if err := c.store.GetJSON(ctx, credentialKey(role, login), &cred); err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			c.logger.Warn("credential cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return &cred, true
}

func (c *credentialCache) put(ctx context.Context, login string, cred *credential) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.SetJSON(ctx, credentialKey(cred.Role, login), cred, c.ttl); err != nil {
		c.logger.Warn("credential cache write failed", zap.Error(err))
	}
}

func (c *credentialCache) invalidate(ctx context.Context, role string, logins ...string) {
	if c == nil || c.store == nil || len(logins) == 0 {
		return
	}
	keys := make([]string, 0, len(logins))
	for _, l := range logins {
		keys = append(keys, credentialKey(role, l))
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		c.logger.Warn("credential cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// ── project list ──

const projectListKey = "projects:all"

// projectCache caches the full project list; writers call invalidate
type projectCache struct {
	store  cacheStore
	ttl    time.Duration
	logger *zap.Logger
}

func newProjectCache(store cacheStore, ttl time.Duration, logger *zap.Logger) *projectCache {
	return &projectCache{store: store, ttl: ttl, logger: logger}
}

func (c *projectCache) get(ctx context.Context) ([]model.Project, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	var projects []model.Project
	if err := c.store.GetJSON(ctx, projectListKey, &projects); err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			c.logger.Warn("project cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return projects, true
}

func (c *projectCache) put(ctx context.Context, projects []model.Project) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.SetJSON(ctx, projectListKey, projects, c.ttl); err != nil {
		c.logger.Warn("project cache write failed", zap.Error(err))
	}
}

func (c *projectCache) invalidate(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, projectListKey); err != nil {
		c.logger.Warn("project cache invalidation failed", zap.Error(err))
	}
}
