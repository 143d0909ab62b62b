package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	backendURLCacheKey = "arcade:config:backend_url"

	// backendURLCacheTTL bounds how stale a cached backend URL may get.
	// Matches the catalog revalidation window.
	backendURLCacheTTL = time.Minute
)

// ConfigStore persists the singleton configuration document.
type ConfigStore interface {
	GetBackendURL(ctx context.Context) (string, error)
	SetBackendURL(ctx context.Context, url string) error
}

// Notifier fans a refresh signal out to connected clients.
type Notifier interface {
	Notify(scope string)
}

// ConfigService is the single read/write accessor for the file backend base
// URL. Reads go through a short-lived Redis cache; writes invalidate it and
// signal dependent views to refresh, so the new value is observed on the
// next read.
type ConfigService struct {
	store      ConfigStore
	redis      *redis.Client
	hub        Notifier
	defaultURL string
}

// NewConfigService builds the accessor. rdb and hub may be nil (tests, or
// running without Redis); defaultURL seeds Get until an admin saves a value.
func NewConfigService(store ConfigStore, rdb *redis.Client, hub Notifier, defaultURL string) *ConfigService {
	return &ConfigService{store: store, redis: rdb, hub: hub, defaultURL: defaultURL}
}

// BackendURL returns the effective backend base URL, or an empty string if
// none was ever configured.
func (s *ConfigService) BackendURL(ctx context.Context) (string, error) {
	if s.redis != nil {
		v, err := s.redis.Get(ctx, backendURLCacheKey).Result()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, redis.Nil) {
			slog.Warn("backend url cache read failed", "error", err)
		}
	}

	u, err := s.store.GetBackendURL(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if u == "" {
		u = s.defaultURL
	}

	if s.redis != nil && u != "" {
		if err := s.redis.Set(ctx, backendURLCacheKey, u, backendURLCacheTTL).Err(); err != nil {
			slog.Warn("backend url cache write failed", "error", err)
		}
	}
	return u, nil
}

// SetBackendURL validates and persists a new backend base URL, then
// invalidates the cache and signals every dependent view to refresh.
func (s *ConfigService) SetBackendURL(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q is not an absolute http(s) url", ErrInvalidURL, raw)
	}

	if err := s.store.SetBackendURL(ctx, u.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, backendURLCacheKey).Err(); err != nil {
			slog.Warn("backend url cache invalidation failed", "error", err)
		}
	}
	if s.hub != nil {
		s.hub.Notify(ScopeConfig)
	}
	return nil
}
