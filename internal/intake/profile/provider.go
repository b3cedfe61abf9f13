package profile

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/munidigital/tramite-backend/internal/intake/domain"
	"github.com/munidigital/tramite-backend/internal/observability/metrics"
	"github.com/munidigital/tramite-backend/pkg/logger"
)

// Provider caches directory lookups and guarantees a usable profile for
// every requester. Unknown identities resolve to the citizen guest profile;
// transient directory failures do the same but are not cached.
type Provider struct {
	dir    Directory
	cache  *expirable.LRU[string, *domain.RequesterProfile]
	logger *logger.Logger
}

// NewProvider creates a provider with an expiring LRU cache in front of the
// directory.
func NewProvider(dir Directory, size int, ttl time.Duration, log *logger.Logger) *Provider {
	if size <= 0 {
		size = 512
	}
	return &Provider{
		dir:    dir,
		cache:  expirable.NewLRU[string, *domain.RequesterProfile](size, nil, ttl),
		logger: log.WithComponent("profile_provider"),
	}
}

// Resolve returns the profile for a requester key. Never returns nil.
func (p *Provider) Resolve(ctx context.Context, key string) *domain.RequesterProfile {
	if cached, ok := p.cache.Get(key); ok {
		metrics.ProfileCacheHitsTotal.Inc()
		return cached
	}
	metrics.ProfileCacheMissesTotal.Inc()

	found, err := p.dir.Lookup(ctx, key)
	switch {
	case err == nil:
		p.cache.Add(key, found)
		return found
	case errors.Is(err, ErrProfileNotFound):
		// unknown senders are citizens; cache the answer so repeated
		// messages skip the directory until the TTL expires
		guest := domain.GuestProfile(key)
		p.cache.Add(key, guest)
		p.logger.Debug().
			Str("requester_key", key).
			Msg("requester not in directory, using guest profile")
		return guest
	default:
		p.logger.Warn().
			Err(err).
			Str("requester_key", key).
			Msg("directory lookup failed, using guest profile")
		return domain.GuestProfile(key)
	}
}
