package providers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenoxtractor/ontology-registry/pkg/types"
)

// MetadataCache is the slice of the cache API the decorator needs. The
// redis-backed common.Cache satisfies it; tests use an in-memory fake.
type MetadataCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// MetadataProvider mirrors the registry's consumer-side contract so the
// decorator can wrap any implementation without importing it.
type MetadataProvider interface {
	ProvideMetadata(ctx context.Context, ontologyID string) (*types.OntologyMetadata, error)
}

// CachedMetadataProvider memoizes successful metadata lookups with a TTL.
// Cache failures are logged and fall through to the inner provider, so a
// broken cache degrades latency, never correctness.
type CachedMetadataProvider struct {
	inner MetadataProvider
	cache MetadataCache
	ttl   time.Duration
}

// NewCachedMetadataProvider wraps inner with TTL-bounded memoization.
func NewCachedMetadataProvider(inner MetadataProvider, cache MetadataCache, ttl time.Duration) *CachedMetadataProvider {
	return &CachedMetadataProvider{inner: inner, cache: cache, ttl: ttl}
}

func metadataCacheKey(ontologyID string) string {
	return "ontology:metadata:" + ontologyID
}

// ProvideMetadata returns the cached metadata when present, otherwise
// resolves through the inner provider and stores the result.
func (p *CachedMetadataProvider) ProvideMetadata(ctx context.Context, ontologyID string) (*types.OntologyMetadata, error) {
	key := metadataCacheKey(ontologyID)

	var cached types.OntologyMetadata
	if err := p.cache.Get(ctx, key, &cached); err == nil {
		log.Debug().Str("ontology_id", ontologyID).Msg("metadata cache hit")
		return &cached, nil
	}

	metadata, err := p.inner.ProvideMetadata(ctx, ontologyID)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, metadata, p.ttl); err != nil {
		log.Warn().Err(err).Str("ontology_id", ontologyID).Msg("failed to cache metadata")
	}

	return metadata, nil
}
