package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hurstaa/landlab/pkg/io"
	"github.com/hurstaa/landlab/pkg/observability"
)

// Key types reported to the cache hooks.
const (
	KeyTypeFill = "fill"
	KeyTypePits = "pits"
)

// FillResult is a cached fill: the filled surface, the fill depth and the
// depressions of the input surface.
type FillResult struct {
	Field     string          `json:"field"`
	Slope     float64         `json:"slope"`
	Elevation []float64       `json:"elevation"`
	Depth     []float64       `json:"depth"`
	Lakes     []io.LakeReport `json:"lakes,omitempty"`
}

// PitsResult is a cached depression table.
type PitsResult struct {
	Pits  []int           `json:"pits"`
	Lakes []io.LakeReport `json:"lakes"`
}

// Load decodes the entry under key into v. A miss, or an entry that no
// longer decodes, reports false.
func Load(ctx context.Context, c Cache, keyType, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	if !ok || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true, nil
}

// Store encodes v and writes it under key.
func Store(ctx context.Context, c Cache, keyType, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
	return nil
}
