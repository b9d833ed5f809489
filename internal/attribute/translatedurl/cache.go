// Copyright (c) 2025-2026 The MetaModels team
// SPDX-License-Identifier: GPL-3.0-or-later

package translatedurl

import (
	"context"
	"encoding/json"
	"fmt"
)

func (a *Attribute) cached() bool {
	return a.cache != nil && !a.inTx
}

func (a *Attribute) cacheKey(language string, itemID int64) string {
	return fmt.Sprintf("%s:%d:%s:%d", TypeName, a.ID(), language, itemID)
}

// cachedValues copies cached values of ids into dst and returns the ids
// that were not cached. A failing cache reports every id as missing.
func (a *Attribute) cachedValues(ctx context.Context, ids []int64, language string, dst map[int64]Value) []int64 {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = a.cacheKey(language, id)
	}

	found, err := a.cache.GetMany(ctx, keys)
	if err != nil {
		a.logger.Warn("value cache read failed", "attribute", a.ID(), "error", err)
		return ids
	}

	var missing []int64
	for i, id := range ids {
		data, ok := found[keys[i]]
		if !ok {
			missing = append(missing, id)
			continue
		}
		var v Value
		if err := json.Unmarshal(data, &v); err != nil {
			a.logger.Warn("discarding malformed cached value", "attribute", a.ID(), "item", id, "error", err)
			missing = append(missing, id)
			continue
		}
		dst[id] = v
	}
	return missing
}

func (a *Attribute) storeCachedValues(ctx context.Context, language string, values map[int64]Value) {
	if len(values) == 0 {
		return
	}
	entries := make(map[string][]byte, len(values))
	for id, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		entries[a.cacheKey(language, id)] = data
	}
	if err := a.cache.SetMany(ctx, entries, a.cacheTTL); err != nil {
		a.logger.Warn("value cache write failed", "attribute", a.ID(), "error", err)
	}
}

// Invalidate drops the cached values of ids in language. Writes through a
// transaction-bound copy leave the cache alone, so callers invalidate after
// the commit.
func (a *Attribute) Invalidate(ctx context.Context, ids []int64, language string) {
	if !a.cached() || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = a.cacheKey(language, id)
	}
	if err := a.cache.Delete(ctx, keys...); err != nil {
		a.logger.Warn("value cache invalidation failed", "attribute", a.ID(), "items", len(ids), "error", err)
	}
}
