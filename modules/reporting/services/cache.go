package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// geographySentinel marks "no geography resolved" so a record still yields
// exactly one row downstream.
var geographySentinel = []string{""}

// PassCache memoizes name and geography resolution for one hierarchy pass
// (seed user + subordinates + ancestor chain). The orchestrator resets it at
// every seed-user boundary; nothing survives across passes.
type PassCache struct {
	store       RecordStore
	log         *logrus.Entry
	names       map[uuid.UUID]string
	geographies map[uuid.UUID][]string
}

func NewPassCache(store RecordStore, log *logrus.Entry) *PassCache {
	c := &PassCache{store: store, log: log}
	c.Reset()
	return c
}

func (c *PassCache) Reset() {
	c.names = make(map[uuid.UUID]string)
	c.geographies = make(map[uuid.UUID][]string)
}

// ResolveName returns the named field of the referenced record, or "" for an
// absent reference or a failed fetch. Failed fetches are cached too so a bad
// reference costs at most one round trip per pass.
func (c *PassCache) ResolveName(ctx context.Context, kind EntityKind, ref *uuid.UUID, field string) string {
	if ref == nil || *ref == uuid.Nil {
		return ""
	}
	if v, ok := c.names[*ref]; ok {
		return v
	}
	v, err := c.store.ResolveEntityField(ctx, kind, *ref, field)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"kind":  kind,
			"id":    *ref,
			"field": field,
		}).Warn("field resolution failed, using empty value")
		v = ""
	}
	c.names[*ref] = v
	return v
}

// ResolveGeographies returns the distinct region names mapped to the entity,
// in mapping order. The result is never empty: when nothing resolves (or the
// fetch fails) the single-empty-string sentinel is returned and cached.
func (c *PassCache) ResolveGeographies(ctx context.Context, kind EntityKind, entityID uuid.UUID) []string {
	if entityID == uuid.Nil {
		return geographySentinel
	}
	if v, ok := c.geographies[entityID]; ok {
		return v
	}
	regionIDs, err := c.store.FetchGeographyMappings(ctx, kind, entityID)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"kind": kind,
			"id":   entityID,
		}).Warn("geography mapping fetch failed, using empty geography")
		c.geographies[entityID] = geographySentinel
		return geographySentinel
	}

	names := make([]string, 0, len(regionIDs))
	seen := make(map[string]struct{}, len(regionIDs))
	for _, rid := range regionIDs {
		name := c.ResolveName(ctx, KindRegion, &rid, FieldName)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		names = geographySentinel
	}
	c.geographies[entityID] = names
	return names
}
