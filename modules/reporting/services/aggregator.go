package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Aggregator fetches and deduplicates the shared-product rows visible to one
// user, optionally unioned with all of that user's direct subordinates.
type Aggregator struct {
	store    RecordStore
	cache    *PassCache
	expander *Expander
	index    *HierarchyIndex
	log      *logrus.Entry
}

func NewAggregator(store RecordStore, cache *PassCache, index *HierarchyIndex, log *logrus.Entry) *Aggregator {
	return &Aggregator{
		store:    store,
		cache:    cache,
		expander: NewExpander(store, cache, log),
		index:    index,
		log:      log,
	}
}

// ProductsFor returns the deduplicated row set for one user. Fetch failures
// degrade to an empty set; any other error abandons the node.
func (a *Aggregator) ProductsFor(ctx context.Context, userID uuid.UUID, lob string) (*RowSet, error) {
	set := NewRowSet()

	ids, err := a.store.FetchSharedProductIDs(ctx, userID)
	if err != nil {
		if IsFetchError(err) {
			a.log.WithError(err).WithField("user_id", userID).Warn("shared product lookup failed, treating as none")
			return set, nil
		}
		return nil, err
	}
	if len(ids) == 0 {
		return set, nil
	}

	records, err := a.store.FetchProducts(ctx, ids, lob)
	if err != nil {
		if IsFetchError(err) {
			a.log.WithError(err).WithField("user_id", userID).Warn("product fetch failed, treating as none")
			return set, nil
		}
		return nil, err
	}

	for _, raw := range records {
		geographies := a.geographySet(ctx, raw)
		for _, row := range a.expander.Expand(ctx, raw, geographies) {
			set.Add(row)
		}
	}
	return set, nil
}

// ProductsForUserAndSubordinates unions the user's rows with those of every
// direct subordinate not already processed, deduplicated by row identifier.
func (a *Aggregator) ProductsForUserAndSubordinates(ctx context.Context, userID uuid.UUID, lob string, processed *ProcessedSet) (*RowSet, error) {
	set, err := a.ProductsFor(ctx, userID, lob)
	if err != nil {
		return nil, err
	}
	for _, sub := range a.index.SubordinatesOf(userID) {
		if processed.Has(sub.ID) {
			continue
		}
		subSet, err := a.ProductsFor(ctx, sub.ID, sub.LOB)
		if err != nil {
			return nil, err
		}
		set.Merge(subSet)
	}
	return set, nil
}

// geographySet is the union, deduplicated by display name, of the geographies
// reachable through the record's lead, prelead and opportunity references.
func (a *Aggregator) geographySet(ctx context.Context, raw ProductRecord) []string {
	type source struct {
		kind EntityKind
		ref  *uuid.UUID
	}
	sources := []source{
		{KindLead, raw.LeadID},
		{KindPrelead, raw.PreleadID},
		{KindOpportunity, raw.OpportunityID},
	}

	out := make([]string, 0, 4)
	seen := make(map[string]struct{}, 4)
	for _, src := range sources {
		if src.ref == nil || *src.ref == uuid.Nil {
			continue
		}
		for _, name := range a.cache.ResolveGeographies(ctx, src.kind, *src.ref) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
