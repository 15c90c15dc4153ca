package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testLOB = "100000000"

func addProduct(store *fakeStore, rec ProductRecord) ProductRecord {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.LOBCode == "" {
		rec.LOBCode = testLOB
	}
	if rec.OwnerID == uuid.Nil {
		rec.OwnerID = uuid.New()
	}
	if rec.Amount.IsZero() {
		rec.Amount = decimal.NewFromInt(10)
	}
	store.products[rec.ID] = rec
	return rec
}

func newTestAggregator(store *fakeStore, users []User) *Aggregator {
	return NewAggregator(store, NewPassCache(store, testLogger()), NewHierarchyIndex(users), testLogger())
}

func TestAggregator_ProductsFor_ExpandsAndDeduplicates(t *testing.T) {
	store := newFakeStore()
	user := User{ID: uuid.New(), LOB: testLOB}

	lead := uuid.New()
	north, south := uuid.New(), uuid.New()
	store.geoMappings[lead] = []uuid.UUID{north, south}
	store.entityFields[north] = "North"
	store.entityFields[south] = "South"

	p := addProduct(store, ProductRecord{LeadID: &lead})
	// The same record shared twice still yields each geography row once.
	store.shares[user.ID] = []uuid.UUID{p.ID, p.ID}

	set, err := newTestAggregator(store, []User{user}).ProductsFor(context.Background(), user.ID, user.LOB)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	require.True(t, set.Has(p.ID.String()+"|North"))
	require.True(t, set.Has(p.ID.String()+"|South"))
}

func TestAggregator_ProductsFor_NoSharesShortCircuits(t *testing.T) {
	store := newFakeStore()
	user := User{ID: uuid.New(), LOB: testLOB}

	set, err := newTestAggregator(store, []User{user}).ProductsFor(context.Background(), user.ID, user.LOB)
	require.NoError(t, err)
	require.Equal(t, 0, set.Len())
	require.Equal(t, 0, store.counts.products)
}

func TestAggregator_ProductsFor_FetchFailureDegradesToEmpty(t *testing.T) {
	store := newFakeStore()
	user := User{ID: uuid.New(), LOB: testLOB}
	store.sharesErr[user.ID] = NewFetchError("fetch shared product ids", errors.New("timeout"))

	set, err := newTestAggregator(store, []User{user}).ProductsFor(context.Background(), user.ID, user.LOB)
	require.NoError(t, err)
	require.Equal(t, 0, set.Len())
}

func TestAggregator_ProductsFor_UnexpectedErrorPropagates(t *testing.T) {
	store := newFakeStore()
	user := User{ID: uuid.New(), LOB: testLOB}
	store.sharesErr[user.ID] = errors.New("not a store error")

	_, err := newTestAggregator(store, []User{user}).ProductsFor(context.Background(), user.ID, user.LOB)
	require.Error(t, err)
}

func TestAggregator_Subordinates_UnionSkipsProcessed(t *testing.T) {
	store := newFakeStore()
	mgr := User{ID: uuid.New(), LOB: testLOB}
	s1 := User{ID: uuid.New(), LOB: testLOB, ManagerID: &mgr.ID}
	s2 := User{ID: uuid.New(), LOB: testLOB, ManagerID: &mgr.ID}

	p1 := addProduct(store, ProductRecord{})
	p2 := addProduct(store, ProductRecord{})
	store.shares[s1.ID] = []uuid.UUID{p1.ID}
	store.shares[s2.ID] = []uuid.UUID{p2.ID}

	agg := newTestAggregator(store, []User{mgr, s1, s2})
	processed := NewProcessedSet()
	processed.Mark(s2.ID)

	set, err := agg.ProductsForUserAndSubordinates(context.Background(), mgr.ID, mgr.LOB, processed)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.True(t, set.Has(p1.ID.String()+"|"))
}

func TestAggregator_GeographyUnionAcrossReferences(t *testing.T) {
	store := newFakeStore()
	user := User{ID: uuid.New(), LOB: testLOB}

	lead, opp := uuid.New(), uuid.New()
	north, south := uuid.New(), uuid.New()
	store.geoMappings[lead] = []uuid.UUID{north}
	store.geoMappings[opp] = []uuid.UUID{south, north}
	store.entityFields[north] = "North"
	store.entityFields[south] = "South"

	p := addProduct(store, ProductRecord{LeadID: &lead, OpportunityID: &opp})
	store.shares[user.ID] = []uuid.UUID{p.ID}

	set, err := newTestAggregator(store, []User{user}).ProductsFor(context.Background(), user.ID, user.LOB)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
}
