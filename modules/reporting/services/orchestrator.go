package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// Orchestrator walks from each seed user outward to subordinates and upward
// through the management chain, emitting one cumulative report per node.
type Orchestrator struct {
	store     RecordStore
	emitter   ReportEmitter
	filter    UserFilter
	seedRoles map[string]struct{}
	log       *logrus.Entry
}

type OrchestratorOptions struct {
	Filter    UserFilter
	SeedRoles []string
}

func NewOrchestrator(store RecordStore, emitter ReportEmitter, opts OrchestratorOptions, log *logrus.Entry) *Orchestrator {
	seeds := make(map[string]struct{}, len(opts.SeedRoles))
	for _, role := range opts.SeedRoles {
		seeds[role] = struct{}{}
	}
	return &Orchestrator{
		store:     store,
		emitter:   emitter,
		filter:    opts.Filter,
		seedRoles: seeds,
		log:       log,
	}
}

type RunSummary struct {
	UsersFetched   int `json:"users_fetched"`
	SeedsProcessed int `json:"seeds_processed"`
	NodesVisited   int `json:"nodes_visited"`
	ReportsEmitted int `json:"reports_emitted"`
	FailedUsers    int `json:"failed_users"`
}

// Run executes one full reporting pass over every seed user. A failure while
// processing one seed user is logged and the run continues with the next; only
// the initial user fetch is fatal.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, error) {
	var sum RunSummary

	users, err := o.store.FetchUsers(ctx, o.filter)
	if err != nil {
		return sum, errors.Wrap(err, "fetch users")
	}
	sum.UsersFetched = len(users)

	index := NewHierarchyIndex(users)
	cache := NewPassCache(o.store, o.log)
	agg := NewAggregator(o.store, cache, index, o.log)
	processed := NewProcessedSet()

	for _, u := range users {
		if _, ok := o.seedRoles[u.Role]; !ok {
			continue
		}
		if !processed.Mark(u.ID) {
			continue
		}
		sum.SeedsProcessed++

		emitted, visited, err := o.runPass(ctx, u, index, cache, agg, processed)
		sum.ReportsEmitted += emitted
		sum.NodesVisited += visited
		if err != nil {
			sum.FailedUsers++
			o.log.WithError(err).WithFields(logrus.Fields{
				"user_id":   u.ID,
				"user_name": u.Name,
			}).Error("seed user failed, continuing with next")
		}
	}
	return sum, nil
}

// runPass handles one seed user: collect self + subordinates, emit, then climb
// the management chain emitting the growing accumulated set at every manager.
func (o *Orchestrator) runPass(
	ctx context.Context,
	seed User,
	index *HierarchyIndex,
	cache *PassCache,
	agg *Aggregator,
	processed *ProcessedSet,
) (emitted, visited int, err error) {
	cache.Reset()
	visited = 1

	acc, err := agg.ProductsForUserAndSubordinates(ctx, seed.ID, seed.LOB, processed)
	if err != nil {
		return emitted, visited, err
	}
	if acc.Len() == 0 {
		// Nothing to report for this subtree; no emission, no climb.
		return emitted, visited, nil
	}
	if o.emit(ctx, seed, acc) {
		emitted++
	}

	current := seed
	for current.ManagerID != nil {
		mgr, ok := index.RecordOf(*current.ManagerID)
		if !ok {
			o.log.WithFields(logrus.Fields{
				"user_id":    current.ID,
				"manager_id": *current.ManagerID,
			}).Warn("manager missing from index, stopping climb")
			break
		}
		if !processed.Mark(mgr.ID) {
			break
		}
		visited++

		sub, err := agg.ProductsForUserAndSubordinates(ctx, mgr.ID, mgr.LOB, processed)
		if err != nil {
			return emitted, visited, err
		}
		acc.Merge(sub)
		if o.emit(ctx, mgr, acc) {
			emitted++
		}
		current = mgr
	}
	return emitted, visited, nil
}

func (o *Orchestrator) emit(ctx context.Context, node User, set *RowSet) bool {
	if err := o.emitter.Emit(ctx, node.Name, set.Rows()); err != nil {
		o.log.WithError(err).WithFields(logrus.Fields{
			"user_id":   node.ID,
			"user_name": node.Name,
			"rows":      set.Len(),
		}).Error("report emission failed")
		return false
	}
	return true
}
