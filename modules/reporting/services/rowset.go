package services

import (
	"time"

	"github.com/google/uuid"
)

// ReportRow is one expanded report line. Identity is (raw record, geography);
// deduplication uses ID() equality only, never attribute equality.
type ReportRow struct {
	RawID     uuid.UUID
	Geography string

	Prelead         string
	Lead            string
	LOB             string
	Opportunity     string
	Project         string
	CreatedBy       string
	CreatedDate     time.Time
	Product         string
	PotentialAmount string
	Contractor      string
	PONumber        string
	SONumber        string
	Status          string
}

func (r ReportRow) ID() string {
	return r.RawID.String() + "|" + r.Geography
}

// RowSet deduplicates rows by ID while preserving first-insertion order.
// The first row added for an ID wins; later duplicates are dropped.
type RowSet struct {
	order []string
	rows  map[string]ReportRow
}

func NewRowSet() *RowSet {
	return &RowSet{rows: make(map[string]ReportRow)}
}

func (s *RowSet) Add(row ReportRow) {
	id := row.ID()
	if _, ok := s.rows[id]; ok {
		return
	}
	s.rows[id] = row
	s.order = append(s.order, id)
}

func (s *RowSet) Merge(other *RowSet) {
	if other == nil {
		return
	}
	for _, id := range other.order {
		s.Add(other.rows[id])
	}
}

func (s *RowSet) Has(id string) bool {
	_, ok := s.rows[id]
	return ok
}

func (s *RowSet) Len() int { return len(s.order) }

func (s *RowSet) Rows() []ReportRow {
	out := make([]ReportRow, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}

// ProcessedSet tracks users already fully handled in the current run. It only
// grows; a processed manager halts any further upward climb through it.
type ProcessedSet struct {
	members map[uuid.UUID]struct{}
}

func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{members: make(map[uuid.UUID]struct{})}
}

// Mark inserts id and reports whether it was new. Check and insert are a
// single step so a node can never be double-processed.
func (s *ProcessedSet) Mark(id uuid.UUID) bool {
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = struct{}{}
	return true
}

func (s *ProcessedSet) Has(id uuid.UUID) bool {
	_, ok := s.members[id]
	return ok
}

func (s *ProcessedSet) Len() int { return len(s.members) }
