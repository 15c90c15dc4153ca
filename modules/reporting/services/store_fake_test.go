package services

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

type fetchCounts struct {
	users       int
	sharedIDs   int
	products    int
	geoMappings int
	entityField int
	optionLabel int
}

// fakeStore is an in-memory RecordStore with per-operation failure switches
// and fetch counters for cache-transparency assertions.
type fakeStore struct {
	users        []User
	usersErr     error
	shares       map[uuid.UUID][]uuid.UUID
	sharesErr    map[uuid.UUID]error
	products     map[uuid.UUID]ProductRecord
	geoMappings  map[uuid.UUID][]uuid.UUID
	geoErr       map[uuid.UUID]error
	entityFields map[uuid.UUID]string
	fieldErr     map[uuid.UUID]error
	optionLabels map[string]string

	counts fetchCounts
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shares:       make(map[uuid.UUID][]uuid.UUID),
		sharesErr:    make(map[uuid.UUID]error),
		products:     make(map[uuid.UUID]ProductRecord),
		geoMappings:  make(map[uuid.UUID][]uuid.UUID),
		geoErr:       make(map[uuid.UUID]error),
		entityFields: make(map[uuid.UUID]string),
		fieldErr:     make(map[uuid.UUID]error),
		optionLabels: make(map[string]string),
	}
}

func (s *fakeStore) FetchUsers(ctx context.Context, filter UserFilter) ([]User, error) {
	s.counts.users++
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	return s.users, nil
}

func (s *fakeStore) FetchSharedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.counts.sharedIDs++
	if err := s.sharesErr[userID]; err != nil {
		return nil, err
	}
	return s.shares[userID], nil
}

func (s *fakeStore) FetchProducts(ctx context.Context, ids []uuid.UUID, lob string) ([]ProductRecord, error) {
	s.counts.products++
	out := make([]ProductRecord, 0, len(ids))
	for _, id := range ids {
		rec, ok := s.products[id]
		if !ok || rec.LOBCode != lob {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *fakeStore) FetchGeographyMappings(ctx context.Context, kind EntityKind, entityID uuid.UUID) ([]uuid.UUID, error) {
	s.counts.geoMappings++
	if err := s.geoErr[entityID]; err != nil {
		return nil, err
	}
	return s.geoMappings[entityID], nil
}

func (s *fakeStore) ResolveEntityField(ctx context.Context, kind EntityKind, id uuid.UUID, field string) (string, error) {
	s.counts.entityField++
	if err := s.fieldErr[id]; err != nil {
		return "", err
	}
	return s.entityFields[id], nil
}

func (s *fakeStore) ResolveOptionLabel(ctx context.Context, kind EntityKind, attribute, code string) (string, error) {
	s.counts.optionLabel++
	if code == "" {
		return "Open", nil
	}
	if label, ok := s.optionLabels[attribute+"|"+code]; ok {
		return label, nil
	}
	return code, nil
}

type emittedReport struct {
	Name string
	Rows []ReportRow
}

// captureEmitter records emissions; names listed in fail cause Emit errors.
type captureEmitter struct {
	reports []emittedReport
	fail    map[string]error
}

func newCaptureEmitter() *captureEmitter {
	return &captureEmitter{fail: make(map[string]error)}
}

func (e *captureEmitter) Emit(ctx context.Context, reportName string, rows []ReportRow) error {
	if err := e.fail[reportName]; err != nil {
		return err
	}
	e.reports = append(e.reports, emittedReport{Name: reportName, Rows: rows})
	return nil
}

func (e *captureEmitter) byName(name string) (emittedReport, bool) {
	for _, r := range e.reports {
		if r.Name == name {
			return r, true
		}
	}
	return emittedReport{}, false
}
