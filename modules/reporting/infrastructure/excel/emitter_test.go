package excel

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/codecrafter2018/Report-Generator/modules/reporting/services"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

func TestRender_HeaderAndRowLayout(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	rows := []services.ReportRow{
		{
			RawID:           uuid.New(),
			Geography:       "North",
			Prelead:         "Pre Co",
			Lead:            "Lead Co",
			LOB:             "Hardware",
			Opportunity:     "Big Deal",
			Project:         "Rollout",
			CreatedBy:       "Jordan Seller",
			CreatedDate:     created,
			Product:         "Widget",
			PotentialAmount: "124",
			Contractor:      "BuildIt",
			PONumber:        "PO-42",
			SONumber:        "SO-7",
			Status:          "Hot",
		},
		{RawID: uuid.New(), Geography: "", Product: "Gadget", CreatedDate: created},
	}

	f, err := Render(rows, now)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, ReportColumns, got[0])

	first := got[1]
	require.Equal(t, "1", first[0])
	require.Equal(t, "Pre Co", first[1])
	require.Equal(t, "Lead Co", first[2])
	require.Equal(t, "Hardware", first[3])
	require.Equal(t, "2026-08-20", first[7])
	require.Equal(t, "Widget", first[8])
	require.Equal(t, "124", first[9])
	require.Equal(t, "North", first[13])
	require.Equal(t, "10", first[14])
	require.Equal(t, "Hot", first[15])

	second := got[2]
	require.Equal(t, "2", second[0])
	require.Equal(t, "Gadget", second[8])
}

func TestRender_EmptyRowSetStillHasHeader(t *testing.T) {
	f, err := Render(nil, time.Now().UTC())
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	got, err := f.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, ReportColumns, got[0])
}

func TestAgeDays_NeverNegative(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	require.Equal(t, 0, ageDays(now, now.Add(48*time.Hour)))
	require.Equal(t, 3, ageDays(now, now.Add(-72*time.Hour)))
}

func TestEmitter_Emit_DeliversAndCleansTemp(t *testing.T) {
	dest := t.TempDir()
	tmp := t.TempDir()
	emitter := NewEmitter(NewDirDeliverer(), dest, tmp, testLogger())

	err := emitter.Emit(context.Background(), "Jordan Seller", []services.ReportRow{
		{RawID: uuid.New(), Geography: "North", CreatedDate: time.Now().UTC()},
	})
	require.NoError(t, err)

	delivered, err := filepath.Glob(filepath.Join(dest, "*.xlsx"))
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	require.Contains(t, filepath.Base(delivered[0]), "Jordan_Seller")

	leftovers, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Empty(t, leftovers)
}

func TestSanitizeName(t *testing.T) {
	require.Equal(t, "Jordan_Seller", sanitizeName("Jordan Seller"))
	require.Equal(t, "a-b", sanitizeName("a/b"))
	require.Equal(t, "report", sanitizeName("  "))
}
