package excel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/codecrafter2018/Report-Generator/modules/reporting/services"
)

const sheetName = "Products"

// ReportColumns is the fixed column set of every emitted report artifact.
var ReportColumns = []string{
	"S.No",
	"Prelead",
	"Lead",
	"LOB",
	"Opportunity",
	"Project",
	"Created By",
	"Created Date",
	"Product",
	"Potential Amount",
	"Contractor",
	"PO Number",
	"SO Number",
	"Geography",
	"Age (Days)",
	"Status",
}

// Deliverer hands a finished artifact to its destination. Delivery is a
// collaborator concern; the emitter only renders and cleans up.
type Deliverer interface {
	Deliver(ctx context.Context, artifactPath, destinationID string) error
}

// Emitter renders row sets to XLSX and forwards them to the deliverer.
// It implements services.ReportEmitter.
type Emitter struct {
	deliverer     Deliverer
	destinationID string
	tempDir       string
	log           *logrus.Entry
	now           func() time.Time
}

func NewEmitter(deliverer Deliverer, destinationID, tempDir string, log *logrus.Entry) *Emitter {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Emitter{
		deliverer:     deliverer,
		destinationID: destinationID,
		tempDir:       tempDir,
		log:           log,
		now:           time.Now,
	}
}

func (e *Emitter) Emit(ctx context.Context, reportName string, rows []services.ReportRow) error {
	f, err := Render(rows, e.now().UTC())
	if err != nil {
		return errors.Wrap(err, "render report")
	}
	defer func() { _ = f.Close() }()

	fileName := artifactFileName(reportName, e.now().UTC())
	path := filepath.Join(e.tempDir, fileName)
	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "save report artifact")
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.log.WithError(err).WithField("path", path).Debug("temp artifact cleanup failed")
		}
	}()

	if err := e.deliverer.Deliver(ctx, path, e.destinationID); err != nil {
		return errors.Wrap(err, "deliver report artifact")
	}
	return nil
}

// Render produces the tabular artifact: the fixed header row plus one row per
// report row in input order. Age is whole days between now and creation.
func Render(rows []services.ReportRow, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheetName, "A1", &ReportColumns); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{
			i + 1,
			row.Prelead,
			row.Lead,
			row.LOB,
			row.Opportunity,
			row.Project,
			row.CreatedBy,
			row.CreatedDate.Format("2006-01-02"),
			row.Product,
			row.PotentialAmount,
			row.Contractor,
			row.PONumber,
			row.SONumber,
			row.Geography,
			ageDays(now, row.CreatedDate),
			row.Status,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func ageDays(now, created time.Time) int {
	days := int(now.Sub(created).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func artifactFileName(reportName string, now time.Time) string {
	return sanitizeName(reportName) + "_" + now.Format("20060102") + ".xlsx"
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "report"
	}
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
	)
	return replacer.Replace(name)
}
