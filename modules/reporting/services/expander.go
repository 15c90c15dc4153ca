package services

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Expander turns one raw product record plus its resolved geography set into
// report rows, one per distinct geography.
type Expander struct {
	store RecordStore
	cache *PassCache
	log   *logrus.Entry
}

func NewExpander(store RecordStore, cache *PassCache, log *logrus.Entry) *Expander {
	return &Expander{store: store, cache: cache, log: log}
}

// Expand emits one row per distinct non-empty geography. When no non-empty
// geography exists, exactly one row with an empty geography is emitted. An
// empty entry alongside non-empty ones is dropped, never emitted as its own
// row. This mirrors the historical filtering rule and is kept on purpose.
func (e *Expander) Expand(ctx context.Context, raw ProductRecord, geographies []string) []ReportRow {
	base := e.baseRow(ctx, raw)

	names := make([]string, 0, len(geographies))
	seen := make(map[string]struct{}, len(geographies))
	for _, g := range geographies {
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		names = append(names, g)
	}

	if len(names) == 0 {
		base.Geography = ""
		return []ReportRow{base}
	}

	rows := make([]ReportRow, 0, len(names))
	for _, g := range names {
		row := base
		row.Geography = g
		rows = append(rows, row)
	}
	return rows
}

func (e *Expander) baseRow(ctx context.Context, raw ProductRecord) ReportRow {
	owner := raw.OwnerID
	return ReportRow{
		RawID:           raw.ID,
		Prelead:         e.cache.ResolveName(ctx, KindPrelead, raw.PreleadID, FieldName),
		Lead:            e.cache.ResolveName(ctx, KindLead, raw.LeadID, FieldName),
		LOB:             e.resolveLabel(ctx, AttrLineOfBusiness, raw.LOBCode),
		Opportunity:     e.cache.ResolveName(ctx, KindOpportunity, raw.OpportunityID, FieldName),
		Project:         e.cache.ResolveName(ctx, KindProject, raw.ProjectID, FieldName),
		CreatedBy:       e.cache.ResolveName(ctx, KindUser, &owner, FieldName),
		CreatedDate:     raw.CreatedAt,
		Product:         e.cache.ResolveName(ctx, KindProduct, raw.ProductID, FieldName),
		PotentialAmount: raw.Amount.Round(0).String(),
		Contractor:      e.cache.ResolveName(ctx, KindContractor, raw.ContractorID, FieldName),
		PONumber:        e.cache.ResolveName(ctx, KindPurchaseOrder, raw.PurchaseOrderID, FieldNumber),
		SONumber:        e.cache.ResolveName(ctx, KindSalesOrder, raw.SalesOrderID, FieldNumber),
		Status:          e.resolveLabel(ctx, AttrStatus, raw.StatusCode),
	}
}

// resolveLabel maps a picklist code to its display label. On a failed lookup
// the raw code is kept so the row still carries usable information.
func (e *Expander) resolveLabel(ctx context.Context, attribute, code string) string {
	label, err := e.store.ResolveOptionLabel(ctx, KindProduct, attribute, code)
	if err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"attribute": attribute,
			"code":      code,
		}).Warn("option label resolution failed, keeping raw code")
		return code
	}
	return label
}
