package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/codecrafter2018/Report-Generator/modules/reporting/services"
	"github.com/codecrafter2018/Report-Generator/pkg/composables"
)

// RecordStoreRepository implements services.RecordStore over the CRM schema.
// The core never writes through it; every method is a read.
type RecordStoreRepository struct{}

func NewRecordStore() services.RecordStore {
	return &RecordStoreRepository{}
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgUUIDArray(ids []uuid.UUID) pgtype.FlatArray[uuid.UUID] {
	return pgtype.FlatArray[uuid.UUID](ids)
}

func asUUIDPtr(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

var kindTables = map[services.EntityKind]string{
	services.KindUser:          "crm_users",
	services.KindLead:          "crm_leads",
	services.KindPrelead:       "crm_preleads",
	services.KindOpportunity:   "crm_opportunities",
	services.KindProduct:       "crm_products",
	services.KindProject:       "crm_projects",
	services.KindContractor:    "crm_contractors",
	services.KindPurchaseOrder: "crm_purchase_orders",
	services.KindSalesOrder:    "crm_sales_orders",
	services.KindRegion:        "crm_regions",
}

var fieldColumns = map[string]string{
	services.FieldName:   "name",
	services.FieldNumber: "number",
}

func (r *RecordStoreRepository) FetchUsers(ctx context.Context, filter services.UserFilter) ([]services.User, error) {
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return nil, err
	}

	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if filter.Segment != "" {
		args = append(args, filter.Segment)
		conditions = append(conditions, fmt.Sprintf("segment = $%d", len(args)))
	}
	if len(filter.LOBs) > 0 {
		args = append(args, filter.LOBs)
		conditions = append(conditions, fmt.Sprintf("line_of_business = ANY($%d)", len(args)))
	}
	if len(filter.Roles) > 0 {
		args = append(args, filter.Roles)
		conditions = append(conditions, fmt.Sprintf("role = ANY($%d)", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := pool.Query(ctx, fmt.Sprintf(`
SELECT id, name, segment, line_of_business, role, manager_id
FROM crm_users
%s
ORDER BY name ASC, id ASC
`, where), args...)
	if err != nil {
		return nil, services.NewFetchError("fetch users", err)
	}
	defer rows.Close()

	out := make([]services.User, 0, 64)
	for rows.Next() {
		var u services.User
		var manager pgtype.UUID
		if err := rows.Scan(&u.ID, &u.Name, &u.Segment, &u.LOB, &u.Role, &manager); err != nil {
			return nil, services.NewFetchError("fetch users", err)
		}
		u.ManagerID = asUUIDPtr(manager)
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, services.NewFetchError("fetch users", rows.Err())
	}
	return out, nil
}

func (r *RecordStoreRepository) FetchSharedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `
SELECT record_id
FROM crm_record_shares
WHERE user_id = $1 AND object_type = 'product_record'
ORDER BY record_id ASC
`, pgUUID(userID))
	if err != nil {
		return nil, services.NewFetchError("fetch shared product ids", err)
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0, 16)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, services.NewFetchError("fetch shared product ids", err)
		}
		out = append(out, id)
	}
	if rows.Err() != nil {
		return nil, services.NewFetchError("fetch shared product ids", rows.Err())
	}
	return out, nil
}

func (r *RecordStoreRepository) FetchProducts(ctx context.Context, ids []uuid.UUID, lob string) ([]services.ProductRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `
SELECT id, owner_id, lead_id, prelead_id, opportunity_id, product_id, project_id,
	contractor_id, purchase_order_id, sales_order_id, amount::text, created_at,
	status_code, lob_code
FROM crm_product_records
WHERE id = ANY($1) AND lob_code = $2
ORDER BY created_at ASC, id ASC
`, pgUUIDArray(ids), lob)
	if err != nil {
		return nil, services.NewFetchError("fetch products", err)
	}
	defer rows.Close()

	out := make([]services.ProductRecord, 0, len(ids))
	for rows.Next() {
		var rec services.ProductRecord
		var lead, prelead, opp, product, project, contractor, po, so pgtype.UUID
		var amount string
		if err := rows.Scan(
			&rec.ID, &rec.OwnerID, &lead, &prelead, &opp, &product, &project,
			&contractor, &po, &so, &amount, &rec.CreatedAt,
			&rec.StatusCode, &rec.LOBCode,
		); err != nil {
			return nil, services.NewFetchError("fetch products", err)
		}
		rec.LeadID = asUUIDPtr(lead)
		rec.PreleadID = asUUIDPtr(prelead)
		rec.OpportunityID = asUUIDPtr(opp)
		rec.ProductID = asUUIDPtr(product)
		rec.ProjectID = asUUIDPtr(project)
		rec.ContractorID = asUUIDPtr(contractor)
		rec.PurchaseOrderID = asUUIDPtr(po)
		rec.SalesOrderID = asUUIDPtr(so)
		rec.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, services.NewFetchError("fetch products", gerrors.Wrap(err, "parse amount"))
		}
		out = append(out, rec)
	}
	if rows.Err() != nil {
		return nil, services.NewFetchError("fetch products", rows.Err())
	}
	return out, nil
}

func (r *RecordStoreRepository) FetchGeographyMappings(ctx context.Context, kind services.EntityKind, entityID uuid.UUID) ([]uuid.UUID, error) {
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `
SELECT region_id
FROM crm_geo_mappings
WHERE entity_kind = $1 AND entity_id = $2
ORDER BY region_id ASC
`, string(kind), pgUUID(entityID))
	if err != nil {
		return nil, services.NewFetchError("fetch geography mappings", err)
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0, 4)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, services.NewFetchError("fetch geography mappings", err)
		}
		out = append(out, id)
	}
	if rows.Err() != nil {
		return nil, services.NewFetchError("fetch geography mappings", rows.Err())
	}
	return out, nil
}

func (r *RecordStoreRepository) ResolveEntityField(ctx context.Context, kind services.EntityKind, id uuid.UUID, field string) (string, error) {
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return "", err
	}
	table, ok := kindTables[kind]
	if !ok {
		return "", services.NewFetchError("resolve entity field", fmt.Errorf("unknown entity kind %q", kind))
	}
	column, ok := fieldColumns[field]
	if !ok {
		return "", services.NewFetchError("resolve entity field", fmt.Errorf("unknown field %q", field))
	}

	var value pgtype.Text
	err = pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, column, table), pgUUID(id)).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", services.NewFetchError("resolve entity field", err)
	}
	if !value.Valid {
		return "", nil
	}
	return value.String, nil
}

func (r *RecordStoreRepository) ResolveOptionLabel(ctx context.Context, kind services.EntityKind, attribute, code string) (string, error) {
	// Absent code means the record was never moved out of its initial state.
	if code == "" {
		return "Open", nil
	}
	pool, err := composables.UsePool(ctx)
	if err != nil {
		return "", err
	}

	var label string
	err = pool.QueryRow(ctx, `
SELECT label
FROM crm_option_labels
WHERE entity_kind = $1 AND attribute = $2 AND code = $3
`, string(kind), attribute, code).Scan(&label)
	if errors.Is(err, pgx.ErrNoRows) {
		return code, nil
	}
	if err != nil {
		return "", services.NewFetchError("resolve option label", err)
	}
	return label, nil
}
