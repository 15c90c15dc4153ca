package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityKind identifies the CRM object a reference points at.
type EntityKind string

const (
	KindUser          EntityKind = "user"
	KindLead          EntityKind = "lead"
	KindPrelead       EntityKind = "prelead"
	KindOpportunity   EntityKind = "opportunity"
	KindProduct       EntityKind = "product"
	KindProject       EntityKind = "project"
	KindContractor    EntityKind = "contractor"
	KindPurchaseOrder EntityKind = "purchase_order"
	KindSalesOrder    EntityKind = "sales_order"
	KindRegion        EntityKind = "region"
)

const (
	FieldName   = "name"
	FieldNumber = "number"

	AttrStatus         = "status"
	AttrLineOfBusiness = "line_of_business"
)

// User is one row of the org hierarchy, immutable once fetched.
type User struct {
	ID        uuid.UUID
	Name      string
	Segment   string
	LOB       string
	Role      string
	ManagerID *uuid.UUID
}

// ProductRecord is a raw shared-product record as the store returns it.
type ProductRecord struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	LeadID          *uuid.UUID
	PreleadID       *uuid.UUID
	OpportunityID   *uuid.UUID
	ProductID       *uuid.UUID
	ProjectID       *uuid.UUID
	ContractorID    *uuid.UUID
	PurchaseOrderID *uuid.UUID
	SalesOrderID    *uuid.UUID
	Amount          decimal.Decimal
	CreatedAt       time.Time
	StatusCode      string
	LOBCode         string
}

// UserFilter narrows the one-shot user fetch.
type UserFilter struct {
	Segment string
	LOBs    []string
	Roles   []string
}

// RecordStore is the external record-store surface the reporter depends on.
// Implementations live under infrastructure; tests substitute in-memory fakes.
type RecordStore interface {
	FetchUsers(ctx context.Context, filter UserFilter) ([]User, error)
	FetchSharedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FetchProducts(ctx context.Context, ids []uuid.UUID, lob string) ([]ProductRecord, error)
	FetchGeographyMappings(ctx context.Context, kind EntityKind, entityID uuid.UUID) ([]uuid.UUID, error)
	ResolveEntityField(ctx context.Context, kind EntityKind, id uuid.UUID, field string) (string, error)
	ResolveOptionLabel(ctx context.Context, kind EntityKind, attribute, code string) (string, error)
}

// ReportEmitter renders one node's row set and hands it to delivery.
type ReportEmitter interface {
	Emit(ctx context.Context, reportName string, rows []ReportRow) error
}
