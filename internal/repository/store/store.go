// Package store defines the access layer the ledger services run on. Backends
// (MongoDB, flat JSON files) implement Store; the ledger rules live only in the
// services.
package store

import "context"

// Entity names a class of persisted records. The value doubles as the MongoDB
// collection name and the flat-file document name.
type Entity string

const (
	Products    Entity = "products"
	Routes      Entity = "routes"
	Vehicles    Entity = "vehicles"
	PriceLog    Entity = "priceHistory"
	StockLog    Entity = "stockLog"
	DispatchLog Entity = "dispatchLog"
)

// FieldID is the identifier field every record carries.
const FieldID = "id"

// Filter is a conjunction of field equality conditions, keyed by the JSON
// field names of the models. An empty filter matches everything.
type Filter map[string]any

// ByID matches the record with the given id.
func ByID(id any) Filter {
	return Filter{FieldID: id}
}

// Fields is a partial update keyed by JSON field names.
type Fields map[string]any

// Store is the capability interface the ledger consumes.
//
// Find decodes every matching record into out, which must be a pointer to a
// slice. FindOne decodes the first match into out and returns a NOT_FOUND
// apperror when nothing matches. Insert stores doc, whose id is assigned by the
// caller, and returns a DUPLICATE_ENTRY apperror when the id exists. Update
// merges fields into the record with the given id. Backend failures surface as
// STORE_ERROR.
type Store interface {
	Find(ctx context.Context, entity Entity, filter Filter, out any) error
	FindOne(ctx context.Context, entity Entity, filter Filter, out any) error
	Insert(ctx context.Context, entity Entity, id any, doc any) error
	Update(ctx context.Context, entity Entity, id any, fields Fields) error
}
