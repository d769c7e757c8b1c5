// Package store persists housing records in an embedded SQLite file or a
// PostgreSQL database.
package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/housing-cli/internal/db"
	"github.com/sells-group/housing-cli/internal/model"
)

// Table is the single table backing all records.
const Table = "tbl_house_prices"

// ErrNotFound is returned by GetRecord when no row has the requested id.
var ErrNotFound = eris.New("record not found")

// Store defines the persistence interface for housing records.
type Store interface {
	// Records
	InsertRecords(ctx context.Context, records []model.HousingRecord) ([]int64, error)
	BulkInsert(ctx context.Context, records []model.HousingRecord) (int64, error)
	ListRecords(ctx context.Context) ([]model.HousingRecord, error)
	GetRecord(ctx context.Context, id int64) (*model.HousingRecord, error)
	UpdateRecord(ctx context.Context, id int64, patch model.Patch) (bool, error)
	DeleteRecord(ctx context.Context, id int64) (bool, error)

	// Raw passthrough
	QueryRecords(ctx context.Context, query string) ([]model.HousingRecord, error)
	Exec(ctx context.Context, stmt string) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Reset(ctx context.Context) error
	Close() error
}

// selectColumns is the column list every read maps back from, id first.
var selectColumns = "id, " + strings.Join(model.Columns, ", ")

// insertColumns is the column list for inserts; the store assigns id.
var insertColumns = strings.Join(model.Columns, ", ")

type scannable interface {
	Scan(dest ...any) error
}

// scanRecord maps id plus the nine measurement columns, positionally.
func scanRecord(row scannable) (*model.HousingRecord, error) {
	var id int64
	vals := make([]sql.NullFloat64, len(model.Columns))
	dest := make([]any, 0, len(vals)+1)
	dest = append(dest, &id)
	for i := range vals {
		dest = append(dest, &vals[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	r := model.HousingRecord{ID: &id}
	for i, f := range r.Fields() {
		if vals[i].Valid {
			v := vals[i].Float64
			*f = &v
		}
	}
	return &r, nil
}

// validateBatch rejects incomplete records before any statement runs.
func validateBatch(records []model.HousingRecord) error {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return eris.Wrapf(err, "record %d", i)
		}
	}
	return nil
}

// patchUpdate stages every non-nil patch field in column order.
func patchUpdate(patch model.Patch, placeholder db.Placeholder) *db.UpdateBuilder {
	b := db.NewUpdate(Table, placeholder)
	for i, f := range patch.Fields() {
		b.SetFloat(model.Columns[i], *f)
	}
	return b
}
