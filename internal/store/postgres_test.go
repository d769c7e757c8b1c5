package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/housing-cli/internal/db"
	"github.com/sells-group/housing-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func recordArgs(r model.HousingRecord) []any {
	return r.Values()
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS tbl_house_prices`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Reset(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DROP TABLE IF EXISTS tbl_house_prices`).
		WillReturnResult(pgxmock.NewResult("DROP", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS tbl_house_prices`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Reset(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRecords(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	r := testRecord(t, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO tbl_house_prices .* RETURNING id`).
		WithArgs(recordArgs(r)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectQuery(`INSERT INTO tbl_house_prices .* RETURNING id`).
		WithArgs(recordArgs(r)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(12)))
	mock.ExpectCommit()

	ids, err := s.InsertRecords(context.Background(), []model.HousingRecord{r, r})
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 12}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRecords_RollsBack(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	r := testRecord(t, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO tbl_house_prices`).
		WithArgs(recordArgs(r)...).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`INSERT INTO tbl_house_prices`).
		WithArgs(recordArgs(r)...).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err := s.InsertRecords(context.Background(), []model.HousingRecord{r, r})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert record 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BulkInsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectCopyFrom(pgx.Identifier{Table}, copyColumns).WillReturnResult(2)
	mock.ExpectCommit()

	n, err := s.BulkInsert(context.Background(), []model.HousingRecord{testRecord(t, 1), testRecord(t, 2)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, "medinc", copyColumns[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRecord(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	cols := append([]string{"id"}, model.Columns...)
	mock.ExpectQuery(`SELECT id, MedInc, .* FROM tbl_house_prices WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(5), 3.5, 20.0, 5.0, 1.0, 500.0, 3.2, 37.77, -122.42, 450000.0))

	got, err := s.GetRecord(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), *got.ID)
	assert.InDelta(t, 3.5, *got.MedInc, 1e-9)
	assert.InDelta(t, 450000.0, *got.MedHouseVal, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRecord_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM tbl_house_prices WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRecord(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRecord_Partial(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	var p model.Patch
	require.NoError(t, p.Set(model.ColHouseAge, 30))
	require.NoError(t, p.Set(model.ColLongitude, -120))

	mock.ExpectExec(`UPDATE tbl_house_prices SET HouseAge = \$1, Longitude = \$2 WHERE id = \$3`).
		WithArgs(30.0, -120.0, int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err := s.UpdateRecord(context.Background(), 9, p)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRecord_NoFields(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ok, err := s.UpdateRecord(context.Background(), 9, model.Patch{})
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, eris.Is(err, db.ErrNoFields))
	// No statement may reach the pool.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteRecord(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM tbl_house_prices WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	ok, err := s.DeleteRecord(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Exec(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM tbl_house_prices WHERE Latitude > 40`).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := s.Exec(context.Background(), `DELETE FROM tbl_house_prices WHERE Latitude > 40`)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
