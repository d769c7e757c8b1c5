package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/housing-cli/internal/db"
	"github.com/sells-group/housing-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
// The parent directory of a plain file path is created when missing.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dsn); dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create directory %s", dir)
		}
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS tbl_house_prices (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	MedInc      REAL,
	HouseAge    REAL,
	AveRooms    REAL,
	AveBedrms   REAL,
	Population  REAL,
	AveOccup    REAL,
	Latitude    REAL,
	Longitude   REAL,
	MedHouseVal REAL
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+Table); err != nil {
		return eris.Wrap(err, "sqlite: drop table")
	}
	zap.L().Debug("sqlite: dropped table", zap.String("table", Table))
	return s.Migrate(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertRecords(ctx context.Context, records []model.HousingRecord) ([]int64, error) {
	if err := validateBatch(records); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert")
	}
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+Table+` (`+insertColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	ids := make([]int64, 0, len(records))
	for i, r := range records {
		res, err := stmt.ExecContext(ctx, r.Values()...)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert record %d", i)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: last insert id for record %d", i)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit insert")
	}
	return ids, nil
}

func (s *SQLiteStore) BulkInsert(ctx context.Context, records []model.HousingRecord) (int64, error) {
	ids, err := s.InsertRecords(ctx, records)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context) ([]model.HousingRecord, error) {
	return s.QueryRecords(ctx, `SELECT `+selectColumns+` FROM `+Table+` ORDER BY id`)
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id int64) (*model.HousingRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM `+Table+` WHERE id = ?`,
		id,
	)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get record %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get record %d", id)
	}
	return r, nil
}

func (s *SQLiteStore) UpdateRecord(ctx context.Context, id int64, patch model.Patch) (bool, error) {
	query, args, err := patchUpdate(patch, db.Question).Where("id", id)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: update record %d", id)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: update record %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) DeleteRecord(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+Table+` WHERE id = ?`, id)
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: delete record %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "sqlite: rows affected")
	}
	return n > 0, nil
}

func (s *SQLiteStore) QueryRecords(ctx context.Context, query string) ([]model.HousingRecord, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query records")
	}
	defer rows.Close() //nolint:errcheck

	var records []model.HousingRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: query records iterate")
}

func (s *SQLiteStore) Exec(ctx context.Context, stmt string) (int64, error) {
	res, err := s.db.ExecContext(ctx, stmt)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: exec")
	}
	n, err := res.RowsAffected()
	return n, eris.Wrap(err, "sqlite: rows affected")
}
