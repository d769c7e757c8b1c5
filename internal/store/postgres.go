package store

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/db"
	"github.com/sells-group/housing-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// copyColumns are the lower-cased measurement columns. Unquoted identifiers
// fold to lower case in PostgreSQL, and COPY quotes the names it is given.
var copyColumns = func() []string {
	cols := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		cols[i] = strings.ToLower(c)
	}
	return cols
}()

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS tbl_house_prices (
	id          BIGSERIAL PRIMARY KEY,
	MedInc      DOUBLE PRECISION,
	HouseAge    DOUBLE PRECISION,
	AveRooms    DOUBLE PRECISION,
	AveBedrms   DOUBLE PRECISION,
	Population  DOUBLE PRECISION,
	AveOccup    DOUBLE PRECISION,
	Latitude    DOUBLE PRECISION,
	Longitude   DOUBLE PRECISION,
	MedHouseVal DOUBLE PRECISION
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS `+Table); err != nil {
		return eris.Wrap(err, "postgres: drop table")
	}
	zap.L().Debug("postgres: dropped table", zap.String("table", Table))
	return s.Migrate(ctx)
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InsertRecords(ctx context.Context, records []model.HousingRecord) ([]int64, error) {
	if err := validateBatch(records); err != nil {
		return nil, eris.Wrap(err, "postgres: insert")
	}
	if len(records) == 0 {
		return nil, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ids := make([]int64, 0, len(records))
	for i, r := range records {
		var id int64
		err := tx.QueryRow(ctx,
			`INSERT INTO `+Table+` (`+insertColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			r.Values()...,
		).Scan(&id)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: insert record %d", i)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit insert")
	}
	return ids, nil
}

// BulkInsert loads records with COPY inside a single transaction.
func (s *PostgresStore) BulkInsert(ctx context.Context, records []model.HousingRecord) (int64, error) {
	if err := validateBatch(records); err != nil {
		return 0, eris.Wrap(err, "postgres: bulk insert")
	}
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	n, err := db.CopyFrom(ctx, tx, Table, copyColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk insert")
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit bulk insert")
	}
	return n, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context) ([]model.HousingRecord, error) {
	return s.QueryRecords(ctx, `SELECT `+selectColumns+` FROM `+Table+` ORDER BY id`)
}

func (s *PostgresStore) GetRecord(ctx context.Context, id int64) (*model.HousingRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM `+Table+` WHERE id = $1`,
		id,
	)
	r, err := scanRecord(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get record %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get record %d", id)
	}
	return r, nil
}

func (s *PostgresStore) UpdateRecord(ctx context.Context, id int64, patch model.Patch) (bool, error) {
	query, args, err := patchUpdate(patch, db.Dollar).Where("id", id)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: update record %d", id)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: update record %d", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteRecord(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+Table+` WHERE id = $1`, id)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: delete record %d", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) QueryRecords(ctx context.Context, query string) ([]model.HousingRecord, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query records")
	}
	defer rows.Close()

	var records []model.HousingRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		records = append(records, *r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: query records iterate")
}

func (s *PostgresStore) Exec(ctx context.Context, stmt string) (int64, error) {
	tag, err := s.pool.Exec(ctx, stmt)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: exec")
	}
	return tag.RowsAffected(), nil
}
