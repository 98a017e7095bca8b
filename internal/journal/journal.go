// Package journal persists executed trades to a DuckDB file so restarts keep
// trading history and the HTTP surface can serve it.
package journal

import (
	"database/sql"
	"sync"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/rxtech-lab/momentum-bot/internal/logger"
	"github.com/rxtech-lab/momentum-bot/internal/types"
	"github.com/rxtech-lab/momentum-bot/pkg/errors"
)

// Journal is an append-only trade store backed by DuckDB. Safe for use from
// the scan loop and the HTTP handlers concurrently.
type Journal struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	mu     sync.Mutex
}

// Open opens (or creates) the journal database at path. Use ":memory:" for an
// ephemeral journal.
func Open(path string, log *logger.Logger) (*Journal, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to open journal database at %s", path)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			symbol TEXT,
			side TEXT,
			quantity DOUBLE,
			price DOUBLE,
			notional DOUBLE,
			take_profit DOUBLE,
			stop_trigger DOUBLE,
			stop_limit DOUBLE,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to create trades table", err)
	}

	return &Journal{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Record appends a trade to the journal.
func (j *Journal) Record(record types.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	query, args, err := j.sq.Insert("trades").
		Columns("id", "symbol", "side", "quantity", "price", "notional",
			"take_profit", "stop_trigger", "stop_limit", "created_at").
		Values(record.ID, record.Symbol, string(record.Side), record.Quantity,
			record.Price, record.Notional, record.TakeProfit, record.StopTrigger,
			record.StopLimit, record.CreatedAt).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build insert query", err)
	}

	if _, err := j.db.Exec(query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to record %s trade for %s", record.Side, record.Symbol)
	}

	j.logger.Debug("trade recorded",
		zap.String("id", record.ID),
		zap.String("symbol", record.Symbol),
		zap.String("side", string(record.Side)))

	return nil
}

// Trades returns up to limit journal entries, newest first.
func (j *Journal) Trades(limit int) ([]types.TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	builder := j.sq.Select("id", "symbol", "side", "quantity", "price", "notional",
		"take_profit", "stop_trigger", "stop_limit", "created_at").
		From("trades").
		OrderBy("created_at DESC")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build select query", err)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var records []types.TradeRecord

	for rows.Next() {
		var record types.TradeRecord
		var side string

		err := rows.Scan(&record.ID, &record.Symbol, &side, &record.Quantity,
			&record.Price, &record.Notional, &record.TakeProfit,
			&record.StopTrigger, &record.StopLimit, &record.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade row", err)
		}

		record.Side = types.TradeSide(side)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate trade rows", err)
	}

	return records, nil
}

// Count returns the number of journaled trades.
func (j *Journal) Count() (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var count int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM trades").Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count trades", err)
	}

	return count, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.db == nil {
		return nil
	}

	err := j.db.Close()
	j.db = nil

	return err
}
