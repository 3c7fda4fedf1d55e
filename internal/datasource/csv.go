// Package datasource loads historical bars for the CLI. The engine
// itself only consumes in-memory bar slices; this package is the
// caller-side boundary that materializes them.
package datasource

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/logger"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
	"go.uber.org/zap"
)

// CSVBarSource reads OHLCV bars from CSV files through an in-memory
// DuckDB instance. DuckDB handles header detection, date parsing and
// type sniffing, so vendor CSV quirks stay out of the engine.
type CSVBarSource struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewCSVBarSource opens an in-memory DuckDB database.
func NewCSVBarSource(log *logger.Logger) (*CSVBarSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceFailure, "failed to open duckdb", err)
	}

	return &CSVBarSource{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Load reads all bars from a CSV file ordered by date ascending. The
// file must carry date, open, high, low, close and volume columns;
// turnover is picked up when present.
func (s *CSVBarSource) Load(path string) ([]types.Bar, error) {
	s.log.Debug("Loading bars from CSV", zap.String("path", path))

	if _, err := s.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceFailure, "failed to drop existing view", err)
	}

	// Squirrel doesn't support CREATE VIEW, keep this one raw
	createView := fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM read_csv_auto('%s');`, path)
	if _, err := s.db.Exec(createView); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceFailure, err, "failed to read CSV %s", path)
	}

	hasTurnover, err := s.hasColumn("turnover")
	if err != nil {
		return nil, err
	}

	columns := []string{"date", "open", "high", "low", "close", "volume"}
	if hasTurnover {
		columns = append(columns, "turnover")
	}

	query, args, err := s.sq.Select(columns...).From("bars").OrderBy("date ASC").ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceFailure, "failed to build query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceFailure, "failed to query bars", err)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var (
			bar      types.Bar
			date     time.Time
			turnover sql.NullFloat64
		)

		dest := []any{&date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}
		if hasTurnover {
			dest = append(dest, &turnover)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeDataSourceFailure, "failed to scan bar", err)
		}

		bar.Date = date
		if turnover.Valid {
			bar.Turnover = optional.Some(turnover.Float64)
		} else {
			bar.Turnover = optional.None[float64]()
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceFailure, "failed to iterate bars", err)
	}

	if err := types.ValidateBars(bars); err != nil {
		return nil, err
	}

	s.log.Debug("Loaded bars", zap.Int("count", len(bars)))

	return bars, nil
}

// Close releases the DuckDB instance.
func (s *CSVBarSource) Close() error {
	return s.db.Close()
}

func (s *CSVBarSource) hasColumn(name string) (bool, error) {
	query, args, err := s.sq.Select("COUNT(*)").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": "bars", "column_name": name}).
		ToSql()
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeDataSourceFailure, "failed to build column query", err)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return false, errors.Wrap(errors.ErrCodeDataSourceFailure, "failed to inspect columns", err)
	}

	return count > 0, nil
}
