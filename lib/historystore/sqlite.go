package historystore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"shelfwatch/lib/product"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// OpenSQLite opens (creating if necessary) a sqlite database at path and
// applies the observation schema. Use ":memory:" for throwaway databases.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			return nil, err
		}
	}
	_, err = db.Exec(Schema)
	if err != nil {
		return nil, fmt.Errorf("apply observation schema: %w", err)
	}
	return db, nil
}

// SQLiteStore keeps history in an observation table. Timestamps are stored
// as unix nanoseconds and come back in UTC.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(database *sql.DB) SQLiteStore {
	return SQLiteStore{db: database}
}

func (s SQLiteStore) Load(ctx context.Context) (map[string][]product.Observation, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT product_id, time, price, availability
		FROM observation
		ORDER BY product_id, time`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := map[string][]product.Observation{}
	for rows.Next() {
		var id string
		var nanos int64
		var price sql.NullFloat64
		var availability string
		err := rows.Scan(&id, &nanos, &price, &availability)
		if err != nil {
			return nil, err
		}

		o := product.Observation{
			ID:           id,
			Timestamp:    time.Unix(0, nanos).UTC(),
			Availability: product.Availability(availability),
		}
		if price.Valid {
			v := price.Float64
			o.Price = &v
		}
		history[id] = append(history[id], o)
	}
	return history, rows.Err()
}

func (s SQLiteStore) Save(ctx context.Context, history map[string][]product.Observation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM observation`)
	if err != nil {
		return err
	}

	for id, observations := range history {
		for _, o := range observations {
			var price sql.NullFloat64
			if o.Price != nil {
				price = sql.NullFloat64{Float64: *o.Price, Valid: true}
			}
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO observation (product_id, time, price, availability)
				VALUES (?, ?, ?, ?)`,
				id, o.Timestamp.UnixNano(), price, string(o.Availability),
			)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
