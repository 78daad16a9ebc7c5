package source

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/drilltable/internal/drill"
)

// Querier is the subset of pgx used by Postgres.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres loads records by running a query; every result column becomes a
// record field named after the column.
type Postgres struct {
	DB    Querier
	Query string
	Args  []any
}

func (p Postgres) Describe() string {
	return "postgres:" + p.Query
}

// Load runs the query and collects all rows.
func (p Postgres) Load(ctx context.Context) ([]drill.Record, error) {
	rows, err := p.DB.Query(ctx, p.Query, p.Args...)
	if err != nil {
		return nil, fmt.Errorf("query source: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	var records []drill.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		rec := make(drill.Record, len(names))
		for i, name := range names {
			if i < len(values) {
				rec[name] = normalizeValue(values[i])
			}
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}

// normalizeValue converts pgx wire types into plain Go values the drill
// engine can compare and format.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()

	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64

	case pgtype.Text:
		if !val.Valid {
			return nil
		}
		return val.String

	default:
		return v
	}
}
