package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ValidateRuntimeSchema verifies the analyses table carries every column the
// handlers read or write, so a stale Supabase migration fails at startup
// instead of on the first request.
func ValidateRuntimeSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("database pool is nil")
	}

	requiredColumns := []string{
		"id",
		"user_id",
		"role",
		"original_message",
		"ai_analysis",
		"chat_history",
		"created_at",
	}

	for _, column := range requiredColumns {
		ok, err := columnExists(ctx, pool, "analyses", column)
		if err != nil {
			return fmt.Errorf("failed checking schema for analyses.%s: %w", column, err)
		}
		if !ok {
			return fmt.Errorf("required column analyses.%s is missing; apply the latest migration", column)
		}
	}

	return nil
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	table := strings.TrimSpace(tableName)
	column := strings.TrimSpace(columnName)
	if table == "" || column == "" {
		return false, fmt.Errorf("table/column must not be empty")
	}
	var exists bool
	err := pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1
		   FROM information_schema.columns
		   WHERE table_schema = current_schema()
		     AND lower(table_name) = lower($1)
		     AND lower(column_name) = lower($2)
		 )`,
		table,
		column,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
