package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		schemaMissing bool
	}{
		{"nil", nil, false},
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "transactions" does not exist`}, true},
		{"undefined column", &pgconn.PgError{Code: "42703", Message: `column "receipt_amount" does not exist`}, true},
		{"wrapped undefined table", fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyErr(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.schemaMissing, errors.Is(got, ErrSchemaMissing))
			if !tt.schemaMissing {
				assert.Equal(t, tt.err, got)
			}
		})
	}
}

func TestSetupSQLCoversEveryMappedColumn(t *testing.T) {
	// Every column the mapper can emit must be created by SetupSQL,
	// otherwise the fix-it SQL would not actually fix the drift it is
	// shown for.
	for _, col := range strings.Fields(strings.ReplaceAll(selectColumns, ",", " ")) {
		assert.Contains(t, SetupSQL, col, "setup script missing column %s", col)
	}
}

func TestSetupSQLIsIdempotent(t *testing.T) {
	lower := strings.ToLower(SetupSQL)
	assert.Contains(t, lower, "create table if not exists")
	assert.NotContains(t, lower, "drop table")
	for _, line := range strings.Split(lower, "\n") {
		if strings.Contains(line, "add column") {
			assert.Contains(t, line, "if not exists", "non-idempotent migration line: %s", line)
		}
	}
}
