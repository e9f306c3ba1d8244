package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/caixinha/caixinha-server/internal/api/middleware"
	"github.com/caixinha/caixinha-server/internal/domain"
	"github.com/caixinha/caixinha-server/internal/store/postgres"
)

// TransactionStore is the slice of the Postgres repository the handlers use.
type TransactionStore interface {
	Create(ctx context.Context, userID string, t domain.Transaction) (domain.Transaction, error)
	CreateBulk(ctx context.Context, userID string, ts []domain.Transaction) error
	GetByID(ctx context.Context, userID, id string) (domain.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
	Update(ctx context.Context, userID string, t domain.Transaction) error
	UpdateColumns(ctx context.Context, userID, id string, cols map[string]any) error
	Delete(ctx context.Context, userID, id string) error
}

// writeStoreError maps repository failures onto HTTP statuses. A missing
// schema is not a server fault: the response carries the SQL that fixes it
// so the client can walk the user through running it.
func writeStoreError(w http.ResponseWriter, log zerolog.Logger, err error, action string) {
	switch {
	case errors.Is(err, postgres.ErrSchemaMissing):
		middleware.WriteJSON(w, http.StatusConflict, map[string]string{
			"error":     "Database schema is missing or outdated",
			"setup_sql": postgres.SetupSQL,
		})
	case errors.Is(err, postgres.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
	default:
		log.Error().Err(err).Msg("Failed to " + action)
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
