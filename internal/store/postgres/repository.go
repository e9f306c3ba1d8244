package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caixinha/caixinha-server/internal/domain"
)

// ErrNotFound means no row with that id is visible to the caller.
var ErrNotFound = errors.New("store: transaction not found")

// selectColumns is the full column list, in scan order.
const selectColumns = `id, created_at, user_id, date, city, amount, category, operation, notes, type,
	receipt_image, receipt_amount, origin, destination, car_type, road_type,
	distance_km, fuel_type, price_per_liter, consumption, total_value`

// Repository is the transaction store adapter. Every operation is scoped
// by the owning user id; there is no cross-user visibility.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the adapter over an existing pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pool for the given connection string.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: pinging database: %w", err)
	}
	return pool, nil
}

// Create inserts one transaction for userID and returns it with the
// server-assigned id (when the incoming id was empty) filled in.
func (r *Repository) Create(ctx context.Context, userID string, t domain.Transaction) (domain.Transaction, error) {
	cols, err := toColumns(t)
	if err != nil {
		return domain.Transaction{}, err
	}
	cols["user_id"] = userID
	if id := t.ID(); id != "" {
		cols["id"] = id
	}

	names := sortedColumns(cols)
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = cols[name]
	}

	query := fmt.Sprintf(
		`INSERT INTO transactions (%s) VALUES (%s) RETURNING %s`,
		strings.Join(names, ", "), strings.Join(placeholders, ", "), selectColumns,
	)

	row, err := scanOne(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Transaction{}, classifyErr(err)
	}
	return fromRow(row)
}

// CreateBulk inserts a confirmed import batch in one round trip.
func (r *Repository) CreateBulk(ctx context.Context, userID string, ts []domain.Transaction) error {
	if len(ts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range ts {
		cols, err := toColumns(t)
		if err != nil {
			return err
		}
		cols["user_id"] = userID
		if id := t.ID(); id != "" {
			cols["id"] = id
		}

		names := sortedColumns(cols)
		placeholders := make([]string, len(names))
		args := make([]any, len(names))
		for i, name := range names {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args[i] = cols[name]
		}
		batch.Queue(fmt.Sprintf(
			`INSERT INTO transactions (%s) VALUES (%s)`,
			strings.Join(names, ", "), strings.Join(placeholders, ", "),
		), args...)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range ts {
		if _, err := results.Exec(); err != nil {
			return classifyErr(err)
		}
	}
	return nil
}

// GetByID fetches one transaction owned by userID.
func (r *Repository) GetByID(ctx context.Context, userID, id string) (domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1 AND user_id = $2`, selectColumns)

	row, err := scanOne(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Transaction{}, ErrNotFound
		}
		return domain.Transaction{}, classifyErr(err)
	}
	return fromRow(row)
}

// ListByUser returns all of userID's transactions, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM transactions WHERE user_id = $1 ORDER BY date DESC, created_at DESC`,
		selectColumns,
	)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, classifyErr(err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		row, err := scanOne(rows)
		if err != nil {
			return nil, classifyErr(err)
		}
		t, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyErr(err)
	}
	return out, nil
}

// Update rewrites the stored record from the full transaction value. The
// generated SET list contains only the columns the mapper produced, so
// optional fields the value does not carry stay untouched remotely.
func (r *Repository) Update(ctx context.Context, userID string, t domain.Transaction) error {
	cols, err := toColumns(t)
	if err != nil {
		return err
	}
	return r.UpdateColumns(ctx, userID, t.ID(), cols)
}

// UpdateColumns applies a partial update: only the given columns change.
func (r *Repository) UpdateColumns(ctx context.Context, userID, id string, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}

	query, args := buildUpdate(id, userID, cols)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classifyErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes the transaction. There is no soft delete.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return classifyErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildUpdate renders the partial UPDATE statement. Split out for tests:
// the omission behavior (unset columns absent from SET) is a contract.
func buildUpdate(id, userID string, cols map[string]any) (string, []any) {
	names := sortedColumns(cols)
	sets := make([]string, len(names))
	args := make([]any, 0, len(names)+2)
	for i, name := range names {
		sets[i] = fmt.Sprintf("%s = $%d", name, i+1)
		args = append(args, cols[name])
	}
	args = append(args, id, userID)

	query := fmt.Sprintf(
		`UPDATE transactions SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), len(names)+1, len(names)+2,
	)
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOne(s rowScanner) (transactionRow, error) {
	var r transactionRow
	err := s.Scan(
		&r.ID, &r.CreatedAt, &r.UserID, &r.Date, &r.City, &r.Amount, &r.Category,
		&r.Operation, &r.Notes, &r.Type,
		&r.ReceiptImage, &r.ReceiptAmount, &r.Origin, &r.Destination, &r.CarType,
		&r.RoadType, &r.DistanceKm, &r.FuelType, &r.PricePerLiter, &r.Consumption,
		&r.TotalValue,
	)
	return r, err
}

// EnsureSchema runs SetupSQL. Used by cmd/migrate's --apply mode.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, SetupSQL)
	return err
}
