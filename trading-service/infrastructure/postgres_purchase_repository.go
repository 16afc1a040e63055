package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/draftea/trading-system/shared/models"
	"github.com/draftea/trading-system/trading-service/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const purchaseSchema = `
	CREATE TABLE IF NOT EXISTS purchase_states (
		correlation_id  UUID PRIMARY KEY,
		current_state   VARCHAR(32) NOT NULL,
		user_id         UUID NOT NULL,
		item_id         UUID NOT NULL,
		quantity        INTEGER NOT NULL,
		purchase_total  NUMERIC(20, 4),
		received        TIMESTAMPTZ NOT NULL,
		last_updated    TIMESTAMPTZ NOT NULL,
		error_message   TEXT,
		version         INTEGER NOT NULL,
		pending_release BOOLEAN NOT NULL DEFAULT FALSE
	);
	ALTER TABLE purchase_states ADD COLUMN IF NOT EXISTS pending_release BOOLEAN NOT NULL DEFAULT FALSE`

// PostgresPurchaseRepository implements PurchaseRepository using PostgreSQL
type PostgresPurchaseRepository struct {
	db *sqlx.DB
}

// NewPostgresPurchaseRepository creates a new PostgresPurchaseRepository
func NewPostgresPurchaseRepository(db *sqlx.DB) *PostgresPurchaseRepository {
	return &PostgresPurchaseRepository{db: db}
}

// postgresPurchase represents a purchase saga instance in database
type postgresPurchase struct {
	CorrelationID  string              `db:"correlation_id"`
	CurrentState   string              `db:"current_state"`
	UserID         string              `db:"user_id"`
	ItemID         string              `db:"item_id"`
	Quantity       int                 `db:"quantity"`
	PurchaseTotal  decimal.NullDecimal `db:"purchase_total"`
	Received       time.Time           `db:"received"`
	LastUpdated    time.Time           `db:"last_updated"`
	ErrorMessage   sql.NullString      `db:"error_message"`
	Version        int                 `db:"version"`
	PendingRelease bool                `db:"pending_release"`
}

// InitSchema creates the purchase_states table
func (r *PostgresPurchaseRepository) InitSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, purchaseSchema); err != nil {
		return errors.Wrap(err, "failed to create purchase_states table")
	}
	return nil
}

// Create inserts a new purchase with version 1
func (r *PostgresPurchaseRepository) Create(ctx context.Context, state *domain.PurchaseState) error {
	query := `
		INSERT INTO purchase_states (
			correlation_id, current_state, user_id, item_id, quantity,
			purchase_total, received, last_updated, error_message, version,
			pending_release
		) VALUES (
			:correlation_id, :current_state, :user_id, :item_id, :quantity,
			:purchase_total, :received, :last_updated, :error_message, :version,
			:pending_release
		)
		ON CONFLICT (correlation_id) DO NOTHING`

	row := r.toPostgres(state)
	row.Version = 1

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return errors.Wrap(err, "failed to insert purchase state")
	}

	if err := checkAffected(result); err != nil {
		return err
	}

	state.Version = 1
	return nil
}

// Save updates a purchase if its stored version still equals expectedVersion
func (r *PostgresPurchaseRepository) Save(ctx context.Context, state *domain.PurchaseState, expectedVersion int) error {
	query := `
		UPDATE purchase_states
		SET current_state = $1, purchase_total = $2, last_updated = $3,
			error_message = $4, version = $5, pending_release = $6
		WHERE correlation_id = $7 AND version = $8`

	row := r.toPostgres(state)
	result, err := r.db.ExecContext(ctx, query,
		row.CurrentState,
		row.PurchaseTotal,
		row.LastUpdated,
		row.ErrorMessage,
		expectedVersion+1,
		row.PendingRelease,
		row.CorrelationID,
		expectedVersion,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update purchase state")
	}

	if err := checkAffected(result); err != nil {
		return err
	}

	state.Version = expectedVersion + 1
	return nil
}

// FindByCorrelationID finds a purchase by its correlation ID
func (r *PostgresPurchaseRepository) FindByCorrelationID(ctx context.Context, correlationID models.ID) (*domain.PurchaseState, error) {
	query := `
		SELECT correlation_id, current_state, user_id, item_id, quantity,
			   purchase_total, received, last_updated, error_message, version,
			   pending_release
		FROM purchase_states
		WHERE correlation_id = $1`

	var row postgresPurchase
	err := r.db.GetContext(ctx, &row, query, correlationID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find purchase state")
	}

	return r.toDomain(&row)
}

// MarkReleased clears the pending release flag of the row still at version
func (r *PostgresPurchaseRepository) MarkReleased(ctx context.Context, correlationID models.ID, version int) error {
	query := `
		UPDATE purchase_states
		SET pending_release = FALSE
		WHERE correlation_id = $1 AND version = $2`

	if _, err := r.db.ExecContext(ctx, query, correlationID.String(), version); err != nil {
		return errors.Wrap(err, "failed to mark purchase commands released")
	}
	return nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}

// toPostgres converts domain purchase to postgres model
func (r *PostgresPurchaseRepository) toPostgres(state *domain.PurchaseState) *postgresPurchase {
	row := &postgresPurchase{
		CorrelationID:  state.CorrelationID.String(),
		CurrentState:   state.CurrentState.String(),
		UserID:         state.UserID.String(),
		ItemID:         state.ItemID.String(),
		Quantity:       state.Quantity,
		Received:       state.Received,
		LastUpdated:    state.LastUpdated,
		ErrorMessage:   sql.NullString{String: state.ErrorMessage, Valid: state.ErrorMessage != ""},
		Version:        state.Version,
		PendingRelease: state.PendingRelease,
	}
	if state.PurchaseTotal != nil {
		row.PurchaseTotal = decimal.NewNullDecimal(*state.PurchaseTotal)
	}
	return row
}

// toDomain converts postgres model to domain purchase
func (r *PostgresPurchaseRepository) toDomain(row *postgresPurchase) (*domain.PurchaseState, error) {
	correlationID, err := models.NewID(row.CorrelationID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid correlation ID")
	}

	state := domain.State(row.CurrentState)
	if !state.IsValid() {
		return nil, errors.Errorf("invalid purchase state %q", row.CurrentState)
	}

	purchase := &domain.PurchaseState{
		CorrelationID:  correlationID,
		CurrentState:   state,
		UserID:         models.ID(row.UserID),
		ItemID:         models.ID(row.ItemID),
		Quantity:       row.Quantity,
		Received:       row.Received.UTC(),
		LastUpdated:    row.LastUpdated.UTC(),
		ErrorMessage:   row.ErrorMessage.String,
		Version:        row.Version,
		PendingRelease: row.PendingRelease,
	}
	if row.PurchaseTotal.Valid {
		total := row.PurchaseTotal.Decimal
		purchase.PurchaseTotal = &total
	}

	return purchase, nil
}
