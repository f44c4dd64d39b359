package pgrepo

import (
	"context"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	"github.com/google/uuid"
)

type TransferRepository struct {
	db uow.DBTX
}

func NewTransferRepository(db uow.DBTX) *TransferRepository {
	return &TransferRepository{db: db}
}

const transferColumns = `id, created_at, updated_at, from_account_id, to_account_id,
	amount, idempotency_key, status, order_id`

func (r *TransferRepository) Create(
	ctx context.Context,
	args repoargs.TransferCreate,
) (*domain.Transfer, error) {
	const query = `
		INSERT INTO transfers (id, from_account_id, to_account_id, amount, idempotency_key, status, order_id)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		RETURNING ` + transferColumns

	row := r.db.QueryRow(ctx, query,
		args.ID, args.FromAccountID, args.ToAccountID, args.Amount, args.IdempotencyKey, args.OrderID)
	transfer, err := scanTransfer(row)
	if err != nil {
		return nil, convertErr(err, "creating transfer %s", args.ID)
	}
	return transfer, nil
}

// UpdateStatus переводит pending перевод в терминальный статус. Guard по статусу
// в запросе: терминальный перевод изменить нельзя, вернется ErrRecordNotFound.
func (r *TransferRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TransferStatusType,
) (*domain.Transfer, error) {
	const query = `
		UPDATE transfers SET status = $2, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + transferColumns

	transfer, err := scanTransfer(r.db.QueryRow(ctx, query, id, status))
	if err != nil {
		return nil, convertErr(err, "updating transfer %s status to %s", id, status)
	}
	return transfer, nil
}

func (r *TransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	const query = `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	transfer, err := scanTransfer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, convertErr(err, "finding transfer %s", id)
	}
	return transfer, nil
}

func (r *TransferRepository) FindCommittedUnsettled(
	ctx context.Context,
	limit uint,
) ([]domain.Transfer, error) {
	const query = `
		SELECT t.id, t.created_at, t.updated_at, t.from_account_id, t.to_account_id,
			t.amount, t.idempotency_key, t.status, t.order_id
		FROM transfers t
		JOIN orders o ON o.id = t.order_id
		WHERE t.status = 'committed' AND o.payment_status = 'unpaid'
		ORDER BY t.created_at
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, convertErr(err, "finding committed unsettled transfers")
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		transfer, scanErr := scanTransfer(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning committed unsettled transfer")
		}
		transfers = append(transfers, *transfer)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "reading committed unsettled transfers")
	}
	return transfers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*domain.Transfer, error) {
	var t domain.Transfer
	err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt, &t.FromAccountID, &t.ToAccountID,
		&t.Amount, &t.IdempotencyKey, &t.Status, &t.OrderID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &t, nil
}
