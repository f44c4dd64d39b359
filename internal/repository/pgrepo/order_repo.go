package pgrepo

import (
	"context"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	"github.com/google/uuid"
)

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, created_at, updated_at, buyer_account_id, vendor_account_id,
	food_name, quantity, total_price, payment_status, linked_transfer_id`

func (r *OrderRepository) CreateOrder(
	ctx context.Context,
	args repoargs.OrderCreate,
) (*domain.Order, error) {
	const query = `
		INSERT INTO orders (buyer_account_id, vendor_account_id, food_name, quantity, total_price, payment_status)
		VALUES ($1, $2, $3, $4, $5, 'unpaid')
		RETURNING ` + orderColumns

	row := r.db.QueryRow(ctx, query,
		args.BuyerAccountID, args.VendorAccountID, args.FoodName, args.Quantity, args.TotalPrice)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for buyer %d", args.BuyerAccountID)
	}
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, convertErr(err, "finding order %d", id)
	}
	return order, nil
}

// GetByAccountID возвращает заказы, где счет выступает покупателем или продавцом,
// новые первыми.
func (r *OrderRepository) GetByAccountID(ctx context.Context, accountID int64) ([]domain.Order, error) {
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE buyer_account_id = $1 OR vendor_account_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, convertErr(err, "getting orders for account %d", accountID)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning order for account %d", accountID)
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "reading orders for account %d", accountID)
	}
	return orders, nil
}

func (r *OrderRepository) MarkPaid(
	ctx context.Context,
	orderID int64,
	transferID uuid.UUID,
) (*domain.Order, error) {
	const query = `
		UPDATE orders SET payment_status = 'paid', linked_transfer_id = $2, updated_at = now()
		WHERE id = $1 AND payment_status = 'unpaid'
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRow(ctx, query, orderID, transferID))
	if err != nil {
		return nil, convertErr(err, "marking order %d paid by transfer %s", orderID, transferID)
	}
	return order, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.BuyerAccountID, &o.VendorAccountID,
		&o.FoodName, &o.Quantity, &o.TotalPrice, &o.PaymentStatus, &o.LinkedTransferID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &o, nil
}
