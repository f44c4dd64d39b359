package pgrepo

import (
	"context"
	"sort"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	"github.com/shopspring/decimal"
)

type LedgerRepository struct {
	db uow.DBTX
}

func NewLedgerRepository(db uow.DBTX) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// LockAccounts берет FOR UPDATE блокировки строк счетов строго в порядке
// возрастания id. Единый порядок захвата исключает взаимную блокировку двух
// встречных переводов A->B и B->A.
func (r *LedgerRepository) LockAccounts(ctx context.Context, accountIDs []int64) error {
	ids := make([]int64, len(accountIDs))
	copy(ids, accountIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		var locked int64
		err := r.db.QueryRow(ctx, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			return convertErr(err, "locking account %d", id)
		}
	}
	return nil
}

// AppendPair вставляет пару записей журнала одного перевода одним запросом:
// либо обе строки попадают в журнал, либо ни одной.
func (r *LedgerRepository) AppendPair(
	ctx context.Context,
	args repoargs.LedgerAppend,
) ([]domain.LedgerEntry, error) {
	const query = `
		INSERT INTO ledger_entries (account_id, transfer_id, direction, amount)
		VALUES ($1, $2, 'debit', $3), ($4, $2, 'credit', $3)
		RETURNING id, created_at, account_id, transfer_id, direction, amount`

	rows, err := r.db.Query(ctx, query, args.FromAccountID, args.TransferID, args.Amount, args.ToAccountID)
	if err != nil {
		return nil, convertErr(err, "appending ledger pair for transfer %s", args.TransferID)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if scanErr := rows.Scan(&e.ID, &e.CreatedAt, &e.AccountID, &e.TransferID, &e.Direction, &e.Amount); scanErr != nil {
			return nil, convertErr(scanErr, "scanning ledger pair for transfer %s", args.TransferID)
		}
		entries = append(entries, e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "reading ledger pair for transfer %s", args.TransferID)
	}
	return entries, nil
}

// Balance свертка журнала по счету. Внутри транзакции, после LockAccounts,
// результат авторитетен: конкурентное списание с того же счета ждет нашу блокировку.
func (r *LedgerRepository) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(CASE WHEN direction = 'credit' THEN amount ELSE -amount END), 0)
		FROM ledger_entries WHERE account_id = $1`

	var balance decimal.Decimal
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return decimal.Zero, convertErr(err, "folding balance for account %d", accountID)
	}
	return balance, nil
}

// GetByAccountID возвращает записи журнала счета, новые первыми.
func (r *LedgerRepository) GetByAccountID(
	ctx context.Context,
	accountID int64,
) ([]domain.LedgerEntry, error) {
	const query = `
		SELECT id, created_at, account_id, transfer_id, direction, amount
		FROM ledger_entries WHERE account_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, convertErr(err, "getting ledger entries for account %d", accountID)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if scanErr := rows.Scan(&e.ID, &e.CreatedAt, &e.AccountID, &e.TransferID, &e.Direction, &e.Amount); scanErr != nil {
			return nil, convertErr(scanErr, "scanning ledger entry for account %d", accountID)
		}
		entries = append(entries, e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "reading ledger entries for account %d", accountID)
	}
	return entries, nil
}
