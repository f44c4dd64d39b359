package pgrepo

import (
	"context"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
)

type AccountRepository struct {
	db uow.DBTX
}

func NewAccountRepository(db uow.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) CreateAccount(
	ctx context.Context,
	args repoargs.AccountCreate,
) (*domain.Account, error) {
	const query = `
		INSERT INTO accounts (phone_number, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at, phone_number, username, password_hash`

	var acc domain.Account
	err := r.db.QueryRow(ctx, query, args.PhoneNumber, args.Username, args.PasswordHash).
		Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt, &acc.PhoneNumber, &acc.Username, &acc.PasswordHash)
	if err != nil {
		return nil, convertErr(err, "creating account %s", args.PhoneNumber)
	}
	return &acc, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	const query = `
		SELECT id, created_at, updated_at, phone_number, username, password_hash
		FROM accounts WHERE id = $1`

	var acc domain.Account
	err := r.db.QueryRow(ctx, query, id).
		Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt, &acc.PhoneNumber, &acc.Username, &acc.PasswordHash)
	if err != nil {
		return nil, convertErr(err, "finding account by id %d", id)
	}
	return &acc, nil
}

func (r *AccountRepository) FindByPhoneNumber(
	ctx context.Context,
	phoneNumber string,
) (*domain.Account, error) {
	const query = `
		SELECT id, created_at, updated_at, phone_number, username, password_hash
		FROM accounts WHERE phone_number = $1`

	var acc domain.Account
	err := r.db.QueryRow(ctx, query, phoneNumber).
		Scan(&acc.ID, &acc.CreatedAt, &acc.UpdatedAt, &acc.PhoneNumber, &acc.Username, &acc.PasswordHash)
	if err != nil {
		return nil, convertErr(err, "finding account by phone number %s", phoneNumber)
	}
	return &acc, nil
}
