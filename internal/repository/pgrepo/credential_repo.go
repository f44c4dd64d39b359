package pgrepo

import (
	"context"
	"time"

	"github.com/fsdevblog/canteen-wallet/pkg/uow"
)

type CredentialAttemptRepository struct {
	db uow.DBTX
}

func NewCredentialAttemptRepository(db uow.DBTX) *CredentialAttemptRepository {
	return &CredentialAttemptRepository{db: db}
}

func (r *CredentialAttemptRepository) RecordAttempt(
	ctx context.Context,
	accountID int64,
	success bool,
) error {
	const query = `INSERT INTO credential_attempts (account_id, success) VALUES ($1, $2)`

	if _, err := r.db.Exec(ctx, query, accountID, success); err != nil {
		return convertErr(err, "recording credential attempt for account %d", accountID)
	}
	return nil
}

func (r *CredentialAttemptRepository) CountRecentFailures(
	ctx context.Context,
	accountID int64,
	since time.Time,
) (int64, error) {
	const query = `
		SELECT COUNT(*) FROM credential_attempts
		WHERE account_id = $1 AND success = false AND created_at >= $2`

	var count int64
	if err := r.db.QueryRow(ctx, query, accountID, since).Scan(&count); err != nil {
		return 0, convertErr(err, "counting credential failures for account %d", accountID)
	}
	return count, nil
}
