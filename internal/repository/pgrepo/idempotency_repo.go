package pgrepo

import (
	"context"
	"errors"

	"github.com/fsdevblog/canteen-wallet/internal/domain"
	"github.com/fsdevblog/canteen-wallet/internal/repository/repoargs"
	"github.com/fsdevblog/canteen-wallet/pkg/uow"
	"github.com/jackc/pgx/v5"
)

type IdempotencyRepository struct {
	db uow.DBTX
}

func NewIdempotencyRepository(db uow.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// Reserve атомарно резервирует ключ. Протухшая запись под тем же ключом сначала
// удаляется — после окна хранения ключ снова считается свободным. Вставка через
// ON CONFLICT DO NOTHING: из двух конкурентных запросов с одним ключом ровно один
// увидит Fresh, второй дождется исхода первой транзакции и получит Duplicate
// либо Conflict.
func (r *IdempotencyRepository) Reserve(
	ctx context.Context,
	args repoargs.IdempotencyReserve,
) (*repoargs.Reservation, error) {
	_, delErr := r.db.Exec(ctx,
		`DELETE FROM idempotency_records WHERE key = $1 AND expires_at <= now()`, args.Key)
	if delErr != nil {
		return nil, convertErr(delErr, "purging expired idempotency key %s", args.Key)
	}

	const insertQuery = `
		INSERT INTO idempotency_records (key, request_fingerprint, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
		RETURNING key`

	var insertedKey string
	insErr := r.db.QueryRow(ctx, insertQuery, args.Key, args.Fingerprint, args.ExpiresAt).Scan(&insertedKey)
	if insErr == nil {
		return &repoargs.Reservation{State: domain.ReservationFresh}, nil
	}
	if !errors.Is(insErr, pgx.ErrNoRows) {
		return nil, convertErr(insErr, "reserving idempotency key %s", args.Key)
	}

	// Ключ уже занят: читаем запись и сверяем отпечаток запроса.
	record, findErr := r.findByKey(ctx, args.Key)
	if findErr != nil {
		return nil, findErr
	}

	state := domain.ReservationDuplicate
	if record.RequestFingerprint != args.Fingerprint {
		state = domain.ReservationConflict
	}
	return &repoargs.Reservation{State: state, Record: record}, nil
}

func (r *IdempotencyRepository) Complete(
	ctx context.Context,
	args repoargs.IdempotencyComplete,
) error {
	const query = `
		UPDATE idempotency_records SET transfer_id = $2, error_kind = $3
		WHERE key = $1`

	tag, err := r.db.Exec(ctx, query, args.Key, args.TransferID, args.ErrorKind)
	if err != nil {
		return convertErr(err, "completing idempotency key %s", args.Key)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "completing idempotency key %s", args.Key)
	}
	return nil
}

func (r *IdempotencyRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM idempotency_records WHERE expires_at <= now()`)
	if err != nil {
		return 0, convertErr(err, "purging expired idempotency records")
	}
	return tag.RowsAffected(), nil
}

func (r *IdempotencyRepository) findByKey(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	const query = `
		SELECT key, created_at, expires_at, request_fingerprint, transfer_id, error_kind
		FROM idempotency_records WHERE key = $1`

	var rec domain.IdempotencyRecord
	err := r.db.QueryRow(ctx, query, key).
		Scan(&rec.Key, &rec.CreatedAt, &rec.ExpiresAt, &rec.RequestFingerprint, &rec.TransferID, &rec.ErrorKind)
	if err != nil {
		return nil, convertErr(err, "finding idempotency key %s", key)
	}
	return &rec, nil
}
