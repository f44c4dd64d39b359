// Сидер для локальной разработки: создает счета с начальным балансом и
// несколько неоплаченных заказов. В пустой базе безопасен, в непустой — no-op.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/canteen-wallet/internal/service/psswd"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	totalAccounts   = 50
	ordersPerVendor = 3
	// Один пароль на все сидовые счета, чтобы ходить по API руками.
	devPassword = "password"
)

var openingBalance = decimal.NewFromInt(1000)

func main() {
	_ = godotenv.Load()
	l := logrus.New()

	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		l.Fatal("DATABASE_URI is not set")
	}

	ctx := context.Background()
	conn, connErr := pgx.Connect(ctx, dsn)
	if connErr != nil {
		l.WithError(connErr).Fatal("connecting to database")
	}
	defer conn.Close(ctx) //nolint:errcheck

	if err := seed(ctx, conn, l); err != nil {
		l.WithError(err).Fatal("seeding failed")
	}
}

func seed(ctx context.Context, conn *pgx.Conn, l *logrus.Logger) error {
	var count int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return fmt.Errorf("counting accounts: %s", err.Error())
	}
	if count > 0 {
		l.Infof("database already has %d accounts, skipping", count)
		return nil
	}

	// bcrypt дорогой, хеш считаем один раз на всех.
	hash, hashErr := psswd.HashPassword(devPassword)
	if hashErr != nil {
		return fmt.Errorf("hashing dev password: %s", hashErr.Error())
	}

	accountIDs := make([]int64, 0, totalAccounts)
	for i := 0; i < totalAccounts; i++ {
		var id int64
		insertErr := conn.QueryRow(ctx,
			`INSERT INTO accounts (phone_number, username, password_hash)
			VALUES ($1, $2, $3) RETURNING id`,
			fmt.Sprintf("+7999%07d", i), gofakeit.Username(), hash,
		).Scan(&id)
		if insertErr != nil {
			return fmt.Errorf("inserting account: %s", insertErr.Error())
		}
		accountIDs = append(accountIDs, id)
	}
	l.Infof("seeded %d accounts (password %q)", len(accountIDs), devPassword)

	// Начальный баланс — credit-записи журнала без перевода. Это единственный
	// легальный случай ledger_entries.transfer_id IS NULL.
	rows := make([][]any, 0, len(accountIDs))
	for _, id := range accountIDs {
		rows = append(rows, []any{id, "credit", openingBalance})
	}
	copied, copyErr := conn.CopyFrom(ctx,
		pgx.Identifier{"ledger_entries"},
		[]string{"account_id", "direction", "amount"},
		pgx.CopyFromRows(rows),
	)
	if copyErr != nil {
		return fmt.Errorf("copying ledger entries: %s", copyErr.Error())
	}
	l.Infof("seeded %d opening-balance ledger entries", copied)

	// Первые счета считаем продавцами, остальные покупают у них.
	vendors := accountIDs[:len(accountIDs)/10+1]
	var orders int
	for _, vendorID := range vendors {
		for j := 0; j < ordersPerVendor; j++ {
			buyerID := accountIDs[gofakeit.Number(len(vendors), len(accountIDs)-1)]
			price := decimal.NewFromFloat(gofakeit.Price(50, 400)).Round(2)
			if _, err := conn.Exec(ctx,
				`INSERT INTO orders (buyer_account_id, vendor_account_id, food_name, quantity, total_price)
				VALUES ($1, $2, $3, $4, $5)`,
				buyerID, vendorID, gofakeit.Dinner(), gofakeit.Number(1, 5), price,
			); err != nil {
				return fmt.Errorf("inserting order: %s", err.Error())
			}
			orders++
		}
	}
	l.Infof("seeded %d unpaid orders", orders)
	return nil
}
