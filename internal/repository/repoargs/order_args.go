package repoargs

import "github.com/shopspring/decimal"

type OrderCreate struct {
	BuyerAccountID  int64
	VendorAccountID int64
	FoodName        string
	Quantity        int32
	TotalPrice      decimal.Decimal
}

type AccountCreate struct {
	PhoneNumber  string
	Username     string
	PasswordHash string
}
