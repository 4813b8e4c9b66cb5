package users

import "github.com/shopspring/decimal"

type WalletResponse struct {
	Login   string          `json:"login"`
	Role    Role            `json:"role"`
	Balance decimal.Decimal `json:"balance"`
}
