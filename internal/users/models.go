package users

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleBuyer     Role = "BUYER"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleBuyer, RoleOrganizer, RoleAdmin:
		return true
	default:
		return false
	}
}

// HasWallet reports whether accounts of this role carry a balance
func (r Role) HasWallet() bool {
	return r == RoleBuyer || r == RoleOrganizer
}

// User holds identity and credentials only. Balances live in Wallet, which
// exists solely for roles that may hold one.
type User struct {
	Login        string    `json:"login" gorm:"primaryKey;size:100"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"size:20;not null"`
	DisplayName  string    `json:"display_name" gorm:"size:200"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Wallet struct {
	Login     string          `json:"login" gorm:"primaryKey;size:100"`
	Balance   decimal.Decimal `json:"balance" gorm:"type:numeric(14,2);not null;default:0;check:balance >= 0"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Principal is a resolved account: either a *Customer or an *Administrator
type Principal interface {
	Account() User
}

// Customer is a buyer or organizer; it can hold tickets and money
type Customer struct {
	User   User
	Wallet Wallet
}

func (c *Customer) Account() User { return c.User }

// Administrator has no wallet field at all
type Administrator struct {
	User User
}

func (a *Administrator) Account() User { return a.User }
