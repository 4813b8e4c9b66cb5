package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, user *User, wallet *Wallet) error
	GetUser(ctx context.Context, login string) (*User, error)
	GetWallet(ctx context.Context, login string) (*Wallet, error)
	// Debit subtracts amount only if the balance covers it
	Debit(ctx context.Context, login string, amount decimal.Decimal) (bool, error)
	Credit(ctx context.Context, login string, amount decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User, wallet *Wallet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
				return ErrUserExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		if wallet != nil {
			if err := tx.Create(wallet).Error; err != nil {
				return fmt.Errorf("failed to create wallet: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) GetUser(ctx context.Context, login string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *repository) GetWallet(ctx context.Context, login string) (*Wallet, error) {
	var wallet Wallet
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoWallet
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *repository) Debit(ctx context.Context, login string, amount decimal.Decimal) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Wallet{}).
		Where("login = ? AND balance >= ?", login, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, fmt.Errorf("failed to debit wallet: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	if _, err := r.GetWallet(ctx, login); err != nil {
		return false, err
	}
	return false, nil
}

func (r *repository) Credit(ctx context.Context, login string, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&Wallet{}).
		Where("login = ?", login).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to credit wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoWallet
	}
	return nil
}

type memoryRepository struct {
	mu      sync.Mutex
	users   map[string]User
	wallets map[string]decimal.Decimal
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		users:   make(map[string]User),
		wallets: make(map[string]decimal.Decimal),
	}
}

func (m *memoryRepository) Create(_ context.Context, user *User, wallet *Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Login]; ok {
		return ErrUserExists
	}
	m.users[user.Login] = *user
	if wallet != nil {
		m.wallets[wallet.Login] = wallet.Balance
	}
	return nil
}

func (m *memoryRepository) GetUser(_ context.Context, login string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryRepository) GetWallet(_ context.Context, login string) (*Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.wallets[login]
	if !ok {
		return nil, ErrNoWallet
	}
	return &Wallet{Login: login, Balance: balance}, nil
}

func (m *memoryRepository) Debit(_ context.Context, login string, amount decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.wallets[login]
	if !ok {
		return false, ErrNoWallet
	}
	if balance.LessThan(amount) {
		return false, nil
	}
	m.wallets[login] = balance.Sub(amount)
	return true, nil
}

func (m *memoryRepository) Credit(_ context.Context, login string, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	balance, ok := m.wallets[login]
	if !ok {
		return ErrNoWallet
	}
	m.wallets[login] = balance.Add(amount)
	return nil
}
