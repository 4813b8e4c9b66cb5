package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Service is the user directory consumed by the marketplace core
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Get(ctx context.Context, login string) (*User, error)
	Resolve(ctx context.Context, login string) (Principal, error)
	ValidateCredentials(ctx context.Context, login, password string) (bool, error)

	GetBalance(ctx context.Context, login string) (decimal.Decimal, error)
	Debit(ctx context.Context, login string, amount decimal.Decimal) (bool, error)
	Credit(ctx context.Context, login string, amount decimal.Decimal) error
	Deposit(ctx context.Context, login string, amount decimal.Decimal) (decimal.Decimal, error)
}

type RegisterInput struct {
	Login          string
	Password       string
	Role           Role
	DisplayName    string
	InitialBalance decimal.Decimal
}

type Option func(*service)

// WithHashCost overrides the bcrypt cost, mostly for tests
func WithHashCost(cost int) Option {
	return func(s *service) { s.hashCost = cost }
}

type service struct {
	repo     Repository
	hashCost int
}

func NewService(repo Repository, opts ...Option) Service {
	s := &service{repo: repo, hashCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Login = strings.TrimSpace(in.Login)
	if in.Login == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}
	if !IsValidRole(string(in.Role)) {
		return nil, ErrInvalidRole
	}
	if in.InitialBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Login:        in.Login,
		PasswordHash: string(hash),
		Role:         in.Role,
		DisplayName:  in.DisplayName,
	}
	var wallet *Wallet
	if in.Role.HasWallet() {
		wallet = &Wallet{Login: in.Login, Balance: in.InitialBalance}
	}
	if err := s.repo.Create(ctx, user, wallet); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Get(ctx context.Context, login string) (*User, error) {
	return s.repo.GetUser(ctx, login)
}

func (s *service) Resolve(ctx context.Context, login string) (Principal, error) {
	user, err := s.repo.GetUser(ctx, login)
	if err != nil {
		return nil, err
	}
	if !user.Role.HasWallet() {
		return &Administrator{User: *user}, nil
	}
	wallet, err := s.repo.GetWallet(ctx, login)
	if err != nil {
		return nil, err
	}
	return &Customer{User: *user, Wallet: *wallet}, nil
}

func (s *service) ValidateCredentials(ctx context.Context, login, password string) (bool, error) {
	user, err := s.repo.GetUser(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil, nil
}

func (s *service) GetBalance(ctx context.Context, login string) (decimal.Decimal, error) {
	wallet, err := s.repo.GetWallet(ctx, login)
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

func (s *service) Debit(ctx context.Context, login string, amount decimal.Decimal) (bool, error) {
	if amount.IsNegative() {
		return false, ErrInvalidAmount
	}
	return s.repo.Debit(ctx, login, amount)
}

func (s *service) Credit(ctx context.Context, login string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	return s.repo.Credit(ctx, login, amount)
}

// Deposit tops up a wallet through the simulated payment gateway
func (s *service) Deposit(ctx context.Context, login string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := s.repo.Credit(ctx, login, amount); err != nil {
		return decimal.Zero, err
	}
	return s.GetBalance(ctx, login)
}
