package users

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrUserNotFound  = fmt.Errorf("%w: user not found", domainerr.ErrNotFound)
	ErrInvalidInput  = fmt.Errorf("%w: login and password are required", domainerr.ErrValidation)
	ErrUserExists    = fmt.Errorf("%w: login already taken", domainerr.ErrStateConflict)
	ErrNoWallet      = fmt.Errorf("%w: account has no wallet", domainerr.ErrStateConflict)
	ErrInvalidRole   = fmt.Errorf("%w: invalid role", domainerr.ErrValidation)
	ErrInvalidAmount = fmt.Errorf("%w: amount must be positive", domainerr.ErrValidation)
)
