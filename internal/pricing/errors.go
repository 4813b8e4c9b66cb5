package pricing

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrInvalidInput        = fmt.Errorf("%w: invalid pricing input", domainerr.ErrValidation)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", domainerr.ErrValidation)
	ErrPurchaseCapExceeded = fmt.Errorf("%w: too many tickets in one transaction", domainerr.ErrValidation)
	ErrInsufficientFunds   = fmt.Errorf("%w: balance below purchase amount", domainerr.ErrInsufficientFunds)
)
