package refunds

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrRequestNotFound  = fmt.Errorf("%w: refund request not found", domainerr.ErrNotFound)
	ErrInvalidReason    = fmt.Errorf("%w: a reason of 10 to 500 characters is required", domainerr.ErrValidation)
	ErrNotHolder        = fmt.Errorf("%w: only the ticket holder may request a refund", domainerr.ErrForbidden)
	ErrDuplicatePending = fmt.Errorf("%w: ticket already has a pending refund request", domainerr.ErrStateConflict)
	ErrNotPending       = fmt.Errorf("%w: refund request was already decided", domainerr.ErrStateConflict)
)
