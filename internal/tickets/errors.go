package tickets

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrTicketNotFound  = fmt.Errorf("%w: ticket not found", domainerr.ErrNotFound)
	ErrInvalidKind     = fmt.Errorf("%w: unknown ticket kind", domainerr.ErrValidation)
	ErrInvalidCount    = fmt.Errorf("%w: bundle count must be at least 1", domainerr.ErrValidation)
	ErrInvalidDiscount = fmt.Errorf("%w: bundle discount must be in [0,1)", domainerr.ErrValidation)
	ErrNegativePrice   = fmt.Errorf("%w: base price cannot be negative", domainerr.ErrValidation)
	ErrNotBundle       = fmt.Errorf("%w: ticket is not a discount bundle", domainerr.ErrValidation)
	ErrIndexOutOfRange = fmt.Errorf("%w: bundle index out of range", domainerr.ErrValidation)
	ErrTicketNotValid  = fmt.Errorf("%w: ticket is used or expired", domainerr.ErrStateConflict)
)
