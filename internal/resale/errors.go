package resale

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrListingNotFound   = fmt.Errorf("%w: listing not found", domainerr.ErrNotFound)
	ErrInvalidPrice      = fmt.Errorf("%w: resale price must be positive", domainerr.ErrValidation)
	ErrInvalidTicketType = fmt.Errorf("%w: premium bundles cannot be resold", domainerr.ErrValidation)
	ErrNotOwner          = fmt.Errorf("%w: seller does not hold the ticket", domainerr.ErrStateConflict)
	ErrNotTransferable   = fmt.Errorf("%w: ticket is not transferable", domainerr.ErrStateConflict)
	ErrAlreadyListed     = fmt.Errorf("%w: ticket already has an active listing", domainerr.ErrStateConflict)
	ErrListingInactive   = fmt.Errorf("%w: listing is not active", domainerr.ErrStateConflict)
	ErrNotSeller         = fmt.Errorf("%w: only the seller may do this", domainerr.ErrForbidden)
)
