package counteroffers

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrCounterofferNotFound = fmt.Errorf("%w: counteroffer not found", domainerr.ErrNotFound)
	ErrInvalidPrice         = fmt.Errorf("%w: counteroffer must be positive and below the asking price", domainerr.ErrValidation)
	ErrListingMismatch      = fmt.Errorf("%w: counteroffer does not belong to this listing", domainerr.ErrValidation)
	ErrDuplicatePending     = fmt.Errorf("%w: buyer already has a pending counteroffer on this listing", domainerr.ErrStateConflict)
	ErrNotPending           = fmt.Errorf("%w: counteroffer is no longer pending", domainerr.ErrStateConflict)
	ErrOwnListing           = fmt.Errorf("%w: sellers cannot bid on their own listing", domainerr.ErrStateConflict)
	ErrNotSeller            = fmt.Errorf("%w: only the seller may resolve counteroffers", domainerr.ErrForbidden)
)
