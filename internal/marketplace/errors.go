package marketplace

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrWrongCredentials  = fmt.Errorf("%w: wrong credentials", domainerr.ErrForbidden)
	ErrNotCustomer       = fmt.Errorf("%w: only buyers and organizers can hold tickets", domainerr.ErrForbidden)
	ErrNotEventOrganizer = fmt.Errorf("%w: only the event organizer may do this", domainerr.ErrForbidden)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be at least 1", domainerr.ErrValidation)
	ErrSameHolder        = fmt.Errorf("%w: sender and recipient are the same", domainerr.ErrValidation)
	ErrLocalityMismatch  = fmt.Errorf("%w: locality does not belong to the event", domainerr.ErrValidation)
	ErrRecipientInvalid  = fmt.Errorf("%w: recipient cannot hold tickets", domainerr.ErrStateConflict)
	ErrEventNotActive    = fmt.Errorf("%w: event is not on sale", domainerr.ErrStateConflict)
	ErrEventClosed       = fmt.Errorf("%w: event is cancelled or already took place", domainerr.ErrStateConflict)
	ErrOwnListing        = fmt.Errorf("%w: sellers cannot buy their own listing", domainerr.ErrStateConflict)
	ErrStaleListing      = fmt.Errorf("%w: listed ticket can no longer be resold", domainerr.ErrStateConflict)
	ErrConcurrentUpdate  = fmt.Errorf("%w: ticket changed while waiting, try again", domainerr.ErrStateConflict)
	ErrLockTimeout       = fmt.Errorf("%w: resource is busy, try again", domainerr.ErrStateConflict)
)
