package events

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrEventNotFound     = fmt.Errorf("%w: event not found", domainerr.ErrNotFound)
	ErrInvalidEvent      = fmt.Errorf("%w: name and venue are required", domainerr.ErrValidation)
	ErrShowTimeInPast    = fmt.Errorf("%w: show time must be in the future", domainerr.ErrValidation)
	ErrVenueNotApproved  = fmt.Errorf("%w: venue is not approved", domainerr.ErrStateConflict)
	ErrEventNotPending   = fmt.Errorf("%w: event is not pending approval", domainerr.ErrStateConflict)
	ErrEventCancelled    = fmt.Errorf("%w: event is already cancelled", domainerr.ErrStateConflict)
	ErrNotEventOrganizer = fmt.Errorf("%w: only the event organizer may do this", domainerr.ErrForbidden)
)
