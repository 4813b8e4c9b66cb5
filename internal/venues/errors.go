package venues

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrVenueNotFound            = fmt.Errorf("%w: venue not found", domainerr.ErrNotFound)
	ErrLocalityNotFound         = fmt.Errorf("%w: locality not found", domainerr.ErrNotFound)
	ErrOfferNotFound            = fmt.Errorf("%w: offer not found", domainerr.ErrNotFound)
	ErrInvalidVenue             = fmt.Errorf("%w: venue needs a name and positive capacity", domainerr.ErrValidation)
	ErrInvalidLocality          = fmt.Errorf("%w: locality needs a name, positive capacity and non-negative price", domainerr.ErrValidation)
	ErrCapacityExceeded         = fmt.Errorf("%w: localities exceed venue capacity", domainerr.ErrValidation)
	ErrInvalidBundleDiscount    = fmt.Errorf("%w: bundle discount must be in [0, 1)", domainerr.ErrValidation)
	ErrInvalidDiscount          = fmt.Errorf("%w: discount must be in (0, 1]", domainerr.ErrValidation)
	ErrInvalidWindow            = fmt.Errorf("%w: offer must expire after it starts", domainerr.ErrValidation)
	ErrInvalidQuantity          = fmt.Errorf("%w: quantity must be positive", domainerr.ErrValidation)
	ErrVenueAlreadyApproved     = fmt.Errorf("%w: venue is already approved", domainerr.ErrStateConflict)
	ErrVenueNotApproved         = fmt.Errorf("%w: venue is not approved", domainerr.ErrStateConflict)
	ErrInsufficientAvailability = fmt.Errorf("%w: not enough tickets left in locality", domainerr.ErrStateConflict)
	ErrNotEventOrganizer        = fmt.Errorf("%w: only the event organizer may do this", domainerr.ErrForbidden)
)
