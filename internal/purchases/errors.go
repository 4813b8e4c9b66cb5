package purchases

import (
	"fmt"

	"boletamaster/internal/shared/domainerr"
)

var (
	ErrPurchaseNotFound = fmt.Errorf("%w: purchase not found", domainerr.ErrNotFound)
	ErrNotYourPurchase  = fmt.Errorf("%w: purchase belongs to another user", domainerr.ErrForbidden)
)
