package response

import (
	"fmt"
	"net/http"
	"testing"

	"boletamaster/internal/shared/domainerr"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("%w: empty", domainerr.ErrValidation):          http.StatusBadRequest,
		fmt.Errorf("%w: listing", domainerr.ErrNotFound):          http.StatusNotFound,
		fmt.Errorf("%w: seller only", domainerr.ErrForbidden):     http.StatusForbidden,
		fmt.Errorf("%w: inactive", domainerr.ErrStateConflict):    http.StatusConflict,
		fmt.Errorf("%w: short", domainerr.ErrInsufficientFunds):   http.StatusPaymentRequired,
		fmt.Errorf("failed to save ticket: %w", fmt.Errorf("io")): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}
