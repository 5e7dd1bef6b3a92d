package http

import (
	"errors"
	"net/http"

	"github.com/radieske/prediction-ledger/internal/settlement/domain"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{domain.ErrUnknownAccount, http.StatusNotFound},
	{domain.ErrUnknownMarket, http.StatusNotFound},
	{domain.ErrEscrowNotFound, http.StatusNotFound},

	{domain.ErrDuplicateAccount, http.StatusConflict},
	{domain.ErrDuplicateMarketID, http.StatusConflict},
	{domain.ErrDuplicateBet, http.StatusConflict},
	{domain.ErrMarketNotOpen, http.StatusConflict},
	{domain.ErrMarketAlreadyResolved, http.StatusConflict},

	{domain.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{domain.ErrInvalidAccount, http.StatusUnprocessableEntity},
	{domain.ErrInvalidMarket, http.StatusUnprocessableEntity},
	{domain.ErrInvalidOutcomeIndex, http.StatusUnprocessableEntity},
	{domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
	{domain.ErrInvalidUpgrade, http.StatusUnprocessableEntity},

	{domain.ErrLedgerUnavailable, http.StatusServiceUnavailable},
}

// statusFor mapeia um erro de domínio para o status HTTP.
func statusFor(err error) int {
	for _, s := range statusByErr {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
