package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"launchcontrol/internal/handlers/business"
	"launchcontrol/pkg/ledger"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{business.ErrLaunchNotFound, http.StatusNotFound},
		{business.ErrNameTaken, http.StatusConflict},
		{business.ErrSymbolTaken, http.StatusConflict},
		{business.ErrAlreadyLaunched, http.StatusConflict},
		{business.ErrLaunchCancelled, http.StatusConflict},
		{business.ErrStalePrice, http.StatusUnprocessableEntity},
		{business.ErrExcessivePriceDeviation, http.StatusUnprocessableEntity},
		{business.ErrPairPreFunded, http.StatusUnprocessableEntity},
		{business.ErrUnauthorized, http.StatusForbidden},
		{business.ErrBelowMinimum, http.StatusBadRequest},
		{business.ErrExcessiveContribution, http.StatusBadRequest},
		{business.ErrTokenApprovalRequired, http.StatusBadRequest},
		{ledger.ErrInsufficientBalance, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}

	// Wrapped sentinels map the same way.
	wrapped := fmt.Errorf("primary pool: %w", business.ErrPairPreFunded)
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(wrapped))
}
