package banking

import (
	"fmt"
	"strings"
	"time"

	"github.com/seu-repo/voice-banking/internal/domain"
)

const (
	dayLayout = "2006-01-02"
	maxLimit  = 100
)

func requireCustomerID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: customer_id is required", domain.ErrValidation)
	}
	return nil
}

// parseDay reads a YYYY-MM-DD field; empty input is the zero time.
func parseDay(field, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dayLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", domain.ErrValidation, field)
	}
	return t, nil
}

func transactionFilter(req domain.TransactionsFilterRequest) (domain.TransactionFilter, error) {
	var filter domain.TransactionFilter
	if err := requireCustomerID(req.CustomerID); err != nil {
		return filter, err
	}

	if req.N != nil && (*req.N < 1 || *req.N > maxLimit) {
		return filter, fmt.Errorf("%w: n must be between 1 and %d", domain.ErrValidation, maxLimit)
	}
	if req.MinAmount != nil && *req.MinAmount < 0 {
		return filter, fmt.Errorf("%w: min_amount must be greater than or equal to 0", domain.ErrValidation)
	}

	var err error
	if req.DateFrom != nil {
		if filter.DateFrom, err = parseDay("date_from", *req.DateFrom); err != nil {
			return filter, err
		}
	}
	if req.DateTo != nil {
		if filter.DateTo, err = parseDay("date_to", *req.DateTo); err != nil {
			return filter, err
		}
	}
	if !filter.DateFrom.IsZero() && !filter.DateTo.IsZero() && filter.DateTo.Before(filter.DateFrom) {
		return filter, fmt.Errorf("%w: date_to cannot be earlier than date_from", domain.ErrValidation)
	}

	if req.Merchant != nil {
		filter.Merchant = *req.Merchant
	}
	filter.N = req.N
	filter.MinAmount = req.MinAmount
	return filter, nil
}
