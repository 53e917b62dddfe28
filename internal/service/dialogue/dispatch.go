package dialogue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/service/nlu"
)

type lookupPayload struct {
	CustomerName string `json:"customer_name"`
	DOB          string `json:"dob"`
}

type transactionsPayload struct {
	CustomerID string `json:"customer_id"`
	Accounts   []struct {
		ProductID   string `json:"product_id"`
		ProductName string `json:"product_name"`
	} `json:"accounts"`
}

// dispatch extracts the filled payload from the conversation and runs the
// route's banking operation. Failures are reported in the result, never
// returned, so the turn itself still succeeds.
func (s *Service) dispatch(ctx context.Context, route nlu.Route, history []domain.Turn) *domain.DispatchResult {
	result := &domain.DispatchResult{Operation: route.Operation}

	payload, err := nlu.ExtractPayload(ctx, s.llm, route, history)
	if err != nil {
		s.log.Warn("Payload extraction failed", zap.String("operation", route.Operation), zap.Error(err))
		result.Error = err.Error()
		return result
	}
	result.Payload = payload

	out, err := s.run(ctx, route.Operation, payload)
	if err != nil {
		s.log.Warn("Dispatched operation failed", zap.String("operation", route.Operation), zap.Error(err))
		result.Error = err.Error()
		return result
	}
	result.Result = out
	return result
}

func (s *Service) run(ctx context.Context, operation string, payload map[string]interface{}) (interface{}, error) {
	switch operation {
	case nlu.OpBalancesGet:
		var req domain.BalanceRequest
		if err := remarshal(payload, &req); err != nil {
			return nil, err
		}
		return s.banking.GetBalances(ctx, req)

	case nlu.OpCardUpdate:
		var req domain.CardUpdateRequest
		if err := remarshal(payload, &req); err != nil {
			return nil, err
		}
		return s.banking.UpdateCard(ctx, req)

	case nlu.OpCustomerLookup:
		var p lookupPayload
		if err := remarshal(payload, &p); err != nil {
			return nil, err
		}
		return s.banking.LookupCustomer(ctx, domain.CustomerLookupRequest{Name: p.CustomerName, Birthdate: p.DOB})

	case nlu.OpTransactionsFilter:
		var p transactionsPayload
		if err := remarshal(payload, &p); err != nil {
			return nil, err
		}
		resp, err := s.banking.FilterTransactions(ctx, domain.TransactionsFilterRequest{CustomerID: p.CustomerID})
		if err != nil {
			return nil, err
		}
		if len(p.Accounts) == 0 {
			return resp, nil
		}
		wanted := make(map[string]bool, len(p.Accounts))
		for _, a := range p.Accounts {
			wanted[a.ProductID] = true
		}
		return restrictToProducts(resp, wanted), nil
	}
	return nil, fmt.Errorf("%w: unknown operation %q", domain.ErrValidation, operation)
}

// restrictToProducts keeps only the items of the wanted products and
// recomputes the total.
func restrictToProducts(resp *domain.TransactionsResponse, wanted map[string]bool) *domain.TransactionsResponse {
	out := &domain.TransactionsResponse{
		CustomerID: resp.CustomerID,
		Currency:   resp.Currency,
		Items:      make([]domain.TransactionItem, 0, len(resp.Items)),
	}
	var total float64
	for _, item := range resp.Items {
		if wanted[item.ProductID] {
			out.Items = append(out.Items, item)
			total += item.Amount
		}
	}
	out.Total = domain.RoundCents(total)
	return out
}

func remarshal(payload map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: payload does not match the operation: %v", domain.ErrValidation, err)
	}
	return nil
}
