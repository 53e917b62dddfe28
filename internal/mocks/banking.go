package mocks

import (
	"context"
	"errors"

	"github.com/seu-repo/voice-banking/internal/domain"
)

var errNotScripted = errors.New("mock banking service: operation not scripted")

// MockBankingService is a mock implementation of ports.BankingService
type MockBankingService struct {
	GetBalancesFunc        func(ctx context.Context, req domain.BalanceRequest) (*domain.BalanceResponse, error)
	LookupCustomerFunc     func(ctx context.Context, req domain.CustomerLookupRequest) (*domain.CustomerLookupResponse, error)
	FilterTransactionsFunc func(ctx context.Context, req domain.TransactionsFilterRequest) (*domain.TransactionsResponse, error)
	UpdateCardFunc         func(ctx context.Context, req domain.CardUpdateRequest) (*domain.CardUpdateResponse, error)
	UpdateContactFunc      func(ctx context.Context, req domain.ContactUpdateRequest) (*domain.ContactUpdateResponse, error)
	OpenSavingsFunc        func(ctx context.Context, req domain.SavingsOpenRequest) (*domain.SavingsOpenResponse, error)
	CreateAppointmentFunc  func(ctx context.Context, req domain.AppointmentCreateRequest) (*domain.AppointmentCreateResponse, error)
}

func (m *MockBankingService) GetBalances(ctx context.Context, req domain.BalanceRequest) (*domain.BalanceResponse, error) {
	if m.GetBalancesFunc != nil {
		return m.GetBalancesFunc(ctx, req)
	}
	return nil, errNotScripted
}

func (m *MockBankingService) LookupCustomer(ctx context.Context, req domain.CustomerLookupRequest) (*domain.CustomerLookupResponse, error) {
	if m.LookupCustomerFunc != nil {
		return m.LookupCustomerFunc(ctx, req)
	}
	return nil, errNotScripted
}

func (m *MockBankingService) FilterTransactions(ctx context.Context, req domain.TransactionsFilterRequest) (*domain.TransactionsResponse, error) {
	if m.FilterTransactionsFunc != nil {
		return m.FilterTransactionsFunc(ctx, req)
	}
	return nil, errNotScripted
}

func (m *MockBankingService) UpdateCard(ctx context.Context, req domain.CardUpdateRequest) (*domain.CardUpdateResponse, error) {
	if m.UpdateCardFunc != nil {
		return m.UpdateCardFunc(ctx, req)
	}
	return nil, errNotScripted
}

func (m *MockBankingService) UpdateContact(ctx context.Context, req domain.ContactUpdateRequest) (*domain.ContactUpdateResponse, error) {
	if m.UpdateContactFunc != nil {
		return m.UpdateContactFunc(ctx, req)
	}
	return nil, errNotScripted
}

func (m *MockBankingService) OpenSavings(ctx context.Context, req domain.SavingsOpenRequest) (*domain.SavingsOpenResponse, error) {
	if m.OpenSavingsFunc != nil {
		return m.OpenSavingsFunc(ctx, req)
	}
	return nil, errNotScripted
}

func (m *MockBankingService) CreateAppointment(ctx context.Context, req domain.AppointmentCreateRequest) (*domain.AppointmentCreateResponse, error) {
	if m.CreateAppointmentFunc != nil {
		return m.CreateAppointmentFunc(ctx, req)
	}
	return nil, errNotScripted
}
