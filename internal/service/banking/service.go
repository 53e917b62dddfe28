package banking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/domain"
	"github.com/seu-repo/voice-banking/internal/observability/telemetry"
	"github.com/seu-repo/voice-banking/internal/ports"
)

const slotLayout = "2006-01-02T15:04:05"

var savingsNextSteps = []string{
	"Review and accept the terms and conditions in the ING app.",
	"Sign the digital contract with your itsme® or ING card reader.",
	"First deposit can be scheduled immediately after confirmation.",
}

// Service answers the banking operations from the read-only data store.
// Mutating operations are simulated: they validate, mint a reference id and
// write nothing back.
type Service struct {
	data ports.DataStoreProvider
	log  *zap.Logger
	now  func() time.Time
}

func NewService(data ports.DataStoreProvider, log *zap.Logger) *Service {
	return &Service{
		data: data,
		log:  log,
		now:  time.Now,
	}
}

// referenceID returns prefix-XXXXXXXX with eight uppercase hex characters.
func referenceID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(hex[:8])
}

func (s *Service) store(ctx context.Context) (ports.DataStore, error) {
	store, err := s.data.DataStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("data store unavailable: %w", err)
	}
	return store, nil
}

// observe counts the outcome of an operation and logs unexpected failures.
func (s *Service) observe(operation string, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrCustomerNotFound), errors.Is(err, domain.ErrNotFound):
		status = "not_found"
	case errors.Is(err, domain.ErrCustomerAmbiguous):
		status = "conflict"
	case errors.Is(err, domain.ErrValidation):
		status = "invalid"
	default:
		status = "error"
		s.log.Error("Banking operation failed", zap.String("operation", operation), zap.Error(err))
	}
	telemetry.BankingOperationsTotal.WithLabelValues(operation, status).Inc()
}

func (s *Service) GetBalances(ctx context.Context, req domain.BalanceRequest) (resp *domain.BalanceResponse, err error) {
	defer func() { s.observe("balances.get", err) }()

	if err := requireCustomerID(req.CustomerID); err != nil {
		return nil, err
	}
	var accountType domain.AccountType
	if req.AccountType != nil {
		if !req.AccountType.Valid() {
			return nil, fmt.Errorf("%w: account_type must be one of current, savings", domain.ErrValidation)
		}
		accountType = *req.AccountType
	}

	store, err := s.store(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := store.ListActiveAccounts(req.CustomerID, accountType)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: No active accounts found for customer %s", domain.ErrNotFound, req.CustomerID)
	}

	payloads := make([]domain.AccountPayload, 0, len(accounts))
	for _, account := range accounts {
		payloads = append(payloads, store.FormatAccount(account))
	}
	return &domain.BalanceResponse{CustomerID: req.CustomerID, Accounts: payloads}, nil
}

func (s *Service) LookupCustomer(ctx context.Context, req domain.CustomerLookupRequest) (resp *domain.CustomerLookupResponse, err error) {
	defer func() { s.observe("customer.lookup", err) }()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be blank", domain.ErrValidation)
	}
	birthdate, err := parseDay("birthdate", req.Birthdate)
	if err != nil {
		return nil, err
	}
	if birthdate.IsZero() {
		return nil, fmt.Errorf("%w: birthdate is required", domain.ErrValidation)
	}

	store, err := s.store(ctx)
	if err != nil {
		return nil, err
	}
	customerID, err := store.FindCustomerByIdentity(name, birthdate)
	if err != nil {
		return nil, err
	}
	products, err := store.ListAllProducts(customerID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.CustomerProduct, 0, len(products))
	for _, p := range products {
		out = append(out, domain.CustomerProduct{
			ProductID:   p.ID,
			ProductType: p.ProductType,
			ProductName: p.ProductName,
			Status:      p.Status,
		})
	}
	return &domain.CustomerLookupResponse{CustomerID: customerID, Products: out}, nil
}

func (s *Service) FilterTransactions(ctx context.Context, req domain.TransactionsFilterRequest) (resp *domain.TransactionsResponse, err error) {
	defer func() { s.observe("transactions.filter", err) }()

	filter, err := transactionFilter(req)
	if err != nil {
		return nil, err
	}

	store, err := s.store(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := store.FilterTransactions(req.CustomerID, filter)
	if err != nil {
		return nil, err
	}

	resp = &domain.TransactionsResponse{
		CustomerID: req.CustomerID,
		Currency:   domain.DefaultCurrency,
		Items:      make([]domain.TransactionItem, 0, len(txs)),
	}
	var total float64
	for _, tx := range txs {
		currency := tx.Currency
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		resp.Items = append(resp.Items, domain.TransactionItem{
			TransactionID:   tx.ID,
			ProductID:       tx.ProductID,
			Date:            tx.Date,
			Description:     tx.Description,
			Merchant:        tx.Description,
			TransactionType: string(tx.Type),
			Amount:          domain.RoundCents(tx.AmountSigned),
			Currency:        currency,
			BalanceAfter:    domain.RoundCents(tx.BalanceAfter),
		})
		total += tx.AmountSigned
	}
	resp.Total = domain.RoundCents(total)
	return resp, nil
}

func (s *Service) UpdateCard(ctx context.Context, req domain.CardUpdateRequest) (resp *domain.CardUpdateResponse, err error) {
	defer func() { s.observe("card.update", err) }()

	if err := requireCustomerID(req.CustomerID); err != nil {
		return nil, err
	}
	var newStatus string
	switch req.Action {
	case domain.CardActionBlock:
		newStatus = "Blocked by Customer"
	case domain.CardActionUnblock:
		newStatus = "Active"
	default:
		return nil, fmt.Errorf("%w: action must be one of block, unblock", domain.ErrValidation)
	}

	store, err := s.store(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := store.ListCardProducts(req.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: No card products found for customer %s", domain.ErrNotFound, req.CustomerID)
	}

	// the first matching card is the one acted on
	card := cards[0]
	resp = &domain.CardUpdateResponse{
		Status:    "ok",
		RequestID: referenceID("CARD"),
		NewStatus: newStatus,
		CardProduct: map[string]string{
			"product_id":    card.ID,
			"product_name":  card.ProductName,
			"status_before": card.Status,
		},
	}
	s.log.Info("Card update simulated",
		zap.String("customer_id", req.CustomerID),
		zap.String("product_id", card.ID),
		zap.String("request_id", resp.RequestID),
	)
	return resp, nil
}

func (s *Service) UpdateContact(ctx context.Context, req domain.ContactUpdateRequest) (resp *domain.ContactUpdateResponse, err error) {
	defer func() { s.observe("contact.update", err) }()

	if err := requireCustomerID(req.CustomerID); err != nil {
		return nil, err
	}
	if req.Email != nil && *req.Email != "" && !strings.Contains(*req.Email, "@") {
		return nil, fmt.Errorf("%w: email must contain '@'", domain.ErrValidation)
	}

	changes := make(map[string]string, 3)
	for field, value := range map[string]*string{"email": req.Email, "phone": req.Phone, "address": req.Address} {
		if value != nil && *value != "" {
			changes[field] = *value
		}
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: At least one of email, phone, or address must be provided", domain.ErrValidation)
	}

	store, err := s.store(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := store.CustomerSnapshot(req.CustomerID); err != nil {
		return nil, err
	}

	resp = &domain.ContactUpdateResponse{
		Status:     "ok",
		TicketID:   referenceID("TICKET"),
		CustomerID: req.CustomerID,
		Changed:    changes,
	}
	s.log.Info("Contact update simulated",
		zap.String("customer_id", req.CustomerID),
		zap.String("ticket_id", resp.TicketID),
		zap.Int("fields", len(changes)),
	)
	return resp, nil
}

func (s *Service) OpenSavings(ctx context.Context, req domain.SavingsOpenRequest) (resp *domain.SavingsOpenResponse, err error) {
	defer func() { s.observe("savings.open", err) }()

	if err := requireCustomerID(req.CustomerID); err != nil {
		return nil, err
	}
	store, err := s.store(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureCustomer(req.CustomerID); err != nil {
		return nil, err
	}

	steps := make([]string, len(savingsNextSteps))
	copy(steps, savingsNextSteps)
	return &domain.SavingsOpenResponse{
		Status: "ok",
		Summary: domain.SavingsOpenSummary{
			NewProductID:    referenceID("SAV"),
			ProductName:     "ING Orange Savings",
			InterestRate:    "2.15% AER",
			StartingBalance: "0.00 EUR",
			NextSteps:       steps,
		},
	}, nil
}

func (s *Service) CreateAppointment(ctx context.Context, req domain.AppointmentCreateRequest) (resp *domain.AppointmentCreateResponse, err error) {
	defer func() { s.observe("appointment.create", err) }()

	if err := requireCustomerID(req.CustomerID); err != nil {
		return nil, err
	}
	store, err := s.store(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureCustomer(req.CustomerID); err != nil {
		return nil, err
	}

	slots := AppointmentSlots(s.now())
	if req.Slot == nil {
		return &domain.AppointmentCreateResponse{Status: "pending_confirmation", Slots: slots}, nil
	}

	for _, slot := range slots {
		if slot == *req.Slot {
			confirmed := slot
			return &domain.AppointmentCreateResponse{Status: "confirmed", Slots: slots, Confirmed: &confirmed}, nil
		}
	}
	return nil, fmt.Errorf("%w: Requested slot is no longer available. Please choose one of the proposed times.", domain.ErrValidation)
}

// AppointmentSlots proposes 10:00 and 14:00 on each of the three days after
// now, in now's location.
func AppointmentSlots(now time.Time) []string {
	slots := make([]string, 0, 6)
	year, month, day := now.Date()
	for delta := 1; delta <= 3; delta++ {
		for _, hour := range []int{10, 14} {
			slot := time.Date(year, month, day+delta, hour, 0, 0, 0, now.Location())
			slots = append(slots, slot.Format(slotLayout))
		}
	}
	return slots
}
