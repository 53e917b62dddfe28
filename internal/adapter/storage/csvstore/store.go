package csvstore

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/seu-repo/voice-banking/internal/domain"
)

var accountTypeKeywords = []struct {
	accountType domain.AccountType
	keywords    []string
}{
	{domain.AccountTypeCurrent, []string{"current", "checking", "zicht", "lion"}},
	{domain.AccountTypeSavings, []string{"saving", "spaar", "orange"}},
}

var cardKeywords = []string{"card", "visa", "mastercard", "credit", "debit"}

const ibanPrefix = "BE71"

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Store is a read-only relational snapshot of the CSV tables. Nothing mutates
// it after newStore returns, so it is safe for concurrent readers.
type Store struct {
	customers       []domain.Customer
	customerIndex   map[string]int
	products        []domain.Product
	productsClosed  []domain.Product
	transactions    []domain.Transaction
	productBalances map[string]float64
}

func newStore(customers []domain.Customer, products, productsClosed []domain.Product, transactions []domain.Transaction) *Store {
	s := &Store{
		customers:       customers,
		customerIndex:   make(map[string]int, len(customers)),
		products:        products,
		productsClosed:  productsClosed,
		transactions:    transactions,
		productBalances: make(map[string]float64),
	}
	for i, c := range customers {
		if _, dup := s.customerIndex[c.ID]; !dup {
			s.customerIndex[c.ID] = i
		}
	}

	// transactions are already in ledger order
	for i := range s.transactions {
		tx := &s.transactions[i]
		s.productBalances[tx.ProductID] += tx.AmountSigned
		tx.BalanceAfter = s.productBalances[tx.ProductID]
	}
	return s
}

// Counts reports the row count of each table, keyed by file name.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		CustomersFile:      len(s.customers),
		ProductsFile:       len(s.products),
		ProductsClosedFile: len(s.productsClosed),
		TransactionsFile:   len(s.transactions),
	}
}

// Transactions returns a copy of the full ledger in ledger order.
func (s *Store) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// ProductBalances returns a copy of the per-product ledger totals.
func (s *Store) ProductBalances() map[string]float64 {
	out := make(map[string]float64, len(s.productBalances))
	for k, v := range s.productBalances {
		out[k] = v
	}
	return out
}

func (s *Store) EnsureCustomer(customerID string) error {
	if _, ok := s.customerIndex[customerID]; !ok {
		return fmt.Errorf("%w: customer %s not found", domain.ErrCustomerNotFound, customerID)
	}
	return nil
}

// FindCustomerByIdentity matches the trimmed, case-insensitive name and the
// exact calendar birthdate. Zero or several matches are distinct errors.
func (s *Store) FindCustomerByIdentity(name string, birthdate time.Time) (string, error) {
	wantName := strings.ToLower(strings.TrimSpace(name))
	wantDate := domain.NormalizeDate(birthdate)
	day := wantDate.Format("2006-01-02")

	var matches []string
	for _, c := range s.customers {
		if c.Birthdate.IsZero() || wantDate.IsZero() {
			continue
		}
		if strings.ToLower(strings.TrimSpace(c.Name)) == wantName && c.Birthdate.Equal(wantDate) {
			matches = append(matches, c.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no customer matched name '%s' with birthdate %s", domain.ErrCustomerNotFound, name, day)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: multiple customers matched name '%s' with birthdate %s", domain.ErrCustomerAmbiguous, name, day)
	}
}

// InferAccountType classifies a product type by keyword; ok is false when no
// keyword matches.
func InferAccountType(productType string) (domain.AccountType, bool) {
	lowered := strings.ToLower(productType)
	for _, group := range accountTypeKeywords {
		if containsAny(lowered, group.keywords) {
			return group.accountType, true
		}
	}
	return "", false
}

// ListActiveAccounts returns the customer's open, classifiable products,
// optionally restricted to one account type. An empty accountType means all.
func (s *Store) ListActiveAccounts(customerID string, accountType domain.AccountType) ([]domain.Account, error) {
	if err := s.EnsureCustomer(customerID); err != nil {
		return nil, err
	}

	var accounts []domain.Account
	for _, p := range s.products {
		if p.CustomerID != customerID {
			continue
		}
		if strings.Contains(strings.ToLower(p.Status), "closed") {
			continue
		}
		inferred, ok := InferAccountType(p.ProductType)
		if !ok {
			continue
		}
		if accountType != "" && inferred != accountType {
			continue
		}
		accounts = append(accounts, domain.Account{Product: p, AccountType: inferred})
	}
	return accounts, nil
}

// ListAllProducts returns open and closed products of the customer,
// deduplicated and sorted by (product type, product id).
func (s *Store) ListAllProducts(customerID string) ([]domain.Product, error) {
	if err := s.EnsureCustomer(customerID); err != nil {
		return nil, err
	}

	type key struct{ id, productType, name, status string }
	seen := make(map[key]bool)
	var out []domain.Product
	for _, group := range [][]domain.Product{s.products, s.productsClosed} {
		for _, p := range group {
			if p.CustomerID != customerID {
				continue
			}
			k := key{p.ID, p.ProductType, p.ProductName, p.Status}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProductType != out[j].ProductType {
			return out[i].ProductType < out[j].ProductType
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// FilterTransactions scopes the ledger to the customer, applies the optional
// criteria and returns the newest first. Rows with an unknown date never pass
// a date bound.
func (s *Store) FilterTransactions(customerID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if err := s.EnsureCustomer(customerID); err != nil {
		return nil, err
	}

	merchant := strings.ToLower(filter.Merchant)
	var out []domain.Transaction
	for _, tx := range s.transactions {
		if tx.CustomerID != customerID {
			continue
		}
		if merchant != "" && !strings.Contains(tx.NormalizedMerchant, merchant) {
			continue
		}
		if !filter.DateFrom.IsZero() && (tx.Date.IsZero() || tx.Date.Before(filter.DateFrom)) {
			continue
		}
		if !filter.DateTo.IsZero() && (tx.Date.IsZero() || tx.Date.After(filter.DateTo)) {
			continue
		}
		if filter.MinAmount != nil && abs(tx.Amount) < *filter.MinAmount {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return dateAfter(out[i].Date, out[j].Date)
	})

	if filter.N != nil && *filter.N >= 0 && len(out) > *filter.N {
		out = out[:*filter.N]
	}
	return out, nil
}

// ListCardProducts returns the customer's open-table products whose type
// mentions a card keyword.
func (s *Store) ListCardProducts(customerID string) ([]domain.Product, error) {
	if err := s.EnsureCustomer(customerID); err != nil {
		return nil, err
	}

	var cards []domain.Product
	for _, p := range s.products {
		if p.CustomerID == customerID && containsAny(strings.ToLower(p.ProductType), cardKeywords) {
			cards = append(cards, p)
		}
	}
	return cards, nil
}

func (s *Store) CustomerSnapshot(customerID string) (domain.CustomerSnapshot, error) {
	if err := s.EnsureCustomer(customerID); err != nil {
		return domain.CustomerSnapshot{}, err
	}
	c := s.customers[s.customerIndex[customerID]]
	return domain.CustomerSnapshot{
		CustomerID:  customerID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		SegmentCode: string(c.Segment),
	}, nil
}

// Balance returns the ledger total of the product, 0.0 when unknown.
func (s *Store) Balance(productID string) float64 {
	return s.productBalances[productID]
}

func (s *Store) FormatAccount(account domain.Account) domain.AccountPayload {
	return domain.AccountPayload{
		ProductID:   account.ID,
		Name:        account.ProductName,
		AccountType: account.AccountType,
		IBAN:        FakeIBAN(account.ID),
		Currency:    domain.DefaultCurrency,
		Balance:     domain.RoundCents(s.Balance(account.ID)),
	}
}

// FakeIBAN derives a deterministic demo IBAN from the digits of a product id.
func FakeIBAN(productID string) string {
	digits := nonDigits.ReplaceAllString(productID, "")
	if digits == "" {
		digits = "0000000000"
	}
	if len(digits) < 10 {
		digits = strings.Repeat("0", 10-len(digits)) + digits
	}
	return ibanPrefix + digits[len(digits)-10:]
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
