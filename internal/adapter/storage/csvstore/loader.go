package csvstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/seu-repo/voice-banking/internal/domain"
)

const (
	CustomersFile      = "customers.csv"
	ProductsFile       = "products.csv"
	ProductsClosedFile = "products_closed.csv"
	TransactionsFile   = "transactions.csv"
)

var (
	customerColumns    = []string{"customer_id", "name", "birthdate", "email", "phone", "address", "segment_code"}
	productColumns     = []string{"product_id", "customer_id", "product_type", "product_name", "opened_date", "status"}
	transactionColumns = []string{"transaction_id", "product_id", "date", "amount", "currency", "description", "transaction_type"}
)

// FromDirectory loads the four CSV tables of dir into an immutable Store.
// products_closed.csv is optional.
func FromDirectory(dir string) (*Store, error) {
	customers, err := loadCustomers(filepath.Join(dir, CustomersFile))
	if err != nil {
		return nil, err
	}
	products, err := loadProducts(filepath.Join(dir, ProductsFile), false, false)
	if err != nil {
		return nil, err
	}
	productsClosed, err := loadProducts(filepath.Join(dir, ProductsClosedFile), true, true)
	if err != nil {
		return nil, err
	}
	transactions, err := loadTransactions(filepath.Join(dir, TransactionsFile), products, productsClosed)
	if err != nil {
		return nil, err
	}
	return newStore(customers, products, productsClosed, transactions), nil
}

func loadCustomers(path string) ([]domain.Customer, error) {
	t, err := readTable(path, "customer_id")
	if err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(t.rows))
	for _, row := range t.rows {
		customers = append(customers, domain.Customer{
			ID:        t.value(row, "customer_id"),
			Name:      t.value(row, "name"),
			Email:     t.value(row, "email"),
			Phone:     normalizePhone(t.value(row, "phone")),
			Address:   t.value(row, "address"),
			Segment:   domain.Segment(t.value(row, "segment_code")),
			Birthdate: parseDate(t.value(row, "birthdate")),
		})
	}
	return customers, nil
}

func loadProducts(path string, closed, allowMissing bool) ([]domain.Product, error) {
	if allowMissing {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return []domain.Product{}, nil
		}
	}

	t, err := readTable(path, "product_id", "customer_id")
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(t.rows))
	for _, row := range t.rows {
		products = append(products, domain.Product{
			ID:          t.value(row, "product_id"),
			CustomerID:  t.value(row, "customer_id"),
			ProductType: t.value(row, "product_type"),
			ProductName: t.value(row, "product_name"),
			OpenedDate:  parseDate(t.value(row, "opened_date")),
			Status:      t.value(row, "status"),
			IsClosed:    closed,
		})
	}
	return products, nil
}

func loadTransactions(path string, products, productsClosed []domain.Product) ([]domain.Transaction, error) {
	t, err := readTable(path, "transaction_id", "product_id", "amount", "transaction_type")
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}

	// Open products first, then closed; the first owner of a product id wins.
	owners := make(map[string]string, len(products)+len(productsClosed))
	for _, group := range [][]domain.Product{products, productsClosed} {
		for _, p := range group {
			if _, seen := owners[p.ID]; !seen {
				owners[p.ID] = p.CustomerID
			}
		}
	}

	title := newTitler()
	transactions := make([]domain.Transaction, 0, len(t.rows))
	for _, row := range t.rows {
		productID := t.value(row, "product_id")
		txType := title.transactionType(t.value(row, "transaction_type"))
		amount := parseAmount(t.value(row, "amount"))
		description := t.value(row, "description")

		transactions = append(transactions, domain.Transaction{
			ID:                 t.value(row, "transaction_id"),
			ProductID:          productID,
			CustomerID:         owners[productID],
			Date:               parseDate(t.value(row, "date")),
			Amount:             amount,
			Currency:           t.value(row, "currency"),
			Description:        description,
			Type:               txType,
			AmountSigned:       signedAmount(amount, txType),
			NormalizedMerchant: strings.ToLower(description),
		})
	}

	sortLedger(transactions)
	return transactions, nil
}

// sortLedger orders by (product id, date asc, transaction id asc). Unknown
// dates go last within their product so the running balance is reproducible.
func sortLedger(transactions []domain.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		a, b := transactions[i], transactions[j]
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		if !a.Date.Equal(b.Date) {
			return dateBefore(a.Date, b.Date)
		}
		return a.ID < b.ID
	})
}

// dateBefore treats the zero time as later than any known date.
func dateBefore(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	}
	return a.Before(b)
}

// dateAfter orders newest first and still keeps the zero time last.
func dateAfter(a, b time.Time) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	}
	return a.After(b)
}
