package domain

import (
	"time"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "Credit"
	TransactionTypeDebit  TransactionType = "Debit"
)

// Transaction carries the raw CSV fields plus the values derived at load time.
// CustomerID is empty when the product is unknown.
type Transaction struct {
	ID                 string          `json:"transaction_id"`
	ProductID          string          `json:"product_id"`
	CustomerID         string          `json:"customer_id,omitempty"`
	Date               time.Time       `json:"date"`
	Amount             float64         `json:"amount"`
	Currency           string          `json:"currency"`
	Description        string          `json:"description"`
	Type               TransactionType `json:"transaction_type"`
	AmountSigned       float64         `json:"amount_signed"`
	NormalizedMerchant string          `json:"normalized_merchant"`
	BalanceAfter       float64         `json:"balance_after"`
}

// TransactionFilter holds the optional criteria of a transaction query.
// Nil pointers and zero dates mean "not set".
type TransactionFilter struct {
	Merchant  string
	N         *int
	DateFrom  time.Time
	DateTo    time.Time
	MinAmount *float64
}
