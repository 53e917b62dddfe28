package domain

import (
	"time"
)

type AccountType string

const (
	AccountTypeCurrent AccountType = "current"
	AccountTypeSavings AccountType = "savings"
)

func (t AccountType) Valid() bool {
	return t == AccountTypeCurrent || t == AccountTypeSavings
}

type Product struct {
	ID          string    `json:"product_id"`
	CustomerID  string    `json:"customer_id"`
	ProductType string    `json:"product_type"`
	ProductName string    `json:"product_name"`
	OpenedDate  time.Time `json:"opened_date"`
	Status      string    `json:"status"`
	IsClosed    bool      `json:"is_closed"`
}

// Account is an active product classified as current or savings.
type Account struct {
	Product
	AccountType AccountType `json:"account_type"`
}

// AccountPayload is the externally visible account record.
type AccountPayload struct {
	ProductID   string      `json:"product_id"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"account_type"`
	IBAN        string      `json:"iban"`
	Currency    string      `json:"currency"`
	Balance     float64     `json:"balance"`
}
