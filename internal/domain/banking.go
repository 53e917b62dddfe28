package domain

import "time"

// Request and response contracts of the banking operations. Optional request
// fields are pointers so "absent" and "zero" stay distinguishable.

type BalanceRequest struct {
	CustomerID  string       `json:"customer_id"`
	AccountType *AccountType `json:"account_type,omitempty"`
}

type BalanceResponse struct {
	CustomerID string           `json:"customer_id"`
	Accounts   []AccountPayload `json:"accounts"`
}

type CustomerLookupRequest struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"` // YYYY-MM-DD
}

type CustomerProduct struct {
	ProductID   string `json:"product_id"`
	ProductType string `json:"product_type"`
	ProductName string `json:"product_name"`
	Status      string `json:"status,omitempty"`
}

type CustomerLookupResponse struct {
	CustomerID string            `json:"customer_id"`
	Products   []CustomerProduct `json:"products"`
}

type TransactionsFilterRequest struct {
	CustomerID string   `json:"customer_id"`
	Merchant   *string  `json:"merchant,omitempty"`
	N          *int     `json:"n,omitempty"`
	DateFrom   *string  `json:"date_from,omitempty"`
	DateTo     *string  `json:"date_to,omitempty"`
	MinAmount  *float64 `json:"min_amount,omitempty"`
}

type TransactionItem struct {
	TransactionID   string    `json:"transaction_id"`
	ProductID       string    `json:"product_id"`
	Date            time.Time `json:"date"`
	Description     string    `json:"description"`
	Merchant        string    `json:"merchant"`
	TransactionType string    `json:"transaction_type"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	BalanceAfter    float64   `json:"balance_after"`
}

type TransactionsResponse struct {
	CustomerID string            `json:"customer_id"`
	Total      float64           `json:"total"`
	Currency   string            `json:"currency"`
	Items      []TransactionItem `json:"items"`
}

type CardAction string

const (
	CardActionBlock   CardAction = "block"
	CardActionUnblock CardAction = "unblock"
)

type CardUpdateRequest struct {
	CustomerID string     `json:"customer_id"`
	Action     CardAction `json:"action"`
}

type CardUpdateResponse struct {
	Status      string            `json:"status"`
	RequestID   string            `json:"request_id"`
	CardProduct map[string]string `json:"card_product"`
	NewStatus   string            `json:"new_status"`
}

type ContactUpdateRequest struct {
	CustomerID string  `json:"customer_id"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
}

type ContactUpdateResponse struct {
	Status     string            `json:"status"`
	TicketID   string            `json:"ticket_id"`
	CustomerID string            `json:"customer_id"`
	Changed    map[string]string `json:"changed"`
}

type SavingsOpenRequest struct {
	CustomerID string `json:"customer_id"`
}

type SavingsOpenSummary struct {
	NewProductID    string   `json:"new_product_id"`
	ProductName     string   `json:"product_name"`
	InterestRate    string   `json:"interest_rate"`
	StartingBalance string   `json:"starting_balance"`
	NextSteps       []string `json:"next_steps"`
}

type SavingsOpenResponse struct {
	Status  string             `json:"status"`
	Summary SavingsOpenSummary `json:"summary"`
}

type AppointmentCreateRequest struct {
	CustomerID string  `json:"customer_id"`
	Slot       *string `json:"slot,omitempty"` // ISO 8601, omitted to list slots
}

type AppointmentCreateResponse struct {
	Status    string   `json:"status"`
	Slots     []string `json:"slots"`
	Confirmed *string  `json:"confirmed,omitempty"`
}
