package nlu

import (
	"github.com/xeipuuv/gojsonschema"

	"github.com/seu-repo/voice-banking/internal/domain"
)

// Operation names of the banking service.
const (
	OpBalancesGet        = "balances.get"
	OpCustomerLookup     = "customer.lookup"
	OpTransactionsFilter = "transactions.filter"
	OpCardUpdate         = "card.update"
	OpContactUpdate      = "contact.update"
	OpSavingsOpen        = "savings.open"
	OpAppointmentCreate  = "appointment.create"
)

// CompletionPhrase is what the model says once every payload field is known.
const CompletionPhrase = "Thank you for your cooperation, I will now proceed with your request"

// RetryPrompt is the reply for unclassifiable requests.
const RetryPrompt = "Please try again so that I can help you."

// Route binds an intent to the banking operation that serves it. Payload is
// the shape shown to the model; schema validates what the model extracts.
type Route struct {
	Intent    domain.Intent
	Operation string
	Payload   string
	schema    *gojsonschema.Schema
}

// Validate checks an extracted payload against the route's schema.
func (r Route) Validate(payload map[string]interface{}) error {
	return validate(r.schema, payload)
}

const customerIDPayload = `{
    "customer_id": STRING,
    "account_type": STRING (optional, "current" or "savings")
}`

const cardPayload = `{
    "customer_id": STRING,
    "action": ENUM["block", "unblock"]
}`

const lookupPayload = `{
    "customer_name": STRING,
    "dob": STRING (YYYY-MM-DD)
}`

const transactionsPayload = `{
    "customer_id": STRING,
    "accounts": LIST[
        {"product_id": STRING, "product_name": STRING}
    ]
}`

func object(required []string, properties map[string]interface{}) *gojsonschema.Schema {
	return mustCompile(map[string]interface{}{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
}

var nonEmptyString = map[string]interface{}{"type": "string", "minLength": 1}

func cardRoute(intent domain.Intent) Route {
	return Route{
		Intent:    intent,
		Operation: OpCardUpdate,
		Payload:   cardPayload,
		schema: object([]string{"customer_id", "action"}, map[string]interface{}{
			"customer_id": nonEmptyString,
			"action":      map[string]interface{}{"type": "string", "enum": []interface{}{"block", "unblock"}},
		}),
	}
}

// Routes is the static intent to operation table. Informational intents and
// "Something else" have no route.
var Routes = map[domain.Intent]Route{
	domain.IntentAccountBalance: {
		Intent:    domain.IntentAccountBalance,
		Operation: OpBalancesGet,
		Payload:   customerIDPayload,
		schema: object([]string{"customer_id"}, map[string]interface{}{
			"customer_id":  nonEmptyString,
			"account_type": map[string]interface{}{"type": []string{"string", "null"}, "enum": []interface{}{"current", "savings", nil}},
		}),
	},
	domain.IntentUpdateCustomerInfo: cardRoute(domain.IntentUpdateCustomerInfo),
	domain.IntentBlockUnblockCard:   cardRoute(domain.IntentBlockUnblockCard),
	domain.IntentExistingProduct: {
		Intent:    domain.IntentExistingProduct,
		Operation: OpCustomerLookup,
		Payload:   lookupPayload,
		schema: object([]string{"customer_name", "dob"}, map[string]interface{}{
			"customer_name": nonEmptyString,
			"dob":           map[string]interface{}{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		}),
	},
	domain.IntentTransactions: {
		Intent:    domain.IntentTransactions,
		Operation: OpTransactionsFilter,
		Payload:   transactionsPayload,
		schema: object([]string{"customer_id"}, map[string]interface{}{
			"customer_id": nonEmptyString,
			"accounts": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"product_id":   map[string]interface{}{"type": "string"},
						"product_name": map[string]interface{}{"type": "string"},
					},
					"required": []string{"product_id"},
				},
			},
		}),
	},
}

// informational intents are answered from retrieved documents alone.
var informational = map[domain.Intent]bool{
	domain.IntentBankProductInfo:    true,
	domain.IntentHumanOrAppointment: true,
}

// RouteFor returns the route of intent, if it has one.
func RouteFor(intent domain.Intent) (Route, bool) {
	route, ok := Routes[intent]
	return route, ok
}

func IsInformational(intent domain.Intent) bool {
	return informational[intent]
}
