package domain

// Intent is the closed taxonomy the classifier must choose from. The labels
// are matched verbatim for routing.
type Intent string

const (
	IntentUnknown            Intent = ""
	IntentUpdateCustomerInfo Intent = "Update customer information"
	IntentExistingProduct    Intent = "Query for details about their existing product"
	IntentAccountBalance     Intent = "Query for their account balance"
	IntentTransactions       Intent = "Query for details about their transactions"
	IntentBankProductInfo    Intent = "Get more information about the bank's product"
	IntentBlockUnblockCard   Intent = "Block or unblock or card"
	IntentHumanOrAppointment Intent = "Speak to a human or create appointment at the branch"
	IntentSomethingElse      Intent = "Something else"
)

// Intents lists the taxonomy in its canonical order.
var Intents = []Intent{
	IntentUpdateCustomerInfo,
	IntentExistingProduct,
	IntentAccountBalance,
	IntentTransactions,
	IntentBankProductInfo,
	IntentBlockUnblockCard,
	IntentHumanOrAppointment,
	IntentSomethingElse,
}

// ParseIntent returns IntentUnknown for anything outside the taxonomy.
func ParseIntent(label string) Intent {
	for _, i := range Intents {
		if string(i) == label {
			return i
		}
	}
	return IntentUnknown
}

// IntentResult is the structured classifier output. The zero value is the
// "empty intent object" used when the model output cannot be parsed.
type IntentResult struct {
	Intent       Intent `json:"intent"`
	Summary      string `json:"summary"`
	AuthRequired bool   `json:"auth_required"`
	Questions    string `json:"questions,omitempty"`
}

func (r IntentResult) Empty() bool {
	return r.Intent == IntentUnknown
}
