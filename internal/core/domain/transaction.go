package domain

import (
	"time"

	"github.com/govalues/decimal"
)

// Transaction is the normalized shape every chain client and wallet RPC
// adapter reduces its provider-specific payload to. No provider-native units
// or field names leak past the client boundary.
type Transaction struct {
	Ref           string
	Amount        decimal.Decimal
	Confirmations int64
	ObservedAt    time.Time
}

// Outcome of a single payment evaluation.
type Outcome string

const (
	OutcomeNoMatch    Outcome = "NO_MATCH"
	OutcomeConfirming Outcome = "CONFIRMING"
	OutcomePaid       Outcome = "PAID"
	// OutcomeUnderpaid is evidence of a real but insufficient payment. It is
	// surfaced for operator visibility and never auto-expires the order.
	OutcomeUnderpaid Outcome = "UNDERPAID"
)

type Evaluation struct {
	Outcome       Outcome
	TxRef         string
	Confirmations int64
	// ReceivedAmount is set for underpaid evaluations.
	ReceivedAmount decimal.Decimal
}
