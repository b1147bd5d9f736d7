package slip

import (
	"github.com/shopspring/decimal"
)

// Extraction is what a backend pulled out of a slip: raw recognized text for
// the OCR backend, structured fields for the remote verification backend.
type Extraction struct {
	Text      string
	Amount    *decimal.Decimal
	PayerName string
	RefNo     string
	BankName  string
	Datetime  string
}

// Outcome is the four-way verification classification. Amount is
// authoritative: a slip whose amount matches is approved even when the name
// could not be confirmed (OCR on printed Thai names fails routinely), so
// OutcomeNameMismatch still approves; it just carries a warning.
type Outcome string

const (
	OutcomeVerified       Outcome = "verified"
	OutcomeAmountMismatch Outcome = "amount-mismatch"
	OutcomeNameMismatch   Outcome = "name-mismatch"
	OutcomeBothMismatch   Outcome = "both-mismatch"
)

// Approved reports whether the outcome releases the order for fulfillment.
func (o Outcome) Approved() bool {
	return o == OutcomeVerified || o == OutcomeNameMismatch
}

// Result is produced per verification call. Only the approval boolean is
// persisted onto the order; the rest is for the admin detail view.
type Result struct {
	AmountText  string  `json:"amount_text"` // matched amount as it appeared, "" if none
	PayerName   string  `json:"payer_name,omitempty"`
	RefNo       string  `json:"ref_no,omitempty"`
	BankName    string  `json:"bank_name,omitempty"`
	Datetime    string  `json:"datetime,omitempty"`
	AmountMatch bool    `json:"amount_match"`
	NameMatch   bool    `json:"name_match"`
	Outcome     Outcome `json:"outcome"`
	Text        string  `json:"text,omitempty"` // full extracted text for audit display
}

// State of one order's verification.
type State string

const (
	StateUnverified State = "unverified"
	StateChecking   State = "checking"
	StateVerified   State = "verified"
	StateRejected   State = "rejected"
)

// Trigger distinguishes the automatic on-load sweep from the admin button.
type Trigger string

const (
	TriggerAuto   Trigger = "auto"
	TriggerManual Trigger = "manual"
)

// RejectReason distinguishes why a verification attempt ended rejected.
type RejectReason string

const (
	ReasonNone             RejectReason = ""
	ReasonUnreadableImage  RejectReason = "unreadable-image"
	ReasonExtractionFailed RejectReason = "extraction-failed"
	ReasonNoMatch          RejectReason = "no-match"
)
