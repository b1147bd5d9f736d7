package slip

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Hand-tuned constants carried over from production behavior. Candidates for
// later calibration, but changing either changes which payments auto-approve.
const (
	// AmountTolerance absorbs OCR rounding and decimal slips: a candidate
	// matches iff |candidate - expected| <= 1 currency unit.
	AmountTolerance = 1

	// NameMatchThreshold is the fraction of expected-name characters that
	// must appear somewhere in the text when direct containment fails.
	NameMatchThreshold = 0.70
)

// Ordered passes: amounts with an explicit currency marker are preferred over
// bare numbers, which on a slip can also be reference or account digits.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*(?:บาท|THB|baht)`),
	regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:\.\d{2})?`),
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAmountRe  = regexp.MustCompile(`[^\d.,]`)
)

// Evaluator compares an extraction against the order's expected values.
type Evaluator struct{}

func NewEvaluator() Evaluator {
	return Evaluator{}
}

func (Evaluator) Evaluate(ex *Extraction, expectedTotal decimal.Decimal, expectedName string) Result {
	res := Result{
		PayerName: ex.PayerName,
		RefNo:     ex.RefNo,
		BankName:  ex.BankName,
		Datetime:  ex.Datetime,
		Text:      ex.Text,
	}

	if ex.Amount != nil {
		// structured backend: the amount field is compared directly
		if amountWithinTolerance(*ex.Amount, expectedTotal) {
			res.AmountMatch = true
			res.AmountText = ex.Amount.StringFixed(2)
		}
	} else {
		res.AmountText, res.AmountMatch = scanAmount(ex.Text, expectedTotal)
	}

	nameSource := ex.Text
	if ex.PayerName != "" {
		nameSource = ex.PayerName
	}
	res.NameMatch = fuzzyNameMatch(nameSource, expectedName)

	res.Outcome = classify(res.AmountMatch, res.NameMatch)
	return res
}

// scanAmount runs the ordered pattern passes over the text and returns the
// first candidate within tolerance of the expected total.
func scanAmount(text string, expected decimal.Decimal) (string, bool) {
	for _, pattern := range amountPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			clean := nonAmountRe.ReplaceAllString(match, "")
			clean = strings.ReplaceAll(clean, ",", "")

			candidate, err := decimal.NewFromString(clean)
			if err != nil {
				continue
			}

			if amountWithinTolerance(candidate, expected) {
				return match, true
			}
		}
	}
	return "", false
}

func amountWithinTolerance(candidate, expected decimal.Decimal) bool {
	return candidate.Sub(expected).Abs().LessThanOrEqual(decimal.NewFromInt(AmountTolerance))
}

// fuzzyNameMatch normalizes both sides (lowercase, no whitespace), tries
// direct containment, then falls back to per-character presence. The fallback
// tolerates bad character segmentation while still rejecting unrelated names.
func fuzzyNameMatch(text, expectedName string) bool {
	cleanText := normalizeName(text)
	cleanKeyword := normalizeName(expectedName)

	if cleanText == "" || cleanKeyword == "" {
		return false
	}

	if strings.Contains(cleanText, cleanKeyword) {
		return true
	}

	matched := 0
	total := 0
	for _, r := range cleanKeyword {
		total++
		if strings.ContainsRune(cleanText, r) {
			matched++
		}
	}

	return float64(matched)/float64(total) >= NameMatchThreshold
}

func normalizeName(s string) string {
	return whitespaceRe.ReplaceAllString(strings.ToLower(s), "")
}

// classify derives the four-way outcome. Precedence: both misses first, then
// full match; a lone name miss still approves (see Outcome.Approved), a lone
// amount miss never does.
func classify(amountMatch, nameMatch bool) Outcome {
	switch {
	case !amountMatch && !nameMatch:
		return OutcomeBothMismatch
	case amountMatch && nameMatch:
		return OutcomeVerified
	case amountMatch:
		return OutcomeNameMismatch
	default:
		return OutcomeAmountMismatch
	}
}
