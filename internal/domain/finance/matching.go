package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Default matching parameters
const (
	DefaultInvoiceNumberPrefix   = "INV"
	DefaultCandidateInvoiceLimit = 5
)

// DefaultAmountTolerance is the absolute difference below which a payment
// amount is considered equal to an invoice residual
var DefaultAmountTolerance = decimal.NewFromFloat(0.01)

// MatchingConfig tunes how a payment without a sales order reference is
// matched to one of its partner's invoices
type MatchingConfig struct {
	InvoiceNumberPrefix    string
	CandidateInvoiceLimit  int
	AmountTolerance        decimal.Decimal
	PartialFallbackEnabled bool
}

// DefaultMatchingConfig returns the default matching parameters
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		InvoiceNumberPrefix:    DefaultInvoiceNumberPrefix,
		CandidateInvoiceLimit:  DefaultCandidateInvoiceLimit,
		AmountTolerance:        DefaultAmountTolerance,
		PartialFallbackEnabled: true,
	}
}

// LooksLikeInvoiceNumber reports whether a payment memo starts with the
// invoice number prefix. The comparison is case-sensitive.
func (c MatchingConfig) LooksLikeInvoiceNumber(memo string) bool {
	return c.InvoiceNumberPrefix != "" && strings.HasPrefix(memo, c.InvoiceNumberPrefix)
}

// AmountsMatch reports whether |residual - amount| is strictly below the tolerance
func (c MatchingConfig) AmountsMatch(residual, amount decimal.Decimal) bool {
	return residual.Sub(amount).Abs().LessThan(c.AmountTolerance)
}

// SelectInvoiceByAmount returns the first candidate whose residual matches the
// payment amount. Candidates are expected newest first.
func (c MatchingConfig) SelectInvoiceByAmount(candidates []Invoice, amount decimal.Decimal) (*Invoice, bool) {
	for i := range candidates {
		if c.AmountsMatch(candidates[i].AmountResidual, amount) {
			return &candidates[i], true
		}
	}
	return nil, false
}

// OpenCustomerInvoices keeps the posted, not fully paid customer invoices and credit notes
func OpenCustomerInvoices(invoices []Invoice) []Invoice {
	result := make([]Invoice, 0, len(invoices))
	for i := range invoices {
		if invoices[i].IsOpenCustomerInvoice() {
			result = append(result, invoices[i])
		}
	}
	return result
}

// PartialAmount is the amount a fallback partial reconciliation may settle:
// the lesser of the total credit on the payment side and the total debit on
// the invoice side.
func PartialAmount(paymentLines, invoiceLines MoveLines) decimal.Decimal {
	return decimal.Min(paymentLines.TotalCredit(), invoiceLines.TotalDebit())
}
