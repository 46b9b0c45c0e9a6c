package finance

import (
	"regexp"
	"strings"
)

// salesOrderPatterns are tried in order and the first match wins.
// The first covers "SO-202511-6722" and "SO/2024/001", the second short forms like "S001".
var salesOrderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)SO[-/]?\d+[-/]?\d*[-/]?\d*`),
	regexp.MustCompile(`(?i)S[-/]?\d+[-/]?\d*`),
}

var nonDigits = regexp.MustCompile(`\D`)

// ReferenceSource records where a sales order reference was found
type ReferenceSource string

const (
	ReferenceSourcePaymentMemo   ReferenceSource = "payment_memo"
	ReferenceSourceStatementRef  ReferenceSource = "statement_payment_ref"
	ReferenceSourceInvoiceOrigin ReferenceSource = "invoice_origin"
	ReferenceSourceSaleReference ReferenceSource = "invoice_sale_reference"
	ReferenceSourceInvoiceLines  ReferenceSource = "invoice_lines"
)

// ExtractSalesOrderReference finds the first sales order identifier in free text.
// Matching is case-insensitive and unanchored, so the identifier may appear
// anywhere in the text. The matched substring is returned as written.
func ExtractSalesOrderReference(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	for _, pattern := range salesOrderPatterns {
		if match := pattern.FindString(text); match != "" {
			return strings.TrimSpace(match), true
		}
	}
	return "", false
}

// NumericReference strips every non-digit character from a reference,
// e.g. "SO-2024/001" becomes "2024001".
func NumericReference(reference string) string {
	return nonDigits.ReplaceAllString(reference, "")
}
