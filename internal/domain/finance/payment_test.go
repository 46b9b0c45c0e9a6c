package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPayment_IsPostedCustomerPayment(t *testing.T) {
	tests := []struct {
		name    string
		payment Payment
		want    bool
	}{
		{"posted customer", Payment{PartnerType: PartnerTypeCustomer, Status: PaymentStatusPosted}, true},
		{"draft customer", Payment{PartnerType: PartnerTypeCustomer, Status: PaymentStatusDraft}, false},
		{"posted supplier", Payment{PartnerType: PartnerTypeSupplier, Status: PaymentStatusPosted}, false},
		{"cancelled customer", Payment{PartnerType: PartnerTypeCustomer, Status: PaymentStatusCancelled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.payment.IsPostedCustomerPayment())
		})
	}
}

func TestPayment_HasJournalEntry(t *testing.T) {
	moveID := uuid.New()
	nilID := uuid.Nil

	assert.True(t, (&Payment{MoveID: &moveID}).HasJournalEntry())
	assert.False(t, (&Payment{}).HasJournalEntry())
	assert.False(t, (&Payment{MoveID: &nilID}).HasJournalEntry())
}

func TestBankStatementLine_NeedsMatching(t *testing.T) {
	assert.True(t, (&BankStatementLine{PaymentRef: "SO-1"}).NeedsMatching())
	assert.False(t, (&BankStatementLine{PaymentRef: "SO-1", IsReconciled: true}).NeedsMatching())
	assert.False(t, (&BankStatementLine{PaymentRef: "  "}).NeedsMatching())
	assert.False(t, (&BankStatementLine{}).NeedsMatching())
}
