package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType is the ledger classification of the account a line is posted to
type AccountType string

const (
	AccountTypeReceivable AccountType = "asset_receivable"
	AccountTypePayable    AccountType = "liability_payable"
	AccountTypeCash       AccountType = "asset_cash"
	AccountTypeIncome     AccountType = "income"
	AccountTypeExpense    AccountType = "expense"
)

// IsValid checks if the account type is a known classification
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeReceivable, AccountTypePayable, AccountTypeCash, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// IsReceivable returns true for the customer receivable classification
func (t AccountType) IsReceivable() bool {
	return t == AccountTypeReceivable
}

// MoveLine is a single debit or credit line of a journal entry in the host ledger.
// AmountResidual is the open (not yet reconciled) amount, always non-negative.
type MoveLine struct {
	ID             uuid.UUID
	MoveID         uuid.UUID
	Name           string
	AccountType    AccountType
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	AmountResidual decimal.Decimal
	Reconciled     bool
}

// IsOpenReceivable returns true if the line sits on a receivable account and
// has not been reconciled yet. Only such lines may ever be reconciled here.
func (l MoveLine) IsOpenReceivable() bool {
	return l.AccountType.IsReceivable() && !l.Reconciled
}

// IsDebit returns true if the line carries a positive debit amount
func (l MoveLine) IsDebit() bool {
	return l.Debit.IsPositive()
}

// IsCredit returns true if the line carries a positive credit amount
func (l MoveLine) IsCredit() bool {
	return l.Credit.IsPositive()
}

// MoveLines is an ordered set of ledger lines
type MoveLines []MoveLine

// Filter returns the lines matching the predicate, preserving order
func (ls MoveLines) Filter(keep func(MoveLine) bool) MoveLines {
	result := make(MoveLines, 0, len(ls))
	for _, l := range ls {
		if keep(l) {
			result = append(result, l)
		}
	}
	return result
}

// OpenReceivable returns the unreconciled receivable lines
func (ls MoveLines) OpenReceivable() MoveLines {
	return ls.Filter(MoveLine.IsOpenReceivable)
}

// Credits returns the lines with a positive credit amount
func (ls MoveLines) Credits() MoveLines {
	return ls.Filter(MoveLine.IsCredit)
}

// Debits returns the lines with a positive debit amount
func (ls MoveLines) Debits() MoveLines {
	return ls.Filter(MoveLine.IsDebit)
}

// TotalCredit sums the credit amounts
func (ls MoveLines) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range ls {
		total = total.Add(l.Credit)
	}
	return total
}

// TotalDebit sums the debit amounts
func (ls MoveLines) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, l := range ls {
		total = total.Add(l.Debit)
	}
	return total
}

// IDs returns the line IDs in order
func (ls MoveLines) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(ls))
	for i, l := range ls {
		ids[i] = l.ID
	}
	return ids
}

// Union returns ls followed by the lines of other that are not already in ls
func (ls MoveLines) Union(other MoveLines) MoveLines {
	seen := make(map[uuid.UUID]struct{}, len(ls)+len(other))
	result := make(MoveLines, 0, len(ls)+len(other))
	for _, set := range []MoveLines{ls, other} {
		for _, l := range set {
			if _, dup := seen[l.ID]; dup {
				continue
			}
			seen[l.ID] = struct{}{}
			result = append(result, l)
		}
	}
	return result
}

// MoveLineValues holds the default values the host generates for a new
// ledger line when a bank statement line is confirmed.
type MoveLineValues struct {
	Name        string          `json:"name"`
	AccountType AccountType     `json:"account_type,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}
