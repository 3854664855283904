package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
)

// AccountView is the read model of an account as returned by GetAccount.
type AccountView struct {
	ID             uuid.UUID
	FullName       string
	EmailAddress   string
	Balance        decimal.Decimal
	OverdraftLimit decimal.Decimal
	Status         core.Status
	Version        core.Version
}

func accountViewFrom(state core.Account) AccountView {
	return AccountView{
		ID:             state.ID,
		FullName:       state.FullName,
		EmailAddress:   state.EmailAddress,
		Balance:        core.ToMoney(state.Balance),
		OverdraftLimit: core.ToMoney(state.OverdraftLimit),
		Status:         state.Status,
		Version:        state.Version,
	}
}
