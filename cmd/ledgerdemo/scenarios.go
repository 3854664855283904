package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/ledger"
)

var errUnexpectedOutcome = errors.New("unexpected scenario outcome")

type printer struct {
	w    io.Writer
	step int
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) headline(title string) {
	p.step = 0
	_, _ = fmt.Fprintf(p.w, "\n== %s ==\n", title)
}

// expect prints the outcome of one step and fails when a rejection was expected but did not happen,
// or the other way round.
func (p *printer) expect(description string, err error, wantKind string) error {
	p.step++

	gotKind := ledger.ErrorKind(err)
	if gotKind == "" {
		_, _ = fmt.Fprintf(p.w, "%2d. %-48s ok\n", p.step, description)
	} else {
		_, _ = fmt.Fprintf(p.w, "%2d. %-48s rejected (%s)\n", p.step, description, gotKind)
	}

	if gotKind != wantKind {
		return fmt.Errorf("%w: %s: want %q, got %q: %w", errUnexpectedOutcome, description, wantKind, gotKind, err)
	}

	return nil
}

func (p *printer) balances(ctx context.Context, service *ledger.Service, ids ...uuid.UUID) error {
	for _, id := range ids {
		view, err := service.GetAccount(ctx, id)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(
			p.w,
			"    %-20s balance %10s  overdraft limit %8s  %s\n",
			view.FullName,
			view.Balance.StringFixed(2),
			view.OverdraftLimit.StringFixed(2),
			view.Status,
		)
	}

	return nil
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

//nolint:funlen
func runTransferScenario(ctx context.Context, service *ledger.Service, out *printer) error {
	out.headline("deposits, withdrawals and transfers")

	alice, err := service.OpenAccount(ctx, "Alice Example", "alice@example.com")
	if err = out.expect("open account for Alice", err, ""); err != nil {
		return err
	}

	steps := []struct {
		description string
		run         func() error
		wantKind    string
	}{
		{"deposit 200.00", func() error { return service.DepositFunds(ctx, alice, money("200.00")) }, ""},
		{"withdraw 50.00", func() error { return service.WithdrawFunds(ctx, alice, money("50.00")) }, ""},
		{"withdraw 151.00", func() error { return service.WithdrawFunds(ctx, alice, money("151.00")) }, ledger.KindInsufficientFunds},
	}

	for _, step := range steps {
		if err = out.expect(step.description, step.run(), step.wantKind); err != nil {
			return err
		}
	}

	if err = out.balances(ctx, service, alice); err != nil {
		return err
	}

	bob, err := service.OpenAccount(ctx, "Bob Example", "bob@example.com")
	if err = out.expect("open account for Bob", err, ""); err != nil {
		return err
	}

	steps = []struct {
		description string
		run         func() error
		wantKind    string
	}{
		{"transfer 100.00 from Alice to Bob", func() error { return service.TransferFunds(ctx, alice, bob, money("100.00")) }, ""},
		{"transfer 1000.00 from Alice to Bob", func() error { return service.TransferFunds(ctx, alice, bob, money("1000.00")) }, ledger.KindInsufficientFunds},
		{"close Alice's account", func() error { return service.CloseAccount(ctx, alice) }, ""},
		{"deposit 10.00 into Alice's closed account", func() error { return service.DepositFunds(ctx, alice, money("10.00")) }, ledger.KindAccountClosed},
		{"transfer 10.00 from Bob to Alice", func() error { return service.TransferFunds(ctx, bob, alice, money("10.00")) }, ledger.KindAccountClosed},
	}

	for _, step := range steps {
		if err = out.expect(step.description, step.run(), step.wantKind); err != nil {
			return err
		}
	}

	return out.balances(ctx, service, alice, bob)
}

func runOverdraftScenario(ctx context.Context, service *ledger.Service, out *printer) error {
	out.headline("overdraft")

	carol, err := service.OpenAccount(ctx, "Carol Example", "carol@example.com")
	if err = out.expect("open account for Carol", err, ""); err != nil {
		return err
	}

	steps := []struct {
		description string
		run         func() error
		wantKind    string
	}{
		{"deposit 100.00", func() error { return service.DepositFunds(ctx, carol, money("100.00")) }, ""},
		{"set overdraft limit to 500.00", func() error { return service.SetOverdraftLimit(ctx, carol, money("500.00")) }, ""},
		{"withdraw 500.00", func() error { return service.WithdrawFunds(ctx, carol, money("500.00")) }, ""},
		{"withdraw 101.00", func() error { return service.WithdrawFunds(ctx, carol, money("101.00")) }, ledger.KindInsufficientFunds},
	}

	for _, step := range steps {
		if err = out.expect(step.description, step.run(), step.wantKind); err != nil {
			return err
		}
	}

	return out.balances(ctx, service, carol)
}
