package core

import (
	"context"

	"github.com/DomeLiquid/lendingpool"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
)

// journal records every ledger and vault mutation of one operation together
// with its inverse so a failed operation leaves no trace.
type journal struct {
	log  lendingpool.Log
	undo []undoStep
}

type undoStep struct {
	op string
	fn func(ctx context.Context) error
}

func newJournal(log lendingpool.Log) *journal {
	return &journal{log: log}
}

func (j *journal) push(op string, fn func(ctx context.Context) error) {
	j.undo = append(j.undo, undoStep{op: op, fn: fn})
}

func (j *journal) mint(ctx context.Context, ledger lendingpool.AssetLedger, name string, to uuid.UUID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := ledger.Mint(ctx, to, amount); err != nil {
		return &lendingpool.CollaboratorError{Op: name + " mint", Err: err}
	}
	j.push(name+" mint", func(ctx context.Context) error { return ledger.Burn(ctx, to, amount) })
	return nil
}

func (j *journal) burn(ctx context.Context, ledger lendingpool.AssetLedger, name string, from uuid.UUID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := ledger.Burn(ctx, from, amount); err != nil {
		return &lendingpool.CollaboratorError{Op: name + " burn", Err: err}
	}
	j.push(name+" burn", func(ctx context.Context) error { return ledger.Mint(ctx, from, amount) })
	return nil
}

func (j *journal) transferFrom(ctx context.Context, ledger lendingpool.AssetLedger, name string, from, to uuid.UUID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := ledger.TransferFrom(ctx, from, to, amount); err != nil {
		return &lendingpool.CollaboratorError{Op: name + " transfer", Err: err}
	}
	j.push(name+" transfer", func(ctx context.Context) error { return ledger.TransferFrom(ctx, to, from, amount) })
	return nil
}

func (j *journal) transferIn(ctx context.Context, vault lendingpool.Vault, from uuid.UUID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := vault.TransferIn(ctx, from, amount); err != nil {
		return &lendingpool.CollaboratorError{Op: "vault transfer in", Err: err}
	}
	j.push("vault transfer in", func(ctx context.Context) error { return vault.TransferOut(ctx, from, amount) })
	return nil
}

func (j *journal) transferOut(ctx context.Context, vault lendingpool.Vault, to uuid.UUID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := vault.TransferOut(ctx, to, amount); err != nil {
		return &lendingpool.CollaboratorError{Op: "vault transfer out", Err: err}
	}
	j.push("vault transfer out", func(ctx context.Context) error { return vault.TransferIn(ctx, to, amount) })
	return nil
}

// rollback undoes the recorded steps newest first. It keeps going past a
// failed step so the remaining ones are still reverted.
func (j *journal) rollback(ctx context.Context) {
	for i := len(j.undo) - 1; i >= 0; i-- {
		step := j.undo[i]
		if err := step.fn(ctx); err != nil {
			j.log.Error().Err(err).Msgf("rollback %s failed", step.op)
		}
	}
	j.undo = nil
}
