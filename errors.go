package lendingpool

import "github.com/pkg/errors"

var (
	ErrInvalidAmount                 = errors.New("invalid amount")
	ErrInsufficientAvailableBalance  = errors.New("insufficient available balance")
	ErrTransferNotAllowed            = errors.New("transfer not allowed")
	ErrHealthFactorTooLow            = errors.New("health factor too low")
	ErrNoDebtForUser                 = errors.New("no debt for user")
	ErrHealthFactorNotBelowThreshold = errors.New("health factor not below threshold")
	ErrNoDebtToLiquidate             = errors.New("no debt to liquidate")
	ErrInsufficientPoolLiquidity     = errors.New("insufficient pool liquidity")

	ErrInvalidConfig       = errors.New("invalid config")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrZeroPrice           = errors.New("oracle price is zero")
	ErrStalePrice          = errors.New("oracle price is stale")
	ErrUnknownOracleSetup  = errors.New("unknown oracle setup")
)

// CollaboratorError reports a failed call into a token ledger or the vault.
// It matches ErrInsufficientPoolLiquidity under errors.Is and unwraps to the
// collaborator's own error.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func (e *CollaboratorError) Is(target error) bool {
	return target == ErrInsufficientPoolLiquidity
}
