package lendingpool

type ActionType uint8

const (
	ActionDeposit ActionType = iota + 1
	ActionWithdraw
	ActionBorrow
	ActionRepay
	ActionDelegate
	ActionLiquidation
	ActionConfigure
)

func (a ActionType) String() string {
	switch a {
	case ActionDeposit:
		return "Deposit"
	case ActionWithdraw:
		return "Withdraw"
	case ActionBorrow:
		return "Borrow"
	case ActionRepay:
		return "Repay"
	case ActionDelegate:
		return "Delegate"
	case ActionLiquidation:
		return "Liquidation"
	case ActionConfigure:
		return "Configure"
	default:
		return "Unknown"
	}
}
