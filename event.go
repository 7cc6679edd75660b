package lendingpool

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/facebookgo/clock"
	"github.com/gofrs/uuid"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

type (
	EventStore interface {
		CreateEvent(ctx context.Context, event *Event) error
		// ListEvents returns events touching account (as actor or counterparty),
		// newest first. A zero account or action matches everything.
		ListEvents(ctx context.Context, reserveId, account uuid.UUID, action ActionType, createdBeforeAt, limit int64) ([]*Event, error)
	}

	// Event is one committed pool operation.
	//
	//	Deposit     Actor=user       Counterparty=onBehalfOf
	//	Withdraw    Actor=user       Counterparty=to
	//	Borrow      Actor=user       Counterparty=onBehalfOf
	//	Repay       Actor=repayer    Counterparty=receiver
	//	Delegate    Actor=delegator  Counterparty=delegatee
	//	Liquidation Actor=liquidator Counterparty=liquidatee, Amount=amountRecovered
	Event struct {
		Id           uuid.UUID    `json:"id"`
		ReserveId    uuid.UUID    `json:"reserveId"`
		Action       ActionType   `json:"action"`
		Actor        uuid.UUID    `json:"actor"`
		Counterparty uuid.UUID    `json:"counterparty"`
		Amount       *uint256.Int `json:"amount"`
		Detail       EventDetail  `json:"detail"`
		CreatedAt    int64        `json:"createdAt"`
	}

	EventDetail struct {
		AmountReceived     string `json:"amountReceived,omitempty"`
		ReceiveSupplyToken bool   `json:"receiveSupplyToken,omitempty"`
		HealthFactorBefore string `json:"healthFactorBefore,omitempty"`
		HealthFactorAfter  string `json:"healthFactorAfter,omitempty"`
	}
)

func newEvent(clk clock.Clock, reserveId uuid.UUID, action ActionType, actor, counterparty uuid.UUID, amount *uint256.Int) *Event {
	return &Event{
		Id:           uuid.Must(uuid.NewV4()),
		ReserveId:    reserveId,
		Action:       action,
		Actor:        actor,
		Counterparty: counterparty,
		Amount:       CloneAmount(amount),
		CreatedAt:    clk.Now().Unix(),
	}
}

func NewDepositEvent(clk clock.Clock, reserveId, user, onBehalfOf uuid.UUID, amount *uint256.Int) *Event {
	return newEvent(clk, reserveId, ActionDeposit, user, onBehalfOf, amount)
}

func NewWithdrawEvent(clk clock.Clock, reserveId, user, to uuid.UUID, amount *uint256.Int) *Event {
	return newEvent(clk, reserveId, ActionWithdraw, user, to, amount)
}

func NewBorrowEvent(clk clock.Clock, reserveId, user, onBehalfOf uuid.UUID, amount *uint256.Int) *Event {
	return newEvent(clk, reserveId, ActionBorrow, user, onBehalfOf, amount)
}

func NewRepayEvent(clk clock.Clock, reserveId, receiver, repayer uuid.UUID, amount *uint256.Int) *Event {
	return newEvent(clk, reserveId, ActionRepay, repayer, receiver, amount)
}

func NewDelegateEvent(clk clock.Clock, reserveId, delegator, delegatee uuid.UUID, amount *uint256.Int) *Event {
	return newEvent(clk, reserveId, ActionDelegate, delegator, delegatee, amount)
}

func NewLiquidationEvent(clk clock.Clock, reserveId, liquidator, liquidatee uuid.UUID, amountRecovered, amountReceived *uint256.Int, receiveSupplyToken bool) *Event {
	event := newEvent(clk, reserveId, ActionLiquidation, liquidator, liquidatee, amountRecovered)
	event.Detail = EventDetail{
		AmountReceived:     CloneAmount(amountReceived).Dec(),
		ReceiveSupplyToken: receiveSupplyToken,
	}
	return event
}

// Receiver and Repayer name the Repay fields.
func (e *Event) Receiver() uuid.UUID { return e.Counterparty }
func (e *Event) Repayer() uuid.UUID { return e.Actor }

// AmountReceived is the collateral a liquidator received.
func (e *Event) AmountReceived() *uint256.Int {
	if e.Detail.AmountReceived == "" {
		return Zero()
	}
	v, err := uint256.FromDecimal(e.Detail.AmountReceived)
	if err != nil {
		return Zero()
	}
	return v
}

func (j EventDetail) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *EventDetail) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		return nil
	default:
		return errors.Errorf("unsupported event detail type %T", value)
	}
	return json.Unmarshal(data, j)
}
