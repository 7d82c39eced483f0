// Package platform holds the side effects a lease asks its environment to
// perform. A Batch is produced by a state transition and dispatched, in order,
// only after the next state is persisted.
package platform

import (
	"time"

	icacontrollertypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/controller/types"
	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"

	"github.com/provlabs/lease/finance"
)

// Message is one side effect. The set of messages is closed.
type Message interface {
	isMessage()
}

// BankSend moves funds off the lease account.
type BankSend struct {
	To     string
	Amount finance.Coin
}

// LppOpenLoan borrows from the pool. Its outcome is delivered back to the
// lease as a reply.
type LppOpenLoan struct {
	Amount finance.Coin
}

// LppRepay pays the pool its principal and interest.
type LppRepay struct {
	Principal finance.Coin
	Interest  finance.Coin
}

// ReserveCoverLosses has the reserve send Amount to the lease.
type ReserveCoverLosses struct {
	Amount finance.Coin
}

// AddTimeAlarm wakes the lease up at At.
type AddTimeAlarm struct {
	At time.Time
}

// AddPriceAlarm has the oracle notify the lease once the asset price falls
// below Below or rises to AboveOrEqual.
type AddPriceAlarm struct {
	Below        finance.Price
	AboveOrEqual *finance.Price
}

// RegisterIca opens or reopens an interchain account.
type RegisterIca struct {
	Msg *icacontrollertypes.MsgRegisterInterchainAccount
}

// IbcTransfer sends local funds over ICS-20.
type IbcTransfer struct {
	Msg *transfertypes.MsgTransfer
}

// IcaTx executes transactions on the remote host.
type IcaTx struct {
	Msg *icacontrollertypes.MsgSendTx
}

// DexCallback re-enters the lease in a separate execution to process a
// delivered dex response.
type DexCallback struct{}

func (BankSend) isMessage()           {}
func (LppOpenLoan) isMessage()        {}
func (LppRepay) isMessage()           {}
func (ReserveCoverLosses) isMessage() {}
func (AddTimeAlarm) isMessage()       {}
func (AddPriceAlarm) isMessage()      {}
func (RegisterIca) isMessage()        {}
func (IbcTransfer) isMessage()        {}
func (IcaTx) isMessage()              {}
func (DexCallback) isMessage()        {}

// Batch is an ordered list of messages.
type Batch struct {
	Messages []Message
}

// NewBatch returns a batch of msgs.
func NewBatch(msgs ...Message) Batch {
	return Batch{Messages: msgs}
}

// Schedule appends msg.
func (b *Batch) Schedule(msg Message) {
	b.Messages = append(b.Messages, msg)
}

// Merge returns b followed by other.
func (b Batch) Merge(other Batch) Batch {
	out := make([]Message, 0, len(b.Messages)+len(other.Messages))
	out = append(out, b.Messages...)
	out = append(out, other.Messages...)
	return Batch{Messages: out}
}

func (b Batch) Len() int {
	return len(b.Messages)
}

// BankSendIfAny schedules a send of amount unless it is zero.
func (b *Batch) BankSendIfAny(to string, amount finance.Coin) {
	if !amount.IsZero() {
		b.Schedule(BankSend{To: to, Amount: amount})
	}
}
