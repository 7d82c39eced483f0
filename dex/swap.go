package dex

import (
	"context"
	"fmt"
	"time"

	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/platform"
)

// Querier reads the chain on behalf of a swap.
type Querier interface {
	Balance(ctx context.Context, addr string, c finance.Currency) (finance.Coin, error)
	Price(ctx context.Context, base, quote finance.Currency) (finance.Price, error)
}

// Env is what a swap sees of the block it runs in.
type Env struct {
	Ctx  context.Context
	Now  time.Time
	Self string
	// Timeout is the relative timeout of every packet sent.
	Timeout time.Duration
	// Poll is the interval the lease balance is checked at while waiting for
	// a transfer in.
	Poll    time.Duration
	Querier Querier
}

// SwapTask is a one-shot description of a swap. Coins are swapped into
// OutCurrency in their fixed order.
type SwapTask interface {
	Label() string
	Account() Account
	Coins() []finance.Coin
	OutCurrency() finance.Currency
	// TransferOut tells whether the coins start on the lease chain.
	TransferOut() bool
	// TransferIn tells whether the output is to be brought to the lease.
	TransferIn() bool
	Slippage() SlippageCalculator
}

// Stage of a swap in flight.
type Stage uint8

const (
	StageTransferOut Stage = iota + 1
	StageSwap
	StageTransferInInit
	StageTransferInFinish
)

func (s Stage) String() string {
	switch s {
	case StageTransferOut:
		return "transfer_out"
	case StageSwap:
		return "swap"
	case StageTransferInInit:
		return "transfer_in_init"
	case StageTransferInFinish:
		return "transfer_in_finish"
	default:
		return "unknown"
	}
}

// SwapExactIn is the progress of a swap of the whole input.
type SwapExactIn struct {
	Stage Stage `json:"stage"`
	// CoinIndex is the coin being transferred out.
	CoinIndex int `json:"coin_index,omitempty"`
	// MinOut holds the least output of each swap leg requested.
	MinOut []finance.Coin `json:"min_out,omitempty"`
	// AmountOut is the swap output once known.
	AmountOut *finance.Coin `json:"amount_out,omitempty"`
	// Deadline ends the wait for a transfer in before it is sent again.
	Deadline time.Time `json:"deadline"`
}

// OutcomeKind tells the owner of a swap what happens next.
type OutcomeKind uint8

const (
	// OutcomeContinue persists the new progress and dispatches the batch.
	OutcomeContinue OutcomeKind = iota + 1
	// OutcomeCompleted hands AmountOut to the task.
	OutcomeCompleted
	// OutcomeAnomaly parks the swap until it is healed.
	OutcomeAnomaly
	// OutcomeRecover reopens the account and resumes the swap.
	OutcomeRecover
)

// Outcome of a swap event.
type Outcome struct {
	Kind      OutcomeKind
	Progress  SwapExactIn
	Batch     platform.Batch
	AmountOut finance.Coin
	Reason    string
}

func carryOn(progress SwapExactIn, batch platform.Batch) Outcome {
	return Outcome{Kind: OutcomeContinue, Progress: progress, Batch: batch}
}

// StartSwap enters the first stage task needs.
func StartSwap(task SwapTask, env Env) (Outcome, error) {
	if len(task.Coins()) == 0 {
		panic("swap without coins")
	}
	if task.TransferOut() {
		return transferOutFrom(task, 0, env)
	}
	return enterSwap(task, env)
}

func transferOutFrom(task SwapTask, index int, env Env) (Outcome, error) {
	coins := task.Coins()
	for index < len(coins) && coins[index].IsZero() {
		index++
	}
	if index == len(coins) {
		return enterSwap(task, env)
	}
	msg := transferOut(task.Account(), coins[index], task.Label(), env)
	return carryOn(SwapExactIn{Stage: StageTransferOut, CoinIndex: index}, platform.NewBatch(msg)), nil
}

// legs splits the input into the coins to swap and the output already held.
func legs(task SwapTask) ([]finance.Coin, finance.Coin) {
	out := task.OutCurrency()
	held := finance.ZeroCoin(out)
	var swaps []finance.Coin
	for _, c := range task.Coins() {
		switch {
		case c.IsZero():
		case c.Of(out):
			held = held.Add(c)
		default:
			swaps = append(swaps, c)
		}
	}
	return swaps, held
}

func enterSwap(task SwapTask, env Env) (Outcome, error) {
	swaps, held := legs(task)
	if len(swaps) == 0 {
		return afterSwap(task, held, env)
	}

	minOut := make([]finance.Coin, 0, len(swaps))
	for _, in := range swaps {
		floor, err := task.Slippage().MinOutput(env, in, task.OutCurrency())
		if err != nil {
			return Outcome{}, err
		}
		minOut = append(minOut, floor)
	}
	return sendSwap(task, SwapExactIn{Stage: StageSwap, MinOut: minOut}, env)
}

func sendSwap(task SwapTask, progress SwapExactIn, env Env) (Outcome, error) {
	swaps, _ := legs(task)
	req := HostRequest{Swaps: make([]*MsgSwapExactAmountIn, 0, len(swaps))}
	for i, in := range swaps {
		req.Swaps = append(req.Swaps, swapMsg(task.Account(), in, task.OutCurrency(), progress.MinOut[i].Amount))
	}
	tx, err := icaTx(task.Account(), req, task.Label(), env.Timeout)
	if err != nil {
		return Outcome{}, err
	}
	return carryOn(progress, platform.NewBatch(tx)), nil
}

func afterSwap(task SwapTask, out finance.Coin, env Env) (Outcome, error) {
	if !task.TransferIn() {
		return Outcome{Kind: OutcomeCompleted, AmountOut: out}, nil
	}
	return sendTransferIn(task, SwapExactIn{Stage: StageTransferInInit, AmountOut: &out}, env)
}

func sendTransferIn(task SwapTask, progress SwapExactIn, env Env) (Outcome, error) {
	req := HostRequest{Transfers: []*transfertypes.MsgTransfer{transferIn(task.Account(), *progress.AmountOut, env)}}
	tx, err := icaTx(task.Account(), req, task.Label(), env.Timeout)
	if err != nil {
		return Outcome{}, err
	}
	return carryOn(progress, platform.NewBatch(tx)), nil
}

func pollTransferIn(progress SwapExactIn, env Env) Outcome {
	return carryOn(progress, platform.NewBatch(platform.AddTimeAlarm{At: env.Now.Add(env.Poll)}))
}

// OnResponse handles a successful acknowledgement of the last packet.
func (s SwapExactIn) OnResponse(task SwapTask, data []byte, env Env) (Outcome, error) {
	switch s.Stage {
	case StageTransferOut:
		return transferOutFrom(task, s.CoinIndex+1, env)
	case StageSwap:
		outs, err := decodeSwapResponse(data, len(s.MinOut))
		if err != nil {
			return Outcome{}, err
		}
		_, total := legs(task)
		for i, amount := range outs {
			if amount.LT(s.MinOut[i].Amount) {
				reason := fmt.Sprintf("swap output %s below %s", amount, s.MinOut[i])
				return Outcome{Kind: OutcomeAnomaly, Progress: s, Reason: reason}, nil
			}
			total = total.Add(finance.NewCoin(amount, task.OutCurrency()))
		}
		return afterSwap(task, total, env)
	case StageTransferInInit:
		next := s
		next.Stage = StageTransferInFinish
		next.Deadline = env.Now.Add(env.Timeout)
		return pollTransferIn(next, env), nil
	default:
		return Outcome{}, ErrUnexpectedResponse.Wrapf("response at stage %s", s.Stage)
	}
}

// OnError handles an error acknowledgement of the last packet.
func (s SwapExactIn) OnError(task SwapTask, reason string, env Env) (Outcome, error) {
	switch s.Stage {
	case StageTransferOut, StageTransferInInit:
		return s.Resume(task, env)
	case StageSwap:
		return Outcome{Kind: OutcomeAnomaly, Progress: s, Reason: reason}, nil
	default:
		return Outcome{}, ErrUnexpectedResponse.Wrapf("error at stage %s", s.Stage)
	}
}

// OnTimeout handles a timed out packet. A timed out ICA packet closes the
// ordered channel of the account.
func (s SwapExactIn) OnTimeout(task SwapTask, env Env) (Outcome, error) {
	switch s.Stage {
	case StageTransferOut:
		return s.Resume(task, env)
	case StageSwap, StageTransferInInit:
		return Outcome{Kind: OutcomeRecover, Progress: s}, nil
	default:
		return Outcome{}, ErrUnexpectedResponse.Wrapf("timeout at stage %s", s.Stage)
	}
}

// OnTimeAlarm checks whether the transferred output has arrived.
func (s SwapExactIn) OnTimeAlarm(task SwapTask, env Env) (Outcome, error) {
	if s.Stage != StageTransferInFinish {
		return carryOn(s, platform.Batch{}), nil
	}
	expected := *s.AmountOut
	balance, err := env.Querier.Balance(env.Ctx, env.Self, expected.Currency())
	if err != nil {
		return Outcome{}, ErrQuery.Wrapf("balance of %s: %s", env.Self, err)
	}
	switch {
	case balance.GTE(expected):
		return Outcome{Kind: OutcomeCompleted, AmountOut: expected}, nil
	case !env.Now.Before(s.Deadline):
		return sendTransferIn(task, SwapExactIn{Stage: StageTransferInInit, AmountOut: s.AmountOut}, env)
	default:
		return pollTransferIn(s, env), nil
	}
}

// Resume sends the last packet of the stage again.
func (s SwapExactIn) Resume(task SwapTask, env Env) (Outcome, error) {
	switch s.Stage {
	case StageTransferOut:
		return transferOutFrom(task, s.CoinIndex, env)
	case StageSwap:
		return sendSwap(task, s, env)
	case StageTransferInInit:
		return sendTransferIn(task, s, env)
	case StageTransferInFinish:
		return pollTransferIn(s, env), nil
	default:
		panic("resuming a swap at an unknown stage")
	}
}

// Retry requests the swap again with fresh minimum outputs.
func (s SwapExactIn) Retry(task SwapTask, env Env) (Outcome, error) {
	if s.Stage != StageSwap {
		return s.Resume(task, env)
	}
	return enterSwap(task, env)
}
