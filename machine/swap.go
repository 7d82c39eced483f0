package machine

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/platform"
	"github.com/provlabs/lease/position"
	"github.com/provlabs/lease/types"
)

// TaskKind is what a lease swaps for.
type TaskKind uint8

const (
	// TaskOpen buys the asset with the downpayment and the loan.
	TaskOpen TaskKind = iota + 1
	// TaskRepay buys the LPN with a payment.
	TaskRepay
	// TaskClose sells the asset on a customer request or its close policy.
	TaskClose
	// TaskLiquidate sells the asset to cover the loan.
	TaskLiquidate
	// TaskTransferIn brings the asset of a paid lease back.
	TaskTransferIn
)

func (k TaskKind) String() string {
	switch k {
	case TaskOpen:
		return "open"
	case TaskRepay:
		return "repayment"
	case TaskClose:
		return "close"
	case TaskLiquidate:
		return "liquidation"
	case TaskTransferIn:
		return "transfer_in"
	default:
		return "unknown"
	}
}

// Task is the swap a lease runs.
type Task struct {
	Kind TaskKind `json:"kind"`
	// In is the input, in swap order.
	In  []finance.Coin `json:"in"`
	Out string         `json:"out"`
	// Liquidation is set on TaskLiquidate.
	Liquidation *position.Liquidation `json:"liquidation,omitempty"`
	// Strategy is set on a close the close policy triggered.
	Strategy *position.Strategy `json:"strategy,omitempty"`
}

// swapTask binds a task to the account it runs on.
type swapTask struct {
	Task
	account  dex.Account
	slippage dex.SlippageCalculator
}

func (t swapTask) Label() string                    { return t.Kind.String() }
func (t swapTask) Account() dex.Account             { return t.account }
func (t swapTask) Coins() []finance.Coin            { return t.In }
func (t swapTask) OutCurrency() finance.Currency    { return finance.MustCurrency(t.Out) }
func (t swapTask) Slippage() dex.SlippageCalculator { return t.slippage }

// TransferOut is set for the tasks paid from the lease chain.
func (t swapTask) TransferOut() bool {
	return t.Kind == TaskOpen || t.Kind == TaskRepay
}

// TransferIn is set for the tasks settled on the lease chain.
func (t swapTask) TransferIn() bool {
	return t.Kind != TaskOpen
}

// Swap is a lease with a swap in flight.
type Swap struct {
	unsupported
	Lease    Lease           `json:"lease"`
	Task     Task            `json:"task"`
	Progress dex.SwapExactIn `json:"progress"`
}

func (Swap) Name() string { return "swap" }

func (s Swap) bind(env Env) swapTask {
	var slippage dex.SlippageCalculator = dex.AcceptAnyNonZero{}
	if s.Task.Kind == TaskClose || s.Task.Kind == TaskLiquidate {
		slippage = env.Params.SellSlippage()
	}
	return swapTask{Task: s.Task, account: s.Lease.Account, slippage: slippage}
}

func startSwap(env Env, l Lease, task Task) (Response, error) {
	s := Swap{Lease: l, Task: task}
	outcome, err := dex.StartSwap(s.bind(env), env.Env)
	if err != nil {
		return Response{}, err
	}
	return s.advance(env, outcome)
}

// advance moves the swap on to what outcome requires.
func (s Swap) advance(env Env, outcome dex.Outcome) (Response, error) {
	switch outcome.Kind {
	case dex.OutcomeContinue:
		s.Progress = outcome.Progress
		return Response{Next: s, Batch: outcome.Batch}, nil
	case dex.OutcomeCompleted:
		return s.finish(env, outcome.AmountOut)
	case dex.OutcomeAnomaly:
		s.Progress = outcome.Progress
		env.Logger.Error("swap anomaly", "lease", s.Lease.Addr, "task", s.Task.Kind.String(), "reason", outcome.Reason)
		return Response{
			Next:   SlippageAnomaly{Swap: s, Reason: outcome.Reason},
			Events: []sdk.Event{types.NewEventSlippageAnomaly(s.Lease.Addr, outcome.Reason)},
		}, nil
	case dex.OutcomeRecover:
		s.Progress = outcome.Progress
		env.Logger.Info("recovering interchain account", "lease", s.Lease.Addr, "stage", s.Progress.Stage.String())
		next := InRecovery{Swap: s}
		return Response{Next: next, Batch: next.connector().Enter()}, nil
	default:
		panic(fmt.Sprintf("unknown swap outcome %d", outcome.Kind))
	}
}

// finish settles the swap output.
func (s Swap) finish(env Env, out finance.Coin) (Response, error) {
	l := s.Lease
	switch s.Task.Kind {
	case TaskOpen:
		l.Position.Amount = out
		resp, err := l.check(env)
		if err != nil {
			return Response{}, err
		}
		return resp.after(platform.Batch{}, opened(l, s.Task.In[0])), nil
	case TaskRepay:
		return l.repayWith(env, out)
	case TaskClose, TaskLiquidate:
		return l.afterSale(env, s.Task, out)
	case TaskTransferIn:
		l.Position = l.Position.Reduce(out)
		return Response{
			Next:   Closed{Lease: l},
			Batch:  platform.NewBatch(platform.BankSend{To: l.Customer, Amount: out}),
			Events: []sdk.Event{types.NewEventClosed(l.Addr, l.Customer, false)},
		}, nil
	default:
		panic(fmt.Sprintf("unknown swap task %d", s.Task.Kind))
	}
}

// OnResponse parks the response until the lease calls itself back, so a
// failing step never fails the delivery of the packet.
func (s Swap) OnResponse(_ Env, resp dex.Response) (Response, error) {
	return Response{
		Next:  ResponseDelivery{Swap: s, Response: resp},
		Batch: platform.NewBatch(platform.DexCallback{}),
	}, nil
}

// process runs a delivered response.
func (s Swap) process(env Env, resp dex.Response) (Response, error) {
	task := s.bind(env)
	var (
		outcome dex.Outcome
		err     error
	)
	switch resp.Kind {
	case dex.ResponseOk:
		outcome, err = s.Progress.OnResponse(task, resp.Data, env.Env)
	case dex.ResponseError:
		outcome, err = s.Progress.OnError(task, resp.Error, env.Env)
	case dex.ResponseTimeout:
		outcome, err = s.Progress.OnTimeout(task, env.Env)
	default:
		return Response{}, dex.ErrInvalidResponse.Wrapf("response kind %d", resp.Kind)
	}
	if err != nil {
		return Response{}, err
	}
	return s.advance(env, outcome)
}

func (s Swap) OnTimeAlarm(env Env) (Response, error) {
	if err := authorize(env, s.Lease.TimeAlarms); err != nil {
		return Response{}, err
	}
	outcome, err := s.Progress.OnTimeAlarm(s.bind(env), env.Env)
	if err != nil {
		return Response{}, err
	}
	return s.advance(env, outcome)
}

func (s Swap) Query(env Env) (StateResponse, error) {
	resp := s.status(env)
	resp.InProgress = fmt.Sprintf("%s/%s", s.Task.Kind, s.Progress.Stage)
	return resp, nil
}

// status of the lease behind a swap.
func (s Swap) status(env Env) StateResponse {
	switch s.Task.Kind {
	case TaskOpen:
		return StateResponse{Status: StatusOpening, Lease: s.Lease.Addr, Customer: s.Lease.Customer}
	case TaskTransferIn:
		return s.Lease.view(env, StatusPaid)
	default:
		return s.Lease.view(env, StatusOpened)
	}
}
