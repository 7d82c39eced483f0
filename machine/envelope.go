package machine

import (
	"github.com/provlabs/lease/dex"
)

// SlippageAnomaly is a swap whose output fell short. It stays put until it
// is healed.
type SlippageAnomaly struct {
	unsupported
	Swap   Swap   `json:"swap"`
	Reason string `json:"reason"`
}

func (SlippageAnomaly) Name() string { return "slippage_anomaly" }

// Heal requests the swap again with fresh minimum outputs.
func (s SlippageAnomaly) Heal(env Env) (Response, error) {
	if err := authorize(env, s.Swap.Lease.Customer, env.Params.LeaseAdmin); err != nil {
		return Response{}, err
	}
	outcome, err := s.Swap.Progress.Retry(s.Swap.bind(env), env.Env)
	if err != nil {
		return Response{}, err
	}
	return s.Swap.advance(env, outcome)
}

func (s SlippageAnomaly) Query(env Env) (StateResponse, error) {
	resp, err := s.Swap.Query(env)
	resp.InProgress = "slippage_anomaly/" + resp.InProgress
	return resp, err
}

// InRecovery is a swap waiting for its account channel to reopen.
type InRecovery struct {
	unsupported
	Swap Swap `json:"swap"`
}

func (InRecovery) Name() string { return "in_recovery" }

func (s InRecovery) connector() dex.IcaConnector {
	return dex.NewIcaConnector(s.Swap.Lease.Addr, s.Swap.Lease.Account.Dex)
}

// OnIcaOpened resumes the swap where it stopped.
func (s InRecovery) OnIcaOpened(env Env, counterpartyVersion string) (Response, error) {
	if err := s.connector().Reconnected(counterpartyVersion, s.Swap.Lease.Account); err != nil {
		return Response{}, err
	}
	outcome, err := s.Swap.Progress.Resume(s.Swap.bind(env), env.Env)
	if err != nil {
		return Response{}, err
	}
	return s.Swap.advance(env, outcome)
}

// Heal requests the registration again.
func (s InRecovery) Heal(env Env) (Response, error) {
	if err := authorize(env, s.Swap.Lease.Customer, env.Params.LeaseAdmin); err != nil {
		return Response{}, err
	}
	return Response{Batch: s.connector().Enter()}, nil
}

func (s InRecovery) Query(env Env) (StateResponse, error) {
	resp, err := s.Swap.Query(env)
	resp.InProgress = "in_recovery/" + resp.InProgress
	return resp, err
}

// ResponseDelivery holds a packet response until the lease calls itself back.
type ResponseDelivery struct {
	unsupported
	Swap     Swap         `json:"swap"`
	Response dex.Response `json:"response"`
}

func (ResponseDelivery) Name() string { return "response_delivery" }

func (s ResponseDelivery) OnDexCallback(env Env) (Response, error) {
	if err := authorize(env, s.Swap.Lease.Addr); err != nil {
		return Response{}, err
	}
	return s.Swap.process(env, s.Response)
}

// Heal processes a response whose callback failed.
func (s ResponseDelivery) Heal(env Env) (Response, error) {
	if err := authorize(env, s.Swap.Lease.Customer, env.Params.LeaseAdmin); err != nil {
		return Response{}, err
	}
	return s.Swap.process(env, s.Response)
}

func (s ResponseDelivery) Query(env Env) (StateResponse, error) {
	return s.Swap.Query(env)
}
