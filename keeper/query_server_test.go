package keeper_test

import (
	"context"
	"encoding/json"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/keeper"
	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

// queryCase is one call of a query endpoint against the current state.
type queryCase[R, S any] struct {
	name string
	// setup changes state before the call. It runs on a cached context
	// discarded after the case.
	setup   func()
	req     *R
	want    *S
	wantErr []string
}

// runQueryCases calls query for every case. check compares the responses and
// defaults to Equal.
func runQueryCases[R, S any](s *TestSuite, query func(context.Context, *R) (*S, error), check func(want, got *S), cases []queryCase[R, S]) {
	for _, tc := range cases {
		s.Run(tc.name, func() {
			origCtx := s.ctx
			defer func() { s.ctx = origCtx }()
			s.ctx, _ = origCtx.CacheContext()

			if tc.setup != nil {
				tc.setup()
			}

			var (
				resp *S
				err  error
			)
			s.Require().NotPanics(func() { resp, err = query(s.ctx, tc.req) })
			if len(tc.wantErr) > 0 {
				s.Require().Error(err)
				for _, substr := range tc.wantErr {
					s.Assert().ErrorContains(err, substr)
				}
				return
			}
			s.Require().NoError(err)
			if check != nil {
				s.Require().NotNil(resp, "response")
				check(tc.want, resp)
				return
			}
			s.Assert().Equal(tc.want, resp)
		})
	}
}

func (s *TestSuite) TestQueryServer_Params() {
	updated := types.DefaultParams()
	updated.TransferInPoll = updated.TransferInPoll * 2

	sameParams := func(want, got *types.QueryParamsResponse) {
		wantJSON, err := json.Marshal(want.Params)
		s.Require().NoError(err)
		gotJSON, err := json.Marshal(got.Params)
		s.Require().NoError(err)
		s.Assert().JSONEq(string(wantJSON), string(gotJSON), "params")
	}

	runQueryCases(s, keeper.NewQueryServer(s.k).Params, sameParams, []queryCase[types.QueryParamsRequest, types.QueryParamsResponse]{
		{
			name: "default params",
			req:  &types.QueryParamsRequest{},
			want: &types.QueryParamsResponse{Params: types.DefaultParams()},
		},
		{
			name: "updated params",
			setup: func() {
				s.Require().NoError(s.k.Params.Set(s.ctx, updated))
			},
			req:  &types.QueryParamsRequest{},
			want: &types.QueryParamsResponse{Params: updated},
		},
		{
			name:    "nil request",
			wantErr: []string{"invalid request"},
		},
	})
}

func (s *TestSuite) TestQueryServer_Lease() {
	lease := s.openLease()

	sameState := func(want, got *machine.StateResponse) {
		s.Assert().Equal(want.Status, got.Status, "status")
		s.Assert().Equal(want.InProgress, got.InProgress, "in progress")
		s.Require().NotNil(got.Amount, "amount")
		s.Assert().True(want.Amount.Equal(*got.Amount), "amount %s", got.Amount)
	}

	position := atom(250_000_000)
	runQueryCases(s, keeper.NewQueryServer(s.k).Lease, sameState, []queryCase[types.QueryLeaseRequest, machine.StateResponse]{
		{
			name: "active lease",
			req:  &types.QueryLeaseRequest{Lease: lease.String()},
			want: &machine.StateResponse{Status: machine.StatusOpened, Amount: &position},
		},
		{
			name:    "unknown lease",
			req:     &types.QueryLeaseRequest{Lease: types.LeaseAddress(42).String()},
			wantErr: []string{"not found", types.LeaseAddress(42).String()},
		},
		{
			name:    "invalid address",
			req:     &types.QueryLeaseRequest{Lease: "lease"},
			wantErr: []string{"invalid lease"},
		},
		{
			name:    "empty address",
			req:     &types.QueryLeaseRequest{},
			wantErr: []string{"lease must be provided"},
		},
		{
			name: "lease being liquidated",
			setup: func() {
				s.chain.Oracle.Prices["ATOM/USDC"] = finance.MustNewPrice(atom(10), usdc(7))
				oracle := sdk.MustAccAddressFromBech32(s.params.Oracle)
				s.Require().NoError(s.k.Execute(s.ctx, oracle, lease, types.MsgPriceAlarm{}))
			},
			req:  &types.QueryLeaseRequest{Lease: lease.String()},
			want: &machine.StateResponse{Status: machine.StatusOpened, Amount: &position, InProgress: "liquidation/swap"},
		},
	})
}

func (s *TestSuite) TestQueryServer_LeasesOf() {
	lease := s.openLease()
	other := sdk.AccAddress("other_customer______")

	runQueryCases(s, keeper.NewQueryServer(s.k).LeasesOf, nil, []queryCase[types.QueryLeasesOfRequest, types.QueryLeasesOfResponse]{
		{
			name: "customer with a lease",
			req:  &types.QueryLeasesOfRequest{Customer: s.customer.String()},
			want: &types.QueryLeasesOfResponse{Leases: []string{lease.String()}},
		},
		{
			name: "customer without leases",
			req:  &types.QueryLeasesOfRequest{Customer: other.String()},
			want: &types.QueryLeasesOfResponse{Leases: []string{}},
		},
		{
			name:    "invalid customer",
			req:     &types.QueryLeasesOfRequest{Customer: "customer"},
			wantErr: []string{"invalid customer"},
		},
		{
			name:    "nil request",
			wantErr: []string{"customer must be provided"},
		},
	})
}
