package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/provlabs/lease/machine"
	"github.com/provlabs/lease/types"
)

// QueryServer is the query service of the module.
type QueryServer interface {
	Params(context.Context, *types.QueryParamsRequest) (*types.QueryParamsResponse, error)
	Lease(context.Context, *types.QueryLeaseRequest) (*machine.StateResponse, error)
	LeasesOf(context.Context, *types.QueryLeasesOfRequest) (*types.QueryLeasesOfResponse, error)
}

var _ QueryServer = &queryServer{}

type queryServer struct {
	*Keeper
}

// NewQueryServer creates a new QueryServer for the module.
func NewQueryServer(keeper *Keeper) QueryServer {
	return &queryServer{Keeper: keeper}
}

// Params returns the module params.
func (k queryServer) Params(goCtx context.Context, req *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request")
	}

	params, err := k.Keeper.Params.Get(goCtx)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QueryParamsResponse{Params: params}, nil
}

// Lease returns the customer view of a lease as of the current block.
func (k queryServer) Lease(goCtx context.Context, req *types.QueryLeaseRequest) (*machine.StateResponse, error) {
	if req == nil || req.Lease == "" {
		return nil, status.Error(codes.InvalidArgument, "lease must be provided")
	}

	leaseAddr, err := sdk.AccAddressFromBech32(req.Lease)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid lease: %v", err)
	}

	state, err := k.GetLeaseState(goCtx, leaseAddr)
	if errors.Is(err, types.ErrLeaseNotFound) {
		return nil, status.Errorf(codes.NotFound, "lease with address %q not found", req.Lease)
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	env, err := k.leaseEnv(goCtx, leaseAddr, "")
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	resp, err := state.Query(env)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &resp, nil
}

// LeasesOf returns the addresses of every lease opened by a customer.
func (k queryServer) LeasesOf(goCtx context.Context, req *types.QueryLeasesOfRequest) (*types.QueryLeasesOfResponse, error) {
	if req == nil || req.Customer == "" {
		return nil, status.Error(codes.InvalidArgument, "customer must be provided")
	}

	customer, err := sdk.AccAddressFromBech32(req.Customer)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid customer: %v", err)
	}

	leases := []string{}
	err = k.CustomerLeases.Walk(goCtx, collections.NewPrefixedPairRange[sdk.AccAddress, sdk.AccAddress](customer),
		func(key collections.Pair[sdk.AccAddress, sdk.AccAddress]) (bool, error) {
			leases = append(leases, key.K2().String())
			return false, nil
		})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return &types.QueryLeasesOfResponse{Leases: leases}, nil
}
