package dex_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	icatypes "github.com/cosmos/ibc-go/v8/modules/apps/27-interchain-accounts/types"
	channeltypes "github.com/cosmos/ibc-go/v8/modules/core/04-channel/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/provlabs/lease/dex"
	"github.com/provlabs/lease/finance"
	"github.com/provlabs/lease/platform"
	"github.com/provlabs/lease/utils/mocks"
)

const (
	owner = "cosmos1leaseowner"
	host  = "osmo1hostaccount"
)

var (
	connection = dex.ConnectionParams{
		ConnectionID:    "connection-0",
		TransferChannel: dex.Ics20Channel{LocalEndpoint: "channel-0", RemoteEndpoint: "channel-750"},
	}
	account = dex.Account{Owner: owner, HostAddress: host, Dex: connection, Encoding: icatypes.EncodingProtobuf}
)

type task struct {
	coins       []finance.Coin
	out         finance.Currency
	transferOut bool
	transferIn  bool
}

func (t task) Label() string                    { return "test" }
func (t task) Account() dex.Account             { return account }
func (t task) Coins() []finance.Coin            { return t.coins }
func (t task) OutCurrency() finance.Currency    { return t.out }
func (t task) TransferOut() bool                { return t.transferOut }
func (t task) TransferIn() bool                 { return t.transferIn }
func (t task) Slippage() dex.SlippageCalculator { return dex.AcceptAnyNonZero{} }

type querier struct {
	balances map[string]finance.Coin
	price    finance.Price
}

func (q querier) Balance(_ context.Context, addr string, c finance.Currency) (finance.Coin, error) {
	if b, ok := q.balances[addr+c.Ticker]; ok {
		return b, nil
	}
	return finance.ZeroCoin(c), nil
}

func (q querier) Price(_ context.Context, base, quote finance.Currency) (finance.Price, error) {
	if q.price.Base() != base.Ticker || q.price.Quote() != quote.Ticker {
		return finance.Price{}, fmt.Errorf("no price for %s/%s", base, quote)
	}
	return q.price, nil
}

type SwapTestSuite struct {
	suite.Suite
	env     dex.Env
	querier *querier
}

func TestSwapTestSuite(t *testing.T) {
	suite.Run(t, new(SwapTestSuite))
}

func (s *SwapTestSuite) SetupTest() {
	s.querier = &querier{balances: map[string]finance.Coin{}}
	s.env = dex.Env{
		Ctx:     context.Background(),
		Now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Self:    owner,
		Timeout: 10 * time.Minute,
		Poll:    5 * time.Second,
		Querier: s.querier,
	}
}

func (s *SwapTestSuite) requireSingle(batch platform.Batch) platform.Message {
	s.Require().Equal(1, batch.Len(), "one message per step")
	return batch.Messages[0]
}

func (s *SwapTestSuite) hostRequest(msg platform.Message) dex.HostRequest {
	tx, ok := msg.(platform.IcaTx)
	s.Require().True(ok, "expected an ica tx, got %T", msg)
	s.Require().Equal(icatypes.EXECUTE_TX, tx.Msg.PacketData.Type)
	s.Require().Equal(uint64(s.env.Timeout.Nanoseconds()), tx.Msg.RelativeTimeout)

	req, err := mocks.DecodeHostRequest(tx.Msg.PacketData.Data, icatypes.EncodingProtobuf)
	s.Require().NoError(err, "the host decodes the transaction")
	return req
}

func (s *SwapTestSuite) TestOpeningSwap() {
	t := task{
		coins:       []finance.Coin{finance.NewCoinU64(100, finance.USDC), finance.NewCoinU64(200, finance.ATOM)},
		out:         finance.ATOM,
		transferOut: true,
	}

	outcome, err := dex.StartSwap(t, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.OutcomeContinue, outcome.Kind)
	transfer, ok := s.requireSingle(outcome.Batch).(platform.IbcTransfer)
	s.Require().True(ok)
	s.Require().Equal(finance.USDC.BankSymbol, transfer.Msg.Token.Denom)
	s.Require().Equal(host, transfer.Msg.Receiver)
	s.Require().Equal("channel-0", transfer.Msg.SourceChannel)

	outcome, err = outcome.Progress.OnResponse(t, nil, s.env)
	s.Require().NoError(err)
	transfer, ok = s.requireSingle(outcome.Batch).(platform.IbcTransfer)
	s.Require().True(ok)
	s.Require().Equal(finance.ATOM.BankSymbol, transfer.Msg.Token.Denom, "coins go out one at a time in order")

	outcome, err = outcome.Progress.OnResponse(t, nil, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.StageSwap, outcome.Progress.Stage)
	req := s.hostRequest(s.requireSingle(outcome.Batch))
	s.Require().Len(req.Swaps, 1, "the output currency is not swapped")
	s.Require().Equal(finance.USDC.DexSymbol, req.Swaps[0].TokenIn.Denom)
	s.Require().Equal(finance.ATOM.DexSymbol, req.Swaps[0].TokenOutDenom())
	s.Require().Equal(host, req.Swaps[0].Sender)
	s.Require().Equal([]dex.SwapAmountInRoute{{PoolID: finance.ATOM.DexPool, TokenOutDenom: finance.ATOM.DexSymbol}}, req.Swaps[0].Routes)
	s.Require().Equal("1", req.Swaps[0].TokenOutMinAmount.String())

	outcome, err = outcome.Progress.OnResponse(t, mocks.SwapAck("50"), s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.OutcomeCompleted, outcome.Kind)
	s.Require().True(finance.NewCoinU64(250, finance.ATOM).Equal(outcome.AmountOut))
}

func (s *SwapTestSuite) TestSwapAnomalies() {
	t := task{coins: []finance.Coin{finance.NewCoinU64(100, finance.USDC)}, out: finance.ATOM}
	swapping, err := dex.StartSwap(t, s.env)
	s.Require().NoError(err)
	progress := swapping.Progress

	outcome, err := progress.OnResponse(t, mocks.SwapAck("0"), s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.OutcomeAnomaly, outcome.Kind, "output below the minimum")

	outcome, err = progress.OnError(t, "slippage exceeded", s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.OutcomeAnomaly, outcome.Kind, "swap rejected by the dex")
	s.Require().Equal("slippage exceeded", outcome.Reason)

	outcome, err = progress.OnTimeout(t, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.OutcomeRecover, outcome.Kind)

	_, err = progress.OnResponse(t, mocks.SwapAck("1", "2"), s.env)
	s.Require().ErrorIs(err, dex.ErrInvalidResponse)

	_, err = progress.OnResponse(t, []byte("garbage"), s.env)
	s.Require().ErrorIs(err, dex.ErrInvalidResponse)

	healed, err := progress.Retry(t, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.StageSwap, healed.Progress.Stage)
	s.Require().Len(s.hostRequest(s.requireSingle(healed.Batch)).Swaps, 1)
}

func (s *SwapTestSuite) TestTransferOutRetries() {
	t := task{coins: []finance.Coin{finance.NewCoinU64(100, finance.USDC)}, out: finance.ATOM, transferOut: true}
	start, err := dex.StartSwap(t, s.env)
	s.Require().NoError(err)

	for _, resend := range []func() (dex.Outcome, error){
		func() (dex.Outcome, error) { return start.Progress.OnTimeout(t, s.env) },
		func() (dex.Outcome, error) { return start.Progress.OnError(t, "refunded", s.env) },
	} {
		outcome, err := resend()
		s.Require().NoError(err)
		s.Require().Equal(dex.OutcomeContinue, outcome.Kind)
		s.Require().Equal(start.Progress, outcome.Progress)
		s.Require().Equal(start.Batch, outcome.Batch, "the same transfer is sent again")
	}
}

func (s *SwapTestSuite) TestTransferIn() {
	t := task{coins: []finance.Coin{finance.NewCoinU64(1000, finance.ATOM)}, out: finance.USDC, transferIn: true}
	outcome, err := dex.StartSwap(t, s.env)
	s.Require().NoError(err)

	outcome, err = outcome.Progress.OnResponse(t, mocks.SwapAck("700"), s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.StageTransferInInit, outcome.Progress.Stage)
	req := s.hostRequest(s.requireSingle(outcome.Batch))
	s.Require().Len(req.Transfers, 1)
	s.Require().Equal(owner, req.Transfers[0].Receiver)
	s.Require().Equal("channel-750", req.Transfers[0].SourceChannel)
	s.Require().Equal(finance.USDC.DexSymbol, req.Transfers[0].Token.Denom)

	outcome, err = outcome.Progress.OnResponse(t, nil, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.StageTransferInFinish, outcome.Progress.Stage)
	alarm, ok := s.requireSingle(outcome.Batch).(platform.AddTimeAlarm)
	s.Require().True(ok)
	s.Require().Equal(s.env.Now.Add(s.env.Poll), alarm.At)
	waiting := outcome.Progress

	s.env.Now = s.env.Now.Add(s.env.Poll)
	outcome, err = waiting.OnTimeAlarm(t, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.OutcomeContinue, outcome.Kind)
	_, ok = s.requireSingle(outcome.Batch).(platform.AddTimeAlarm)
	s.Require().True(ok, "keeps polling before the deadline")

	s.env.Now = waiting.Deadline
	outcome, err = waiting.OnTimeAlarm(t, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.StageTransferInInit, outcome.Progress.Stage, "sent again past the deadline")
	s.Require().Len(s.hostRequest(s.requireSingle(outcome.Batch)).Transfers, 1)

	s.querier.balances[owner+finance.USDC.Ticker] = finance.NewCoinU64(700, finance.USDC)
	outcome, err = waiting.OnTimeAlarm(t, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.OutcomeCompleted, outcome.Kind)
	s.Require().True(finance.NewCoinU64(700, finance.USDC).Equal(outcome.AmountOut))
}

func (s *SwapTestSuite) TestNothingToSwap() {
	t := task{coins: []finance.Coin{finance.NewCoinU64(1000, finance.ATOM)}, out: finance.ATOM, transferIn: true}
	outcome, err := dex.StartSwap(t, s.env)
	s.Require().NoError(err)
	s.Require().Equal(dex.StageTransferInInit, outcome.Progress.Stage, "a swap into the same currency goes straight to the transfer in")
}

func (s *SwapTestSuite) TestMaxSlippage() {
	s.querier.price = finance.MustNewPrice(finance.NewCoinU64(1, finance.USDC), finance.NewCoinU64(2, finance.ATOM))
	floor, err := dex.MaxSlippage{Max: finance.FromPercent(5)}.MinOutput(s.env, finance.NewCoinU64(100, finance.USDC), finance.ATOM)
	s.Require().NoError(err)
	s.Require().True(finance.NewCoinU64(190, finance.ATOM).Equal(floor))

	_, err = dex.MaxSlippage{Max: finance.FromPercent(5)}.MinOutput(s.env, finance.NewCoinU64(100, finance.OSMO), finance.ATOM)
	s.Require().ErrorIs(err, dex.ErrQuery)
}

func TestParseRegistrationResponse(t *testing.T) {
	metadata := icatypes.NewMetadata(icatypes.Version, "connection-0", "connection-1", host, icatypes.EncodingProtobuf, icatypes.TxTypeSDKMultiMsg)
	version := string(icatypes.ModuleCdc.MustMarshalJSON(&metadata))

	addr, err := dex.ParseRegistrationResponse(version)
	require.NoError(t, err)
	require.Equal(t, host, addr)

	connector := dex.NewIcaConnector(owner, connection)
	account, err := connector.Connected(version)
	require.NoError(t, err)
	require.Equal(t, dex.Account{Owner: owner, HostAddress: host, Dex: connection, Encoding: icatypes.EncodingProtobuf}, account)
	require.NoError(t, connector.Reconnected(version, account))

	moved := account
	moved.HostAddress = "osmo1another"
	require.ErrorIs(t, connector.Reconnected(version, moved), dex.ErrInvalidRegistrationResponse)

	metadata.Encoding = "amino"
	_, err = connector.Connected(string(icatypes.ModuleCdc.MustMarshalJSON(&metadata)))
	require.ErrorIs(t, err, dex.ErrInvalidRegistrationResponse, "unsupported encoding")
	metadata.Encoding = icatypes.EncodingProtobuf

	_, err = dex.ParseRegistrationResponse("not json")
	require.ErrorIs(t, err, dex.ErrInvalidRegistrationResponse)

	metadata.Address = ""
	_, err = dex.ParseRegistrationResponse(string(icatypes.ModuleCdc.MustMarshalJSON(&metadata)))
	require.ErrorIs(t, err, dex.ErrInvalidRegistrationResponse)

	register, ok := connector.Enter().Messages[0].(platform.RegisterIca)
	require.True(t, ok)
	require.Equal(t, owner, register.Msg.Owner)
	require.Equal(t, "connection-0", register.Msg.ConnectionId)
}

func TestParseAcknowledgement(t *testing.T) {
	ok := channeltypes.NewResultAcknowledgement([]byte(`{"amounts_out":["1"]}`))
	resp, err := dex.ParseAcknowledgement(ok.Acknowledgement())
	require.NoError(t, err)
	require.Equal(t, dex.ResponseOk, resp.Kind)
	require.JSONEq(t, `{"amounts_out":["1"]}`, string(resp.Data))

	failed := channeltypes.NewErrorAcknowledgement(fmt.Errorf("insufficient funds"))
	resp, err = dex.ParseAcknowledgement(failed.Acknowledgement())
	require.NoError(t, err)
	require.Equal(t, dex.ResponseError, resp.Kind)
	require.NotEmpty(t, resp.Error)

	_, err = dex.ParseAcknowledgement([]byte("{"))
	require.ErrorIs(t, err, dex.ErrInvalidResponse)
}

func TestConnectionParamsValidate(t *testing.T) {
	require.NoError(t, connection.Validate())
	require.ErrorIs(t, dex.ConnectionParams{ConnectionID: "conn", TransferChannel: connection.TransferChannel}.Validate(), dex.ErrInvalidConnection)
}
