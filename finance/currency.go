package finance

import (
	"fmt"
	"sort"

	transfertypes "github.com/cosmos/ibc-go/v8/modules/apps/transfer/types"
)

// Group is a set of currencies. Groups compose with bitwise or.
type Group uint8

const (
	GroupLpn Group = 1 << iota
	GroupLease
	GroupNative

	// GroupPayment holds every currency a lease accepts as a payment.
	GroupPayment = GroupLpn | GroupLease | GroupNative
)

func (g Group) String() string {
	switch g {
	case GroupLpn:
		return "lpns"
	case GroupLease:
		return "lease"
	case GroupNative:
		return "native"
	case GroupPayment:
		return "payment"
	default:
		return fmt.Sprintf("group(%d)", uint8(g))
	}
}

// Currency is a static currency definition. Tickers are unique across all
// groups and so are the bank and dex symbols.
type Currency struct {
	Ticker     string
	BankSymbol string
	DexSymbol  string
	// DexPool is the dex pool trading the currency against the LPN.
	DexPool  uint64
	Group    Group
	Decimals uint8
}

// In reports whether the currency belongs to any of the groups in g.
func (c Currency) In(g Group) bool {
	return c.Group&g != 0
}

func (c Currency) String() string {
	return c.Ticker
}

// ibcDenom returns the voucher denomination of a token that travelled the
// given transfer path.
func ibcDenom(path string) string {
	return transfertypes.ParseDenomTrace(path).IBCDenom()
}

// The registry is fixed at build time. The lease chain sees dex tokens over
// channel-0 and the dex sees native tokens over channel-1.
var (
	USDC = Currency{
		Ticker:     "USDC",
		BankSymbol: ibcDenom("transfer/channel-0/transfer/channel-750/uusdc"),
		DexSymbol:  ibcDenom("transfer/channel-750/uusdc"),
		Group:      GroupLpn,
		Decimals:   6,
	}
	ATOM = Currency{
		Ticker:     "ATOM",
		BankSymbol: ibcDenom("transfer/channel-0/transfer/channel-0/uatom"),
		DexSymbol:  ibcDenom("transfer/channel-0/uatom"),
		DexPool:    1,
		Group:      GroupLease,
		Decimals:   6,
	}
	OSMO = Currency{
		Ticker:     "OSMO",
		BankSymbol: ibcDenom("transfer/channel-0/uosmo"),
		DexSymbol:  "uosmo",
		DexPool:    678,
		Group:      GroupLease,
		Decimals:   6,
	}
	STATOM = Currency{
		Ticker:     "ST_ATOM",
		BankSymbol: ibcDenom("transfer/channel-0/transfer/channel-326/stuatom"),
		DexSymbol:  ibcDenom("transfer/channel-326/stuatom"),
		DexPool:    803,
		Group:      GroupLease,
		Decimals:   6,
	}
	WETH = Currency{
		Ticker:     "WETH",
		BankSymbol: ibcDenom("transfer/channel-0/transfer/channel-208/weth-wei"),
		DexSymbol:  ibcDenom("transfer/channel-208/weth-wei"),
		DexPool:    704,
		Group:      GroupLease,
		Decimals:   18,
	}
	WBTC = Currency{
		Ticker:     "WBTC",
		BankSymbol: ibcDenom("transfer/channel-0/transfer/channel-208/wbtc-satoshi"),
		DexSymbol:  ibcDenom("transfer/channel-208/wbtc-satoshi"),
		DexPool:    712,
		Group:      GroupLease,
		Decimals:   8,
	}
	NLS = Currency{
		Ticker:     "NLS",
		BankSymbol: "unls",
		DexSymbol:  ibcDenom("transfer/channel-1/unls"),
		DexPool:    1041,
		Group:      GroupNative,
		Decimals:   6,
	}
)

var (
	registry = []Currency{USDC, ATOM, OSMO, STATOM, WETH, WBTC, NLS}

	byTicker = indexBy(func(c Currency) string { return c.Ticker })
	byBank   = indexBy(func(c Currency) string { return c.BankSymbol })
	byDex    = indexBy(func(c Currency) string { return c.DexSymbol })
)

func indexBy(key func(Currency) string) map[string]Currency {
	idx := make(map[string]Currency, len(registry))
	for _, c := range registry {
		k := key(c)
		if _, dup := idx[k]; dup {
			panic(fmt.Sprintf("duplicate currency symbol %q", k))
		}
		idx[k] = c
	}
	return idx
}

// Lpn returns the currency the liquidity pool lends in.
func Lpn() Currency {
	return USDC
}

// Currencies returns the currencies of g ordered by ticker.
func Currencies(g Group) []Currency {
	out := make([]Currency, 0, len(registry))
	for _, c := range registry {
		if c.In(g) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// CurrencyByTicker resolves a ticker within g.
func CurrencyByTicker(ticker string, g Group) (Currency, error) {
	return inGroup(byTicker, ticker, g)
}

// CurrencyByBankSymbol resolves a local bank denomination within g.
func CurrencyByBankSymbol(symbol string, g Group) (Currency, error) {
	return inGroup(byBank, symbol, g)
}

// CurrencyByDexSymbol resolves a dex denomination within g.
func CurrencyByDexSymbol(symbol string, g Group) (Currency, error) {
	return inGroup(byDex, symbol, g)
}

func inGroup(idx map[string]Currency, key string, g Group) (Currency, error) {
	c, ok := idx[key]
	if !ok {
		return Currency{}, ErrUnknownCurrency.Wrap(key)
	}
	if !c.In(g) {
		return Currency{}, ErrCurrencyGroup.Wrapf("%s is not in %s", c.Ticker, g)
	}
	return c, nil
}

// VisitTicker resolves ticker within g and hands the currency to visit.
func VisitTicker[R any](ticker string, g Group, visit func(Currency) (R, error)) (R, error) {
	c, err := CurrencyByTicker(ticker, g)
	if err != nil {
		var zero R
		return zero, err
	}
	return visit(c)
}

// MustCurrency returns the registered currency of ticker.
func MustCurrency(ticker string) Currency {
	c, ok := byTicker[ticker]
	if !ok {
		panic(ErrUnknownCurrency.Wrap(ticker))
	}
	return c
}
