/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package contracts

import (
	"context"
	"math/big"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
)

const ReasonInvalidPriceFeed = "VaultPriceFeed: invalid price feed"

const (
	basisPointsDivisor       = 10000
	swapFeeBasisPoints       = 25
	stableSwapFeeBasisPoints = 4
	// each position read by the reader occupies nine slots of the result
	positionProps = 9
)

// pricePrecision is the 1e30 fixed point GMX prices and USD amounts use
var pricePrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)

func usd(whole, scale int64) *big.Int {
	v := new(big.Int).Mul(big.NewInt(whole), pricePrecision)
	return v.Div(v, big.NewInt(scale))
}

func units(s string) *big.Int {
	v, _ := new(big.Int).SetString(s, 10)
	return v
}

type gmxToken struct {
	minPrice, maxPrice *big.Int
	decimals           int64
	stable             bool
	pool               *big.Int
	reserved           *big.Int
	buffer             *big.Int
}

type positionKey struct {
	account, collateral, index ethtypes.Address0xHex
	long                       bool
}

type gmxPosition struct {
	size, collateral, averagePrice, entryFundingRate, reserveAmount, realisedPnl *big.Int
	hasRealisedProfit                                                            bool
	lastIncreasedTime                                                            uint64
}

// gmxVault stands in for the GMX vault at the state of the pinned fork block
type gmxVault struct {
	tokens    map[ethtypes.Address0xHex]*gmxToken
	positions map[positionKey]*gmxPosition
}

func newGmxVault(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &gmxVault{
		tokens: map[ethtypes.Address0xHex]*gmxToken{
			Tokens.USDC: {minPrice: usd(1, 1), maxPrice: usd(1, 1), decimals: 6, stable: true,
				pool: units("48213657201954"), reserved: units("17402963188102"), buffer: units("5000000000000")},
			Tokens.USDT: {minPrice: usd(1, 1), maxPrice: usd(1, 1), decimals: 6, stable: true,
				pool: units("5136269524320"), reserved: units("1200000000000"), buffer: units("1500000000000")},
			Tokens.DAI: {minPrice: usd(1, 1), maxPrice: usd(1, 1), decimals: 18, stable: true,
				pool: units("3890271253916401863712875"), reserved: units("1101402310551670391337279"), buffer: units("1000000000000000000000000")},
			Tokens.FRAX: {minPrice: usd(1, 1), maxPrice: usd(1, 1), decimals: 18, stable: true,
				pool: units("2174402633986622861158261"), reserved: units("326561372904168087310021"), buffer: units("500000000000000000000000")},
			Tokens.WETH: {minPrice: usd(184950, 100), maxPrice: usd(185050, 100), decimals: 18,
				pool: units("21445300157986910591612"), reserved: units("9013657464380549986812"), buffer: units("0")},
			Tokens.WBTC: {minPrice: usd(2899000, 100), maxPrice: usd(2901000, 100), decimals: 8,
				pool: units("178954421061"), reserved: units("71380289530"), buffer: units("0")},
			Tokens.UNI: {minPrice: usd(599, 100), maxPrice: usd(601, 100), decimals: 18,
				pool: units("135052194155774895077718"), reserved: units("10145622723503998298296"), buffer: units("0")},
		},
		positions: map[positionKey]*gmxPosition{
			{account: PositionAccount, collateral: Tokens.USDC, index: Tokens.WETH, long: true}: {
				size:              usd(15000, 1),
				collateral:        usd(1500, 1),
				averagePrice:      usd(1800, 1),
				entryFundingRate:  big.NewInt(120000),
				reserveAmount:     units("8333333333333333333"),
				realisedPnl:       new(big.Int),
				lastIncreasedTime: 1689000000,
			},
		},
	}, nil
}

// tokens and positions are fixed at construction, so clones share them
func (v *gmxVault) Clone() ledger.Program {
	c := *v
	return &c
}

func (v *gmxVault) token(x *ledger.Exec, addr ethtypes.Address0xHex) (*gmxToken, error) {
	t := v.tokens[addr]
	if t == nil {
		return nil, x.Revert(ReasonInvalidPriceFeed)
	}
	return t, nil
}

func (v *gmxVault) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	switch fn.Name {
	case "getMinPrice", "getMaxPrice":
		t, err := v.token(x, args.MustAddress(0))
		if err != nil {
			return nil, err
		}
		if fn.Name == "getMinPrice" {
			return []any{t.minPrice}, nil
		}
		return []any{t.maxPrice}, nil
	case "swapFeeBasisPoints":
		return []any{swapFeeBasisPoints}, nil
	case "stableSwapFeeBasisPoints":
		return []any{stableSwapFeeBasisPoints}, nil
	case "getPosition":
		p := v.positions[v.positionKey(args)]
		if p == nil {
			return []any{0, 0, 0, 0, 0, 0, false, 0}, nil
		}
		return []any{p.size, p.collateral, p.averagePrice, p.entryFundingRate, p.reserveAmount, p.realisedPnl, p.hasRealisedProfit, p.lastIncreasedTime}, nil
	case "getPositionDelta":
		return v.positionDelta(x, args)
	}

	// per token storage reads return zero for unlisted tokens
	t := v.tokens[args.MustAddress(0)]
	if t == nil {
		t = &gmxToken{pool: new(big.Int), reserved: new(big.Int), buffer: new(big.Int)}
	}
	switch fn.Name {
	case "tokenDecimals":
		return []any{t.decimals}, nil
	case "stableTokens":
		return []any{t.stable}, nil
	case "poolAmounts":
		return []any{t.pool}, nil
	case "reservedAmounts":
		return []any{t.reserved}, nil
	case "bufferAmounts":
		return []any{t.buffer}, nil
	}
	return unknownFunction(x)
}

func (v *gmxVault) positionKey(args chain.Values) positionKey {
	return positionKey{
		account:    args.MustAddress(0),
		collateral: args.MustAddress(1),
		index:      args.MustAddress(2),
		long:       args.MustBool(3),
	}
}

func (v *gmxVault) positionDelta(x *ledger.Exec, args chain.Values) ([]any, error) {
	key := v.positionKey(args)
	p := v.positions[key]
	if p == nil {
		return []any{false, 0}, nil
	}
	t, err := v.token(x, key.index)
	if err != nil {
		return nil, err
	}
	price := t.maxPrice
	if key.long {
		price = t.minPrice
	}
	diff := new(big.Int).Sub(price, p.averagePrice)
	hasProfit := diff.Sign() > 0
	if !key.long {
		hasProfit = diff.Sign() < 0
	}
	delta := new(big.Int).Mul(p.size, new(big.Int).Abs(diff))
	return []any{hasProfit, delta.Div(delta, p.averagePrice)}, nil
}

// gmxReader reproduces the GMX reader views over a vault
type gmxReader struct{}

func newGmxReader(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return gmxReader{}, nil
}

func (r gmxReader) Clone() ledger.Program {
	return r
}

func (r gmxReader) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	vault := args.MustAddress(0)
	switch fn.Name {
	case "getAmountOut":
		return r.amountOut(x, vault, args.MustAddress(1), args.MustAddress(2), args.MustBigInt(3))
	case "getMaxAmountIn":
		return r.maxAmountIn(x, vault, args.MustAddress(1), args.MustAddress(2))
	case "getPositions":
		return r.positions(x, vault, args.MustAddress(1), args.MustArray(2), args.MustArray(3), args.MustArray(4))
	}
	return unknownFunction(x)
}

// view is a static call returning a single integer
func view(x *ledger.Exec, to ethtypes.Address0xHex, method string, args ...any) (*big.Int, error) {
	out, err := x.StaticCall(to, method, args...)
	if err != nil {
		return nil, err
	}
	return out.MustBigInt(0), nil
}

func pow10(n *big.Int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), n, nil)
}

func (r gmxReader) amountOut(x *ledger.Exec, vault, tokenIn, tokenOut ethtypes.Address0xHex, amountIn *big.Int) ([]any, error) {
	priceIn, err := view(x, vault, "getMinPrice", tokenIn)
	if err != nil {
		return nil, err
	}
	priceOut, err := view(x, vault, "getMaxPrice", tokenOut)
	if err != nil {
		return nil, err
	}
	decIn, err := view(x, vault, "tokenDecimals", tokenIn)
	if err != nil {
		return nil, err
	}
	decOut, err := view(x, vault, "tokenDecimals", tokenOut)
	if err != nil {
		return nil, err
	}
	stableIn, err := x.StaticCall(vault, "stableTokens", tokenIn)
	if err != nil {
		return nil, err
	}
	stableOut, err := x.StaticCall(vault, "stableTokens", tokenOut)
	if err != nil {
		return nil, err
	}
	feeMethod := "swapFeeBasisPoints"
	if stableIn.MustBool(0) && stableOut.MustBool(0) {
		feeMethod = "stableSwapFeeBasisPoints"
	}
	feeBps, err := view(x, vault, feeMethod)
	if err != nil {
		return nil, err
	}

	out := new(big.Int).Mul(amountIn, priceIn)
	out.Div(out, priceOut)
	out.Mul(out, pow10(decOut))
	out.Div(out, pow10(decIn))

	afterFees := new(big.Int).Mul(out, new(big.Int).Sub(big.NewInt(basisPointsDivisor), feeBps))
	afterFees.Div(afterFees, big.NewInt(basisPointsDivisor))
	return []any{afterFees, new(big.Int).Sub(out, afterFees)}, nil
}

func (r gmxReader) maxAmountIn(x *ledger.Exec, vault, tokenIn, tokenOut ethtypes.Address0xHex) ([]any, error) {
	priceIn, err := view(x, vault, "getMinPrice", tokenIn)
	if err != nil {
		return nil, err
	}
	priceOut, err := view(x, vault, "getMaxPrice", tokenOut)
	if err != nil {
		return nil, err
	}
	decIn, err := view(x, vault, "tokenDecimals", tokenIn)
	if err != nil {
		return nil, err
	}
	decOut, err := view(x, vault, "tokenDecimals", tokenOut)
	if err != nil {
		return nil, err
	}
	pool, err := view(x, vault, "poolAmounts", tokenOut)
	if err != nil {
		return nil, err
	}
	reserved, err := view(x, vault, "reservedAmounts", tokenOut)
	if err != nil {
		return nil, err
	}
	buffer, err := view(x, vault, "bufferAmounts", tokenOut)
	if err != nil {
		return nil, err
	}

	held := reserved
	if buffer.Cmp(reserved) > 0 {
		held = buffer
	}
	if held.Cmp(pool) >= 0 {
		return []any{0}, nil
	}
	amount := new(big.Int).Sub(pool, held)
	amount.Mul(amount, priceOut)
	amount.Div(amount, priceIn)
	amount.Mul(amount, pow10(decIn))
	amount.Div(amount, pow10(decOut))
	return []any{amount}, nil
}

func (r gmxReader) positions(x *ledger.Exec, vault, account ethtypes.Address0xHex, collaterals, indexTokens, isLong chain.Values) ([]any, error) {
	if len(indexTokens) != len(collaterals) || len(isLong) != len(collaterals) {
		return nil, x.Revert("")
	}
	amounts := make([]any, 0, len(collaterals)*positionProps)
	for i := range collaterals {
		p, err := x.StaticCall(vault, "getPosition", account, collaterals[i], indexTokens[i], isLong[i])
		if err != nil {
			return nil, err
		}
		hasRealisedProfit, hasProfit := 0, 0
		if p.MustBool(6) {
			hasRealisedProfit = 1
		}
		delta := new(big.Int)
		if p.MustBigInt(2).Sign() > 0 {
			d, err := x.StaticCall(vault, "getPositionDelta", account, collaterals[i], indexTokens[i], isLong[i])
			if err != nil {
				return nil, err
			}
			if d.MustBool(0) {
				hasProfit = 1
			}
			delta = d.MustBigInt(1)
		}
		amounts = append(amounts,
			p.MustBigInt(0), p.MustBigInt(1), p.MustBigInt(2), p.MustBigInt(3),
			hasRealisedProfit, p.MustBigInt(5), p.MustBigInt(7), hasProfit, delta)
	}
	return []any{amounts}, nil
}

type gmxAdapter struct {
	ownable
	router, positionRouter, reader, vault ethtypes.Address0xHex
}

func newGMXAdapter(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &gmxAdapter{}, nil
}

func (a *gmxAdapter) Clone() ledger.Program {
	c := *a
	return &c
}

func (a *gmxAdapter) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	if out, ok, err := a.ownable.invoke(x, fn, args); ok {
		return out, err
	}
	switch fn.Name {
	case "initialize":
		return nil, a.initializer(x, func() error {
			fields := []*ethtypes.Address0xHex{&a.router, &a.positionRouter, &a.reader, &a.vault}
			for i, f := range fields {
				if *f = args.MustAddress(i); *f == zeroAddress {
					return x.Fail("AddressZero")
				}
			}
			return nil
		})
	case "gmxRouter":
		return []any{a.router}, nil
	case "gmxPositionRouter":
		return []any{a.positionRouter}, nil
	case "gmxReader":
		return []any{a.reader}, nil
	case "gmxVault":
		return []any{a.vault}, nil
	case "getAmountOut":
		out, err := x.StaticCall(a.reader, "getAmountOut", a.vault, args[0], args[1], args[2])
		if err != nil {
			return nil, err
		}
		return []any{out[0], out[1]}, nil
	case "getMaxAmountIn":
		out, err := x.StaticCall(a.reader, "getMaxAmountIn", a.vault, args[0], args[1])
		if err != nil {
			return nil, err
		}
		return []any{out[0]}, nil
	case "getPositions":
		out, err := x.StaticCall(a.reader, "getPositions", a.vault, args[0], args[1], args[2], args[3])
		if err != nil {
			return nil, err
		}
		return []any{out[0]}, nil
	}
	return unknownFunction(x)
}

// InstallGMX places the GMX vault and reader stand-ins at their Arbitrum
// addresses, for ledgers that are not forking a real node
func InstallGMX(ctx context.Context, l *ledger.Ledger) error {
	if err := l.DeployAt(ctx, GMX.Vault, GmxVault); err != nil {
		return err
	}
	return l.DeployAt(ctx, GMX.Reader, GmxReader)
}
