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
	"errors"
	"math/big"
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deployer = *ethtypes.MustNewAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	vault    = *ethtypes.MustNewAddress("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	trader   = *ethtypes.MustNewAddress("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
	other    = *ethtypes.MustNewAddress("0x90f79bf6eb2c4f870365e785982e1f101e93b906")
)

func newTestSession(t *testing.T) (context.Context, *ledger.Ledger, *chain.Session) {
	reg := Registry()
	l := ledger.New(reg, &harnessconf.ChainConfig{})
	t.Cleanup(l.Close)
	return context.Background(), l, chain.NewSession(l, reg.Artifacts())
}

func rejection(t *testing.T, err error) *chain.Rejection {
	var r *chain.Rejection
	require.True(t, errors.As(err, &r), "expected a rejection, got %v", err)
	return r
}

func call(t *testing.T, ctx context.Context, c *chain.Contract, method string, args ...any) chain.Values {
	v, err := c.Method(method).Args(args...).Call(ctx)
	require.NoError(t, err)
	return v
}

func send(t *testing.T, ctx context.Context, c *chain.Contract, from ethtypes.Address0xHex, method string, args ...any) *chain.Result {
	res, err := c.Method(method).From(from).Args(args...).Send(ctx)
	require.NoError(t, err)
	return res
}

func TestEmbeddedArtifacts(t *testing.T) {
	reg := Registry()
	assert.ElementsMatch(t, Names, reg.Names())
	for _, name := range Names {
		assert.NotEmpty(t, ABI(name), name)
	}
	assert.Nil(t, ABI("Unknown"))

	am := Artifacts()
	assert.Len(t, am, len(Names))
	delete(am, TraderWallet)
	assert.NotNil(t, ABI(TraderWallet))

	ctor := ABI(ERC1967Proxy).Constructor()
	require.NotNil(t, ctor)
	assert.Len(t, ctor.Inputs, 2)
}

func TestTaxonomy(t *testing.T) {
	tx := Taxonomy()
	for _, c := range []struct {
		rej  *chain.Rejection
		kind chain.RejectionKind
	}{
		{&chain.Rejection{Name: chain.ReasonErrorName, Reason: ReasonNotOwner}, chain.UnauthorizedCaller},
		{&chain.Rejection{Name: chain.ReasonErrorName, Reason: ReasonCallerNotAllowed}, chain.UnauthorizedCaller},
		{&chain.Rejection{Name: "CallerNotAllowed"}, chain.UnauthorizedCaller},
		{&chain.Rejection{Name: "ZeroAddress"}, chain.InvalidArgument},
		{&chain.Rejection{Name: chain.ReasonErrorName, Reason: "INVALID address _traderAddress"}, chain.InvalidArgument},
		{&chain.Rejection{Name: "InvalidAdapter"}, chain.UnresolvedReference},
		{&chain.Rejection{Name: "NewTraderNotAllowed"}, chain.DisallowedEntity},
		{&chain.Rejection{Name: "AdapterOperationFailed"}, chain.UpstreamRejected},
		{&chain.Rejection{Name: "NothingToScale"}, chain.NothingToScale},
		{&chain.Rejection{Name: chain.ReasonErrorName, Reason: ReasonProtocolIDNotFound}, chain.NotFound},
		{&chain.Rejection{Name: "Mystery"}, chain.Other},
	} {
		assert.Equal(t, c.kind, tx.Classify(c.rej), c.rej.Name+c.rej.Reason)
	}
	invalidAdapter := &chain.Rejection{Name: "InvalidAdapter"}
	assert.True(t, tx.Allows(invalidAdapter, chain.DisallowedEntity))
	assert.True(t, tx.Allows(invalidAdapter, chain.NotFound))
	assert.False(t, tx.Allows(invalidAdapter, chain.UnauthorizedCaller))
}

func TestERC20Mock(t *testing.T) {
	ctx, _, s := newTestSession(t)
	usdc, _, err := s.Deploy(ctx, deployer, ERC20Mock, "USDC", "USDC", 6)
	require.NoError(t, err)

	assert.Equal(t, "USDC", call(t, ctx, usdc, "symbol").MustString(0))
	assert.Equal(t, int64(6), call(t, ctx, usdc, "decimals").MustBigInt(0).Int64())

	res := send(t, ctx, usdc, deployer, "mint", trader, InitialSupplyUSDC)
	require.Len(t, res.Named("Transfer"), 1)
	assert.Equal(t, InitialSupplyUSDC.String(), call(t, ctx, usdc, "totalSupply").MustBigInt(0).String())

	send(t, ctx, usdc, trader, "approve", vault, 100)
	res = send(t, ctx, usdc, vault, "transferFrom", trader, other, 60)
	assert.Len(t, res.Named("Transfer"), 1)
	assert.Len(t, res.Named("Approval"), 1)
	assert.Equal(t, int64(40), call(t, ctx, usdc, "allowance", trader, vault).MustBigInt(0).Int64())
	assert.Equal(t, int64(60), call(t, ctx, usdc, "balanceOf", other).MustBigInt(0).Int64())

	_, err = usdc.Method("transferFrom").From(vault).Args(trader, other, 41).Send(ctx)
	assert.Equal(t, ReasonInsufficientAllowance, rejection(t, err).Reason)

	_, err = usdc.Method("transfer").From(other).Args(trader, 61).Send(ctx)
	assert.Equal(t, ReasonTransferExceedsBalance, rejection(t, err).Reason)

	// forced false moves nothing
	send(t, ctx, usdc, deployer, "setReturnBoolValue", false)
	res = send(t, ctx, usdc, other, "transfer", trader, 10)
	assert.Empty(t, res.Named("Transfer"))
	assert.Equal(t, int64(60), call(t, ctx, usdc, "balanceOf", other).MustBigInt(0).Int64())
}

func TestInitializerGuard(t *testing.T) {
	ctx, _, s := newTestSession(t)
	cf, res, err := s.DeployProxy(ctx, deployer, ContractsFactory, "initialize", vault, 30)
	require.NoError(t, err)
	assert.Len(t, res.Named("Upgraded"), 1)
	assert.Len(t, res.Named("OwnershipTransferred"), 1)
	assert.Len(t, res.Named("Initialized"), 1)
	assert.Equal(t, deployer.String(), call(t, ctx, cf, "owner").MustAddress(0).String())

	_, err = cf.Method("initialize").From(deployer).Args(vault, 30).Send(ctx)
	assert.Equal(t, ReasonAlreadyInitialized, rejection(t, err).Reason)
}

func TestContractsFactory(t *testing.T) {
	ctx, _, s := newTestSession(t)
	_, _, err := s.DeployProxy(ctx, deployer, ContractsFactory, "initialize", ZeroAddress, 30)
	assert.True(t, chain.CustomError("ZeroAddress", "_adaptersRegistryAddress").Matches(rejection(t, err)))
	_, _, err = s.DeployProxy(ctx, deployer, ContractsFactory, "initialize", vault, MaxFeeRate+1)
	assert.Equal(t, "FeeRateError", rejection(t, err).Name)

	cf, _, err := s.DeployProxy(ctx, deployer, ContractsFactory, "initialize", vault, 30)
	require.NoError(t, err)

	_, err = cf.Method("setFeeRate").From(other).Args(20).Send(ctx)
	assert.Equal(t, ReasonNotOwner, rejection(t, err).Reason)
	_, err = cf.Method("setFeeRate").From(deployer).Args(200).Send(ctx)
	assert.Equal(t, "FeeRateError", rejection(t, err).Name)
	res := send(t, ctx, cf, deployer, "setFeeRate", 20)
	assert.Len(t, res.Named("FeeRateSet"), 1)
	assert.Equal(t, int64(20), call(t, ctx, cf, "feeRate").MustBigInt(0).Int64())

	assert.False(t, call(t, ctx, cf, "isTraderAllowed", trader).MustBool(0))
	send(t, ctx, cf, deployer, "addTrader", trader)
	assert.True(t, call(t, ctx, cf, "isTraderAllowed", trader).MustBool(0))
	_, err = cf.Method("addTrader").From(deployer).Args(trader).Send(ctx)
	assert.Equal(t, "TraderAlreadyAllowed", rejection(t, err).Name)
	send(t, ctx, cf, deployer, "removeTrader", trader)
	_, err = cf.Method("removeTrader").From(deployer).Args(trader).Send(ctx)
	assert.Equal(t, "TraderNotFound", rejection(t, err).Name)
}

type walletEnv struct {
	ctx      context.Context
	s        *chain.Session
	wallet   *chain.Contract
	usdc     *chain.Contract
	factory  *chain.Contract
	registry *chain.Contract
	adapter  *chain.Contract
}

func newWalletEnv(t *testing.T) *walletEnv {
	ctx, _, s := newTestSession(t)
	e := &walletEnv{ctx: ctx, s: s}
	var err error
	e.usdc, _, err = s.Deploy(ctx, deployer, ERC20Mock, "USDC", "USDC", 6)
	require.NoError(t, err)
	e.factory, _, err = s.Deploy(ctx, deployer, ContractsFactoryMock)
	require.NoError(t, err)
	e.registry, _, err = s.Deploy(ctx, deployer, AdaptersRegistryMock)
	require.NoError(t, err)
	e.adapter, _, err = s.Deploy(ctx, deployer, AdapterMock)
	require.NoError(t, err)
	e.wallet, _, err = s.DeployProxy(ctx, deployer, TraderWallet, "initialize",
		vault, e.usdc.Address, e.registry.Address, e.factory.Address, trader, other)
	require.NoError(t, err)
	return e
}

func TestTraderWalletInitializerLabels(t *testing.T) {
	ctx, _, s := newTestSession(t)
	for i, label := range InitializerLabels {
		args := []any{vault, vault, vault, vault, vault, vault}
		args[i] = ZeroAddress
		_, _, err := s.DeployProxy(ctx, deployer, TraderWallet, "initialize", args...)
		assert.True(t, chain.CustomError("ZeroAddress", label).Matches(rejection(t, err)), label)

		_, _, err = s.DeployProxy(ctx, deployer, TraderWalletLegacy, "initialize", args...)
		assert.Equal(t, ReasonInvalidAddressPrefix+label, rejection(t, err).Reason)
	}
}

func TestTraderWalletSetters(t *testing.T) {
	e := newWalletEnv(t)
	ctx := e.ctx

	_, err := e.wallet.Method("setVaultAddress").From(other).Args(other).Send(ctx)
	assert.Equal(t, ReasonNotOwner, rejection(t, err).Reason)
	_, err = e.wallet.Method("setVaultAddress").From(deployer).Args(ZeroAddress).Send(ctx)
	assert.True(t, chain.CustomError("ZeroAddress", "_vaultAddress").Matches(rejection(t, err)))
	res := send(t, ctx, e.wallet, deployer, "setVaultAddress", other)
	require.Len(t, res.Named("VaultAddressSet"), 1)
	assert.True(t, chain.Equal(other, res.Named("VaultAddressSet")[0].Args[0]))

	_, err = e.wallet.Method("setUnderlyingTokenAddress").From(deployer).Args(other).Send(ctx)
	assert.Equal(t, "CallerNotAllowed", rejection(t, err).Name)

	_, err = e.wallet.Method("setTraderAddress").From(deployer).Args(other).Send(ctx)
	assert.Equal(t, "NewTraderNotAllowed", rejection(t, err).Name)
	send(t, ctx, e.factory, deployer, "setReturnValue", true)
	send(t, ctx, e.wallet, deployer, "setTraderAddress", other)
	assert.Equal(t, other.String(), call(t, ctx, e.wallet, "traderAddress").MustAddress(0).String())
}

func TestTraderWalletAdapters(t *testing.T) {
	e := newWalletEnv(t)
	ctx := e.ctx
	a1, a2, a3 := vault, other, deployer

	_, err := e.wallet.Method("addAdapterToUse").From(trader).Args(a1).Send(ctx)
	assert.Equal(t, "InvalidAdapter", rejection(t, err).Name)

	send(t, ctx, e.registry, deployer, "setReturnValue", true)
	for _, a := range []ethtypes.Address0xHex{a1, a2, a3} {
		send(t, ctx, e.wallet, trader, "addAdapterToUse", a)
	}
	_, err = e.wallet.Method("addAdapterToUse").From(trader).Args(a2).Send(ctx)
	assert.Equal(t, "AdapterPresent", rejection(t, err).Name)

	res := send(t, ctx, e.wallet, trader, "removeAdapterToUse", a2)
	assert.Len(t, res.Named("AdapterToUseRemoved"), 1)
	assert.Equal(t, int64(2), call(t, ctx, e.wallet, "getTraderSelectedAdaptersLength").MustBigInt(0).Int64())
	assert.Equal(t, a3.String(), call(t, ctx, e.wallet, "traderSelectedAdaptersArray", 1).MustAddress(0).String())
	assert.False(t, call(t, ctx, e.wallet, "traderSelectedAdaptersMapping", a2).MustBool(0))

	_, err = e.wallet.Method("removeAdapterToUse").From(trader).Args(a2).Send(ctx)
	assert.Equal(t, "InvalidAdapter", rejection(t, err).Name)
}

func TestTraderWalletDeposit(t *testing.T) {
	e := newWalletEnv(t)
	ctx := e.ctx
	send(t, ctx, e.usdc, deployer, "mint", trader, 100)
	send(t, ctx, e.usdc, trader, "approve", e.wallet.Address, 100)

	_, err := e.wallet.Method("depositRequest").From(trader).Args(other, 50).Send(ctx)
	assert.Equal(t, "UnderlyingAssetNotAllowed", rejection(t, err).Name)
	_, err = e.wallet.Method("depositRequest").From(trader).Args(e.usdc.Address, 0).Send(ctx)
	assert.Equal(t, "ZeroAmount", rejection(t, err).Name)

	for i := 0; i < 2; i++ {
		res := send(t, ctx, e.wallet, trader, "depositRequest", e.usdc.Address, 50)
		assert.Len(t, res.Named("DepositRequest"), 1)
	}
	assert.Equal(t, int64(100), call(t, ctx, e.wallet, "cumulativePendingDeposits").MustBigInt(0).Int64())
	assert.Equal(t, int64(100), call(t, ctx, e.usdc, "balanceOf", e.wallet.Address).MustBigInt(0).Int64())
	assert.Equal(t, int64(0), call(t, ctx, e.usdc, "balanceOf", trader).MustBigInt(0).Int64())

	send(t, ctx, e.usdc, deployer, "setReturnBoolValue", false)
	_, err = e.wallet.Method("depositRequest").From(trader).Args(e.usdc.Address, 1).Send(ctx)
	assert.Equal(t, "TokenTransferFailed", rejection(t, err).Name)

	send(t, ctx, e.wallet, trader, "withdrawRequest", e.usdc.Address, 30)
	assert.Equal(t, int64(30), call(t, ctx, e.wallet, "getCumulativePendingWithdrawals").MustBigInt(0).Int64())
}

func TestTraderWalletExecuteOnAdapter(t *testing.T) {
	e := newWalletEnv(t)
	ctx := e.ctx
	op := []any{10, "0x1234"}
	typ := "0x75696e7432353600000000000000000000000000000000000000000000000000"
	params := []any{[]any{1, typ, "100"}, []any{3, typ, "300"}}
	execute := func(replicate bool) error {
		_, err := e.wallet.Method("executeOnAdapter").From(trader).Args(10, op, params, replicate).Send(ctx)
		return err
	}

	assert.Equal(t, "InvalidAdapter", rejection(t, execute(false)).Name)
	assert.Equal(t, int64(0), call(t, ctx, e.adapter, "executedOperationsCount").MustBigInt(0).Int64())

	send(t, ctx, e.registry, deployer, "setReturnAddress", e.adapter.Address)
	assert.Equal(t, "InvalidAdapter", rejection(t, execute(false)).Name)
	send(t, ctx, e.registry, deployer, "setReturnValue", true)
	assert.True(t, chain.CustomError("InvalidOperation", "_traderOperationStruct").Matches(rejection(t, execute(false))))
	send(t, ctx, e.adapter, deployer, "setOperationAllowedReturn", true)
	assert.True(t, chain.CustomError("AdapterOperationFailed", "trader").Matches(rejection(t, execute(false))))
	send(t, ctx, e.adapter, deployer, "setExecuteOperationReturn", true)
	send(t, ctx, e.adapter, deployer, "setReturnParameters", params, true)
	assert.Equal(t, "NothingToScale", rejection(t, execute(true)).Name)

	users, _, err := e.s.Deploy(ctx, deployer, UsersVaultMock)
	require.NoError(t, err)
	send(t, ctx, e.wallet, deployer, "setVaultAddress", users.Address)
	send(t, ctx, e.adapter, deployer, "setReturnParameters", params, false)
	send(t, ctx, users, deployer, "setExecuteOnAdapter", false)
	assert.True(t, chain.CustomError("AdapterOperationFailed", "user").Matches(rejection(t, execute(true))))

	send(t, ctx, users, deployer, "setExecuteOnAdapter", true)
	res, err := e.wallet.Method("executeOnAdapter").From(trader).Args(10, op, params, true).Send(ctx)
	require.NoError(t, err)
	executed := res.Named("OperationExecuted")
	require.Len(t, executed, 1)
	caller, _ := executed[0].Arg("_caller")
	assert.Equal(t, OperationExecutedCaller, caller)
	assert.Equal(t, int64(1), call(t, ctx, users, "executedOperationsCount").MustBigInt(0).Int64())
	assert.Equal(t, int64(1), call(t, ctx, e.adapter, "executedOperationsCount").MustBigInt(0).Int64())
}

func TestLegacyWalletProtocols(t *testing.T) {
	ctx, _, s := newTestSession(t)
	registry, _, err := s.Deploy(ctx, deployer, AdaptersRegistryMock)
	require.NoError(t, err)
	wallet, _, err := s.DeployProxy(ctx, deployer, TraderWalletLegacy, "initialize",
		vault, vault, registry.Address, vault, trader, other)
	require.NoError(t, err)

	_, err = wallet.Method("addProtocolToUse").From(other).Args(10).Send(ctx)
	assert.Equal(t, ReasonCallerNotAllowed, rejection(t, err).Reason)
	_, err = wallet.Method("addProtocolToUse").From(trader).Args(10).Send(ctx)
	assert.Equal(t, ReasonInvalidProtocolID, rejection(t, err).Reason)

	send(t, ctx, registry, deployer, "setReturnValue", true)
	send(t, ctx, registry, deployer, "setReturnAddress", other)
	for id := 10; id < 14; id++ {
		send(t, ctx, wallet, trader, "addProtocolToUse", id)
	}
	res := send(t, ctx, wallet, trader, "removeProtocolToUse", 12)
	assert.Len(t, res.Named("ProtocolToUseRemoved"), 1)
	var got []int64
	n := call(t, ctx, wallet, "getTraderSelectedProtocolsLength").MustBigInt(0).Int64()
	for i := int64(0); i < n; i++ {
		got = append(got, call(t, ctx, wallet, "traderSelectedProtocols", i).MustBigInt(0).Int64())
	}
	assert.Equal(t, []int64{10, 11, 13}, got)

	_, err = wallet.Method("removeProtocolToUse").From(trader).Args(12).Send(ctx)
	assert.Equal(t, ReasonProtocolIDNotFound, rejection(t, err).Reason)
	_, err = wallet.Method("setVaultAddress").From(deployer).Args(ZeroAddress).Send(ctx)
	assert.True(t, chain.CustomError("AddressZero", "_vaultAddress").Matches(rejection(t, err)))
}

func TestGMXAdapter(t *testing.T) {
	ctx, l, s := newTestSession(t)
	require.NoError(t, InstallGMX(ctx, l))

	addrs := []any{GMX.Router, GMX.PositionRouter, GMX.Reader, GMX.Vault}
	for i := range addrs {
		args := append([]any{}, addrs...)
		args[i] = ZeroAddress
		_, _, err := s.DeployProxy(ctx, deployer, GMXAdapter, "initialize", args...)
		assert.Equal(t, "AddressZero", rejection(t, err).Name)
	}

	adapter, _, err := s.DeployProxy(ctx, deployer, GMXAdapter, "initialize", addrs...)
	require.NoError(t, err)
	assert.Equal(t, GMX.Reader.String(), call(t, ctx, adapter, "gmxReader").MustAddress(0).String())

	out := call(t, ctx, adapter, "getAmountOut", Tokens.USDC, Tokens.USDT, Amount100)
	assert.Equal(t, int64(99), out.MustBigInt(0).Int64())
	assert.Equal(t, int64(1), out.MustBigInt(1).Int64())

	maxIn := call(t, ctx, adapter, "getMaxAmountIn", Tokens.FRAX, Tokens.USDT)
	assert.Equal(t, "3636269524320000000000000", maxIn.MustBigInt(0).String())

	_, err = adapter.Method("getAmountOut").Args(Tokens.USDC, Tokens.RandomCoin, 100).Call(ctx)
	assert.Equal(t, ReasonInvalidPriceFeed, rejection(t, err).Reason)
	_, err = adapter.Method("getMaxAmountIn").Args(Tokens.USDC, Tokens.RandomCoin).Call(ctx)
	assert.Equal(t, ReasonInvalidPriceFeed, rejection(t, err).Reason)

	positions := call(t, ctx, adapter, "getPositions", PositionAccount,
		[]any{Tokens.USDC, Tokens.USDC}, []any{Tokens.WETH, Tokens.WETH}, []any{true, true})
	amounts := positions.MustArray(0)
	require.Len(t, amounts, 2*positionProps)
	size, ok := new(big.Int).SetString(amounts[0].(string), 10)
	require.True(t, ok)
	assert.Positive(t, size.Sign())
	assert.Equal(t, "1", amounts[7])
}

func TestBatchedVaultRound(t *testing.T) {
	ctx, _, s := newTestSession(t)
	v, _, err := s.Deploy(ctx, deployer, BatchedVault)
	require.NoError(t, err)
	assert.Equal(t, int64(1), call(t, ctx, v, "currentRound").MustBigInt(0).Int64())
}
