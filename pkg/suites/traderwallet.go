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

package suites

import (
	"math/big"

	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/contracts"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
)

const wallet = "wallet"

func zeroAddress(label string) *chain.Signal {
	return chain.CustomError("ZeroAddress", label)
}

var (
	callerNotAllowed = chain.CustomError("CallerNotAllowed")
	invalidAdapter   = chain.CustomError("InvalidAdapter")
)

// protocolID is the adapter id the execution cases resolve through the registry
const protocolID = 1

var (
	traderOperation = []any{1, "0x1234"}
	parameterType   = "0x" + "00000000000000000000000000000000000000000000000000000000000000aa"
	parameters      = []any{[]any{0, parameterType, "1000"}}
)

func executeOnAdapter(as actors.Role, replicate bool) *scenario.Action {
	return scenario.Invoke(as, wallet, "executeOnAdapter", protocolID, traderOperation, parameters, replicate)
}

// TraderWallet covers the current wallet generation, which rejects with custom errors
func TraderWallet() *scenario.Suite {
	setup := append(mocks(),
		scenario.DeployProxy(actors.Deployer, contracts.TraderWallet, "initialize", walletArgs()...).Bind(wallet).Step(),
		scenario.Invoke(actors.Deployer, "usdc", "mint", scenario.Actor(actors.Trader), contracts.InitialSupplyUSDC).Step(),
	)
	groups := []*scenario.Group{
		scenario.DeployMatrix(scenario.DeploySpec{
			Artifact:    contracts.TraderWallet,
			Initializer: "initialize",
			As:          actors.Deployer,
			Args:        walletArgs(),
			Labels:      contracts.InitializerLabels,
			Signal:      zeroAddress,
			Bind:        "deployed",
		}),
		reinitialize(wallet, walletArgs()...),
		{Name: "setters", Groups: walletSetters()},
		walletAdapters(),
		walletDeposits(),
		walletWithdrawals(),
		walletExecution(),
		walletOwnership(),
	}
	return &scenario.Suite{Name: contracts.TraderWallet, Setup: setup, Groups: groups}
}

func ownerSetter(setter, accessor, event, label string) scenario.SetterSpec {
	return scenario.SetterSpec{
		Contract:           wallet,
		Setter:             setter,
		Accessor:           accessor,
		Event:              event,
		As:                 actors.Owner,
		UnauthorizedSignal: reasonNotOwner,
		ZeroSignal:         zeroAddress(label),
		Value:              scenario.Actor(actors.Other),
	}
}

func walletSetters() []*scenario.Group {
	groups := scenario.SetterMatrix(
		ownerSetter("setVaultAddress", "vaultAddress", "VaultAddressSet", "_vaultAddress"),
		scenario.SetterSpec{
			Contract:           wallet,
			Setter:             "setUnderlyingTokenAddress",
			Accessor:           "underlyingTokenAddress",
			Event:              "UnderlyingTokenAddressSet",
			As:                 actors.Trader,
			UnauthorizedSignal: callerNotAllowed,
			ZeroSignal:         zeroAddress("_underlyingTokenAddress"),
			Value:              scenario.Actor(actors.Other),
		},
		ownerSetter("setAdaptersRegistryAddress", "adaptersRegistryAddress", "AdaptersRegistryAddressSet", "_adaptersRegistryAddress"),
		ownerSetter("setContractsFactoryAddress", "contractsFactoryAddress", "ContractsFactoryAddressSet", "_contractsFactoryAddress"),
		ownerSetter("setDynamicValueAddress", "dynamicValueAddress", "DynamicValueAddressSet", "_dynamicValueAddress"),
		scenario.SetterSpec{
			Contract:           wallet,
			Setter:             "setTraderAddress",
			Accessor:           "traderAddress",
			Event:              "TraderAddressSet",
			As:                 actors.Owner,
			UnauthorizedSignal: reasonNotOwner,
			ZeroSignal:         zeroAddress("_traderAddress"),
			Value:              scenario.Actor(actors.Other),
			Given:              []scenario.Step{allowTrader(true)},
		},
	)
	traders := groups[len(groups)-1]
	traders.Cases = append(traders.Cases, &scenario.Case{
		Name:  "WHEN the factory does not allow the new trader THEN rejects",
		Given: []scenario.Step{allowTrader(false)},
		When:  scenario.Invoke(actors.Owner, wallet, "setTraderAddress", scenario.Actor(actors.Other)),
		Then: scenario.Rejects(chain.CustomError("NewTraderNotAllowed"),
			scenario.Unchanged(wallet, "traderAddress"),
		).Kind(chain.DisallowedEntity),
	})
	return groups
}

func walletAdapters() *scenario.Group {
	set := scenario.OrderedSet(scenario.OrderedSetSpec{
		Contract: wallet,
		Add:      "addAdapterToUse",
		Remove:   "removeAdapterToUse",
		As:       actors.Trader,
		Elements: []any{
			scenario.Actor(actors.Other),
			scenario.Actor(actors.SecondaryOwner),
			scenario.At("adapter"),
			scenario.Actor(actors.DynamicValue),
		},
		At:        "traderSelectedAdaptersArray",
		Length:    "getTraderSelectedAdaptersLength",
		Contains:  "traderSelectedAdaptersMapping",
		NonMember: scenario.Actor(actors.NonAuthorized),
		NotFound:  invalidAdapter,
		Given:     []scenario.Step{validAdapter(true)},
	})
	add := func(as actors.Role) *scenario.Action {
		return scenario.Invoke(as, wallet, "addAdapterToUse", scenario.At("adapter"))
	}
	return &scenario.Group{
		Name: "adapters",
		Cases: []*scenario.Case{{
			Name: "WHEN addAdapterToUse is called by nonAuthorized THEN rejects",
			When: add(actors.NonAuthorized),
			Then: scenario.Rejects(callerNotAllowed, scenario.Unchanged(wallet, "getTraderSelectedAdaptersLength")).Kind(chain.UnauthorizedCaller),
		}, {
			Name:  "WHEN the registry does not recognise the adapter THEN rejects",
			Given: []scenario.Step{validAdapter(false)},
			When:  add(actors.Trader),
			Then:  scenario.Rejects(invalidAdapter, scenario.Unchanged(wallet, "getTraderSelectedAdaptersLength")).Kind(chain.UnresolvedReference),
		}, {
			Name:  "WHEN a valid adapter is added THEN it is selected",
			Given: []scenario.Step{validAdapter(true)},
			When:  add(actors.Trader),
			Then: scenario.Succeeds(
				scenario.EmitsOnce("AdapterToUseAdded", scenario.At("adapter"), scenario.Actor(actors.Trader)),
				scenario.Stored(wallet, "traderSelectedAdaptersMapping", true, scenario.At("adapter")),
			),
		}, {
			Name:  "WHEN the adapter is already selected THEN rejects",
			Given: []scenario.Step{validAdapter(true), add(actors.Trader).Step()},
			When:  add(actors.Trader),
			Then:  scenario.Rejects(chain.CustomError("AdapterPresent"), scenario.Unchanged(wallet, "getTraderSelectedAdaptersLength")).Kind(chain.DisallowedEntity),
		}, {
			Name:  "WHEN removeAdapterToUse is called by nonAuthorized THEN rejects",
			Given: []scenario.Step{validAdapter(true), add(actors.Trader).Step()},
			When:  scenario.Invoke(actors.NonAuthorized, wallet, "removeAdapterToUse", scenario.At("adapter")),
			Then:  scenario.Rejects(callerNotAllowed, scenario.Unchanged(wallet, "getTraderSelectedAdaptersLength")).Kind(chain.UnauthorizedCaller),
		}},
		Groups: []*scenario.Group{set},
	}
}

// requestGuards are the rejections shared by deposit and withdrawal requests
func requestGuards(method, total string) []*scenario.Case {
	request := func(as actors.Role, token any, amount *big.Int) *scenario.Action {
		return scenario.Invoke(as, wallet, method, token, amount)
	}
	return []*scenario.Case{{
		Name: "WHEN " + method + " is called by nonAuthorized THEN rejects",
		When: request(actors.NonAuthorized, scenario.At("usdc"), contracts.Amount100),
		Then: scenario.Rejects(callerNotAllowed, scenario.Unchanged(wallet, total)).Kind(chain.UnauthorizedCaller),
	}, {
		Name: "WHEN " + method + " names a token other than the underlying THEN rejects",
		When: request(actors.Trader, scenario.Actor(actors.Other), contracts.Amount100),
		Then: scenario.Rejects(chain.CustomError("UnderlyingAssetNotAllowed"), scenario.Unchanged(wallet, total)).Kind(chain.InvalidArgument),
	}, {
		Name: "WHEN " + method + " is called with a zero amount THEN rejects",
		When: request(actors.Trader, scenario.At("usdc"), contracts.ZeroAmount),
		Then: scenario.Rejects(chain.CustomError("ZeroAmount"), scenario.Unchanged(wallet, total)).Kind(chain.InvalidArgument),
	}}
}

func walletDeposits() *scenario.Group {
	amount := big.NewInt(50)
	cases := requestGuards("depositRequest", "cumulativePendingDeposits")
	cases = append(cases, &scenario.Case{
		Name: "WHEN the token refuses the transfer THEN rejects",
		Given: []scenario.Step{
			scenario.Invoke(actors.Trader, "usdc", "approve", scenario.At(wallet), contracts.Amount100).Step(),
			scenario.Invoke(actors.Deployer, "usdc", "setReturnBoolValue", false).Step(),
		},
		When: scenario.Invoke(actors.Trader, wallet, "depositRequest", scenario.At("usdc"), contracts.Amount100),
		Then: scenario.Rejects(chain.CustomError("TokenTransferFailed"),
			scenario.Unchanged(wallet, "cumulativePendingDeposits"),
		).Kind(chain.UpstreamRejected),
	}, &scenario.Case{
		Name: "WHEN the trader has not approved the wallet THEN the token rejects",
		When: scenario.Invoke(actors.Trader, wallet, "depositRequest", scenario.At("usdc"), contracts.Amount100),
		Then: scenario.Rejects(chain.Reason(contracts.ReasonInsufficientAllowance),
			scenario.Unchanged(wallet, "cumulativePendingDeposits"),
			scenario.BalanceDelta("usdc", scenario.Actor(actors.Trader), 0),
		).Kind(chain.UpstreamRejected),
	}, scenario.Accumulator(scenario.AccumulatorSpec{
		Contract: wallet,
		Method:   "depositRequest",
		As:       actors.Trader,
		First:    amount,
		Second:   amount,
		Args:     func(a *big.Int) []any { return []any{scenario.At("usdc"), a} },
		Totals:   []string{"cumulativePendingDeposits", "getCumulativePendingDeposits"},
		Event:    "DepositRequest",
		Payload:  func(a *big.Int) []any { return []any{scenario.Actor(actors.Trader), scenario.At("usdc"), a} },
		Token:    "usdc",
		Payer:    scenario.Actor(actors.Trader),
		Payee:    scenario.At(wallet),
		Given: []scenario.Step{
			scenario.Invoke(actors.Trader, "usdc", "approve", scenario.At(wallet), contracts.Amount100).Step(),
		},
	}))
	return &scenario.Group{Name: "depositRequest", Cases: cases}
}

func walletWithdrawals() *scenario.Group {
	cases := requestGuards("withdrawRequest", "cumulativePendingWithdrawals")
	cases = append(cases, scenario.Accumulator(scenario.AccumulatorSpec{
		Contract: wallet,
		Method:   "withdrawRequest",
		As:       actors.Trader,
		First:    big.NewInt(30),
		Second:   big.NewInt(70),
		Args:     func(a *big.Int) []any { return []any{scenario.At("usdc"), a} },
		Totals:   []string{"cumulativePendingWithdrawals", "getCumulativePendingWithdrawals"},
		Event:    "WithdrawalRequest",
		Payload:  func(a *big.Int) []any { return []any{scenario.Actor(actors.Trader), scenario.At("usdc"), a} },
	}))
	return &scenario.Group{Name: "withdrawRequest", Cases: cases}
}

func executed(contract string, n int) scenario.Check {
	return scenario.Stored(contract, "executedOperationsCount", n)
}

func walletExecution() *scenario.Group {
	setup := []scenario.Step{
		validAdapter(true),
		resolveAdapterTo(scenario.At("adapter")),
		scenario.Invoke(actors.Deployer, "adapter", "setOperationAllowedReturn", true).Step(),
		scenario.Invoke(actors.Deployer, "adapter", "setExecuteOperationReturn", true).Step(),
		scenario.Invoke(actors.Deployer, "adapter", "setReturnParameters", parameters, false).Step(),
	}
	operationExecuted := func(replicate bool) scenario.Check {
		return scenario.EmitsOnce("OperationExecuted", protocolID, scenario.Anything, contracts.OperationExecutedCaller, replicate, 0)
	}
	return &scenario.Group{
		Name:  "executeOnAdapter",
		Setup: setup,
		Cases: []*scenario.Case{{
			Name: "WHEN executeOnAdapter is called by nonAuthorized THEN rejects",
			When: executeOnAdapter(actors.NonAuthorized, false),
			Then: scenario.Rejects(callerNotAllowed, executed("adapter", 0)).Kind(chain.UnauthorizedCaller),
		}, {
			Name:  "WHEN the registry resolves the zero address THEN rejects",
			Given: []scenario.Step{resolveAdapterTo(contracts.ZeroAddress)},
			When:  executeOnAdapter(actors.Trader, false),
			Then:  scenario.Rejects(invalidAdapter, executed("adapter", 0)).Kind(chain.UnresolvedReference),
		}, {
			Name:  "WHEN the registry does not recognise the protocol THEN rejects",
			Given: []scenario.Step{validAdapter(false)},
			When:  executeOnAdapter(actors.Trader, false),
			Then:  scenario.Rejects(invalidAdapter, executed("adapter", 0)).Kind(chain.DisallowedEntity),
		}, {
			Name:  "WHEN the adapter disallows the operation THEN rejects",
			Given: []scenario.Step{scenario.Invoke(actors.Deployer, "adapter", "setOperationAllowedReturn", false).Step()},
			When:  executeOnAdapter(actors.Trader, false),
			Then:  scenario.Rejects(chain.CustomError("InvalidOperation", "_traderOperationStruct"), executed("adapter", 0)).Kind(chain.DisallowedEntity),
		}, {
			Name:  "WHEN the adapter fails the operation THEN rejects",
			Given: []scenario.Step{scenario.Invoke(actors.Deployer, "adapter", "setExecuteOperationReturn", false).Step()},
			When:  executeOnAdapter(actors.Trader, false),
			Then: scenario.Rejects(chain.CustomError("AdapterOperationFailed", "trader"),
				executed("adapter", 0),
				executed("usersVault", 0),
			).Kind(chain.UpstreamRejected),
		}, {
			Name:  "WHEN replicating an operation with nothing to scale THEN rejects",
			Given: []scenario.Step{scenario.Invoke(actors.Deployer, "adapter", "setReturnParameters", []any{}, true).Step()},
			When:  executeOnAdapter(actors.Trader, true),
			Then:  scenario.Rejects(chain.CustomError("NothingToScale"), executed("usersVault", 0)).Kind(chain.NothingToScale),
		}, {
			Name:  "WHEN the users vault fails the replicated operation THEN rejects",
			Given: []scenario.Step{scenario.Invoke(actors.Deployer, "usersVault", "setExecuteOnAdapter", false).Step()},
			When:  executeOnAdapter(actors.Trader, true),
			Then: scenario.Rejects(chain.CustomError("AdapterOperationFailed", "user"),
				executed("adapter", 0),
				executed("usersVault", 0),
			).Kind(chain.UpstreamRejected),
		}, {
			Name: "WHEN the operation is not replicated THEN only the adapter executes it",
			When: executeOnAdapter(actors.Trader, false),
			Then: scenario.Succeeds(
				operationExecuted(false),
				executed("adapter", 1),
				executed("usersVault", 0),
			),
		}, {
			Name: "WHEN the operation is replicated THEN the users vault executes it too",
			When: executeOnAdapter(actors.Trader, true),
			Then: scenario.Succeeds(
				operationExecuted(true),
				executed("adapter", 1),
				executed("usersVault", 1),
			),
		}},
	}
}

func walletOwnership() *scenario.Group {
	transfer := func(as actors.Role, to any) *scenario.Action {
		return scenario.Invoke(as, wallet, "transferOwnership", to)
	}
	return &scenario.Group{
		Name: "ownership",
		Cases: []*scenario.Case{{
			Name: "WHEN transferOwnership is called by nonAuthorized THEN rejects",
			When: transfer(actors.NonAuthorized, scenario.Actor(actors.NonAuthorized)),
			Then: scenario.Rejects(reasonNotOwner, scenario.Unchanged(wallet, "owner")).Kind(chain.UnauthorizedCaller),
		}, {
			Name: "WHEN ownership is transferred to the zero address THEN rejects",
			When: transfer(actors.Owner, contracts.ZeroAddress),
			Then: scenario.Rejects(chain.Reason(contracts.ReasonNewOwnerZero), scenario.Unchanged(wallet, "owner")).Kind(chain.InvalidArgument),
		}, {
			Name: "WHEN ownership is transferred THEN the new owner may set addresses",
			Given: []scenario.Step{
				transfer(actors.Owner, scenario.Actor(actors.SecondaryOwner)).Step(),
			},
			When: scenario.Invoke(actors.SecondaryOwner, wallet, "setVaultAddress", scenario.Actor(actors.Other)),
			Then: scenario.Succeeds(
				scenario.Stored(wallet, "owner", scenario.Actor(actors.SecondaryOwner)),
				scenario.Stored(wallet, "vaultAddress", scenario.Actor(actors.Other)),
			),
		}},
	}
}
