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

package scenario

import (
	"math/big"
	"testing"

	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/contracts"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walletArgs() []any {
	return []any{
		Actor(actors.Vault),
		At("usdc"),
		At("registry"),
		At("factory"),
		Actor(actors.Trader),
		Actor(actors.DynamicValue),
	}
}

func walletSetup() []Step {
	return []Step{
		Deploy(actors.Deployer, contracts.ERC20Mock, "USDC", "USDC", 6).Bind("usdc").Step(),
		Deploy(actors.Deployer, contracts.ContractsFactoryMock).Bind("factory").Step(),
		Deploy(actors.Deployer, contracts.AdaptersRegistryMock).Bind("registry").Step(),
		DeployProxy(actors.Deployer, contracts.TraderWallet, "initialize", walletArgs()...).Bind("wallet").Step(),
		Invoke(actors.Deployer, "usdc", "mint", Actor(actors.Trader), 1000).Step(),
		Invoke(actors.Trader, "usdc", "approve", At("wallet"), 1000).Step(),
	}
}

func TestSetterMatrix(t *testing.T) {
	groups := SetterMatrix(
		SetterSpec{
			Contract:           "wallet",
			Setter:             "setVaultAddress",
			Accessor:           "vaultAddress",
			Event:              "VaultAddressSet",
			As:                 actors.Owner,
			UnauthorizedSignal: chain.Reason(contracts.ReasonNotOwner),
			ZeroSignal:         chain.CustomError("ZeroAddress", "_vaultAddress"),
		},
		SetterSpec{
			Contract:           "wallet",
			Setter:             "setTraderAddress",
			Accessor:           "traderAddress",
			Event:              "TraderAddressSet",
			As:                 actors.Owner,
			UnauthorizedSignal: chain.Reason(contracts.ReasonNotOwner),
			Given:              []Step{Invoke(actors.Deployer, "factory", "setReturnValue", true).Step()},
		},
	)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Cases, 3)
	assert.Len(t, groups[1].Cases, 2)

	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, &Suite{Name: "TraderWallet", Setup: walletSetup(), Groups: groups})
	assertPassed(t, rep)
	assert.Equal(t, 5, rep.Passed())
	assert.NotNil(t, rep.Find("TraderWallet", "setVaultAddress", "WHEN setVaultAddress is called with the zero value THEN rejects"))
}

func TestSetterMatrixDetectsWrongSignal(t *testing.T) {
	groups := SetterMatrix(SetterSpec{
		Contract:           "wallet",
		Setter:             "setUnderlyingTokenAddress",
		Accessor:           "underlyingTokenAddress",
		Event:              "UnderlyingTokenAddressSet",
		As:                 actors.Trader,
		UnauthorizedSignal: chain.Reason(contracts.ReasonNotOwner),
	})
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, &Suite{Name: "TraderWallet", Setup: walletSetup(), Groups: groups})
	require.Len(t, rep.Failed(), 1)
	assert.Regexp(t, "KF010301.*CallerNotAllowed", rep.Failed()[0].Err)
}

func TestDeployMatrix(t *testing.T) {
	g := DeployMatrix(DeploySpec{
		Artifact:    contracts.TraderWallet,
		Initializer: "initialize",
		As:          actors.Deployer,
		Args:        walletArgs(),
		Labels:      contracts.InitializerLabels,
		Signal:      func(label string) *chain.Signal { return chain.CustomError("ZeroAddress", label) },
		Bind:        "deployed",
	})
	require.Len(t, g.Cases, 7)
	assert.Equal(t, "WHEN _traderAddress is the zero address THEN deployment rejects", g.Cases[4].Name)

	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, &Suite{Name: "TraderWallet", Setup: walletSetup(), Groups: []*Group{g}})
	assertPassed(t, rep)
	assert.Equal(t, 7, rep.Passed())
}

func TestAccumulator(t *testing.T) {
	c := Accumulator(AccumulatorSpec{
		Contract: "wallet",
		Method:   "depositRequest",
		As:       actors.Trader,
		First:    big.NewInt(50),
		Second:   big.NewInt(50),
		Args:     func(amount *big.Int) []any { return []any{At("usdc"), amount} },
		Totals:   []string{"cumulativePendingDeposits", "getCumulativePendingDeposits"},
		Event:    "DepositRequest",
		Payload:  func(amount *big.Int) []any { return []any{Actor(actors.Trader), At("usdc"), amount} },
		Token:    "usdc",
		Payer:    Actor(actors.Trader),
		Payee:    At("wallet"),
	})
	assert.Equal(t, "WHEN depositRequest is called with 50 then 50 THEN totals are 100", c.Name)

	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, &Suite{Name: "TraderWallet", Setup: walletSetup(), Groups: []*Group{{Name: "deposits", Cases: []*Case{c}}}})
	assertPassed(t, rep)
}

func TestOrderedSet(t *testing.T) {
	g := OrderedSet(OrderedSetSpec{
		Contract:  "wallet",
		Add:       "addAdapterToUse",
		Remove:    "removeAdapterToUse",
		As:        actors.Trader,
		Elements:  []any{Actor(actors.Other), Actor(actors.SecondaryOwner), Actor(actors.Vault), Actor(actors.DynamicValue)},
		At:        "traderSelectedAdaptersArray",
		Length:    "getTraderSelectedAdaptersLength",
		Contains:  "traderSelectedAdaptersMapping",
		NonMember: Actor(actors.NonAuthorized),
		NotFound:  chain.CustomError("InvalidAdapter"),
		Given:     []Step{Invoke(actors.Deployer, "registry", "setReturnValue", true).Step()},
	})
	assert.Equal(t, "addAdapterToUse/removeAdapterToUse", g.Name)
	require.Len(t, g.Cases, 3)

	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, &Suite{Name: "TraderWallet", Setup: walletSetup(), Groups: []*Group{g}})
	assertPassed(t, rep)
	assert.Equal(t, 3, rep.Passed())
}
