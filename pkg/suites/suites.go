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

// Package suites holds the scenario suites for the Kunji Finance contracts
package suites

import (
	"context"
	"sort"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/contracts"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
)

var (
	reasonNotOwner           = chain.Reason(contracts.ReasonNotOwner)
	reasonAlreadyInitialized = chain.Reason(contracts.ReasonAlreadyInitialized)
)

// Builder constructs a fresh suite. Suites carry no chain state, so building
// one twice gives two independent tables.
type Builder func() *scenario.Suite

var builtins = map[string]Builder{
	contracts.TraderWallet:       TraderWallet,
	contracts.TraderWalletLegacy: TraderWalletLegacy,
	contracts.ContractsFactory:   ContractsFactory,
	contracts.GMXAdapter:         GMXAdapter,
	contracts.BatchedVault:       BatchedVault,
}

// Names lists the built-in suites in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Get(ctx context.Context, name string) (*scenario.Suite, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgScenarioUnknownSuite, name)
	}
	return b(), nil
}

// Select builds the named suites, or every suite when names is empty
func Select(ctx context.Context, names ...string) ([]*scenario.Suite, error) {
	if len(names) == 0 {
		names = Names()
	}
	out := make([]*scenario.Suite, 0, len(names))
	for _, name := range names {
		s, err := Get(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// mocks deploys the collaborators a trader wallet resolves through: the
// underlying token, the factory and registry mocks, an adapter and the users vault
func mocks() []scenario.Step {
	return []scenario.Step{
		scenario.Deploy(actors.Deployer, contracts.ERC20Mock, "USDC", "USDC", 6).Bind("usdc").Step(),
		scenario.Deploy(actors.Deployer, contracts.ContractsFactoryMock).Bind("factory").Step(),
		scenario.Deploy(actors.Deployer, contracts.AdaptersRegistryMock).Bind("registry").Step(),
		scenario.Deploy(actors.Deployer, contracts.AdapterMock).Bind("adapter").Step(),
		scenario.Deploy(actors.Deployer, contracts.UsersVaultMock).Bind("usersVault").Step(),
	}
}

// walletArgs are the initializer arguments of both wallet generations
func walletArgs() []any {
	return []any{
		scenario.At("usersVault"),
		scenario.At("usdc"),
		scenario.At("registry"),
		scenario.At("factory"),
		scenario.Actor(actors.Trader),
		scenario.Actor(actors.DynamicValue),
	}
}

func allowTrader(allowed bool) scenario.Step {
	return scenario.Invoke(actors.Deployer, "factory", "setReturnValue", allowed).Step()
}

func validAdapter(valid bool) scenario.Step {
	return scenario.Invoke(actors.Deployer, "registry", "setReturnValue", valid).Step()
}

func resolveAdapterTo(addr any) scenario.Step {
	return scenario.Invoke(actors.Deployer, "registry", "setReturnAddress", addr).Step()
}

// reinitialize shows an initialized proxy refuses a second initialization
func reinitialize(contract string, args ...any) *scenario.Group {
	return &scenario.Group{
		Name: "initializer",
		Cases: []*scenario.Case{{
			Name: "WHEN initialize is called again THEN rejects",
			When: scenario.Invoke(actors.Deployer, contract, "initialize", args...),
			Then: scenario.Rejects(reasonAlreadyInitialized, scenario.Unchanged(contract, "owner")).Kind(chain.Other),
		}},
	}
}
