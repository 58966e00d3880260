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
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/contracts"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
)

const legacyWallet = "legacyWallet"

var legacyCallerNotAllowed = chain.Reason(contracts.ReasonCallerNotAllowed)

func addressZero(label string) *chain.Signal {
	return chain.CustomError("AddressZero", label)
}

// TraderWalletLegacy covers the earlier wallet generation, which rejects with
// revert reasons and selects protocols by id
func TraderWalletLegacy() *scenario.Suite {
	setup := append(mocks(),
		scenario.DeployProxy(actors.Deployer, contracts.TraderWalletLegacy, "initialize", walletArgs()...).Bind(legacyWallet).Step(),
	)
	return &scenario.Suite{
		Name:  contracts.TraderWalletLegacy,
		Setup: setup,
		Groups: []*scenario.Group{
			scenario.DeployMatrix(scenario.DeploySpec{
				Artifact:    contracts.TraderWalletLegacy,
				Initializer: "initialize",
				As:          actors.Deployer,
				Args:        walletArgs(),
				Labels:      contracts.InitializerLabels,
				Signal: func(label string) *chain.Signal {
					return chain.Reason(contracts.ReasonInvalidAddressPrefix + label)
				},
				Bind: "deployed",
			}),
			reinitialize(legacyWallet, walletArgs()...),
			{Name: "setters", Groups: legacySetters()},
			legacyProtocols(),
		},
	}
}

func legacySetters() []*scenario.Group {
	owner := func(setter, accessor, event, label string) scenario.SetterSpec {
		return scenario.SetterSpec{
			Contract:           legacyWallet,
			Setter:             setter,
			Accessor:           accessor,
			Event:              event,
			As:                 actors.Owner,
			UnauthorizedSignal: reasonNotOwner,
			ZeroSignal:         addressZero(label),
			Value:              scenario.Actor(actors.Other),
		}
	}
	trader := func(setter, accessor, event, label string) scenario.SetterSpec {
		s := owner(setter, accessor, event, label)
		s.As, s.UnauthorizedSignal = actors.Trader, legacyCallerNotAllowed
		return s
	}
	traderChange := trader("setTraderAddress", "traderAddress", "TraderAddressSet", "_traderAddress")
	traderChange.Given = []scenario.Step{allowTrader(true)}

	groups := scenario.SetterMatrix(
		owner("setVaultAddress", "vaultAddress", "VaultAddressSet", "_vaultAddress"),
		trader("setUnderlyingTokenAddress", "underlyingTokenAddress", "UnderlyingTokenAddressSet", "_underlyingTokenAddress"),
		owner("setAdaptersRegistryAddress", "adaptersRegistryAddress", "AdaptersRegistryAddressSet", "_adaptersRegistryAddress"),
		owner("setContractsFactoryAddress", "contractsFactoryAddress", "ContractsFactoryAddressSet", "_contractsFactoryAddress"),
		owner("setDynamicValueAddress", "dynamicValueAddress", "DynamicValueAddressSet", "_dynamicValueAddress"),
		traderChange,
	)
	traders := groups[len(groups)-1]
	traders.Cases = append(traders.Cases, &scenario.Case{
		Name:  "WHEN the factory does not allow the new trader THEN rejects",
		Given: []scenario.Step{allowTrader(false)},
		When:  scenario.Invoke(actors.Trader, legacyWallet, "setTraderAddress", scenario.Actor(actors.Other)),
		Then: scenario.Rejects(chain.Reason(contracts.ReasonNewTraderNotAllowed),
			scenario.Unchanged(legacyWallet, "traderAddress"),
		).Kind(chain.DisallowedEntity),
	})
	return groups
}

func legacyProtocols() *scenario.Group {
	set := scenario.OrderedSet(scenario.OrderedSetSpec{
		Contract:  legacyWallet,
		Add:       "addProtocolToUse",
		Remove:    "removeProtocolToUse",
		As:        actors.Trader,
		Elements:  []any{10, 11, 12, 13},
		At:        "traderSelectedProtocols",
		Length:    "getTraderSelectedProtocolsLength",
		NonMember: 99,
		NotFound:  chain.Reason(contracts.ReasonProtocolIDNotFound),
	})
	add := func(as actors.Role) *scenario.Action {
		return scenario.Invoke(as, legacyWallet, "addProtocolToUse", protocolID)
	}
	length := scenario.Unchanged(legacyWallet, "getTraderSelectedProtocolsLength")
	return &scenario.Group{
		Name: "protocols",
		Setup: []scenario.Step{
			validAdapter(true),
			resolveAdapterTo(scenario.At("adapter")),
		},
		Cases: []*scenario.Case{{
			Name: "WHEN addProtocolToUse is called by nonAuthorized THEN rejects",
			When: add(actors.NonAuthorized),
			Then: scenario.Rejects(legacyCallerNotAllowed, length).Kind(chain.UnauthorizedCaller),
		}, {
			Name:  "WHEN the registry resolves the zero address THEN rejects",
			Given: []scenario.Step{resolveAdapterTo(contracts.ZeroAddress)},
			When:  add(actors.Trader),
			Then:  scenario.Rejects(chain.Reason(contracts.ReasonInvalidProtocolID), length).Kind(chain.UnresolvedReference),
		}, {
			Name:  "WHEN the registry does not recognise the protocol THEN rejects",
			Given: []scenario.Step{validAdapter(false)},
			When:  add(actors.Trader),
			Then:  scenario.Rejects(chain.Reason(contracts.ReasonInvalidProtocolID), length).Kind(chain.DisallowedEntity),
		}, {
			Name: "WHEN a resolvable protocol is added THEN it is selected",
			When: add(actors.Trader),
			Then: scenario.Succeeds(
				scenario.EmitsOnce("ProtocolToUseAdded", protocolID, scenario.Actor(actors.Trader)),
				scenario.Lists(legacyWallet, "traderSelectedProtocols", "getTraderSelectedProtocolsLength", protocolID),
			),
		}},
		Groups: []*scenario.Group{set},
	}
}
