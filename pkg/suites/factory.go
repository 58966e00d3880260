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

const factory = "contractsFactory"

const initialFeeRate = 10

var feeRateError = chain.CustomError("FeeRateError")

// ContractsFactory covers fee configuration and the trader allow list
func ContractsFactory() *scenario.Suite {
	deploy := func(rate any) *scenario.Action {
		return scenario.DeployProxy(actors.Deployer, contracts.ContractsFactory, "initialize", scenario.At("registry"), rate)
	}
	initializer := scenario.DeployMatrix(scenario.DeploySpec{
		Artifact:    contracts.ContractsFactory,
		Initializer: "initialize",
		As:          actors.Deployer,
		Args:        []any{scenario.At("registry"), initialFeeRate},
		Labels:      []string{"_adaptersRegistryAddress"},
		Signal:      zeroAddress,
	})
	initializer.Cases = append(initializer.Cases, &scenario.Case{
		Name: "WHEN the fee rate is above the maximum THEN deployment rejects",
		When: deploy(contracts.MaxFeeRate + 1),
		Then: scenario.Rejects(feeRateError).Kind(chain.InvalidArgument),
	}, &scenario.Case{
		Name: "WHEN the fee rate is the maximum THEN deploys",
		When: deploy(contracts.MaxFeeRate).Bind("maxed"),
		Then: scenario.Succeeds(scenario.Stored("maxed", "feeRate", contracts.MaxFeeRate)),
	})

	return &scenario.Suite{
		Name: contracts.ContractsFactory,
		Setup: []scenario.Step{
			scenario.Deploy(actors.Deployer, contracts.AdaptersRegistryMock).Bind("registry").Step(),
			deploy(initialFeeRate).Bind(factory).Step(),
		},
		Groups: []*scenario.Group{
			initializer,
			reinitialize(factory, scenario.At("registry"), initialFeeRate),
			{
				Name: "setters",
				Groups: scenario.SetterMatrix(scenario.SetterSpec{
					Contract:           factory,
					Setter:             "setAdaptersRegistryAddress",
					Accessor:           "adaptersRegistryAddress",
					Event:              "AdaptersRegistryAddressSet",
					As:                 actors.Owner,
					UnauthorizedSignal: reasonNotOwner,
					ZeroSignal:         zeroAddress("_adaptersRegistryAddress"),
					Value:              scenario.Actor(actors.AdaptersRegistry),
				}),
			},
			feeRate(),
			traders(),
		},
	}
}

func feeRate() *scenario.Group {
	set := func(as actors.Role, rate int) *scenario.Action {
		return scenario.Invoke(as, factory, "setFeeRate", rate)
	}
	unchanged := scenario.Unchanged(factory, "feeRate")
	return &scenario.Group{
		Name: "setFeeRate",
		Cases: []*scenario.Case{{
			Name: "WHEN setFeeRate is called by nonAuthorized THEN rejects",
			When: set(actors.NonAuthorized, 50),
			Then: scenario.Rejects(reasonNotOwner, unchanged).Kind(chain.UnauthorizedCaller),
		}, {
			Name: "WHEN the fee rate is above the maximum THEN rejects",
			When: set(actors.Owner, contracts.MaxFeeRate+1),
			Then: scenario.Rejects(feeRateError, unchanged).Kind(chain.InvalidArgument),
		}, {
			Name: "WHEN setFeeRate is called by the owner THEN the rate is stored",
			When: set(actors.Owner, 50),
			Then: scenario.Succeeds(
				scenario.Stored(factory, "feeRate", 50),
				scenario.EmitsOnce("FeeRateSet", 50),
			),
		}},
	}
}

func traders() *scenario.Group {
	add := func(as actors.Role, trader any) *scenario.Action {
		return scenario.Invoke(as, factory, "addTrader", trader)
	}
	remove := func(as actors.Role, trader any) *scenario.Action {
		return scenario.Invoke(as, factory, "removeTrader", trader)
	}
	trader := scenario.Actor(actors.Trader)
	allowed := func(want bool) scenario.Check {
		return scenario.Stored(factory, "isTraderAllowed", want, trader)
	}
	unchanged := scenario.Unchanged(factory, "isTraderAllowed", trader)
	return &scenario.Group{
		Name: "traders",
		Cases: []*scenario.Case{{
			Name: "WHEN addTrader is called by nonAuthorized THEN rejects",
			When: add(actors.NonAuthorized, trader),
			Then: scenario.Rejects(reasonNotOwner, unchanged).Kind(chain.UnauthorizedCaller),
		}, {
			Name: "WHEN the zero address is added THEN rejects",
			When: add(actors.Owner, contracts.ZeroAddress),
			Then: scenario.Rejects(zeroAddress("_trader")).Kind(chain.InvalidArgument),
		}, {
			Name: "WHEN a trader is added THEN it is allowed",
			When: add(actors.Owner, trader),
			Then: scenario.Succeeds(allowed(true), scenario.EmitsOnce("TraderAdded", trader)),
		}, {
			Name:  "WHEN an allowed trader is added again THEN rejects",
			Given: []scenario.Step{add(actors.Owner, trader).Step()},
			When:  add(actors.Owner, trader),
			Then:  scenario.Rejects(chain.CustomError("TraderAlreadyAllowed"), allowed(true)).Kind(chain.DisallowedEntity),
		}, {
			Name: "WHEN an unknown trader is removed THEN rejects",
			When: remove(actors.Owner, trader),
			Then: scenario.Rejects(chain.CustomError("TraderNotFound"), allowed(false)).Kind(chain.NotFound),
		}, {
			Name:  "WHEN removeTrader is called by nonAuthorized THEN rejects",
			Given: []scenario.Step{add(actors.Owner, trader).Step()},
			When:  remove(actors.NonAuthorized, trader),
			Then:  scenario.Rejects(reasonNotOwner, unchanged).Kind(chain.UnauthorizedCaller),
		}, {
			Name:  "WHEN an allowed trader is removed THEN it is no longer allowed",
			Given: []scenario.Step{add(actors.Owner, trader).Step()},
			When:  remove(actors.Owner, trader),
			Then:  scenario.Succeeds(allowed(false), scenario.EmitsOnce("TraderRemoved", trader)),
		}},
	}
}
