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
	"github.com/roshan123456789/kunji-finance/pkg/contracts"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
)

// BatchedVault checks a freshly deployed vault starts in its first round
func BatchedVault() *scenario.Suite {
	return &scenario.Suite{
		Name:  contracts.BatchedVault,
		Setup: []scenario.Step{scenario.Deploy(actors.Deployer, contracts.BatchedVault).Bind("vault").Step()},
		Groups: []*scenario.Group{{
			Name: "rounds",
			Cases: []*scenario.Case{{
				Name: "WHEN a vault is deployed THEN the current round is 1",
				When: scenario.Read(actors.Other, "vault", "currentRound"),
				Then: scenario.Succeeds(scenario.Returns(1)),
			}},
		}},
	}
}
