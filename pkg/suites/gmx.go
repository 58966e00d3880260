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
	"context"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/contracts"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
		"github.com/roshan123456789/kunji-finance/pkg/scenario"
)

const gmxAdapter = "gmxAdapter"

// positionFields is the number of amounts getPositions returns per position
const positionFields = 9

var invalidPriceFeed = chain.Reason(contracts.ReasonInvalidPriceFeed)

// installGMX places the GMX stand-ins on an in-memory ledger. A node forking
// Arbitrum already has the real contracts at those addresses.
func installGMX(ctx context.Context, f *scenario.Fixture) error {
	l, ok := f.Session.Provider().(*ledger.Ledger)
	if !ok {
		log.L(ctx).Infof("Using GMX contracts already deployed at %s", contracts.GMX.Vault)
		return nil
	}
	return contracts.InstallGMX(ctx, l)
}

func gmxArgs() []any {
	return []any{contracts.GMX.Router, contracts.GMX.PositionRouter, contracts.GMX.Reader, contracts.GMX.Vault}
}

// GMXAdapter covers the adapter's wiring to GMX and its read-only quotes,
// against the chain state pinned by the fork block
func GMXAdapter() *scenario.Suite {
	read := func(method string, args ...any) *scenario.Action {
		return scenario.Read(actors.Trader, gmxAdapter, method, args...)
	}
	return &scenario.Suite{
		Name: contracts.GMXAdapter,
		Setup: []scenario.Step{
			installGMX,
			scenario.DeployProxy(actors.Deployer, contracts.GMXAdapter, "initialize", gmxArgs()...).Bind(gmxAdapter).Step(),
		},
		Groups: []*scenario.Group{
			scenario.DeployMatrix(scenario.DeploySpec{
				Artifact:    contracts.GMXAdapter,
				Initializer: "initialize",
				As:          actors.Deployer,
				Args:        gmxArgs(),
				Labels:      []string{"_gmxRouter", "_gmxPositionRouter", "_gmxReader", "_gmxVault"},
				Signal:      func(string) *chain.Signal { return chain.CustomError("AddressZero") },
			}),
			reinitialize(gmxAdapter, gmxArgs()...),
			{
				Name: "addresses",
				Cases: []*scenario.Case{
					readsBack(read, "gmxRouter", contracts.GMX.Router),
					readsBack(read, "gmxPositionRouter", contracts.GMX.PositionRouter),
					readsBack(read, "gmxReader", contracts.GMX.Reader),
					readsBack(read, "gmxVault", contracts.GMX.Vault),
				},
			},
			{
				Name: "quotes",
				Cases: []*scenario.Case{{
					Name: "WHEN getAmountOut quotes USDC to USDT THEN the fee is deducted",
					When: read("getAmountOut", contracts.Tokens.USDC, contracts.Tokens.USDT, contracts.Amount100),
					Then: scenario.Succeeds(scenario.Returns(99, 1)),
				}, {
					Name: "WHEN getAmountOut quotes a token without a price feed THEN rejects",
					When: read("getAmountOut", contracts.Tokens.USDC, contracts.Tokens.RandomCoin, contracts.Amount100),
					Then: scenario.Rejects(invalidPriceFeed).Kind(chain.UpstreamRejected),
				}, {
					Name: "WHEN getMaxAmountIn quotes FRAX to USDT THEN returns the pool headroom",
					When: read("getMaxAmountIn", contracts.Tokens.FRAX, contracts.Tokens.USDT),
					Then: scenario.Succeeds(scenario.Returns("3636269524320000000000000")),
				}, {
					Name: "WHEN getMaxAmountIn quotes a token without a price feed THEN rejects",
					When: read("getMaxAmountIn", contracts.Tokens.RandomCoin, contracts.Tokens.USDT),
					Then: scenario.Rejects(invalidPriceFeed).Kind(chain.UpstreamRejected),
				}, {
					Name: "WHEN getPositions reads two long WETH positions THEN returns every field",
					When: read("getPositions", contracts.PositionAccount,
						[]any{contracts.Tokens.USDC, contracts.Tokens.USDC},
						[]any{contracts.Tokens.WETH, contracts.Tokens.WETH},
						[]any{true, true},
					),
					Then: scenario.Succeeds(scenario.Custom("positions", checkPositions(2))),
				}},
			},
		},
	}
}

func readsBack(read func(string, ...any) *scenario.Action, accessor string, want any) *scenario.Case {
	return &scenario.Case{
		Name: "WHEN " + accessor + " is read THEN returns the initialized address",
		When: read(accessor),
		Then: scenario.Succeeds(scenario.Returns(want)),
	}
}

// checkPositions expects n positions of positionFields amounts, each with a
// positive size and in profit
func checkPositions(n int) func(ctx context.Context, f *scenario.Fixture, o *scenario.Outcome) error {
	return func(ctx context.Context, f *scenario.Fixture, o *scenario.Outcome) error {
		amounts, err := o.Returned.Array(0)
		if err != nil {
			return err
		}
		if len(amounts) != n*positionFields {
			return i18n.NewError(ctx, msgs.MsgScenarioStoredMismatch, "getPositions length", len(amounts), n*positionFields)
		}
		for i := 0; i < n; i++ {
			base := i * positionFields
			text, _ := chain.Normalize(amounts[base]).(string)
			size, ok := new(big.Int).SetString(text, 10)
			if !ok || size.Sign() <= 0 {
				return i18n.NewError(ctx, msgs.MsgScenarioStoredMismatch, "position size", amounts[base], "> 0")
			}
			if profit := chain.Normalize(amounts[base+7]); profit != "1" {
				return i18n.NewError(ctx, msgs.MsgScenarioStoredMismatch, "position profit flag", profit, "1")
			}
		}
		return nil
	}
}
