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

package cli

import (
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/chain/rpcchain"
	"github.com/roshan123456789/kunji-finance/pkg/chain/simchain"
	"github.com/roshan123456789/kunji-finance/pkg/contracts"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
	"github.com/roshan123456789/kunji-finance/pkg/reverter"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
)

// environment is a connected provider with the actors bound to it
type environment struct {
	provider chain.Provider
	actors   *actors.Set
	session  *chain.Session
}

func newEnvironment(ctx context.Context, conf *harnessconf.HarnessConfig) (*environment, error) {
	chainType := harnessconf.ChainType(confutil.StringNotEmpty(conf.Chain.Type, *harnessconf.ChainDefaults.Type))
	e := &environment{}
	var artifacts chain.ArtifactSource
	switch chainType {
	case harnessconf.ChainTypeLedger:
		reg := contracts.Registry()
		e.provider, artifacts = ledger.New(reg, &conf.Chain), reg.Artifacts()
		set, err := actors.Derive(ctx, &conf.Accounts)
		if err != nil {
			return nil, err
		}
		e.actors = set
	case harnessconf.ChainTypeSimulated:
		set, err := actors.Derive(ctx, &conf.Accounts)
		if err != nil {
			return nil, err
		}
		sim, err := simchain.New(ctx, &conf.Chain, set.Accounts())
		if err != nil {
			return nil, err
		}
		e.provider, e.actors, artifacts = sim, set, compiledArtifacts(&conf.Artifacts)
	case harnessconf.ChainTypeJSONRPC:
		rpc, err := rpcchain.New(ctx, &conf.Chain)
		if err != nil {
			return nil, err
		}
		e.provider, artifacts = rpc, compiledArtifacts(&conf.Artifacts)
		if e.actors, err = jsonrpcActors(ctx, conf, rpc); err != nil {
			rpc.Close()
			return nil, err
		}
	default:
		return nil, i18n.NewError(ctx, msgs.MsgConfigInvalidChainType, chainType)
	}
	e.session = chain.NewSession(e.provider, artifacts).SetProxyArtifact(conf.Artifacts.Proxy)
	log.L(ctx).Infof("Connected to %s chain with %d actors", chainType, len(e.actors.Accounts()))
	return e, nil
}

// jsonrpcActors binds roles to the node's own accounts when it signs for us,
// and otherwise derives keys and signs locally
func jsonrpcActors(ctx context.Context, conf *harnessconf.HarnessConfig, rpc *rpcchain.Chain) (*actors.Set, error) {
	if confutil.Bool(conf.Chain.UnlockedAccounts, *harnessconf.ChainDefaults.UnlockedAccounts) {
		addrs, err := rpc.Accounts(ctx)
		if err != nil {
			return nil, err
		}
		return actors.FromAddresses(ctx, addrs)
	}
	set, err := actors.Derive(ctx, &conf.Accounts)
	if err != nil {
		return nil, err
	}
	rpc.AddKeys(set.Keys())
	return set, nil
}

// compiledArtifacts reads a hardhat artifacts directory, falling back to the
// embedded ABIs (which carry no bytecode) when none is configured
func compiledArtifacts(conf *harnessconf.ArtifactsConfig) chain.ArtifactSource {
	if conf.Dir == "" {
		return contracts.Artifacts()
	}
	return chain.NewArtifactDir(conf.Dir)
}

func (e *environment) newRunner(ctx context.Context, conf *harnessconf.ScenarioConfig, opts ...scenario.Option) (*scenario.Runner, error) {
	f := scenario.NewFixture(e.session, e.actors, reverter.New(e.provider), contracts.Taxonomy())
	return scenario.NewRunner(ctx, f, conf, opts...)
}

func (e *environment) Close() {
	e.provider.Close()
}
