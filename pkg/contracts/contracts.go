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

// Package contracts holds the ABIs of the Kunji Finance contracts exercised by
// the suites, and Go programs that stand in for them on the in-memory ledger.
package contracts

import (
	"context"
	"embed"
	"path"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
)

const (
	TraderWallet         = "TraderWallet"
	TraderWalletLegacy   = "TraderWalletLegacy"
	ContractsFactory     = "ContractsFactory"
	ContractsFactoryMock = "ContractsFactoryMock"
	AdaptersRegistryMock = "AdaptersRegistryMock"
	AdapterMock          = "AdapterMock"
	UsersVaultMock       = "UsersVaultMock"
	ERC20Mock            = "ERC20Mock"
	BatchedVault         = "BatchedVault"
	GMXAdapter           = "GMXAdapter"
	GmxVault             = "GmxVault"
	GmxReader            = "GmxReader"
	ERC1967Proxy         = chain.DefaultProxyArtifact
)

// Names lists every embedded contract
var Names = []string{
	TraderWallet,
	TraderWalletLegacy,
	ContractsFactory,
	ContractsFactoryMock,
	AdaptersRegistryMock,
	AdapterMock,
	UsersVaultMock,
	ERC20Mock,
	BatchedVault,
	GMXAdapter,
	GmxVault,
	GmxReader,
	ERC1967Proxy,
}

//go:embed artifacts/*.json
var artifactFiles embed.FS

var embedded = mustLoadEmbedded()

func loadEmbedded(ctx context.Context) (chain.ArtifactMap, error) {
	am := make(chain.ArtifactMap, len(Names))
	for _, name := range Names {
		file := path.Join("artifacts", name+".json")
		data, err := artifactFiles.ReadFile(file)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgContractsInvalidABI, name)
		}
		a, err := chain.ParseArtifact(ctx, file, data)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgContractsInvalidABI, name)
		}
		am[name] = a
	}
	return am, nil
}

func mustLoadEmbedded() chain.ArtifactMap {
	am, err := loadEmbedded(context.Background())
	if err != nil {
		panic(err)
	}
	return am
}

// ABI returns the embedded ABI of a contract, nil for an unknown name
func ABI(name string) abi.ABI {
	if a := embedded[name]; a != nil {
		return a.ABI
	}
	return nil
}

// Artifacts returns the embedded artifacts. These carry ABIs only, so deploying
// them needs either the ledger markers from Registry or compiled hardhat output.
func Artifacts() chain.ArtifactMap {
	am := make(chain.ArtifactMap, len(embedded))
	for k, v := range embedded {
		am[k] = v
	}
	return am
}

// Registry returns the ledger programs for every embedded contract
func Registry() *ledger.Registry {
	return ledger.NewRegistry(
		&ledger.Factory{Name: TraderWallet, ABI: ABI(TraderWallet), New: newTraderWallet},
		&ledger.Factory{Name: TraderWalletLegacy, ABI: ABI(TraderWalletLegacy), New: newLegacyWallet},
		&ledger.Factory{Name: ContractsFactory, ABI: ABI(ContractsFactory), New: newContractsFactory},
		&ledger.Factory{Name: ContractsFactoryMock, ABI: ABI(ContractsFactoryMock), New: newContractsFactoryMock},
		&ledger.Factory{Name: AdaptersRegistryMock, ABI: ABI(AdaptersRegistryMock), New: newAdaptersRegistryMock},
		&ledger.Factory{Name: AdapterMock, ABI: ABI(AdapterMock), New: newAdapterMock},
		&ledger.Factory{Name: UsersVaultMock, ABI: ABI(UsersVaultMock), New: newUsersVaultMock},
		&ledger.Factory{Name: ERC20Mock, ABI: ABI(ERC20Mock), New: newERC20Mock},
		&ledger.Factory{Name: BatchedVault, ABI: ABI(BatchedVault), New: newBatchedVault},
		&ledger.Factory{Name: GMXAdapter, ABI: ABI(GMXAdapter), New: newGMXAdapter},
		&ledger.Factory{Name: GmxVault, ABI: ABI(GmxVault), New: newGmxVault},
		&ledger.Factory{Name: GmxReader, ABI: ABI(GmxReader), New: newGmxReader},
		ledger.ProxyFactory(ERC1967Proxy, ABI(ERC1967Proxy)),
	)
}
