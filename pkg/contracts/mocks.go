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
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
)

// The mock collaborators return whatever their setters last configured

type contractsFactoryMock struct {
	returnValue bool
}

func newContractsFactoryMock(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &contractsFactoryMock{}, nil
}

func (m *contractsFactoryMock) Clone() ledger.Program {
	c := *m
	return &c
}

func (m *contractsFactoryMock) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	switch fn.Name {
	case "setReturnValue":
		m.returnValue = args.MustBool(0)
		return nil, nil
	case "returnValue", "isTraderAllowed":
		return []any{m.returnValue}, nil
	}
	return unknownFunction(x)
}

type adaptersRegistryMock struct {
	returnValue   bool
	returnAddress ethtypes.Address0xHex
}

func newAdaptersRegistryMock(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &adaptersRegistryMock{}, nil
}

func (m *adaptersRegistryMock) Clone() ledger.Program {
	c := *m
	return &c
}

func (m *adaptersRegistryMock) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	switch fn.Name {
	case "setReturnValue":
		m.returnValue = args.MustBool(0)
		return nil, nil
	case "setReturnAddress":
		m.returnAddress = args.MustAddress(0)
		return nil, nil
	case "returnValue", "isValidAdapter":
		return []any{m.returnValue}, nil
	case "returnAddress":
		return []any{m.returnAddress}, nil
	case "getAdapterAddress":
		return []any{m.returnValue, m.returnAddress}, nil
	}
	return unknownFunction(x)
}

type adapterMock struct {
	operationAllowed bool
	executeReturn    bool
	returnParameters chain.Values
	executed         int
}

func newAdapterMock(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &adapterMock{}, nil
}

func (m *adapterMock) Clone() ledger.Program {
	c := *m
	c.returnParameters = append(chain.Values(nil), m.returnParameters...)
	return &c
}

func (m *adapterMock) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	switch fn.Name {
	case "setOperationAllowedReturn":
		m.operationAllowed = args.MustBool(0)
		return nil, nil
	case "setExecuteOperationReturn":
		m.executeReturn = args.MustBool(0)
		return nil, nil
	case "setReturnParameters":
		if args.MustBool(1) {
			m.returnParameters = chain.Values{}
		} else {
			m.returnParameters = args.MustArray(0)
		}
		return nil, nil
	case "isOperationAllowed":
		return []any{m.operationAllowed}, nil
	case "executeOperation":
		m.executed++
		return []any{m.executeReturn, m.returnParameters}, nil
	case "executedOperationsCount":
		return []any{m.executed}, nil
	}
	return unknownFunction(x)
}

type usersVaultMock struct {
	executeOnAdapter bool
	executed         int
}

func newUsersVaultMock(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &usersVaultMock{executeOnAdapter: true}, nil
}

func (m *usersVaultMock) Clone() ledger.Program {
	c := *m
	return &c
}

func (m *usersVaultMock) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	switch fn.Name {
	case "setExecuteOnAdapter":
		m.executeOnAdapter = args.MustBool(0)
		return nil, nil
	case "executeOnAdapter":
		m.executed++
		return []any{m.executeOnAdapter}, nil
	case "executedOperationsCount":
		return []any{m.executed}, nil
	}
	return unknownFunction(x)
}

// batchedVault only models the round counter, which starts at one
type batchedVault struct {
	round uint64
}

func newBatchedVault(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &batchedVault{round: 1}, nil
}

func (v *batchedVault) Clone() ledger.Program {
	c := *v
	return &c
}

func (v *batchedVault) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	if fn.Name == "currentRound" {
		return []any{v.round}, nil
	}
	return unknownFunction(x)
}
