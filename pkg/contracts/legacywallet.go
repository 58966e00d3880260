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
	"math/big"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
)

// Revert reasons of the first trader wallet generation
const (
	ReasonInvalidAddressPrefix = "INVALID address "
	ReasonCallerNotAllowed     = "Caller not allowed"
	ReasonNewTraderNotAllowed  = "New trader is not allowed"
	ReasonInvalidProtocolID    = "Invalid Protocol ID"
	ReasonProtocolIDNotFound   = "Protocol ID not found"
)

type reasonErrors struct{}

func (reasonErrors) invalidInitAddress(x *ledger.Exec, label string) error {
	return x.Revert(ReasonInvalidAddressPrefix + label)
}

func (reasonErrors) zeroAddress(x *ledger.Exec, label string) error {
	return x.Fail("AddressZero", label)
}

func (reasonErrors) callerNotAllowed(x *ledger.Exec) error {
	return x.Revert(ReasonCallerNotAllowed)
}

func (reasonErrors) newTraderNotAllowed(x *ledger.Exec) error {
	return x.Revert(ReasonNewTraderNotAllowed)
}

func (reasonErrors) authorizeTraderChange(x *ledger.Exec, w *walletCore) error {
	return w.onlyTrader(x)
}

// legacyWallet selects protocols by id rather than adapters by address
type legacyWallet struct {
	walletCore
	protocols []*big.Int
}

func newLegacyWallet(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &legacyWallet{walletCore: walletCore{fail: reasonErrors{}}}, nil
}

func (lw *legacyWallet) Clone() ledger.Program {
	c := *lw
	c.protocols = make([]*big.Int, len(lw.protocols))
	for i, p := range lw.protocols {
		c.protocols[i] = copyBig(p)
	}
	return &c
}

func (lw *legacyWallet) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	if out, ok, err := lw.walletCore.invoke(x, fn, args); ok {
		return out, err
	}
	switch fn.Name {
	case "traderSelectedProtocols":
		i := args.MustBigInt(0)
		if !i.IsInt64() || i.Int64() >= int64(len(lw.protocols)) {
			return nil, x.Revert("")
		}
		return []any{lw.protocols[i.Int64()]}, nil
	case "getTraderSelectedProtocolsLength":
		return []any{len(lw.protocols)}, nil
	case "addProtocolToUse":
		return nil, lw.addProtocol(x, args.MustBigInt(0))
	case "removeProtocolToUse":
		return nil, lw.removeProtocol(x, args.MustBigInt(0))
	}
	return unknownFunction(x)
}

func (lw *legacyWallet) addProtocol(x *ledger.Exec, id *big.Int) error {
	if err := lw.onlyTrader(x); err != nil {
		return err
	}
	resolved, err := x.StaticCall(lw.adaptersRegistry, "getAdapterAddress", id)
	if err != nil {
		return err
	}
	if resolved.MustAddress(1) == zeroAddress || !resolved.MustBool(0) {
		return x.Revert(ReasonInvalidProtocolID)
	}
	lw.protocols = append(lw.protocols, id)
	return x.Emit("ProtocolToUseAdded", id, x.Sender())
}

func (lw *legacyWallet) removeProtocol(x *ledger.Exec, id *big.Int) error {
	if err := lw.onlyTrader(x); err != nil {
		return err
	}
	for i, p := range lw.protocols {
		if p.Cmp(id) == 0 {
			lw.protocols = append(lw.protocols[:i], lw.protocols[i+1:]...)
			return x.Emit("ProtocolToUseRemoved", id, x.Sender())
		}
	}
	return x.Revert(ReasonProtocolIDNotFound)
}
