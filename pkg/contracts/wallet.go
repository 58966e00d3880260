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

// InitializerLabels are the parameter names of the trader wallet initializer,
// in argument order. Zero address rejections carry the label of the position.
var InitializerLabels = []string{
	"_vaultAddress",
	"_underlyingTokenAddress",
	"_adaptersRegistryAddress",
	"_contractsFactoryAddress",
	"_traderAddress",
	"_dynamicValueAddress",
}

// walletFailures is how a wallet generation reports each rejection
type walletFailures interface {
	invalidInitAddress(x *ledger.Exec, label string) error
	zeroAddress(x *ledger.Exec, label string) error
	callerNotAllowed(x *ledger.Exec) error
	newTraderNotAllowed(x *ledger.Exec) error
	// authorizeTraderChange guards setTraderAddress, which moved from the
	// trader to the owner between generations
	authorizeTraderChange(x *ledger.Exec, w *walletCore) error
}

type walletCore struct {
	ownable
	fail             walletFailures
	vault            ethtypes.Address0xHex
	underlying       ethtypes.Address0xHex
	adaptersRegistry ethtypes.Address0xHex
	contractsFactory ethtypes.Address0xHex
	trader           ethtypes.Address0xHex
	dynamicValue     ethtypes.Address0xHex
}

type walletSetter struct {
	label  string
	event  string
	trader bool
	field  func(w *walletCore) *ethtypes.Address0xHex
}

var walletSetters = map[string]walletSetter{
	"setVaultAddress": {
		label: "_vaultAddress", event: "VaultAddressSet",
		field: func(w *walletCore) *ethtypes.Address0xHex { return &w.vault },
	},
	"setUnderlyingTokenAddress": {
		label: "_underlyingTokenAddress", event: "UnderlyingTokenAddressSet", trader: true,
		field: func(w *walletCore) *ethtypes.Address0xHex { return &w.underlying },
	},
	"setAdaptersRegistryAddress": {
		label: "_adaptersRegistryAddress", event: "AdaptersRegistryAddressSet",
		field: func(w *walletCore) *ethtypes.Address0xHex { return &w.adaptersRegistry },
	},
	"setContractsFactoryAddress": {
		label: "_contractsFactoryAddress", event: "ContractsFactoryAddressSet",
		field: func(w *walletCore) *ethtypes.Address0xHex { return &w.contractsFactory },
	},
	"setDynamicValueAddress": {
		label: "_dynamicValueAddress", event: "DynamicValueAddressSet",
		field: func(w *walletCore) *ethtypes.Address0xHex { return &w.dynamicValue },
	},
}

func (w *walletCore) fields() []*ethtypes.Address0xHex {
	return []*ethtypes.Address0xHex{&w.vault, &w.underlying, &w.adaptersRegistry, &w.contractsFactory, &w.trader, &w.dynamicValue}
}

func (w *walletCore) onlyTrader(x *ledger.Exec) error {
	if x.Sender() != w.trader {
		return w.fail.callerNotAllowed(x)
	}
	return nil
}

func (w *walletCore) initialize(x *ledger.Exec, args chain.Values) error {
	return w.initializer(x, func() error {
		fields := w.fields()
		for i, label := range InitializerLabels {
			addr := args.MustAddress(i)
			if addr == zeroAddress {
				return w.fail.invalidInitAddress(x, label)
			}
			*fields[i] = addr
		}
		return nil
	})
}

func (w *walletCore) setTraderAddress(x *ledger.Exec, args chain.Values) error {
	if err := w.fail.authorizeTraderChange(x, w); err != nil {
		return err
	}
	newTrader := args.MustAddress(0)
	if newTrader == zeroAddress {
		return w.fail.zeroAddress(x, "_traderAddress")
	}
	allowed, err := x.StaticCall(w.contractsFactory, "isTraderAllowed", newTrader)
	if err != nil {
		return err
	}
	if !allowed.MustBool(0) {
		return w.fail.newTraderNotAllowed(x)
	}
	w.trader = newTrader
	return x.Emit("TraderAddressSet", newTrader)
}

// invoke handles the functions common to both generations
func (w *walletCore) invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, bool, error) {
	if out, ok, err := w.ownable.invoke(x, fn, args); ok {
		return out, ok, err
	}
	if s, ok := walletSetters[fn.Name]; ok {
		return nil, true, w.set(x, s, args.MustAddress(0))
	}
	switch fn.Name {
	case "initialize":
		return nil, true, w.initialize(x, args)
	case "setTraderAddress":
		return nil, true, w.setTraderAddress(x, args)
	case "vaultAddress":
		return []any{w.vault}, true, nil
	case "underlyingTokenAddress":
		return []any{w.underlying}, true, nil
	case "adaptersRegistryAddress":
		return []any{w.adaptersRegistry}, true, nil
	case "contractsFactoryAddress":
		return []any{w.contractsFactory}, true, nil
	case "traderAddress":
		return []any{w.trader}, true, nil
	case "dynamicValueAddress":
		return []any{w.dynamicValue}, true, nil
	case "traderFee":
		return []any{0}, true, nil
	}
	return nil, false, nil
}

func (w *walletCore) set(x *ledger.Exec, s walletSetter, value ethtypes.Address0xHex) error {
	var err error
	if s.trader {
		err = w.onlyTrader(x)
	} else {
		err = w.onlyOwner(x)
	}
	if err != nil {
		return err
	}
	if value == zeroAddress {
		return w.fail.zeroAddress(x, s.label)
	}
	*s.field(w) = value
	return x.Emit(s.event, value)
}
