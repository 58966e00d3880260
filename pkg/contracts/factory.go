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
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
)

// MaxFeeRate is the highest fee rate, in percent, the contracts factory accepts
const MaxFeeRate = 100

type contractsFactory struct {
	ownable
	adaptersRegistry ethtypes.Address0xHex
	feeRate          *big.Int
	traders          map[ethtypes.Address0xHex]bool
}

func newContractsFactory(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &contractsFactory{feeRate: new(big.Int), traders: map[ethtypes.Address0xHex]bool{}}, nil
}

func (cf *contractsFactory) Clone() ledger.Program {
	c := *cf
	c.feeRate = copyBig(cf.feeRate)
	c.traders = copyFlags(cf.traders)
	return &c
}

func (cf *contractsFactory) checkFeeRate(x *ledger.Exec, rate *big.Int) error {
	if rate.Cmp(big.NewInt(MaxFeeRate)) > 0 {
		return x.Fail("FeeRateError")
	}
	return nil
}

func (cf *contractsFactory) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	if out, ok, err := cf.ownable.invoke(x, fn, args); ok {
		return out, err
	}
	switch fn.Name {
	case "initialize":
		return nil, cf.initializer(x, func() error {
			registry, rate := args.MustAddress(0), args.MustBigInt(1)
			if registry == zeroAddress {
				return x.Fail("ZeroAddress", "_adaptersRegistryAddress")
			}
			if err := cf.checkFeeRate(x, rate); err != nil {
				return err
			}
			cf.adaptersRegistry, cf.feeRate = registry, rate
			return nil
		})
	case "adaptersRegistryAddress":
		return []any{cf.adaptersRegistry}, nil
	case "feeRate":
		return []any{cf.feeRate}, nil
	case "isTraderAllowed":
		return []any{cf.traders[args.MustAddress(0)]}, nil
	case "setAdaptersRegistryAddress":
		if err := cf.onlyOwner(x); err != nil {
			return nil, err
		}
		registry := args.MustAddress(0)
		if registry == zeroAddress {
			return nil, x.Fail("ZeroAddress", "_adaptersRegistryAddress")
		}
		cf.adaptersRegistry = registry
		return nil, x.Emit("AdaptersRegistryAddressSet", registry)
	case "setFeeRate":
		if err := cf.onlyOwner(x); err != nil {
			return nil, err
		}
		rate := args.MustBigInt(0)
		if err := cf.checkFeeRate(x, rate); err != nil {
			return nil, err
		}
		cf.feeRate = rate
		return nil, x.Emit("FeeRateSet", rate)
	case "addTrader":
		if err := cf.onlyOwner(x); err != nil {
			return nil, err
		}
		trader := args.MustAddress(0)
		if trader == zeroAddress {
			return nil, x.Fail("ZeroAddress", "_trader")
		}
		if cf.traders[trader] {
			return nil, x.Fail("TraderAlreadyAllowed")
		}
		cf.traders[trader] = true
		return nil, x.Emit("TraderAdded", trader)
	case "removeTrader":
		if err := cf.onlyOwner(x); err != nil {
			return nil, err
		}
		trader := args.MustAddress(0)
		if !cf.traders[trader] {
			return nil, x.Fail("TraderNotFound")
		}
		delete(cf.traders, trader)
		return nil, x.Emit("TraderRemoved", trader)
	}
	return unknownFunction(x)
}
