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

const (
	ReasonNotOwner           = "Ownable: caller is not the owner"
	ReasonNewOwnerZero       = "Ownable: new owner is the zero address"
	ReasonAlreadyInitialized = "Initializable: contract is already initialized"
)

var zeroAddress ethtypes.Address0xHex

// ownable is the OwnableUpgradeable and Initializable storage shared by the
// upgradeable contracts. The owner is whoever runs the initializer.
type ownable struct {
	owner       ethtypes.Address0xHex
	initialized bool
}

func (o *ownable) initializer(x *ledger.Exec, body func() error) error {
	if o.initialized {
		return x.Revert(ReasonAlreadyInitialized)
	}
	o.initialized = true
	if err := body(); err != nil {
		return err
	}
	if err := o.transfer(x, x.Sender()); err != nil {
		return err
	}
	return x.Emit("Initialized", 1)
}

func (o *ownable) transfer(x *ledger.Exec, newOwner ethtypes.Address0xHex) error {
	previous := o.owner
	o.owner = newOwner
	return x.Emit("OwnershipTransferred", previous, newOwner)
}

func (o *ownable) onlyOwner(x *ledger.Exec) error {
	if x.Sender() != o.owner {
		return x.Revert(ReasonNotOwner)
	}
	return nil
}

// invoke handles the Ownable functions, reporting false for anything else
func (o *ownable) invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, bool, error) {
	switch fn.Name {
	case "owner":
		return []any{o.owner}, true, nil
	case "transferOwnership":
		if err := o.onlyOwner(x); err != nil {
			return nil, true, err
		}
		newOwner := args.MustAddress(0)
		if newOwner == zeroAddress {
			return nil, true, x.Revert(ReasonNewOwnerZero)
		}
		return nil, true, o.transfer(x, newOwner)
	case "renounceOwnership":
		if err := o.onlyOwner(x); err != nil {
			return nil, true, err
		}
		return nil, true, o.transfer(x, zeroAddress)
	}
	return nil, false, nil
}

func copyBig(i *big.Int) *big.Int {
	if i == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i)
}

func copyAddresses(a []ethtypes.Address0xHex) []ethtypes.Address0xHex {
	return append([]ethtypes.Address0xHex(nil), a...)
}

func copyFlags(m map[ethtypes.Address0xHex]bool) map[ethtypes.Address0xHex]bool {
	c := make(map[ethtypes.Address0xHex]bool, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// unknownFunction reverts with no data, as a contract without a fallback does
func unknownFunction(x *ledger.Exec) ([]any, error) {
	return nil, x.Revert("")
}
