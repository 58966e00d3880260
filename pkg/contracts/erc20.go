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
	ReasonTransferExceedsBalance = "ERC20: transfer amount exceeds balance"
	ReasonInsufficientAllowance  = "ERC20: insufficient allowance"
	ReasonBurnExceedsBalance     = "ERC20: burn amount exceeds balance"
	ReasonTransferToZero         = "ERC20: transfer to the zero address"
	ReasonMintToZero             = "ERC20: mint to the zero address"
)

type allowanceKey struct {
	owner, spender ethtypes.Address0xHex
}

// erc20Mock is an OpenZeppelin ERC20 whose transfers can be forced to return false
type erc20Mock struct {
	name, symbol string
	decimals     uint8
	totalSupply  *big.Int
	balances     map[ethtypes.Address0xHex]*big.Int
	allowances   map[allowanceKey]*big.Int
	returnBool   bool
}

func newERC20Mock(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	t := &erc20Mock{
		totalSupply: new(big.Int),
		balances:    map[ethtypes.Address0xHex]*big.Int{},
		allowances:  map[allowanceKey]*big.Int{},
		returnBool:  true,
	}
	if len(args) == 3 {
		t.name, t.symbol = args.MustString(0), args.MustString(1)
		t.decimals = uint8(args.MustBigInt(2).Uint64())
	}
	return t, nil
}

func (t *erc20Mock) Clone() ledger.Program {
	c := *t
	c.totalSupply = copyBig(t.totalSupply)
	c.balances = make(map[ethtypes.Address0xHex]*big.Int, len(t.balances))
	for k, v := range t.balances {
		c.balances[k] = copyBig(v)
	}
	c.allowances = make(map[allowanceKey]*big.Int, len(t.allowances))
	for k, v := range t.allowances {
		c.allowances[k] = copyBig(v)
	}
	return &c
}

func (t *erc20Mock) balance(addr ethtypes.Address0xHex) *big.Int {
	if b := t.balances[addr]; b != nil {
		return b
	}
	return new(big.Int)
}

func (t *erc20Mock) allowance(owner, spender ethtypes.Address0xHex) *big.Int {
	if a := t.allowances[allowanceKey{owner, spender}]; a != nil {
		return a
	}
	return new(big.Int)
}

func (t *erc20Mock) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	switch fn.Name {
	case "name":
		return []any{t.name}, nil
	case "symbol":
		return []any{t.symbol}, nil
	case "decimals":
		return []any{t.decimals}, nil
	case "totalSupply":
		return []any{t.totalSupply}, nil
	case "balanceOf":
		return []any{t.balance(args.MustAddress(0))}, nil
	case "allowance":
		return []any{t.allowance(args.MustAddress(0), args.MustAddress(1))}, nil
	case "setReturnBoolValue":
		t.returnBool = args.MustBool(0)
		return nil, nil
	case "approve":
		return []any{true}, t.approve(x, x.Sender(), args.MustAddress(0), args.MustBigInt(1))
	case "transfer":
		if !t.returnBool {
			return []any{false}, nil
		}
		return []any{true}, t.transfer(x, x.Sender(), args.MustAddress(0), args.MustBigInt(1))
	case "transferFrom":
		if !t.returnBool {
			return []any{false}, nil
		}
		from, to, amount := args.MustAddress(0), args.MustAddress(1), args.MustBigInt(2)
		allowed := t.allowance(from, x.Sender())
		if allowed.Cmp(amount) < 0 {
			return nil, x.Revert(ReasonInsufficientAllowance)
		}
		if err := t.approve(x, from, x.Sender(), new(big.Int).Sub(allowed, amount)); err != nil {
			return nil, err
		}
		return []any{true}, t.transfer(x, from, to, amount)
	case "mint":
		to, amount := args.MustAddress(0), args.MustBigInt(1)
		if to == zeroAddress {
			return nil, x.Revert(ReasonMintToZero)
		}
		t.totalSupply.Add(t.totalSupply, amount)
		t.balances[to] = new(big.Int).Add(t.balance(to), amount)
		return nil, x.Emit("Transfer", zeroAddress, to, amount)
	case "burn":
		from, amount := args.MustAddress(0), args.MustBigInt(1)
		bal := t.balance(from)
		if bal.Cmp(amount) < 0 {
			return nil, x.Revert(ReasonBurnExceedsBalance)
		}
		t.totalSupply.Sub(t.totalSupply, amount)
		t.balances[from] = new(big.Int).Sub(bal, amount)
		return nil, x.Emit("Transfer", from, zeroAddress, amount)
	}
	return unknownFunction(x)
}

func (t *erc20Mock) approve(x *ledger.Exec, owner, spender ethtypes.Address0xHex, amount *big.Int) error {
	t.allowances[allowanceKey{owner, spender}] = copyBig(amount)
	return x.Emit("Approval", owner, spender, amount)
}

func (t *erc20Mock) transfer(x *ledger.Exec, from, to ethtypes.Address0xHex, amount *big.Int) error {
	if to == zeroAddress {
		return x.Revert(ReasonTransferToZero)
	}
	bal := t.balance(from)
	if bal.Cmp(amount) < 0 {
		return x.Revert(ReasonTransferExceedsBalance)
	}
	t.balances[from] = new(big.Int).Sub(bal, amount)
	t.balances[to] = new(big.Int).Add(t.balance(to), amount)
	return x.Emit("Transfer", from, to, amount)
}
