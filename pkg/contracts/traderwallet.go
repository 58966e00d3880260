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

// OperationExecutedCaller is the _caller reported by a trader wallet operation
const OperationExecutedCaller = "trader wallet"

type customErrors struct{}

func (customErrors) invalidInitAddress(x *ledger.Exec, label string) error {
	return x.Fail("ZeroAddress", label)
}

func (customErrors) zeroAddress(x *ledger.Exec, label string) error {
	return x.Fail("ZeroAddress", label)
}

func (customErrors) callerNotAllowed(x *ledger.Exec) error {
	return x.Fail("CallerNotAllowed")
}

func (customErrors) newTraderNotAllowed(x *ledger.Exec) error {
	return x.Fail("NewTraderNotAllowed")
}

func (customErrors) authorizeTraderChange(x *ledger.Exec, w *walletCore) error {
	return w.onlyOwner(x)
}

type traderWallet struct {
	walletCore
	adapters           []ethtypes.Address0xHex
	adapterSelected    map[ethtypes.Address0xHex]bool
	pendingDeposits    *big.Int
	pendingWithdrawals *big.Int
}

func newTraderWallet(x *ledger.Exec, args chain.Values) (ledger.Program, error) {
	return &traderWallet{
		walletCore:         walletCore{fail: customErrors{}},
		adapterSelected:    map[ethtypes.Address0xHex]bool{},
		pendingDeposits:    new(big.Int),
		pendingWithdrawals: new(big.Int),
	}, nil
}

func (tw *traderWallet) Clone() ledger.Program {
	c := *tw
	c.adapters = copyAddresses(tw.adapters)
	c.adapterSelected = copyFlags(tw.adapterSelected)
	c.pendingDeposits = copyBig(tw.pendingDeposits)
	c.pendingWithdrawals = copyBig(tw.pendingWithdrawals)
	return &c
}

func (tw *traderWallet) Invoke(x *ledger.Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	if out, ok, err := tw.walletCore.invoke(x, fn, args); ok {
		return out, err
	}
	switch fn.Name {
	case "traderSelectedAdaptersArray":
		i := args.MustBigInt(0)
		if !i.IsInt64() || i.Int64() >= int64(len(tw.adapters)) {
			return nil, x.Revert("")
		}
		return []any{tw.adapters[i.Int64()]}, nil
	case "traderSelectedAdaptersMapping":
		return []any{tw.adapterSelected[args.MustAddress(0)]}, nil
	case "getTraderSelectedAdaptersLength":
		return []any{len(tw.adapters)}, nil
	case "addAdapterToUse":
		return nil, tw.addAdapter(x, args.MustAddress(0))
	case "removeAdapterToUse":
		return nil, tw.removeAdapter(x, args.MustAddress(0))
	case "cumulativePendingDeposits", "getCumulativePendingDeposits":
		return []any{tw.pendingDeposits}, nil
	case "cumulativePendingWithdrawals", "getCumulativePendingWithdrawals":
		return []any{tw.pendingWithdrawals}, nil
	case "depositRequest":
		return nil, tw.request(x, args, true)
	case "withdrawRequest":
		return nil, tw.request(x, args, false)
	case "executeOnAdapter":
		return tw.executeOnAdapter(x, args)
	}
	return unknownFunction(x)
}

func (tw *traderWallet) addAdapter(x *ledger.Exec, adapter ethtypes.Address0xHex) error {
	if err := tw.onlyTrader(x); err != nil {
		return err
	}
	valid, err := x.StaticCall(tw.adaptersRegistry, "isValidAdapter", adapter)
	if err != nil {
		return err
	}
	if !valid.MustBool(0) {
		return x.Fail("InvalidAdapter")
	}
	if tw.adapterSelected[adapter] {
		return x.Fail("AdapterPresent")
	}
	tw.adapters = append(tw.adapters, adapter)
	tw.adapterSelected[adapter] = true
	return x.Emit("AdapterToUseAdded", adapter, x.Sender())
}

func (tw *traderWallet) removeAdapter(x *ledger.Exec, adapter ethtypes.Address0xHex) error {
	if err := tw.onlyTrader(x); err != nil {
		return err
	}
	if !tw.adapterSelected[adapter] {
		return x.Fail("InvalidAdapter")
	}
	for i, a := range tw.adapters {
		if a == adapter {
			tw.adapters = append(tw.adapters[:i], tw.adapters[i+1:]...)
			break
		}
	}
	delete(tw.adapterSelected, adapter)
	return x.Emit("AdapterToUseRemoved", adapter, x.Sender())
}

func (tw *traderWallet) request(x *ledger.Exec, args chain.Values, deposit bool) error {
	if err := tw.onlyTrader(x); err != nil {
		return err
	}
	token, amount := args.MustAddress(0), args.MustBigInt(1)
	if token != tw.underlying {
		return x.Fail("UnderlyingAssetNotAllowed")
	}
	if amount.Sign() == 0 {
		return x.Fail("ZeroAmount")
	}
	if !deposit {
		tw.pendingWithdrawals.Add(tw.pendingWithdrawals, amount)
		return x.Emit("WithdrawalRequest", x.Sender(), token, amount)
	}
	moved, err := x.Call(token, "transferFrom", x.Sender(), x.Self(), amount)
	if err != nil {
		return err
	}
	if !moved.MustBool(0) {
		return x.Fail("TokenTransferFailed")
	}
	tw.pendingDeposits.Add(tw.pendingDeposits, amount)
	return x.Emit("DepositRequest", x.Sender(), token, amount)
}

func (tw *traderWallet) executeOnAdapter(x *ledger.Exec, args chain.Values) ([]any, error) {
	if err := tw.onlyTrader(x); err != nil {
		return nil, err
	}
	protocolID, operation, parameters, replicate := args.MustBigInt(0), args.MustArray(1), args.MustArray(2), args.MustBool(3)

	resolved, err := x.StaticCall(tw.adaptersRegistry, "getAdapterAddress", protocolID)
	if err != nil {
		return nil, err
	}
	adapter := resolved.MustAddress(1)
	if adapter == zeroAddress || !resolved.MustBool(0) {
		return nil, x.Fail("InvalidAdapter")
	}
	allowed, err := x.StaticCall(adapter, "isOperationAllowed", operation)
	if err != nil {
		return nil, err
	}
	if !allowed.MustBool(0) {
		return nil, x.Fail("InvalidOperation", "_traderOperationStruct")
	}

	initialBalance, err := tw.underlyingBalance(x)
	if err != nil {
		return nil, err
	}
	executed, err := x.Call(adapter, "executeOperation", operation, parameters)
	if err != nil {
		return nil, err
	}
	if !executed.MustBool(0) {
		return nil, x.Fail("AdapterOperationFailed", "trader")
	}
	if replicate {
		scaled := executed.MustArray(1)
		if len(scaled) == 0 {
			return nil, x.Fail("NothingToScale")
		}
		replicated, err := x.Call(tw.vault, "executeOnAdapter", protocolID, operation, scaled)
		if err != nil {
			return nil, err
		}
		if !replicated.MustBool(0) {
			return nil, x.Fail("AdapterOperationFailed", "user")
		}
	}
	return []any{true}, x.Emit("OperationExecuted", protocolID, x.Timestamp(), OperationExecutedCaller, replicate, initialBalance)
}

// underlyingBalance is the wallet's holding of the underlying token, zero when
// the configured token has no code
func (tw *traderWallet) underlyingBalance(x *ledger.Exec) (*big.Int, error) {
	if !x.HasCode(tw.underlying) {
		return new(big.Int), nil
	}
	bal, err := x.StaticCall(tw.underlying, "balanceOf", x.Self())
	if err != nil {
		return nil, err
	}
	return bal.MustBigInt(0), nil
}
