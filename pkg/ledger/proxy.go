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

package ledger

import (
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

// ProxyFactory builds an ERC1967 style proxy: constructor(address _logic, bytes _data).
// The proxy holds fresh storage for the logic program, runs _data against it
// when non-empty, and from then on dispatches every call to it.
func ProxyFactory(name string, a abi.ABI) *Factory {
	return &Factory{Name: name, ABI: a, New: newProxy}
}

type proxy struct {
	logic    ethtypes.Address0xHex
	logicABI abi.ABI
	state    Program
}

func newProxy(x *Exec, args chain.Values) (Program, error) {
	logic, err := args.Address(0)
	if err != nil {
		return nil, err
	}
	data, err := args.Bytes(1)
	if err != nil {
		return nil, err
	}
	impl := x.w.code[logic]
	if impl == nil {
		return nil, i18n.NewError(x.ctx, msgs.MsgLedgerNoCode, logic)
	}
	p := &proxy{logic: logic, logicABI: impl.factory.ABI}

	if err := x.Emit("Upgraded", logic); err != nil {
		return nil, err
	}

	// storage starts empty, as the logic constructor only ever ran against the implementation
	delegated := x.frame(x.sender, x.self, p.logicABI, false)
	delegated.depth = x.depth
	if p.state, err = delegated.construct(impl.factory, nil); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return p, nil
	}
	fn := chain.FindBySelector(x.ctx, p.logicABI, abi.Function, data)
	if fn == nil {
		return nil, &chain.RevertError{}
	}
	callArgs, err := chain.DecodeCall(x.ctx, fn, data)
	if err != nil {
		return nil, &chain.RevertError{}
	}
	if _, err := delegated.invoke(&instance{factory: impl.factory, program: p.state}, fn, callArgs); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *proxy) Clone() Program {
	return &proxy{logic: p.logic, logicABI: p.logicABI, state: p.state.Clone()}
}

func (p *proxy) Invoke(x *Exec, fn *abi.Entry, args chain.Values) ([]any, error) {
	return p.state.Invoke(x, fn, args)
}

func (p *proxy) DelegateABI() abi.ABI {
	return p.logicABI
}

func (p *proxy) Implementation() ethtypes.Address0xHex {
	return p.logic
}
