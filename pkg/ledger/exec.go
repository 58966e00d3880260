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
	"context"
	"errors"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

const maxCallDepth = 64

var reasonError = &abi.Entry{Type: abi.Error, Name: chain.ReasonErrorName, Inputs: abi.ParameterArray{{Type: "string"}}}

// Exec is the context of one frame of execution, handed to programs
type Exec struct {
	ctx    context.Context
	w      *world
	sender ethtypes.Address0xHex
	self   ethtypes.Address0xHex
	abi    abi.ABI
	static bool
	depth  int
	block  uint64
	time   uint64
	logs   *[]*chain.Log
}

func (x *Exec) Context() context.Context {
	return x.ctx
}

// Sender is msg.sender, the caller of this frame
func (x *Exec) Sender() ethtypes.Address0xHex {
	return x.sender
}

// Self is the address whose storage this frame runs against
func (x *Exec) Self() ethtypes.Address0xHex {
	return x.self
}

func (x *Exec) BlockNumber() uint64 {
	return x.block
}

func (x *Exec) Timestamp() uint64 {
	return x.time
}

func (x *Exec) HasCode(addr ethtypes.Address0xHex) bool {
	return x.w.code[addr] != nil
}

func (x *Exec) frame(sender, self ethtypes.Address0xHex, a abi.ABI, static bool) *Exec {
	return &Exec{
		ctx:    x.ctx,
		w:      x.w,
		sender: sender,
		self:   self,
		abi:    a,
		static: x.static || static,
		depth:  x.depth + 1,
		block:  x.block,
		time:   x.time,
		logs:   x.logs,
	}
}

// Revert aborts with revert(reason). An empty reason reverts with no data.
func (x *Exec) Revert(reason string) error {
	if reason == "" {
		return &chain.RevertError{}
	}
	data, err := chain.EncodeCall(x.ctx, reasonError, []any{reason})
	if err != nil {
		return err
	}
	return &chain.RevertError{Data: data}
}

// Fail aborts with a custom error declared in the ABI of this frame
func (x *Exec) Fail(name string, args ...any) error {
	entry := x.abi.Errors()[name]
	if entry == nil {
		return i18n.NewError(x.ctx, msgs.MsgLedgerUnknownError, name, x.self)
	}
	data, err := chain.EncodeCall(x.ctx, entry, args)
	if err != nil {
		return err
	}
	return &chain.RevertError{Data: data}
}

// Emit logs an event declared in the ABI of this frame
func (x *Exec) Emit(name string, args ...any) error {
	if x.static {
		return i18n.NewError(x.ctx, msgs.MsgLedgerStaticMutation, x.self)
	}
	entry := x.abi.Events()[name]
	if entry == nil {
		return i18n.NewError(x.ctx, msgs.MsgLedgerUnknownEvent, name, x.self)
	}
	topics, data, err := chain.EncodeEvent(x.ctx, entry, args)
	if err != nil {
		return err
	}
	*x.logs = append(*x.logs, &chain.Log{Address: x.self, Topics: topics, Data: data})
	return nil
}

// Call invokes a function on another contract, with this contract as the sender.
// A revert in the callee is returned unchanged, so it bubbles up when returned.
func (x *Exec) Call(to ethtypes.Address0xHex, method string, args ...any) (chain.Values, error) {
	return x.call(to, method, false, args)
}

// StaticCall is Call with state mutation disallowed
func (x *Exec) StaticCall(to ethtypes.Address0xHex, method string, args ...any) (chain.Values, error) {
	return x.call(to, method, true, args)
}

func (x *Exec) call(to ethtypes.Address0xHex, method string, static bool, args []any) (chain.Values, error) {
	if x.depth >= maxCallDepth {
		return nil, i18n.NewError(x.ctx, msgs.MsgLedgerCallDepth, to)
	}
	inst := x.w.code[to]
	if inst == nil {
		log.L(x.ctx).Debugf("Call to %s on %s which has no code", method, to)
		return nil, &chain.RevertError{}
	}
	a := inst.abi()
	fn := lookupFunction(x.ctx, a, method)
	if fn == nil {
		log.L(x.ctx).Debugf("%s", i18n.NewError(x.ctx, msgs.MsgLedgerUnknownSelector, method, inst.factory.Name))
		return nil, &chain.RevertError{}
	}
	// round trip through the ABI so callees see exactly what a real call delivers
	data, err := chain.EncodeCall(x.ctx, fn, args)
	if err != nil {
		return nil, err
	}
	decoded, err := chain.DecodeCall(x.ctx, fn, data)
	if err != nil {
		return nil, i18n.WrapError(x.ctx, err, msgs.MsgLedgerDecodeCall, method)
	}
	callee := x.frame(x.self, to, a, static || isView(fn))
	return callee.invoke(inst, fn, decoded)
}

// invoke runs a program function, returning its outputs as they decode on the wire
func (x *Exec) invoke(inst *instance, fn *abi.Entry, args chain.Values) (out chain.Values, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = i18n.NewError(x.ctx, msgs.MsgLedgerProgramPanic, inst.factory.Name, r)
		}
	}()
	res, err := inst.program.Invoke(x, fn, args)
	if err != nil {
		return nil, err
	}
	if len(fn.Outputs) == 0 {
		return chain.Values{}, nil
	}
	data, err := chain.EncodeValues(x.ctx, fn.Outputs, res)
	if err != nil {
		return nil, i18n.WrapError(x.ctx, err, msgs.MsgLedgerEncodeResult, fn.Name)
	}
	return chain.DecodeValues(x.ctx, fn.Outputs, data)
}

func (x *Exec) construct(f *Factory, args chain.Values) (p Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = i18n.NewError(x.ctx, msgs.MsgLedgerProgramPanic, f.Name, r)
		}
	}()
	return f.New(x, args)
}

func isView(fn *abi.Entry) bool {
	return fn.StateMutability == "view" || fn.StateMutability == "pure"
}

// lookupFunction resolves a bare name or a full signature such as "isValidAdapter(address)"
func lookupFunction(ctx context.Context, a abi.ABI, nameOrSig string) *abi.Entry {
	for _, e := range a {
		if e.Type != abi.Function {
			continue
		}
		if e.Name == nameOrSig {
			return e
		}
		if sig, err := e.SignatureCtx(ctx); err == nil && sig == nameOrSig {
			return e
		}
	}
	return nil
}

// IsRevert reports whether err is a contract revert, rather than a harness failure
func IsRevert(err error) bool {
	var re *chain.RevertError
	return errors.As(err, &re)
}
