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

package chain

import (
	"context"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
)

// Contract is an ABI bound to an address on a session's provider
type Contract struct {
	Name    string
	Address ethtypes.Address0xHex
	ABI     abi.ABI
	// Implementation is set for proxies deployed with DeployProxy
	Implementation *ethtypes.Address0xHex

	session   *Session
	functions map[string]*abi.Entry
}

func newContract(s *Session, name string, a abi.ABI, addr ethtypes.Address0xHex) *Contract {
	c := &Contract{
		Name:      name,
		Address:   addr,
		ABI:       a,
		session:   s,
		functions: map[string]*abi.Entry{},
	}
	for _, e := range a {
		if e.Type != abi.Function {
			continue
		}
		// overloads are reachable by signature, the first wins the bare name
		if _, exists := c.functions[e.Name]; !exists {
			c.functions[e.Name] = e
		}
		if sig, err := e.SignatureCtx(context.Background()); err == nil {
			c.functions[sig] = e
		}
	}
	return c
}

func (c *Contract) Session() *Session {
	return c.session
}

// Function looks up by name or full signature, such as "transfer(address,uint256)"
func (c *Contract) Function(nameOrSig string) *abi.Entry {
	return c.functions[nameOrSig]
}

// Method starts building a call. Lookup failures surface when the request runs.
func (c *Contract) Method(nameOrSig string) *Request {
	r := &Request{contract: c, method: nameOrSig, fn: c.functions[nameOrSig]}
	if r.fn == nil {
		r.err = i18n.NewError(context.Background(), msgs.MsgChainFunctionNotFound, nameOrSig, c.Name)
	}
	return r
}

// Events decodes the logs this contract emitted in a receipt
func (c *Contract) Events(ctx context.Context, receipt *Receipt) []*Event {
	var events []*Event
	if receipt == nil {
		return nil
	}
	for _, l := range receipt.Logs {
		if l.Address != c.Address {
			continue
		}
		if e := DecodeEvent(ctx, c.ABI, l); e != nil {
			events = append(events, e)
		}
	}
	return events
}

func (c *Contract) result(ctx context.Context, receipt *Receipt) *Result {
	res := &Result{Receipt: receipt, session: c.session}
	if receipt == nil {
		return res
	}
	for _, l := range receipt.Logs {
		var e *Event
		if l.Address == c.Address {
			e = DecodeEvent(ctx, c.ABI, l)
		}
		if e == nil {
			e = c.session.DecodeLog(ctx, l)
		}
		if e != nil {
			res.Events = append(res.Events, e)
		}
	}
	return res
}

// Request is a call under construction
type Request struct {
	contract *Contract
	method   string
	fn       *abi.Entry
	from     *ethtypes.Address0xHex
	args     []any
	value    *big.Int
	err      error
}

func (r *Request) From(addr ethtypes.Address0xHex) *Request {
	r.from = &addr
	return r
}

func (r *Request) Args(args ...any) *Request {
	r.args = args
	return r
}

func (r *Request) Value(v *big.Int) *Request {
	r.value = v
	return r
}

func (r *Request) CallData(ctx context.Context) (ethtypes.HexBytes0xPrefix, error) {
	if r.err != nil {
		return nil, r.err
	}
	return EncodeCall(ctx, r.fn, r.args)
}

func (r *Request) tx(ctx context.Context) (*TX, error) {
	data, err := r.CallData(ctx)
	if err != nil {
		return nil, err
	}
	tx := &TX{To: &r.contract.Address, Data: data, Value: r.value}
	if r.from != nil {
		tx.From = *r.from
	}
	return tx, nil
}

// Send submits a transaction and waits for its receipt. A revert returns a *Rejection.
func (r *Request) Send(ctx context.Context) (*Result, error) {
	if r.err == nil && r.from == nil {
		r.err = i18n.NewError(ctx, msgs.MsgChainMissingFrom, r.method)
	}
	tx, err := r.tx(ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := r.contract.session.provider.Send(ctx, tx)
	if err != nil {
		rej := r.contract.session.rejection(ctx, err)
		log.L(ctx).Debugf("%s.%s from %s: %s", r.contract.Name, r.method, tx.From, rej)
		return nil, rej
	}
	if !receipt.Success {
		return nil, i18n.NewError(ctx, msgs.MsgChainTransactionFailed, receipt.TxHash)
	}
	return r.contract.result(ctx, receipt), nil
}

// Call runs read-only and decodes the outputs
func (r *Request) Call(ctx context.Context) (Values, error) {
	tx, err := r.tx(ctx)
	if err != nil {
		return nil, err
	}
	data, err := r.contract.session.provider.Call(ctx, tx)
	if err != nil {
		return nil, r.contract.session.rejection(ctx, err)
	}
	out, err := DecodeValues(ctx, r.fn.Outputs, data)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgChainDecodeOutput, r.method)
	}
	return out, nil
}

// Result is a mined transaction with its logs decoded
type Result struct {
	Receipt *Receipt
	Events  []*Event
	session *Session
}

// Named returns the events with the given name, from any contract
func (res *Result) Named(name string) []*Event {
	var matched []*Event
	for _, e := range res.Events {
		if e.Name == name {
			matched = append(matched, e)
		}
	}
	return matched
}

// From returns the decoded events emitted by a contract
func (res *Result) From(c *Contract) []*Event {
	var matched []*Event
	for _, e := range res.Events {
		if e.Address == c.Address {
			matched = append(matched, e)
		}
	}
	return matched
}
