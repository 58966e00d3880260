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
	"bytes"
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
)

// EncodeValues ABI encodes Go values against a parameter list
func EncodeValues(ctx context.Context, params abi.ParameterArray, args []any) (ethtypes.HexBytes0xPrefix, error) {
	tc, err := params.TypeComponentTreeCtx(ctx)
	if err != nil {
		return nil, err
	}
	cv, err := tc.ParseExternalCtx(ctx, external(NormalizeAll(args)))
	if err != nil {
		return nil, err
	}
	return cv.EncodeABIDataCtx(ctx)
}

// external unwraps nested Values to the plain slices the ABI parser walks
func external(v any) any {
	if vs, ok := v.(Values); ok {
		out := make([]any, len(vs))
		for i, e := range vs {
			out[i] = external(e)
		}
		return out
	}
	return v
}

// DecodeValues decodes ABI data against a parameter list
func DecodeValues(ctx context.Context, params abi.ParameterArray, data []byte) (Values, error) {
	cv, err := params.DecodeABIDataCtx(ctx, data, 0)
	if err != nil {
		return nil, err
	}
	return ValuesOf(ctx, cv)
}

// EncodeCall builds selector plus encoded arguments for a function or error entry
func EncodeCall(ctx context.Context, entry *abi.Entry, args []any) (ethtypes.HexBytes0xPrefix, error) {
	selector, err := entry.GenerateFunctionSelectorCtx(ctx)
	if err != nil {
		return nil, err
	}
	data, err := EncodeValues(ctx, entry.Inputs, args)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgChainInvalidInput, entry.Name)
	}
	return append(ethtypes.HexBytes0xPrefix(selector), data...), nil
}

// DecodeCall decodes call data whose selector has already been matched to entry
func DecodeCall(ctx context.Context, entry *abi.Entry, data []byte) (Values, error) {
	cv, err := entry.DecodeCallDataCtx(ctx, data)
	if err != nil {
		return nil, err
	}
	return ValuesOf(ctx, cv)
}

// FindBySelector returns the first function or error entry of a whose selector
// prefixes data
func FindBySelector(ctx context.Context, a abi.ABI, entryType abi.EntryType, data []byte) *abi.Entry {
	if len(data) < 4 {
		return nil
	}
	for _, e := range a {
		if e.Type != entryType {
			continue
		}
		selector, err := e.GenerateFunctionSelectorCtx(ctx)
		if err == nil && bytes.Equal(selector, data[0:4]) {
			return e
		}
	}
	return nil
}

// EncodeEvent produces the log topics and data for an event. Indexed parameters
// must be static types.
func EncodeEvent(ctx context.Context, entry *abi.Entry, args []any) ([]ethtypes.HexBytes0xPrefix, ethtypes.HexBytes0xPrefix, error) {
	topic0, err := entry.SignatureHashCtx(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(args) != len(entry.Inputs) {
		return nil, nil, i18n.NewError(ctx, msgs.MsgChainInvalidInput, entry.Name)
	}
	topics := []ethtypes.HexBytes0xPrefix{topic0}
	var dataParams abi.ParameterArray
	var dataArgs []any
	for i, p := range entry.Inputs {
		if p.Indexed {
			topic, err := EncodeValues(ctx, abi.ParameterArray{p}, []any{args[i]})
			if err != nil {
				return nil, nil, i18n.WrapError(ctx, err, msgs.MsgChainInvalidInput, entry.Name)
			}
			topics = append(topics, topic)
			continue
		}
		dataParams = append(dataParams, p)
		dataArgs = append(dataArgs, args[i])
	}
	data, err := EncodeValues(ctx, dataParams, dataArgs)
	if err != nil {
		return nil, nil, i18n.WrapError(ctx, err, msgs.MsgChainInvalidInput, entry.Name)
	}
	return topics, data, nil
}

// DecodeEvent matches a log against the events of an ABI, returning nil when
// none matches
func DecodeEvent(ctx context.Context, a abi.ABI, l *Log) *Event {
	if len(l.Topics) == 0 {
		return nil
	}
	for _, e := range a {
		if e.Type != abi.Event {
			continue
		}
		topic0, err := e.SignatureHashCtx(ctx)
		if err != nil || !bytes.Equal(topic0, l.Topics[0]) {
			continue
		}
		cv, err := e.DecodeEventDataCtx(ctx, l.Topics, l.Data)
		if err != nil {
			continue
		}
		args, err := ValuesOf(ctx, cv)
		if err != nil {
			continue
		}
		return &Event{Address: l.Address, Name: e.Name, Args: args, Entry: e}
	}
	return nil
}

// Event is a decoded log
type Event struct {
	Address ethtypes.Address0xHex
	Name    string
	Args    Values
	Entry   *abi.Entry
}

// Arg returns the argument with the given parameter name
func (e *Event) Arg(name string) (any, bool) {
	for i, p := range e.Entry.Inputs {
		if p.Name == name && i < len(e.Args) {
			return e.Args[i], true
		}
	}
	return nil, false
}
