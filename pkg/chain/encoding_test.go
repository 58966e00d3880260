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
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokenABI = abi.ABI{
	{Type: abi.Function, Name: "transfer", Inputs: abi.ParameterArray{
		{Name: "to", Type: "address"},
		{Name: "amount", Type: "uint256"},
	}, Outputs: abi.ParameterArray{{Type: "bool"}}},
	{Type: abi.Function, Name: "balanceOf", StateMutability: "view", Inputs: abi.ParameterArray{
		{Name: "account", Type: "address"},
	}, Outputs: abi.ParameterArray{{Type: "uint256"}}},
	{Type: abi.Event, Name: "Transfer", Inputs: abi.ParameterArray{
		{Name: "from", Type: "address", Indexed: true},
		{Name: "to", Type: "address", Indexed: true},
		{Name: "value", Type: "uint256"},
	}},
	{Type: abi.Error, Name: "ZeroAddress", Inputs: abi.ParameterArray{{Name: "_target", Type: "string"}}},
	{Type: abi.Error, Name: "CallerNotAllowed"},
}

const (
	testAlice = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	testBob   = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
)

func TestEncodeDecodeCall(t *testing.T) {
	ctx := context.Background()
	transfer := testTokenABI.Functions()["transfer"]

	data, err := EncodeCall(ctx, transfer, []any{testBob, 100})
	require.NoError(t, err)
	assert.Equal(t, "0xa9059cbb", ethtypes.HexBytes0xPrefix(data[0:4]).String())

	found := FindBySelector(ctx, testTokenABI, abi.Function, data)
	require.NotNil(t, found)
	assert.Equal(t, "transfer", found.Name)

	args, err := DecodeCall(ctx, found, data)
	require.NoError(t, err)
	assert.Equal(t, Values{testBob, "100"}, args)

	assert.Nil(t, FindBySelector(ctx, testTokenABI, abi.Function, []byte{0x01}))
	assert.Nil(t, FindBySelector(ctx, testTokenABI, abi.Function, []byte{1, 2, 3, 4}))
}

func TestEncodeCallBadInput(t *testing.T) {
	_, err := EncodeCall(context.Background(), testTokenABI.Functions()["transfer"], []any{"not an address", 1})
	assert.Regexp(t, "KF010401", err)
}

func TestEncodeDecodeEvent(t *testing.T) {
	ctx := context.Background()
	transferEvent := testTokenABI.Events()["Transfer"]

	topics, data, err := EncodeEvent(ctx, transferEvent, []any{testAlice, testBob, 5})
	require.NoError(t, err)
	assert.Len(t, topics, 3)
	assert.Equal(t, "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef", topics[0].String())

	token := ethtypes.MustNewAddress("0x5fbdb2315678afecb367f032d93f642f64180aa3")
	e := DecodeEvent(ctx, testTokenABI, &Log{Address: *token, Topics: topics, Data: data})
	require.NotNil(t, e)
	assert.Equal(t, "Transfer", e.Name)
	assert.Equal(t, Values{testAlice, testBob, "5"}, e.Args)
	v, ok := e.Arg("value")
	assert.True(t, ok)
	assert.Equal(t, "5", v)
	_, ok = e.Arg("missing")
	assert.False(t, ok)

	assert.Nil(t, DecodeEvent(ctx, testTokenABI, &Log{Address: *token}))
	assert.Nil(t, DecodeEvent(ctx, testTokenABI, &Log{Address: *token, Topics: []ethtypes.HexBytes0xPrefix{make([]byte, 32)}}))
}

func TestEncodeEventArgCount(t *testing.T) {
	_, _, err := EncodeEvent(context.Background(), testTokenABI.Events()["Transfer"], []any{testAlice})
	assert.Regexp(t, "KF010401", err)
}

func TestEncodeTuple(t *testing.T) {
	ctx := context.Background()
	params := abi.ParameterArray{
		{Name: "op", Type: "tuple", Components: abi.ParameterArray{
			{Name: "_operationId", Type: "uint8"},
			{Name: "_data", Type: "bytes"},
		}},
	}
	data, err := EncodeValues(ctx, params, []any{Values{1, "0xabcd"}})
	require.NoError(t, err)
	v, err := DecodeValues(ctx, params, data)
	require.NoError(t, err)
	assert.Equal(t, Values{Values{"1", "0xabcd"}}, v)
}
