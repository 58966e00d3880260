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
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringerValue struct{}

func (stringerValue) String() string { return "0xABCD" }

func TestNormalize(t *testing.T) {
	addr := ethtypes.MustNewAddress("0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266")
	var b32 [32]byte
	b32[31] = 0xff

	assert.Nil(t, Normalize(nil))
	assert.Equal(t, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", Normalize(*addr))
	assert.Equal(t, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", Normalize(addr))
	assert.Equal(t, "100", Normalize(big.NewInt(100)))
	assert.Equal(t, "100", Normalize(100))
	assert.Equal(t, "7", Normalize(uint8(7)))
	assert.Equal(t, "0x0a0b", Normalize([]byte{0x0a, 0x0b}))
	assert.Equal(t, "0x0a0b", Normalize(ethtypes.HexBytes0xPrefix{0x0a, 0x0b}))
	assert.Equal(t, "0x00000000000000000000000000000000000000000000000000000000000000ff", Normalize(b32))
	assert.Equal(t, "0xabcd", Normalize("0xABCD"))
	assert.Equal(t, "Ownable: caller is not the owner", Normalize("Ownable: caller is not the owner"))
	assert.Equal(t, "0xabcd", Normalize(stringerValue{}))
	assert.Equal(t, true, Normalize(true))
	assert.Equal(t, Values{"1", Values{"2", "0xab"}}, Normalize([]any{1, []any{big.NewInt(2), "0xAB"}}))
	var nilAddr *ethtypes.Address0xHex
	assert.Nil(t, Normalize(nilAddr))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Values{"100", "0xab"}, []any{big.NewInt(100), []byte{0xab}}))
	assert.False(t, Equal(Values{"100"}, []any{101}))
}

func TestValuesAccessors(t *testing.T) {
	ctx := context.Background()
	params := abi.ParameterArray{
		{Name: "a", Type: "address"},
		{Name: "n", Type: "uint256"},
		{Name: "ok", Type: "bool"},
		{Name: "s", Type: "string"},
		{Name: "b", Type: "bytes"},
		{Name: "arr", Type: "uint256[]"},
	}
	data, err := EncodeValues(ctx, params, []any{
		"0x70997970c51812dc3a010c7d01b50e0d17dc79c8", 42, true, "hello", []byte{1, 2}, []any{1, 2, 3},
	})
	require.NoError(t, err)
	v, err := DecodeValues(ctx, params, data)
	require.NoError(t, err)

	assert.Equal(t, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", v.MustAddress(0).String())
	assert.Equal(t, int64(42), v.MustBigInt(1).Int64())
	assert.True(t, v.MustBool(2))
	assert.Equal(t, "hello", v.MustString(3))
	assert.Equal(t, ethtypes.HexBytes0xPrefix{1, 2}, v.MustBytes(4))
	assert.Len(t, v.MustArray(5), 3)

	_, err = v.Bool(0)
	assert.Regexp(t, "KF010410", err)
	_, err = v.Address(10)
	assert.Regexp(t, "KF010415", err)
	assert.Panics(t, func() { v.MustBigInt(3) })
}
