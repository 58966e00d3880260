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

var defaultErrorEntry = &abi.Entry{Type: abi.Error, Name: ReasonErrorName, Inputs: abi.ParameterArray{{Type: "string"}}}

func revertData(t *testing.T, e *abi.Entry, args ...any) ethtypes.HexBytes0xPrefix {
	data, err := EncodeCall(context.Background(), e, args)
	require.NoError(t, err)
	return data
}

func TestDecodeRevertReason(t *testing.T) {
	data := revertData(t, defaultErrorEntry, "Ownable: caller is not the owner")
	r := DecodeRevert(context.Background(), testTokenABI, data)
	assert.True(t, r.IsReason())
	assert.Equal(t, "Ownable: caller is not the owner", r.Reason)
	assert.Regexp(t, "KF010404.*Ownable: caller is not the owner", r.Error())

	assert.True(t, Reason("Ownable: caller is not the owner").Matches(r))
	assert.False(t, Reason("Caller not allowed").Matches(r))
	assert.False(t, CustomError(ReasonErrorName+"x").Matches(r))
}

func TestDecodeRevertCustom(t *testing.T) {
	data := revertData(t, testTokenABI.Errors()["ZeroAddress"], "_vaultAddress")
	r := DecodeRevert(context.Background(), testTokenABI, data)
	assert.False(t, r.IsReason())
	assert.Equal(t, "ZeroAddress", r.Name)
	assert.Equal(t, Values{"_vaultAddress"}, r.Args)

	assert.True(t, CustomError("ZeroAddress").Matches(r))
	assert.True(t, CustomError("ZeroAddress", "_vaultAddress").Matches(r))
	assert.False(t, CustomError("ZeroAddress", "_traderAddress").Matches(r))
	assert.False(t, CustomError("CallerNotAllowed").Matches(r))
	assert.False(t, Reason("ZeroAddress").Matches(r))
	assert.False(t, Reason("x").Matches(nil))
}

func TestDecodeRevertUnknown(t *testing.T) {
	r := DecodeRevert(context.Background(), testTokenABI, ethtypes.HexBytes0xPrefix{1, 2, 3, 4})
	assert.Empty(t, r.Name)
	assert.Regexp(t, "KF010414", r.Summary)

	r = DecodeRevert(context.Background(), testTokenABI, nil)
	assert.Equal(t, "(no revert data)", r.Summary)
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, `"Caller not allowed"`, Reason("Caller not allowed").String())
	assert.Equal(t, "CallerNotAllowed", CustomError("CallerNotAllowed").String())
	assert.Equal(t, `ZeroAddress("_vaultAddress")`, CustomError("ZeroAddress", "_vaultAddress").String())
}
