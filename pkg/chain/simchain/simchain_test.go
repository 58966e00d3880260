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

package simchain

import (
	"context"
	"math/big"
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/roshan123456789/kunji-finance/pkg/reverter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// returns the constant 42 to any call
	constantInitCode = "0x600a600c600039600a6000f3" + "602a60005260206000f3"
	// reverts every call with 0xdeadbeef
	revertingInitCode = "0x6010600c60003960106000f3" + "63deadbeef60e01b60005260046000fd"
	// increments slot 0 and returns the new value
	counterInitCode = "0x6014600c60003960146000f3" + "60005460010160005560005460005260206000f3"
)

func newTestChain(t *testing.T) (context.Context, *Chain, *actors.Account) {
	ctx := context.Background()
	set, err := actors.Derive(ctx, &harnessconf.AccountsConfig{})
	require.NoError(t, err)
	accounts := set.Accounts()
	c, err := New(ctx, &harnessconf.ChainConfig{BlockGasLimit: confutil.P(int64(15000000))}, accounts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return ctx, c, accounts[0]
}

func deploy(t *testing.T, ctx context.Context, c *Chain, from *actors.Account, code string) ethtypes.Address0xHex {
	receipt, err := c.Deploy(ctx, from.Address, ethtypes.MustNewHexBytes0xPrefix(code))
	require.NoError(t, err)
	require.True(t, receipt.Success)
	require.NotNil(t, receipt.ContractAddress)
	return *receipt.ContractAddress
}

func word(v int64) ethtypes.HexBytes0xPrefix {
	return big.NewInt(v).FillBytes(make([]byte, 32))
}

func TestChainID(t *testing.T) {
	ctx, c, _ := newTestChain(t)
	id, err := c.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1337), id)
}

func TestDeployAndCall(t *testing.T) {
	ctx, c, from := newTestChain(t)
	addr := deploy(t, ctx, c, from, constantInitCode)

	out, err := c.Call(ctx, &chain.TX{From: from.Address, To: &addr})
	require.NoError(t, err)
	assert.Equal(t, word(42), out)
}

func TestCallRevertData(t *testing.T) {
	ctx, c, from := newTestChain(t)
	addr := deploy(t, ctx, c, from, revertingInitCode)

	_, err := c.Call(ctx, &chain.TX{From: from.Address, To: &addr})
	var revert *chain.RevertError
	require.ErrorAs(t, err, &revert)
	assert.Equal(t, "0xdeadbeef", revert.Data.String())
}

func TestSendRevertedAtEstimate(t *testing.T) {
	ctx, c, from := newTestChain(t)
	addr := deploy(t, ctx, c, from, revertingInitCode)

	receipt, err := c.Send(ctx, &chain.TX{From: from.Address, To: &addr})
	assert.Nil(t, receipt)
	var revert *chain.RevertError
	require.ErrorAs(t, err, &revert)
	assert.Equal(t, "0xdeadbeef", revert.Data.String())
}

func TestSendMissingKey(t *testing.T) {
	ctx, c, _ := newTestChain(t)
	_, err := c.Send(ctx, &chain.TX{From: ethtypes.Address0xHex{0x01}})
	assert.Regexp(t, "KF010900", err)
}

func TestSnapshotRevert(t *testing.T) {
	ctx, c, from := newTestChain(t)
	addr := deploy(t, ctx, c, from, counterInitCode)
	tx := &chain.TX{From: from.Address, To: &addr}

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)

	receipt, err := c.Send(ctx, tx)
	require.NoError(t, err)
	assert.True(t, receipt.Success)
	out, err := c.Call(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, word(2), out)

	ok, err := c.Revert(ctx, snap)
	require.NoError(t, err)
	assert.True(t, ok)
	out, err = c.Call(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, word(1), out)

	// the reverted transaction is not replayed by the next block
	_, err = c.Send(ctx, tx)
	require.NoError(t, err)
	out, err = c.Call(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, word(2), out)
}

func TestScopeRestoresState(t *testing.T) {
	ctx, c, from := newTestChain(t)
	addr := deploy(t, ctx, c, from, counterInitCode)
	tx := &chain.TX{From: from.Address, To: &addr}
	head, err := c.Snapshot(ctx)
	require.NoError(t, err)

	r := reverter.New(c)
	err = r.Scope(ctx, func(ctx context.Context) error {
		for i := 0; i < 2; i++ {
			if _, err := c.Send(ctx, tx); err != nil {
				return err
			}
		}
		return r.Scope(ctx, func(ctx context.Context) error {
			_, err := c.Send(ctx, tx)
			return err
		})
	})
	require.NoError(t, err)
	assert.Zero(t, r.Depth())

	after, err := c.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, head, after)
	out, err := c.Call(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, word(1), out)

	for i := 0; i < 2; i++ {
		_, err = c.Send(ctx, tx)
		require.NoError(t, err)
	}
	out, err = c.Call(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, word(3), out)
}

func TestRevertUnknownBlock(t *testing.T) {
	ctx, c, _ := newTestChain(t)
	ok, err := c.Revert(ctx, "0x1111111111111111111111111111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevertMalformedID(t *testing.T) {
	ctx, c, _ := newTestChain(t)
	_, err := c.Revert(ctx, "0x1")
	assert.Regexp(t, "KF010904", err)
	_, err = c.Revert(ctx, "not hex")
	assert.Regexp(t, "KF010904", err)
}
