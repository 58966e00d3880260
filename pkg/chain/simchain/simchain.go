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

// Package simchain is a chain.Provider over the go-ethereum simulated backend,
// for running compiled artifacts without an external node. Every transaction
// is mined into its own block, so a snapshot is simply a block hash.
package simchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
)

// fundedBalance is what each actor starts with, 10000 ether as on hardhat
var fundedBalance = new(big.Int).Mul(big.NewInt(10000), big.NewInt(1e18))

type Chain struct {
	backend           *simulated.Backend
	client            simulated.Client
	chainID           *big.Int
	gasEstimateFactor float64
	blockGasLimit     uint64
	keys              map[ethtypes.Address0xHex]*ecdsa.PrivateKey
}

var _ chain.Provider = (*Chain)(nil)

// New starts a backend with every actor holding a key funded
func New(ctx context.Context, conf *harnessconf.ChainConfig, accounts []*actors.Account) (*Chain, error) {
	def := harnessconf.ChainDefaults
	c := &Chain{
		gasEstimateFactor: confutil.Float64Min(conf.GasEstimateFactor, 1.0, *def.GasEstimateFactor),
		keys:              map[ethtypes.Address0xHex]*ecdsa.PrivateKey{},
	}
	alloc := types.GenesisAlloc{}
	for _, a := range accounts {
		if a.Key == nil {
			continue
		}
		key, err := a.ECDSA()
		if err != nil {
			return nil, err
		}
		c.keys[a.Address] = key
		alloc[common.Address(a.Address)] = types.Account{Balance: fundedBalance}
	}
	gasLimit := confutil.Int64Min(conf.BlockGasLimit, 1, *def.BlockGasLimit)
	c.blockGasLimit = uint64(gasLimit)
	c.backend = simulated.NewBackend(alloc, simulated.WithBlockGasLimit(c.blockGasLimit))
	c.client = c.backend.Client()

	chainID, err := c.client.ChainID(ctx)
	if err != nil {
		c.Close()
		return nil, i18n.WrapError(ctx, err, msgs.MsgRPCChainIDFailed)
	}
	c.chainID = chainID
	log.L(ctx).Infof("Simulated chain %s started with %d funded accounts", chainID, len(alloc))
	return c, nil
}

func (c *Chain) ChainID(ctx context.Context) (int64, error) {
	return c.chainID.Int64(), nil
}

// Snapshot returns the hash of the current head
func (c *Chain) Snapshot(ctx context.Context) (string, error) {
	head, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return "", err
	}
	return head.Hash().Hex(), nil
}

// Revert rewinds the head to the snapshot block. Blocks above it are
// discarded, so a later snapshot of the same branch becomes unknown.
func (c *Chain) Revert(ctx context.Context, id string) (bool, error) {
	hash, err := ethtypes.NewHexBytes0xPrefix(id)
	if err != nil {
		return false, i18n.WrapError(ctx, err, msgs.MsgSimChainInvalidBlock, id)
	}
	if len(hash) != common.HashLength {
		return false, i18n.NewError(ctx, msgs.MsgSimChainInvalidBlock, id)
	}
	target := common.BytesToHash(hash)
	if err := c.backend.Fork(target); err != nil {
		log.L(ctx).Warnf("Revert to %s declined: %s", id, err)
		return false, nil
	}
	// The pool re-injects the transactions of the discarded blocks once it has
	// caught up with the reorg, and they must not reach the next sealed block.
	// Fork waits for the pool and refuses while anything is pending.
	for i := 0; i < 3; i++ {
		if err = c.backend.Fork(target); err == nil {
			break
		}
		c.backend.Rollback()
	}
	if err != nil {
		return false, i18n.WrapError(ctx, err, msgs.MsgSimChainFork, id)
	}
	head, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return false, i18n.WrapError(ctx, err, msgs.MsgSimChainFork, id)
	}
	if head.Hash() != target {
		return false, i18n.NewError(ctx, msgs.MsgSimChainForkHead, id, head.Hash())
	}
	return true, nil
}

func callMsg(tx *chain.TX) ethereum.CallMsg {
	msg := ethereum.CallMsg{
		From:  common.Address(tx.From),
		Data:  tx.Data,
		Value: tx.Value,
	}
	if tx.To != nil {
		to := common.Address(*tx.To)
		msg.To = &to
	}
	return msg
}

// revertError maps an execution revert to a chain.RevertError, passing other
// errors through
func revertError(err error) error {
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if data, decodeErr := ethtypes.NewHexBytes0xPrefix(s); decodeErr == nil {
				return &chain.RevertError{Data: data}
			}
		}
	}
	if strings.Contains(err.Error(), vm.ErrExecutionReverted.Error()) {
		return &chain.RevertError{}
	}
	return err
}

func (c *Chain) Call(ctx context.Context, tx *chain.TX) (ethtypes.HexBytes0xPrefix, error) {
	out, err := c.client.CallContract(ctx, callMsg(tx), nil)
	if err != nil {
		return nil, revertError(err)
	}
	return out, nil
}

func (c *Chain) Deploy(ctx context.Context, from ethtypes.Address0xHex, initCode ethtypes.HexBytes0xPrefix) (*chain.Receipt, error) {
	return c.Send(ctx, &chain.TX{From: from, Data: initCode})
}

func (c *Chain) Send(ctx context.Context, tx *chain.TX) (*chain.Receipt, error) {
	key := c.keys[tx.From]
	if key == nil {
		return nil, i18n.NewError(ctx, msgs.MsgSimChainNoKey, tx.From)
	}
	msg := callMsg(tx)
	gas, err := c.client.EstimateGas(ctx, msg)
	if err != nil {
		return nil, revertError(err)
	}
	// every send is sealed straight away, so the head nonce is the next one.
	// The pool's pending nonce can run ahead of it after a revert.
	nonce, err := c.client.NonceAt(ctx, msg.From, nil)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSimChainSendFailed, tx.From)
	}
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSimChainSendFailed, tx.From)
	}
	gasLimit := uint64(float64(gas) * c.gasEstimateFactor)
	if gasLimit > c.blockGasLimit {
		gasLimit = c.blockGasLimit
	}
	value := tx.Value
	if value == nil {
		value = new(big.Int)
	}
	signed, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       msg.To,
		Value:    value,
		Data:     msg.Data,
	}), types.LatestSignerForChainID(c.chainID), key)
	if err == nil {
		err = c.client.SendTransaction(ctx, signed)
	}
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSimChainSendFailed, tx.From)
	}
	c.backend.Commit()

	r, err := c.client.TransactionReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSimChainNoReceipt, signed.Hash())
	}
	receipt := toReceipt(r)
	if !receipt.Success {
		// replay on the parent block, which holds the state the transaction saw
		parent := new(big.Int).Sub(r.BlockNumber, big.NewInt(1))
		_, callErr := c.client.CallContract(ctx, msg, parent)
		var revert *chain.RevertError
		if callErr != nil && errors.As(revertError(callErr), &revert) {
			return receipt, revert
		}
		return receipt, &chain.RevertError{}
	}
	return receipt, nil
}

func toReceipt(r *types.Receipt) *chain.Receipt {
	receipt := &chain.Receipt{
		TxHash:      r.TxHash.Bytes(),
		BlockNumber: r.BlockNumber.Uint64(),
		Success:     r.Status == types.ReceiptStatusSuccessful,
		GasUsed:     r.GasUsed,
		Logs:        make([]*chain.Log, len(r.Logs)),
	}
	if r.ContractAddress != (common.Address{}) {
		addr := ethtypes.Address0xHex(r.ContractAddress)
		receipt.ContractAddress = &addr
	}
	for i, l := range r.Logs {
		topics := make([]ethtypes.HexBytes0xPrefix, len(l.Topics))
		for j, t := range l.Topics {
			topics[j] = t.Bytes()
		}
		receipt.Logs[i] = &chain.Log{Address: ethtypes.Address0xHex(l.Address), Topics: topics, Data: l.Data}
	}
	return receipt
}

func (c *Chain) Close() {
	if err := c.backend.Close(); err != nil {
		log.L(context.Background()).Warnf("Simulated backend close failed: %s", err)
	}
}
