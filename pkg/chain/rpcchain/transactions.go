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

package rpcchain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"golang.org/x/crypto/sha3"
)

type rpcLog struct {
	Address ethtypes.Address0xHex       `json:"address"`
	Topics  []ethtypes.HexBytes0xPrefix `json:"topics"`
	Data    ethtypes.HexBytes0xPrefix   `json:"data"`
}

type rpcReceipt struct {
	TransactionHash ethtypes.HexBytes0xPrefix `json:"transactionHash"`
	BlockNumber     ethtypes.HexUint64        `json:"blockNumber"`
	ContractAddress *ethtypes.Address0xHex    `json:"contractAddress"`
	Status          ethtypes.HexUint64        `json:"status"`
	GasUsed         ethtypes.HexUint64        `json:"gasUsed"`
	Logs            []*rpcLog                 `json:"logs"`
}

func (r *rpcReceipt) receipt() *chain.Receipt {
	receipt := &chain.Receipt{
		TxHash:          r.TransactionHash,
		BlockNumber:     r.BlockNumber.Uint64(),
		ContractAddress: r.ContractAddress,
		Success:         r.Status.Uint64() == 1,
		GasUsed:         r.GasUsed.Uint64(),
		Logs:            make([]*chain.Log, len(r.Logs)),
	}
	for i, l := range r.Logs {
		receipt.Logs[i] = &chain.Log{Address: l.Address, Topics: l.Topics, Data: l.Data}
	}
	return receipt
}

func buildTX(tx *chain.TX) *ethsigner.Transaction {
	from, _ := json.Marshal(tx.From)
	etx := &ethsigner.Transaction{
		From: json.RawMessage(from),
		To:   tx.To,
		Data: tx.Data,
	}
	if tx.Value != nil {
		etx.Value = ethtypes.NewHexInteger(tx.Value)
	}
	return etx
}

func (c *Chain) Call(ctx context.Context, tx *chain.TX) (ethtypes.HexBytes0xPrefix, error) {
	var data ethtypes.HexBytes0xPrefix
	if err := c.callRPC(ctx, &data, "eth_call", buildTX(tx), "latest"); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Chain) Deploy(ctx context.Context, from ethtypes.Address0xHex, initCode ethtypes.HexBytes0xPrefix) (*chain.Receipt, error) {
	return c.Send(ctx, &chain.TX{From: from, Data: initCode})
}

// estimateGas falls back to a call when estimation fails without revert data,
// to recover the reason the node would not give
func (c *Chain) estimateGas(ctx context.Context, etx *ethsigner.Transaction) (uint64, error) {
	var gas ethtypes.HexUint64
	err := c.callRPC(ctx, &gas, "eth_estimateGas", etx)
	if err == nil {
		return gas.Uint64(), nil
	}
	var revert *chain.RevertError
	if errors.As(err, &revert) {
		return 0, err
	}
	var ignored ethtypes.HexBytes0xPrefix
	if callErr := c.callRPC(ctx, &ignored, "eth_call", etx, "latest"); callErr != nil {
		return 0, callErr
	}
	return 0, err
}

func (c *Chain) Send(ctx context.Context, tx *chain.TX) (*chain.Receipt, error) {
	etx := buildTX(tx)
	gas, err := c.estimateGas(ctx, etx)
	if err != nil {
		return nil, err
	}
	etx.GasLimit = ethtypes.NewHexInteger(big.NewInt(int64(float64(gas) * c.gasEstimateFactor)))

	var txHash ethtypes.HexBytes0xPrefix
	if c.unlocked {
		err = c.callRPC(ctx, &txHash, "eth_sendTransaction", etx)
	} else {
		var raw ethtypes.HexBytes0xPrefix
		if raw, err = c.sign(ctx, tx.From, etx); err == nil {
			err = c.callRPC(ctx, &txHash, "eth_sendRawTransaction", raw)
		}
	}
	if err != nil {
		return nil, err
	}
	log.L(ctx).Debugf("Submitted %s from %s", txHash, tx.From)

	r, err := c.waitReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}
	receipt := r.receipt()
	if !receipt.Success {
		// mined but failed, which only happens when the gas estimate was wrong
		log.L(ctx).Errorf("Transaction %s failed in block %d", txHash, receipt.BlockNumber)
		return receipt, &chain.RevertError{}
	}
	return receipt, nil
}

// sign builds a legacy EIP-155 transaction signed with a registered key
func (c *Chain) sign(ctx context.Context, from ethtypes.Address0xHex, etx *ethsigner.Transaction) (ethtypes.HexBytes0xPrefix, error) {
	key := c.keys[from]
	if key == nil {
		return nil, i18n.NewError(ctx, msgs.MsgRPCSigningFailed, from)
	}
	var nonce, gasPrice ethtypes.HexInteger
	if err := c.callRPC(ctx, &nonce, "eth_getTransactionCount", from, "pending"); err != nil {
		return nil, err
	}
	if err := c.callRPC(ctx, &gasPrice, "eth_gasPrice"); err != nil {
		return nil, err
	}
	etx.Nonce, etx.GasPrice = &nonce, &gasPrice

	sigPayload := etx.SignaturePayloadLegacyEIP155(c.chainID)
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(sigPayload.Bytes())
	sig, err := key.SignDirect(hash.Sum(nil))
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgRPCSigningFailed, from)
	}
	raw, err := etx.FinalizeLegacyEIP155WithSignature(sigPayload, sig, c.chainID)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgRPCSigningFailed, from)
	}
	return raw, nil
}

func (c *Chain) waitReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*rpcReceipt, error) {
	var receipt *rpcReceipt
	err := c.receiptRetry.Do(ctx, func(attempt int) (bool, error) {
		receipt = nil
		if err := c.callRPC(ctx, &receipt, "eth_getTransactionReceipt", txHash); err != nil {
			return true, err
		}
		if receipt == nil {
			return true, i18n.NewError(ctx, msgs.MsgRPCReceiptPending, txHash)
		}
		return false, nil
	})
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgRPCReceiptTimeout, txHash)
	}
	return receipt, nil
}
