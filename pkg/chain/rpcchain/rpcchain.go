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

// Package rpcchain is a chain.Provider over JSON/RPC to a hardhat or anvil node.
// Isolation uses the evm_snapshot and evm_revert extensions those nodes offer.
package rpcchain

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/ffresty"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/internal/retry"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
)

type Chain struct {
	rpc               rpcbackend.Backend
	chainID           int64
	unlocked          bool
	gasEstimateFactor float64
	receiptRetry      *retry.Retry
	keys              map[ethtypes.Address0xHex]*secp256k1.KeyPair
}

var _ chain.Provider = (*Chain)(nil)

func parseHTTPConfig(ctx context.Context, conf *harnessconf.HTTPClientConfig) (*ffresty.Config, error) {
	if conf.URL == "" {
		return nil, i18n.NewError(ctx, msgs.MsgConfigMissingChainURL)
	}
	u, err := url.Parse(conf.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, i18n.WrapError(ctx, err, msgs.MsgRPCNoConnection)
	}
	def := harnessconf.DefaultHTTPConfig
	return &ffresty.Config{
		URL: u.String(),
		HTTPConfig: ffresty.HTTPConfig{
			HTTPHeaders:           conf.HTTPHeaders,
			AuthUsername:          conf.Auth.Username,
			AuthPassword:          conf.Auth.Password,
			HTTPRequestTimeout:    fftypes.FFDuration(confutil.DurationMin(conf.RequestTimeout, 0, *def.RequestTimeout)),
			HTTPConnectionTimeout: fftypes.FFDuration(confutil.DurationMin(conf.ConnectionTimeout, 0, *def.ConnectionTimeout)),
		},
	}, nil
}

// New connects to the node, checks its chain id, and resets it onto the
// configured fork when forking is enabled
func New(ctx context.Context, conf *harnessconf.ChainConfig) (*Chain, error) {
	restyConf, err := parseHTTPConfig(ctx, &conf.HTTP)
	if err != nil {
		return nil, err
	}
	client := ffresty.NewWithConfig(ctx, *restyConf)
	client.OnAfterResponse(traceResponse)
	return NewWithBackend(ctx, conf, rpcbackend.NewRPCClient(client))
}

func traceResponse(_ *resty.Client, res *resty.Response) error {
	if log.IsTraceEnabled() {
		log.L(res.Request.Context()).Tracef("JSON/RPC <-- %s [%d] in %s", res.Request.URL, res.StatusCode(), res.Time())
	}
	return nil
}

func NewWithBackend(ctx context.Context, conf *harnessconf.ChainConfig, rpc rpcbackend.Backend) (*Chain, error) {
	def := harnessconf.ChainDefaults
	c := &Chain{
		rpc:               rpc,
		unlocked:          confutil.Bool(conf.UnlockedAccounts, *def.UnlockedAccounts),
		gasEstimateFactor: confutil.Float64Min(conf.GasEstimateFactor, 1.0, *def.GasEstimateFactor),
		receiptRetry:      retry.NewRetryLimited(&conf.ReceiptPoll),
		keys:              map[ethtypes.Address0xHex]*secp256k1.KeyPair{},
	}
	if confutil.Bool(conf.Fork.Enabled, *def.Fork.Enabled) && conf.Fork.URL != "" {
		if err := c.ResetFork(ctx, conf.Fork.URL, confutil.Int64Min(conf.Fork.BlockNumber, 0, *def.Fork.BlockNumber)); err != nil {
			return nil, err
		}
	}
	var chainID ethtypes.HexUint64
	if rpcErr := c.rpc.CallRPC(ctx, &chainID, "eth_chainId"); rpcErr != nil {
		log.L(ctx).Errorf("eth_chainId failed: %+v", rpcErr)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgRPCChainIDFailed)
	}
	c.chainID = int64(chainID.Uint64())
	if conf.ChainID != nil && *conf.ChainID != c.chainID {
		log.L(ctx).Warnf("Node reports chain id %d, configuration expects %d", c.chainID, *conf.ChainID)
	}
	log.L(ctx).Infof("Connected to chain %d (unlocked=%t)", c.chainID, c.unlocked)
	return c, nil
}

// AddKeys registers keys for local signing, used when the node does not hold
// the accounts itself
func (c *Chain) AddKeys(keys map[ethtypes.Address0xHex]*secp256k1.KeyPair) {
	for addr, kp := range keys {
		c.keys[addr] = kp
	}
}

func (c *Chain) callRPC(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if rpcErr := c.rpc.CallRPC(ctx, result, method, params...); rpcErr != nil {
		log.L(ctx).Errorf("%s failed: %+v", method, rpcErr)
		if data := revertData(rpcErr); data != nil {
			return &chain.RevertError{Data: data}
		}
		return i18n.NewError(ctx, msgs.MsgRPCCallFailed, method, rpcErr.Message)
	}
	return nil
}

// revertData extracts the revert payload from a JSON/RPC error. Hardhat and
// anvil return it as a hex string, some nodes nest it one level further.
func revertData(rpcErr *rpcbackend.RPCError) ethtypes.HexBytes0xPrefix {
	if len(rpcErr.Data) == 0 {
		return nil
	}
	var data ethtypes.HexBytes0xPrefix
	if err := json.Unmarshal(rpcErr.Data.Bytes(), &data); err == nil {
		return data
	}
	var nested struct {
		Data ethtypes.HexBytes0xPrefix `json:"data"`
	}
	if err := json.Unmarshal(rpcErr.Data.Bytes(), &nested); err == nil && nested.Data != nil {
		return nested.Data
	}
	return nil
}

func (c *Chain) ChainID(ctx context.Context) (int64, error) {
	return c.chainID, nil
}

func (c *Chain) Snapshot(ctx context.Context) (string, error) {
	var id string
	if err := c.callRPC(ctx, &id, "evm_snapshot"); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Chain) Revert(ctx context.Context, id string) (bool, error) {
	var reverted bool
	if err := c.callRPC(ctx, &reverted, "evm_revert", id); err != nil {
		return false, err
	}
	return reverted, nil
}

type forking struct {
	JSONRPCURL  string `json:"jsonRpcUrl"`
	BlockNumber int64  `json:"blockNumber,omitempty"`
}

type resetParams struct {
	Forking forking `json:"forking"`
}

// ResetFork points the node at a remote archive node, pinned to a block so
// quotes read from forked contracts are reproducible. Block zero follows latest.
func (c *Chain) ResetFork(ctx context.Context, forkURL string, block int64) error {
	var ok bool
	if err := c.callRPC(ctx, &ok, "hardhat_reset", &resetParams{Forking: forking{JSONRPCURL: forkURL, BlockNumber: block}}); err != nil || !ok {
		return i18n.WrapError(ctx, err, msgs.MsgRPCForkResetFailed, forkURL, block)
	}
	log.L(ctx).Infof("Forked %s at block %d", forkURL, block)
	return nil
}

// Accounts lists the accounts the node signs for
func (c *Chain) Accounts(ctx context.Context) ([]ethtypes.Address0xHex, error) {
	var accounts []ethtypes.Address0xHex
	if err := c.callRPC(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Chain) Close() {}
