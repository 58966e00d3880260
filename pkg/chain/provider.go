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

// Package chain is the boundary between scenarios and the chain they run on.
// Providers move bytes; Session and Contract add ABI awareness on top.
package chain

import (
	"context"
	"math/big"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// TX is a call or transaction. A nil To deploys Data as init code.
type TX struct {
	From  ethtypes.Address0xHex
	To    *ethtypes.Address0xHex
	Data  ethtypes.HexBytes0xPrefix
	Value *big.Int
}

type Log struct {
	Address ethtypes.Address0xHex
	Topics  []ethtypes.HexBytes0xPrefix
	Data    ethtypes.HexBytes0xPrefix
}

type Receipt struct {
	TxHash          ethtypes.HexBytes0xPrefix
	BlockNumber     uint64
	ContractAddress *ethtypes.Address0xHex
	Success         bool
	GasUsed         uint64
	Logs            []*Log
}

// Snapshotter captures and restores whole chain state. Revert reports false,
// rather than an error, when the chain declines the id (consumed or unknown).
type Snapshotter interface {
	Snapshot(ctx context.Context) (string, error)
	Revert(ctx context.Context, id string) (bool, error)
}

// Provider is a backing chain. Send and Deploy wait for the receipt. When
// execution reverts they return a *RevertError carrying the raw revert data,
// and state is left as it was.
type Provider interface {
	Snapshotter
	ChainID(ctx context.Context) (int64, error)
	Deploy(ctx context.Context, from ethtypes.Address0xHex, initCode ethtypes.HexBytes0xPrefix) (*Receipt, error)
	Send(ctx context.Context, tx *TX) (*Receipt, error)
	Call(ctx context.Context, tx *TX) (ethtypes.HexBytes0xPrefix, error)
	Close()
}

// RevertError is raw revert data from a provider, before any ABI is applied
type RevertError struct {
	Data ethtypes.HexBytes0xPrefix
}

func (e *RevertError) Error() string {
	if len(e.Data) == 0 {
		return "execution reverted"
	}
	return "execution reverted: " + e.Data.String()
}
