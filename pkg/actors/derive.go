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

package actors

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/tyler-smith/go-bip39"
)

const hardenedOffset = 0x80000000

// Generator derives predictable accounts from a BIP39 mnemonic, with the same
// BIP32 derivation hardhat and anvil use for their default signers
type Generator struct {
	master *hdkeychain.ExtendedKey
}

func NewGenerator(ctx context.Context, mnemonic string) (*Generator, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, i18n.NewError(ctx, msgs.MsgActorsInvalidMnemonic)
	}
	master, err := hdkeychain.NewMaster(bip39.NewSeed(mnemonic, ""), &chaincfg.MainNetParams)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgActorsInvalidMnemonic)
	}
	return &Generator{master: master}, nil
}

// Key derives the key pair at a full path such as m/44'/60'/0'/0/3
func (g *Generator) Key(ctx context.Context, path string) (*secp256k1.KeyPair, error) {
	indexes, err := parsePath(ctx, path)
	if err != nil {
		return nil, err
	}
	key := g.master
	for _, idx := range indexes {
		if key, err = key.Derive(idx); err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgActorsDerivationFailed, path)
		}
	}
	ecKey, err := key.ECPrivKey()
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgActorsDerivationFailed, path)
	}
	return secp256k1.KeyPairFromBytes(ecKey.Serialize()), nil
}

// Indexed derives the i'th account beneath a path prefix
func (g *Generator) Indexed(ctx context.Context, prefix string, i int) (*secp256k1.KeyPair, string, error) {
	path := fmt.Sprintf("%s/%d", strings.TrimSuffix(prefix, "/"), i)
	kp, err := g.Key(ctx, path)
	return kp, path, err
}

func parsePath(ctx context.Context, path string) ([]uint32, error) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 2 || segments[0] != "m" {
		return nil, i18n.NewError(ctx, msgs.MsgActorsInvalidPath, path)
	}
	indexes := make([]uint32, 0, len(segments)-1)
	for _, s := range segments[1:] {
		hardened := strings.HasSuffix(s, "'")
		v, err := strconv.ParseUint(strings.TrimSuffix(s, "'"), 10, 31)
		if err != nil {
			return nil, i18n.NewError(ctx, msgs.MsgActorsInvalidPath, path)
		}
		idx := uint32(v)
		if hardened {
			idx += hardenedOffset
		}
		indexes = append(indexes, idx)
	}
	return indexes, nil
}
