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

// Package actors binds the named roles of a suite to stable addresses.
package actors

import (
	"context"
	"crypto/ecdsa"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
)

type Role string

const (
	Deployer         Role = "deployer"
	Vault            Role = "vault"
	Trader           Role = "trader"
	AdaptersRegistry Role = "adaptersRegistry"
	ContractsFactory Role = "contractsFactory"
	DynamicValue     Role = "dynamicValue"
	NonAuthorized    Role = "nonAuthorized"
	Other            Role = "other"
	SecondaryOwner   Role = "secondaryOwner"

	// Owner is the deployer, which holds Ownable rights over every proxy it deploys
	Owner Role = "owner"
)

// SignerOrder is the order roles are bound to the node's accounts
var SignerOrder = []Role{
	Deployer,
	Vault,
	Trader,
	AdaptersRegistry,
	ContractsFactory,
	DynamicValue,
	NonAuthorized,
	Other,
	SecondaryOwner,
}

var aliases = map[Role]Role{
	Owner: Deployer,
}

type Account struct {
	Role    Role
	Address ethtypes.Address0xHex
	// Path is the derivation path, empty for supplied keys and node managed accounts
	Path string
	// Key is nil where the node holds the key
	Key *secp256k1.KeyPair
}

// ECDSA returns the key in the form go-ethereum signs with
func (a *Account) ECDSA() (*ecdsa.PrivateKey, error) {
	if a.Key == nil {
		return nil, i18n.NewError(context.Background(), msgs.MsgActorsNoKey, a.Address)
	}
	return crypto.ToECDSA(a.Key.PrivateKeyBytes())
}

// Set is the immutable role binding for one suite
type Set struct {
	byRole    map[Role]*Account
	byAddress map[ethtypes.Address0xHex]*Account
}

func canonical(r Role) Role {
	if a, ok := aliases[r]; ok {
		return a
	}
	return r
}

func newSet(ctx context.Context, accounts []*Account) (*Set, error) {
	s := &Set{
		byRole:    make(map[Role]*Account, len(accounts)),
		byAddress: make(map[ethtypes.Address0xHex]*Account, len(accounts)),
	}
	for _, a := range accounts {
		if existing, dup := s.byAddress[a.Address]; dup {
			return nil, i18n.NewError(ctx, msgs.MsgActorsDuplicateAddress, a.Address, existing.Role, a.Role)
		}
		s.byRole[a.Role] = a
		s.byAddress[a.Address] = a
		log.L(ctx).Debugf("Actor %-16s %s", a.Role, a.Address)
	}
	return s, nil
}

// Derive binds every role to an account derived from the configured mnemonic.
// Explicit private keys in the config replace the derived key for their role.
func Derive(ctx context.Context, conf *harnessconf.AccountsConfig) (*Set, error) {
	def := harnessconf.AccountsDefaults
	gen, err := NewGenerator(ctx, confutil.StringNotEmpty(conf.Mnemonic, *def.Mnemonic))
	if err != nil {
		return nil, err
	}
	prefix := confutil.StringNotEmpty(conf.DerivationPath, *def.DerivationPath)
	count := confutil.Int(conf.Count, *def.Count)
	if count < len(SignerOrder) {
		return nil, i18n.NewError(ctx, msgs.MsgActorsNotEnoughAccounts, len(SignerOrder), count)
	}

	accounts := make([]*Account, 0, len(SignerOrder))
	for i, role := range SignerOrder {
		kp, path, err := gen.Indexed(ctx, prefix, i)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, &Account{Role: role, Address: kp.Address, Path: path, Key: kp})
	}
	if err := applyPrivateKeys(ctx, accounts, conf.PrivateKeys); err != nil {
		return nil, err
	}
	return newSet(ctx, accounts)
}

func applyPrivateKeys(ctx context.Context, accounts []*Account, keys map[string]string) error {
	for roleName, keyHex := range keys {
		role := canonical(Role(roleName))
		var target *Account
		for _, a := range accounts {
			if a.Role == role {
				target = a
			}
		}
		if target == nil {
			return i18n.NewError(ctx, msgs.MsgActorsUnknownRole, roleName)
		}
		keyBytes, err := ethtypes.NewHexBytes0xPrefix(keyHex)
		if err != nil || len(keyBytes) != 32 {
			return i18n.NewError(ctx, msgs.MsgActorsInvalidPrivateKey, roleName)
		}
		kp := secp256k1.KeyPairFromBytes(keyBytes)
		target.Key, target.Address, target.Path = kp, kp.Address, ""
	}
	return nil
}

// FromAddresses binds roles, in SignerOrder, to accounts a node manages itself
// (the eth_accounts of hardhat or anvil)
func FromAddresses(ctx context.Context, addrs []ethtypes.Address0xHex) (*Set, error) {
	if len(addrs) < len(SignerOrder) {
		return nil, i18n.NewError(ctx, msgs.MsgActorsNotEnoughAccounts, len(SignerOrder), len(addrs))
	}
	accounts := make([]*Account, len(SignerOrder))
	for i, role := range SignerOrder {
		accounts[i] = &Account{Role: role, Address: addrs[i]}
	}
	return newSet(ctx, accounts)
}

func (s *Set) Account(ctx context.Context, r Role) (*Account, error) {
	a, ok := s.byRole[canonical(r)]
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgActorsUnknownRole, r)
	}
	return a, nil
}

// Address returns the bound address, or the zero address for an unknown role
func (s *Set) Address(r Role) ethtypes.Address0xHex {
	if a, ok := s.byRole[canonical(r)]; ok {
		return a.Address
	}
	return ethtypes.Address0xHex{}
}

// RoleOf reverse maps an address, for readable failure output
func (s *Set) RoleOf(addr ethtypes.Address0xHex) (Role, bool) {
	a, ok := s.byAddress[addr]
	if !ok {
		return "", false
	}
	return a.Role, true
}

// Keys returns every held private key, keyed by address
func (s *Set) Keys() map[ethtypes.Address0xHex]*secp256k1.KeyPair {
	keys := make(map[ethtypes.Address0xHex]*secp256k1.KeyPair)
	for addr, a := range s.byAddress {
		if a.Key != nil {
			keys[addr] = a.Key
		}
	}
	return keys
}

// Accounts lists the bindings in signer order
func (s *Set) Accounts() []*Account {
	accounts := make([]*Account, 0, len(s.byRole))
	for _, a := range s.byRole {
		accounts = append(accounts, a)
	}
	order := make(map[Role]int, len(SignerOrder))
	for i, r := range SignerOrder {
		order[r] = i
	}
	sort.Slice(accounts, func(i, j int) bool { return order[accounts[i].Role] < order[accounts[j].Role] })
	return accounts
}
