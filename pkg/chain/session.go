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
	"errors"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
)

// DefaultProxyArtifact is the OpenZeppelin proxy that upgrades.deployProxy uses
const DefaultProxyArtifact = "ERC1967Proxy"

// Session binds contracts to a provider. Every ABI it sees joins a shared book,
// so a revert bubbling up from a nested call still decodes by name.
type Session struct {
	provider      Provider
	artifacts     ArtifactSource
	proxyArtifact string

	mux       sync.Mutex
	book      abi.ABI
	selectors map[string]bool
	events    map[string]bool
}

func NewSession(provider Provider, artifacts ArtifactSource) *Session {
	return &Session{
		provider:      provider,
		artifacts:     artifacts,
		proxyArtifact: DefaultProxyArtifact,
		selectors:     map[string]bool{},
		events:        map[string]bool{},
	}
}

func (s *Session) SetProxyArtifact(name string) *Session {
	if name != "" {
		s.proxyArtifact = name
	}
	return s
}

func (s *Session) Provider() Provider {
	return s.provider
}

func (s *Session) Artifacts() ArtifactSource {
	return s.artifacts
}

func (s *Session) learn(ctx context.Context, a abi.ABI) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, e := range a {
		if e.Type != abi.Error && e.Type != abi.Event {
			continue
		}
		sig, err := e.SignatureHashCtx(ctx)
		if err != nil {
			continue
		}
		key := sig.String()
		seen := s.selectors
		if e.Type == abi.Event {
			seen = s.events
		}
		if !seen[key] {
			seen[key] = true
			s.book = append(s.book, e)
		}
	}
}

// DecodeRevert decodes against every error the session has seen
func (s *Session) DecodeRevert(ctx context.Context, data ethtypes.HexBytes0xPrefix) *Rejection {
	s.mux.Lock()
	book := s.book
	s.mux.Unlock()
	return DecodeRevert(ctx, book, data)
}

// DecodeLog decodes against every event the session has seen
func (s *Session) DecodeLog(ctx context.Context, l *Log) *Event {
	s.mux.Lock()
	book := s.book
	s.mux.Unlock()
	return DecodeEvent(ctx, book, l)
}

// rejection turns a provider revert into a decoded *Rejection, passing other errors through
func (s *Session) rejection(ctx context.Context, err error) error {
	var re *RevertError
	if errors.As(err, &re) {
		return s.DecodeRevert(ctx, re.Data)
	}
	return err
}

// Bind wraps a deployed contract
func (s *Session) Bind(ctx context.Context, name string, a abi.ABI, addr ethtypes.Address0xHex) *Contract {
	s.learn(ctx, a)
	return newContract(s, name, a, addr)
}

// At binds a named artifact at an existing address
func (s *Session) At(ctx context.Context, name string, addr ethtypes.Address0xHex) (*Contract, error) {
	art, err := s.artifacts.Artifact(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.Bind(ctx, name, art.ABI, addr), nil
}

// Deploy deploys an artifact with constructor arguments
func (s *Session) Deploy(ctx context.Context, from ethtypes.Address0xHex, name string, args ...any) (*Contract, *Result, error) {
	art, err := s.artifacts.Artifact(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	s.learn(ctx, art.ABI)

	initCode := append(ethtypes.HexBytes0xPrefix{}, art.Bytecode...)
	if ctor := art.ABI.Constructor(); ctor != nil {
		encoded, err := EncodeValues(ctx, ctor.Inputs, args)
		if err != nil {
			return nil, nil, i18n.WrapError(ctx, err, msgs.MsgChainInvalidInput, name)
		}
		initCode = append(initCode, encoded...)
	} else if len(args) > 0 {
		return nil, nil, i18n.NewError(ctx, msgs.MsgChainInvalidInput, name)
	}

	receipt, err := s.provider.Deploy(ctx, from, initCode)
	if err != nil {
		return nil, nil, s.rejection(ctx, err)
	}
	if receipt.ContractAddress == nil {
		return nil, nil, i18n.NewError(ctx, msgs.MsgChainNoContractAddress, name)
	}
	log.L(ctx).Debugf("Deployed %s at %s (block=%d)", name, receipt.ContractAddress, receipt.BlockNumber)
	c := newContract(s, name, art.ABI, *receipt.ContractAddress)
	return c, c.result(ctx, receipt), nil
}

// DeployProxy deploys the implementation, then a proxy whose constructor runs the
// initializer through it, returning the implementation ABI bound at the proxy
func (s *Session) DeployProxy(ctx context.Context, from ethtypes.Address0xHex, name, initializer string, args ...any) (*Contract, *Result, error) {
	impl, _, err := s.Deploy(ctx, from, name)
	if err != nil {
		return nil, nil, err
	}
	initFn := impl.functions[initializer]
	if initFn == nil {
		return nil, nil, i18n.NewError(ctx, msgs.MsgChainNoInitializer, initializer, name)
	}
	initData, err := EncodeCall(ctx, initFn, args)
	if err != nil {
		return nil, nil, err
	}

	proxyArt, err := s.artifacts.Artifact(ctx, s.proxyArtifact)
	if err != nil {
		return nil, nil, err
	}
	if ctor := proxyArt.ABI.Constructor(); ctor == nil || len(ctor.Inputs) != 2 {
		return nil, nil, i18n.NewError(ctx, msgs.MsgChainProxyArtifact, s.proxyArtifact)
	}
	proxy, res, err := s.Deploy(ctx, from, s.proxyArtifact, impl.Address, initData)
	if err != nil {
		return nil, nil, err
	}
	c := s.Bind(ctx, name, impl.ABI, proxy.Address)
	c.Implementation = &impl.Address
	return c, res, nil
}
