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

package ledger

import (
	"bytes"
	"context"
	"sort"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

// Program is the native code and storage of a contract on the ledger. Invoke
// receives arguments already decoded against the function entry, and returns
// outputs in ABI order. Reverts are returned as errors from Exec.Revert or Exec.Fail.
type Program interface {
	Clone() Program
	Invoke(x *Exec, fn *abi.Entry, args chain.Values) ([]any, error)
}

// Delegator runs code from another ABI against its own storage, as a proxy does
type Delegator interface {
	Program
	DelegateABI() abi.ABI
	Implementation() ethtypes.Address0xHex
}

// Factory constructs a Program from decoded constructor arguments
type Factory struct {
	Name string
	ABI  abi.ABI
	New  func(x *Exec, args chain.Values) (Program, error)
}

type Registry struct {
	factories map[string]*Factory
}

func NewRegistry(factories ...*Factory) *Registry {
	r := &Registry{factories: map[string]*Factory{}}
	for _, f := range factories {
		r.Register(f)
	}
	return r
}

func (r *Registry) Register(f *Factory) {
	r.factories[f.Name] = f
}

func (r *Registry) Factory(ctx context.Context, name string) (*Factory, error) {
	f := r.factories[name]
	if f == nil {
		return nil, i18n.NewError(ctx, msgs.MsgLedgerUnknownProgram, name)
	}
	return f, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Artifacts publishes every registered program as an artifact, with its marker
// as bytecode, so sessions deploy them like compiled contracts
func (r *Registry) Artifacts() chain.ArtifactMap {
	am := chain.ArtifactMap{}
	for name, f := range r.factories {
		am[name] = &chain.Artifact{ContractName: name, ABI: f.ABI, Bytecode: Marker(name)}
	}
	return am
}

var markerPrefix = []byte{0xfe, 'K', 'F', 'L', '1'}

// Marker is the init code prefix naming a registered program. It begins with
// the INVALID opcode, so a real EVM refuses to run it.
func Marker(name string) ethtypes.HexBytes0xPrefix {
	m := append([]byte{}, markerPrefix...)
	m = append(m, byte(len(name)))
	return append(m, name...)
}

func parseMarker(initCode []byte) (name string, rest []byte, ok bool) {
	if !bytes.HasPrefix(initCode, markerPrefix) || len(initCode) <= len(markerPrefix) {
		return "", nil, false
	}
	l := int(initCode[len(markerPrefix)])
	start := len(markerPrefix) + 1
	if len(initCode) < start+l {
		return "", nil, false
	}
	return string(initCode[start : start+l]), initCode[start+l:], true
}
