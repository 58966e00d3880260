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
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

type instance struct {
	factory *Factory
	program Program
}

// abi is what callers dispatch against, the implementation's for a proxy
func (i *instance) abi() abi.ABI {
	if d, ok := i.program.(Delegator); ok {
		return d.DelegateABI()
	}
	return i.factory.ABI
}

// world is the whole ledger state. A committed world is never mutated, work
// happens on a clone that replaces it on success.
type world struct {
	block  uint64
	nonces map[ethtypes.Address0xHex]uint64
	code   map[ethtypes.Address0xHex]*instance
}

func newWorld() *world {
	return &world{
		nonces: map[ethtypes.Address0xHex]uint64{},
		code:   map[ethtypes.Address0xHex]*instance{},
	}
}

func (w *world) clone() *world {
	c := &world{
		block:  w.block,
		nonces: make(map[ethtypes.Address0xHex]uint64, len(w.nonces)),
		code:   make(map[ethtypes.Address0xHex]*instance, len(w.code)),
	}
	for a, n := range w.nonces {
		c.nonces[a] = n
	}
	for a, inst := range w.code {
		c.code[a] = &instance{factory: inst.factory, program: inst.program.Clone()}
	}
	return c
}
