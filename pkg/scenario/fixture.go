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

// Package scenario runs declarative tables of precondition, action and expected
// outcome against contracts, isolating every group and case with chain snapshots.
package scenario

import (
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/reverter"
)

// Fixture is the context shared by every step of a suite: the chain session,
// the actor set, the reverter and whatever contracts and values setup has bound.
// Bindings made inside a group or case are dropped when its scope ends, in step
// with the chain state they refer to.
type Fixture struct {
	Session  *chain.Session
	Actors   *actors.Set
	Reverter *reverter.Reverter
	Taxonomy *chain.Taxonomy
	frames   []*frame
}

type frame struct {
	contracts map[string]*chain.Contract
	values    map[string]any
}

func newFrame() *frame {
	return &frame{contracts: map[string]*chain.Contract{}, values: map[string]any{}}
}

func NewFixture(s *chain.Session, a *actors.Set, r *reverter.Reverter, taxonomy *chain.Taxonomy) *Fixture {
	if taxonomy == nil {
		taxonomy = chain.NewTaxonomy()
	}
	return &Fixture{
		Session:  s,
		Actors:   a,
		Reverter: r,
		Taxonomy: taxonomy,
		frames:   []*frame{newFrame()},
	}
}

func (f *Fixture) push() {
	f.frames = append(f.frames, newFrame())
}

func (f *Fixture) pop() {
	if len(f.frames) > 1 {
		f.frames = f.frames[:len(f.frames)-1]
	}
}

func (f *Fixture) top() *frame {
	return f.frames[len(f.frames)-1]
}

func (f *Fixture) SetContract(name string, c *chain.Contract) {
	f.top().contracts[name] = c
}

func (f *Fixture) Contract(ctx context.Context, name string) (*chain.Contract, error) {
	for i := len(f.frames) - 1; i >= 0; i-- {
		if c := f.frames[i].contracts[name]; c != nil {
			return c, nil
		}
	}
	return nil, i18n.NewError(ctx, msgs.MsgScenarioUnknownContract, name)
}

func (f *Fixture) SetValue(name string, v any) {
	f.top().values[name] = v
}

func (f *Fixture) Value(ctx context.Context, name string) (any, error) {
	for i := len(f.frames) - 1; i >= 0; i-- {
		if v, ok := f.frames[i].values[name]; ok {
			return v, nil
		}
	}
	return nil, i18n.NewError(ctx, msgs.MsgScenarioUnknownValue, name)
}

// Address is the address bound to a role, the zero address for an unknown role
func (f *Fixture) Address(r actors.Role) ethtypes.Address0xHex {
	return f.Actors.Address(r)
}

// Describe names an address by role or contract, for failure output
func (f *Fixture) Describe(addr ethtypes.Address0xHex) string {
	if r, ok := f.Actors.RoleOf(addr); ok {
		return string(r)
	}
	for i := len(f.frames) - 1; i >= 0; i-- {
		for name, c := range f.frames[i].contracts {
			if c.Address == addr {
				return name
			}
		}
	}
	return addr.String()
}
