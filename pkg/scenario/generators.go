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

package scenario

import (
	"fmt"
	"math/big"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

// SetterSpec describes an authorized setter with a paired accessor and event
type SetterSpec struct {
	Contract string
	Setter   string
	Accessor string
	Event    string
	// As is the role allowed to call the setter
	As actors.Role
	// Unauthorized defaults to actors.NonAuthorized
	Unauthorized       actors.Role
	UnauthorizedSignal *chain.Signal
	// ZeroSignal is the rejection for the zero value. No zero value case is
	// generated when it is nil.
	ZeroSignal *chain.Signal
	// Value defaults to the dynamicValue actor's address, Zero to the zero address
	Value any
	Zero  any
	// Given runs before the authorized call only
	Given []Step
}

// SetterMatrix generates a group per setter holding the unauthorized, zero
// value and success cases. Rejected cases re-read the accessor to show the
// stored value did not move.
func SetterMatrix(specs ...SetterSpec) []*Group {
	groups := make([]*Group, len(specs))
	for i, s := range specs {
		unauthorized := s.Unauthorized
		if unauthorized == "" {
			unauthorized = actors.NonAuthorized
		}
		value := s.Value
		if value == nil {
			value = Actor(actors.DynamicValue)
		}
		zero := s.Zero
		if zero == nil {
			zero = ethtypes.Address0xHex{}
		}
		g := &Group{Name: s.Setter}
		g.Cases = append(g.Cases, &Case{
			Name: fmt.Sprintf("WHEN %s is called by %s THEN rejects", s.Setter, unauthorized),
			When: Invoke(unauthorized, s.Contract, s.Setter, value),
			Then: Rejects(s.UnauthorizedSignal, Unchanged(s.Contract, s.Accessor)).Kind(chain.UnauthorizedCaller),
		})
		if s.ZeroSignal != nil {
			g.Cases = append(g.Cases, &Case{
				Name: fmt.Sprintf("WHEN %s is called with the zero value THEN rejects", s.Setter),
				When: Invoke(s.As, s.Contract, s.Setter, zero),
				Then: Rejects(s.ZeroSignal, Unchanged(s.Contract, s.Accessor)).Kind(chain.InvalidArgument),
			})
		}
		g.Cases = append(g.Cases, &Case{
			Name:  fmt.Sprintf("WHEN %s is called by %s THEN %s is stored", s.Setter, s.As, s.Accessor),
			Given: s.Given,
			When:  Invoke(s.As, s.Contract, s.Setter, value),
			Then:  Succeeds(Stored(s.Contract, s.Accessor, value), EmitsOnce(s.Event, value)),
		})
		groups[i] = g
	}
	return groups
}

// DeploySpec describes a proxied deployment whose leading initializer
// arguments are addresses that must not be zero
type DeploySpec struct {
	Artifact    string
	Initializer string
	As          actors.Role
	Args        []any
	// Labels names the parameter at each checked position
	Labels []string
	Signal func(label string) *chain.Signal
	// Bind names the contract deployed by the success case
	Bind string
}

// DeployMatrix rejects the zero address at each labelled position in turn, then
// deploys with every argument valid
func DeployMatrix(s DeploySpec) *Group {
	g := &Group{Name: "Deploy " + s.Artifact}
	for i, label := range s.Labels {
		args := make([]any, len(s.Args))
		copy(args, s.Args)
		args[i] = ethtypes.Address0xHex{}
		g.Cases = append(g.Cases, &Case{
			Name: fmt.Sprintf("WHEN %s is the zero address THEN deployment rejects", label),
			When: DeployProxy(s.As, s.Artifact, s.Initializer, args...),
			Then: Rejects(s.Signal(label)).Kind(chain.InvalidArgument),
		})
	}
	deploy := DeployProxy(s.As, s.Artifact, s.Initializer, s.Args...)
	if s.Bind != "" {
		deploy.Bind(s.Bind)
	}
	g.Cases = append(g.Cases, &Case{
		Name: "WHEN every address is valid THEN deploys and initializes once",
		When: deploy,
		Then: Succeeds(EmitsOnce("Initialized", 1)),
	})
	return g
}

// AccumulatorSpec describes an entry point adding its amount to running totals
type AccumulatorSpec struct {
	Name     string
	Contract string
	Method   string
	As       actors.Role
	First    *big.Int
	Second   *big.Int
	// Args builds the call arguments for an amount
	Args func(amount *big.Int) []any
	// Totals are accessors expected to read First+Second afterwards
	Totals []string
	Event  string
	// Payload builds the expected event arguments for an amount
	Payload func(amount *big.Int) []any
	// Token, when set, is moved from Payer to Payee by each call
	Token string
	Payer any
	Payee any
	Given []Step
}

// Accumulator calls the method with First then Second and checks the totals,
// the two events and the token movement
func Accumulator(s AccumulatorSpec) *Case {
	total := new(big.Int).Add(s.First, s.Second)
	var checks []Check
	for _, accessor := range s.Totals {
		checks = append(checks, Stored(s.Contract, accessor, total))
	}
	if s.Event != "" {
		checks = append(checks, EmitsEach(s.Event, s.Payload(s.First), s.Payload(s.Second)))
	}
	if s.Token != "" {
		checks = append(checks,
			BalanceDelta(s.Token, s.Payee, total),
			BalanceDelta(s.Token, s.Payer, new(big.Int).Neg(total)),
		)
	}
	name := s.Name
	if name == "" {
		name = fmt.Sprintf("WHEN %s is called with %s then %s THEN totals are %s", s.Method, s.First, s.Second, total)
	}
	return &Case{
		Name:  name,
		Given: s.Given,
		When: Sequence(
			Invoke(s.As, s.Contract, s.Method, s.Args(s.First)...),
			Invoke(s.As, s.Contract, s.Method, s.Args(s.Second)...),
		),
		Then: Succeeds(checks...),
	}
}

// OrderedSetSpec describes an ordered collection with add and remove entry points
type OrderedSetSpec struct {
	Name     string
	Contract string
	Add      string
	Remove   string
	As       actors.Role
	Elements []any
	// RemoveIndex defaults to the third element
	RemoveIndex *int
	At          string
	Length      string
	// Contains is a membership accessor, optional
	Contains  string
	NonMember any
	NotFound  *chain.Signal
	Given     []Step
}

// OrderedSet checks insertion order, order preserving removal and the
// rejection of removing a non-member
func OrderedSet(s OrderedSetSpec) *Group {
	removeAt := 2
	if s.RemoveIndex != nil {
		removeAt = *s.RemoveIndex
	}
	removed := s.Elements[removeAt]
	var remaining []any
	remaining = append(remaining, s.Elements[:removeAt]...)
	remaining = append(remaining, s.Elements[removeAt+1:]...)

	adds := make([]*Action, len(s.Elements))
	addSteps := make([]Step, len(s.Elements))
	for i, e := range s.Elements {
		adds[i] = Invoke(s.As, s.Contract, s.Add, e)
		addSteps[i] = adds[i].Step()
	}

	membership := func(members []any, absent ...any) []Check {
		if s.Contains == "" {
			return nil
		}
		var checks []Check
		for _, m := range members {
			checks = append(checks, Stored(s.Contract, s.Contains, true, m))
		}
		for _, a := range absent {
			checks = append(checks, Stored(s.Contract, s.Contains, false, a))
		}
		return checks
	}

	name := s.Name
	if name == "" {
		name = fmt.Sprintf("%s/%s", s.Add, s.Remove)
	}
	return &Group{
		Name:  name,
		Setup: s.Given,
		Cases: []*Case{
			{
				Name: fmt.Sprintf("WHEN %d elements are added THEN they are listed in order", len(s.Elements)),
				When: Sequence(adds...),
				Then: Succeeds(append([]Check{Lists(s.Contract, s.At, s.Length, s.Elements...)}, membership(s.Elements)...)...),
			},
			{
				Name:  fmt.Sprintf("WHEN element %d is removed THEN the rest keep their order", removeAt+1),
				Given: addSteps,
				When:  Invoke(s.As, s.Contract, s.Remove, removed),
				Then:  Succeeds(append([]Check{Lists(s.Contract, s.At, s.Length, remaining...)}, membership(remaining, removed)...)...),
			},
			{
				Name:  "WHEN a non-member is removed THEN rejects",
				Given: addSteps,
				When:  Invoke(s.As, s.Contract, s.Remove, s.NonMember),
				Then:  Rejects(s.NotFound, Unchanged(s.Contract, s.Length)).Kind(chain.NotFound),
			},
		},
	}
}
