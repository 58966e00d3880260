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
	"context"
	"fmt"
	"math/big"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

// Check observes the effect of an action. Begin runs before the action, so
// checks comparing before and after can read their baseline, and returns the
// verification to run against the outcome.
type Check interface {
	Begin(ctx context.Context, f *Fixture) (Verify, error)
	String() string
}

type Verify func(ctx context.Context, o *Outcome) error

type check struct {
	name  string
	begin func(ctx context.Context, f *Fixture) (Verify, error)
}

func (c *check) Begin(ctx context.Context, f *Fixture) (Verify, error) {
	return c.begin(ctx, f)
}

func (c *check) String() string {
	return c.name
}

func read(ctx context.Context, f *Fixture, contract, accessor string, args []any) (chain.Values, error) {
	c, err := f.Contract(ctx, contract)
	if err != nil {
		return nil, err
	}
	resolved, err := resolveAll(ctx, f, args)
	if err != nil {
		return nil, err
	}
	return c.Method(accessor).Args(resolved...).Call(ctx)
}

// single unwraps a lone output
func single(v chain.Values) any {
	if len(v) == 1 {
		return v[0]
	}
	return v
}

func accessorName(contract, accessor string, args []any) string {
	if len(args) == 0 {
		return fmt.Sprintf("%s.%s()", contract, accessor)
	}
	return fmt.Sprintf("%s.%s(%s)", contract, accessor, describeAll(args))
}

func describeAll(args []any) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ","
		}
		s += describe(a)
	}
	return s
}

// Stored asserts an accessor returns want after the action
func Stored(contract, accessor string, want any, args ...any) Check {
	name := accessorName(contract, accessor, args)
	return &check{name: name, begin: func(ctx context.Context, f *Fixture) (Verify, error) {
		return func(ctx context.Context, o *Outcome) error {
			expected, err := resolve(ctx, f, want)
			if err != nil {
				return err
			}
			got, err := read(ctx, f, contract, accessor, args)
			if err != nil {
				return err
			}
			if !matches(expected, single(got)) {
				return i18n.NewError(ctx, msgs.MsgScenarioStoredMismatch, name, describe(single(got)), describe(expected))
			}
			return nil
		}, nil
	}}
}

// Unchanged asserts an accessor returns the same value after the action as
// before it, which is how a rejected call is shown to have been atomic
func Unchanged(contract, accessor string, args ...any) Check {
	name := accessorName(contract, accessor, args)
	return &check{name: "unchanged " + name, begin: func(ctx context.Context, f *Fixture) (Verify, error) {
		before, err := read(ctx, f, contract, accessor, args)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, o *Outcome) error {
			after, err := read(ctx, f, contract, accessor, args)
			if err != nil {
				return err
			}
			if !chain.Equal(before, after) {
				return i18n.NewError(ctx, msgs.MsgScenarioValueChanged, name, describe(single(before)), describe(single(after)))
			}
			return nil
		}, nil
	}}
}

func eventMatches(ctx context.Context, f *Fixture, e *chain.Event, want []any) error {
	expected, err := resolveAll(ctx, f, want)
	if err != nil {
		return err
	}
	for i, w := range expected {
		var got any
		if i < len(e.Args) {
			got = e.Args[i]
		}
		if !matches(w, got) {
			return i18n.NewError(ctx, msgs.MsgScenarioEventArgsMismatch, e.Name, i, describe(got), describe(w))
		}
	}
	return nil
}

// EmitsOnce asserts exactly one event of the name was emitted. Any want
// values are compared positionally with its arguments.
func EmitsOnce(event string, want ...any) Check {
	return &check{name: "emits " + event, begin: func(ctx context.Context, f *Fixture) (Verify, error) {
		return func(ctx context.Context, o *Outcome) error {
			events := o.Events(event)
			if len(events) != 1 {
				return i18n.NewError(ctx, msgs.MsgScenarioEventCount, event, len(events))
			}
			return eventMatches(ctx, f, events[0], want)
		}, nil
	}}
}

// EmitsEach asserts one event of the name per payload, in order
func EmitsEach(event string, payloads ...[]any) Check {
	return &check{name: fmt.Sprintf("emits %d %s", len(payloads), event), begin: func(ctx context.Context, f *Fixture) (Verify, error) {
		return func(ctx context.Context, o *Outcome) error {
			events := o.Events(event)
			if len(events) != len(payloads) {
				return i18n.NewError(ctx, msgs.MsgScenarioEventsCount, len(payloads), event, len(events))
			}
			for i, p := range payloads {
				if err := eventMatches(ctx, f, events[i], p); err != nil {
					return err
				}
			}
			return nil
		}, nil
	}}
}

func toBig(ctx context.Context, v any) (*big.Int, error) {
	s, _ := chain.Normalize(v).(string)
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgChainValueConversion, 0, v, "integer")
	}
	return i, nil
}

// Delta asserts a numeric accessor moved by exactly delta, which may be negative
func Delta(contract, accessor string, delta any, args ...any) Check {
	name := accessorName(contract, accessor, args)
	return &check{name: "delta " + name, begin: func(ctx context.Context, f *Fixture) (Verify, error) {
		out, err := read(ctx, f, contract, accessor, args)
		if err != nil {
			return nil, err
		}
		before, err := toBig(ctx, single(out))
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, o *Outcome) error {
			want, err := toBig(ctx, delta)
			if err != nil {
				return err
			}
			out, err := read(ctx, f, contract, accessor, args)
			if err != nil {
				return err
			}
			after, err := toBig(ctx, single(out))
			if err != nil {
				return err
			}
			if moved := new(big.Int).Sub(after, before); moved.Cmp(want) != 0 {
				holder := contract
				if len(args) > 0 {
					if h, err := resolve(ctx, f, args[0]); err == nil {
						holder = describe(h)
					}
				}
				return i18n.NewError(ctx, msgs.MsgScenarioBalanceDelta, holder, contract, moved, want)
			}
			return nil
		}, nil
	}}
}

// BalanceDelta asserts the token balance of holder moved by delta
func BalanceDelta(token string, holder any, delta any) Check {
	return Delta(token, "balanceOf", delta, holder)
}

// Lists asserts an indexed accessor yields exactly want, in order, with the
// length accessor agreeing
func Lists(contract, at, length string, want ...any) Check {
	return &check{name: fmt.Sprintf("%s.%s lists %d", contract, at, len(want)), begin: func(ctx context.Context, f *Fixture) (Verify, error) {
		return func(ctx context.Context, o *Outcome) error {
			if err := verifyNow(ctx, f, o, Stored(contract, length, len(want))); err != nil {
				return err
			}
			for i, w := range want {
				if err := verifyNow(ctx, f, o, Stored(contract, at, w, i)); err != nil {
					return err
				}
			}
			return nil
		}, nil
	}}
}

func verifyNow(ctx context.Context, f *Fixture, o *Outcome, c Check) error {
	v, err := c.Begin(ctx, f)
	if err != nil {
		return err
	}
	return v(ctx, o)
}

// Returns asserts the outputs of a Read, positionally
func Returns(want ...any) Check {
	return &check{name: "returns", begin: func(ctx context.Context, f *Fixture) (Verify, error) {
		return func(ctx context.Context, o *Outcome) error {
			expected, err := resolveAll(ctx, f, want)
			if err != nil {
				return err
			}
			if !matches(expected, o.Returned) {
				return i18n.NewError(ctx, msgs.MsgScenarioStoredMismatch, "read", describe(o.Returned), describe(expected))
			}
			return nil
		}, nil
	}}
}

// Custom wraps an arbitrary assertion
func Custom(name string, fn func(ctx context.Context, f *Fixture, o *Outcome) error) Check {
	return &check{name: name, begin: func(ctx context.Context, f *Fixture) (Verify, error) {
		return func(ctx context.Context, o *Outcome) error {
			return fn(ctx, f, o)
		}, nil
	}}
}
