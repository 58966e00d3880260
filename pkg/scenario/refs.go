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
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

// Ref is an argument resolved against the fixture when its step runs
type Ref interface {
	Resolve(ctx context.Context, f *Fixture) (any, error)
}

// RefFunc computes an argument from the fixture
type RefFunc func(ctx context.Context, f *Fixture) (any, error)

func (fn RefFunc) Resolve(ctx context.Context, f *Fixture) (any, error) {
	return fn(ctx, f)
}

type actorRef actors.Role

func (r actorRef) Resolve(ctx context.Context, f *Fixture) (any, error) {
	a, err := f.Actors.Account(ctx, actors.Role(r))
	if err != nil {
		return nil, err
	}
	return a.Address, nil
}

func (r actorRef) String() string {
	return "$actor." + string(r)
}

type contractRef string

func (r contractRef) Resolve(ctx context.Context, f *Fixture) (any, error) {
	c, err := f.Contract(ctx, string(r))
	if err != nil {
		return nil, err
	}
	return c.Address, nil
}

func (r contractRef) String() string {
	return "$contract." + string(r)
}

type valueRef string

func (r valueRef) Resolve(ctx context.Context, f *Fixture) (any, error) {
	return f.Value(ctx, string(r))
}

func (r valueRef) String() string {
	return "$value." + string(r)
}

// Actor is the address bound to a role
func Actor(r actors.Role) Ref {
	return actorRef(r)
}

// At is the address of a named fixture contract
func At(contract string) Ref {
	return contractRef(contract)
}

// Named is a named fixture value
func Named(name string) Ref {
	return valueRef(name)
}

type anything struct{}

func (anything) String() string {
	return "*"
}

// Anything matches any value in an expected event payload or accessor result
var Anything any = anything{}

// ParseRef reads the "$actor.<role>", "$contract.<name>" and "$value.<name>"
// forms. Strings without a leading $ are literals.
func ParseRef(ctx context.Context, s string) (any, error) {
	if !strings.HasPrefix(s, "$") {
		return s, nil
	}
	if s == "$any" {
		return Anything, nil
	}
	kind, name, ok := strings.Cut(s[1:], ".")
	if !ok || name == "" {
		return nil, i18n.NewError(ctx, msgs.MsgScenarioBadReference, s)
	}
	switch kind {
	case "actor":
		return Actor(actors.Role(name)), nil
	case "contract":
		return At(name), nil
	case "value":
		return Named(name), nil
	}
	return nil, i18n.NewError(ctx, msgs.MsgScenarioBadReference, s)
}

// resolve replaces every Ref within v, descending into slices
func resolve(ctx context.Context, f *Fixture, v any) (any, error) {
	switch tv := v.(type) {
	case Ref:
		resolved, err := tv.Resolve(ctx, f)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgScenarioBadReference, describe(v))
		}
		return resolved, nil
	case []any:
		return resolveAll(ctx, f, tv)
	case chain.Values:
		return resolveAll(ctx, f, tv)
	}
	return v, nil
}

func resolveAll(ctx context.Context, f *Fixture, args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		r, err := resolve(ctx, f, a)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func describe(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", chain.Normalize(v))
}

// matches compares an expectation with a decoded value, honouring Anything
func matches(want, got any) bool {
	if want == Anything {
		return true
	}
	if wantAll, ok := want.([]any); ok {
		gotAll, ok := got.(chain.Values)
		if !ok || len(gotAll) != len(wantAll) {
			return false
		}
		for i := range wantAll {
			if !matches(wantAll[i], gotAll[i]) {
				return false
			}
		}
		return true
	}
	return chain.Equal(want, got)
}
