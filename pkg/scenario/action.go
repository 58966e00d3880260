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
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

type actionKind int

const (
	invokeAction actionKind = iota
	deployAction
	deployProxyAction
	sequenceAction
	readAction
)

// Action is the single operation under test of a case, or a setup step
type Action struct {
	kind    actionKind
	as      actors.Role
	target  string
	method  string
	args    []any
	bind    string
	actions []*Action
}

// Outcome is what an action produced. A rejected action has a Rejection, and
// the Results of any sequence members that ran before it.
type Outcome struct {
	Results   []*chain.Result
	Contract  *chain.Contract
	Rejection *chain.Rejection
	// Returned holds the outputs of a read
	Returned chain.Values
}

// Invoke sends a transaction to a fixture contract from the address bound to a role
func Invoke(as actors.Role, contract, method string, args ...any) *Action {
	return &Action{kind: invokeAction, as: as, target: contract, method: method, args: args}
}

// Read calls a view of a fixture contract without sending a transaction
func Read(as actors.Role, contract, method string, args ...any) *Action {
	return &Action{kind: readAction, as: as, target: contract, method: method, args: args}
}

// Deploy deploys an artifact directly
func Deploy(as actors.Role, artifact string, args ...any) *Action {
	return &Action{kind: deployAction, as: as, target: artifact, args: args}
}

// DeployProxy deploys an artifact behind an ERC1967 proxy, running the initializer
func DeployProxy(as actors.Role, artifact, initializer string, args ...any) *Action {
	return &Action{kind: deployProxyAction, as: as, target: artifact, method: initializer, args: args}
}

// Sequence performs actions in order, stopping at the first rejection
func Sequence(actions ...*Action) *Action {
	return &Action{kind: sequenceAction, actions: actions}
}

// Bind registers a deployed contract in the fixture under name
func (a *Action) Bind(name string) *Action {
	a.bind = name
	return a
}

func (a *Action) String() string {
	switch a.kind {
	case deployAction:
		return fmt.Sprintf("%s deploys %s", a.as, a.target)
	case deployProxyAction:
		return fmt.Sprintf("%s deploys %s.%s", a.as, a.target, a.method)
	case readAction:
		return fmt.Sprintf("%s reads %s.%s", a.as, a.target, a.method)
	case sequenceAction:
		parts := make([]string, len(a.actions))
		for i, sub := range a.actions {
			parts[i] = sub.String()
		}
		return strings.Join(parts, ", then ")
	}
	return fmt.Sprintf("%s calls %s.%s", a.as, a.target, a.method)
}

// Perform runs the action. A contract rejection is returned in the outcome, the
// error is reserved for failures of the harness itself.
func (a *Action) Perform(ctx context.Context, f *Fixture) (*Outcome, error) {
	if a.kind == sequenceAction {
		o := &Outcome{}
		for _, sub := range a.actions {
			so, err := sub.Perform(ctx, f)
			if err != nil {
				return nil, err
			}
			o.Results = append(o.Results, so.Results...)
			if so.Contract != nil {
				o.Contract = so.Contract
			}
			if so.Rejection != nil {
				o.Rejection = so.Rejection
				return o, nil
			}
		}
		return o, nil
	}

	from, err := f.Actors.Account(ctx, a.as)
	if err != nil {
		return nil, err
	}
	args, err := resolveAll(ctx, f, a.args)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Debugf("Performing: %s", a)

	o := &Outcome{}
	var res *chain.Result
	switch a.kind {
	case deployAction:
		o.Contract, res, err = f.Session.Deploy(ctx, from.Address, a.target, args...)
	case deployProxyAction:
		o.Contract, res, err = f.Session.DeployProxy(ctx, from.Address, a.target, a.method, args...)
	default:
		var c *chain.Contract
		if c, err = f.Contract(ctx, a.target); err != nil {
			return nil, err
		}
		req := c.Method(a.method).From(from.Address).Args(args...)
		if a.kind == readAction {
			o.Returned, err = req.Call(ctx)
		} else {
			res, err = req.Send(ctx)
		}
	}
	if err != nil {
		var rej *chain.Rejection
		if errors.As(err, &rej) {
			log.L(ctx).Debugf("Rejected: %s", rej.Summary)
			o.Rejection = rej
			return o, nil
		}
		return nil, err
	}
	if res != nil {
		o.Results = append(o.Results, res)
	}
	if o.Contract != nil && a.bind != "" {
		f.SetContract(a.bind, o.Contract)
	}
	return o, nil
}

// Step runs the action as a precondition, which must not be rejected
func (a *Action) Step() Step {
	return func(ctx context.Context, f *Fixture) error {
		o, err := a.Perform(ctx, f)
		if err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgScenarioActionFailed, a)
		}
		if o.Rejection != nil {
			return i18n.WrapError(ctx, o.Rejection, msgs.MsgScenarioActionFailed, a)
		}
		return nil
	}
}

// Events returns every event of the given name across the results, in order
func (o *Outcome) Events(name string) []*chain.Event {
	var events []*chain.Event
	for _, r := range o.Results {
		events = append(events, r.Named(name)...)
	}
	return events
}

// Step is a precondition or setup action
type Step func(ctx context.Context, f *Fixture) error

// BindValue stores a value computed by fn under name, for Named references
func BindValue(name string, fn func(ctx context.Context, f *Fixture) (any, error)) Step {
	return func(ctx context.Context, f *Fixture) error {
		v, err := fn(ctx, f)
		if err != nil {
			return err
		}
		f.SetValue(name, v)
		return nil
	}
}
