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
	"strings"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

// Case is one row of a table: preconditions, the action, the expected outcome
type Case struct {
	Name  string
	Given []Step
	When  *Action
	Then  *Expectation
	// Timeout overrides the runner default when set
	Timeout time.Duration
}

// Group shares its setup with every case and nested group below it. Setup runs
// inside the group's snapshot scope, so its effects end with the group.
type Group struct {
	Name   string
	Setup  []Step
	Cases  []*Case
	Groups []*Group
}

type Suite struct {
	Name   string
	Setup  []Step
	Groups []*Group
}

// Expectation is either a rejection or a success, with checks in both cases
type Expectation struct {
	reject bool
	signal *chain.Signal
	kind   chain.RejectionKind
	checks []Check
}

// Rejects expects the action to revert with the signal. A nil signal accepts any
// rejection, which is then only constrained by Kind.
func Rejects(signal *chain.Signal, checks ...Check) *Expectation {
	return &Expectation{reject: true, signal: signal, checks: checks}
}

// Kind additionally requires the taxonomy to allow the rejection as kind
func (e *Expectation) Kind(kind chain.RejectionKind) *Expectation {
	e.kind = kind
	return e
}

func Succeeds(checks ...Check) *Expectation {
	return &Expectation{checks: checks}
}

func (e *Expectation) String() string {
	checks := make([]string, len(e.checks))
	for i, c := range e.checks {
		checks[i] = c.String()
	}
	var b strings.Builder
	if e.reject {
		b.WriteString("rejects ")
		b.WriteString(e.signalString())
		if e.kind != "" {
			b.WriteString(" (" + string(e.kind) + ")")
		}
	} else {
		b.WriteString("succeeds")
	}
	if len(checks) > 0 {
		b.WriteString(" with ")
		b.WriteString(strings.Join(checks, ", "))
	}
	return b.String()
}

func (e *Expectation) signalString() string {
	if e.signal == nil {
		return "any rejection"
	}
	return e.signal.String()
}

func (e *Expectation) verifyOutcome(ctx context.Context, f *Fixture, o *Outcome) error {
	if !e.reject {
		if o.Rejection != nil {
			return i18n.NewError(ctx, msgs.MsgScenarioUnexpectedRejection, o.Rejection.Summary)
		}
		return nil
	}
	rej := o.Rejection
	if rej == nil {
		return i18n.NewError(ctx, msgs.MsgScenarioExpectedRejection, e.signalString())
	}
	if e.signal != nil && !e.signal.Matches(rej) {
		return i18n.NewError(ctx, msgs.MsgScenarioWrongRejection, e.signalString(), rej.Summary)
	}
	if e.kind != "" && !f.Taxonomy.Allows(rej, e.kind) {
		return i18n.NewError(ctx, msgs.MsgScenarioWrongKind, rej.Summary, f.Taxonomy.Classify(rej), e.kind)
	}
	return nil
}

// evaluate performs the action between the two halves of every check
func (e *Expectation) evaluate(ctx context.Context, f *Fixture, a *Action) error {
	verifies := make([]Verify, len(e.checks))
	for i, c := range e.checks {
		v, err := c.Begin(ctx, f)
		if err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgScenarioCheckFailed, c)
		}
		verifies[i] = v
	}
	o, err := a.Perform(ctx, f)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgScenarioActionFailed, a)
	}
	if err := e.verifyOutcome(ctx, f, o); err != nil {
		return err
	}
	for i, v := range verifies {
		if err := v(ctx, o); err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgScenarioCheckFailed, e.checks[i])
		}
	}
	return nil
}
