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
	"regexp"
	"strings"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
)

type Runner struct {
	f        *Fixture
	timeout  time.Duration
	filter   *regexp.Regexp
	onResult []func(ctx context.Context, r *Result)
}

type Option func(r *Runner)

// WithResultHook is called with every result as it is recorded
func WithResultHook(fn func(ctx context.Context, r *Result)) Option {
	return func(r *Runner) {
		r.onResult = append(r.onResult, fn)
	}
}

func NewRunner(ctx context.Context, f *Fixture, conf *harnessconf.ScenarioConfig, opts ...Option) (*Runner, error) {
	r := &Runner{
		f:       f,
		timeout: confutil.DurationMin(conf.Timeout, time.Millisecond, *harnessconf.ScenarioDefaults.Timeout),
	}
	if conf.Filter != "" {
		re, err := regexp.Compile(conf.Filter)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgScenarioInvalidFilter, conf.Filter)
		}
		r.filter = re
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

func (r *Runner) Fixture() *Fixture {
	return r.f
}

// tracker receives the tree as it runs. run nests a group or case, and must
// call fn before returning.
type tracker interface {
	run(name string, fn func(tr tracker))
	record(ctx context.Context, res *Result)
}

type collector struct {
	runner *Runner
	report *Report
}

func (c *collector) run(_ string, fn func(tr tracker)) {
	fn(c)
}

func (c *collector) record(ctx context.Context, res *Result) {
	c.report.Results = append(c.report.Results, res)
	c.runner.notify(ctx, res)
}

func (r *Runner) notify(ctx context.Context, res *Result) {
	for _, fn := range r.onResult {
		fn(ctx, res)
	}
}

// Run executes a suite. Failures never stop the run: every case that can run
// does, and the report carries a result per case.
func (r *Runner) Run(ctx context.Context, s *Suite) *Report {
	rep := &Report{Suite: s.Name, Started: time.Now()}
	r.runSuite(ctx, s, &collector{runner: r, report: rep})
	rep.Duration = time.Since(rep.Started)
	log.L(ctx).Infof("Suite %s: %d passed, %d failed, %d skipped in %s",
		s.Name, rep.Passed(), len(rep.Failed()), rep.Skipped(), rep.Duration)
	return rep
}

func (r *Runner) runSuite(ctx context.Context, s *Suite, tr tracker) {
	ctx = log.WithScenario(ctx, s.Name, "", "")
	r.runScope(ctx, []string{s.Name}, s.Setup, nil, s.Groups, tr)
}

func extend(path []string, name string) []string {
	p := make([]string, len(path), len(path)+1)
	copy(p, path)
	return append(p, name)
}

func (r *Runner) selected(path []string) bool {
	return r.filter == nil || r.filter.MatchString(strings.Join(path, PathSeparator))
}

func (r *Runner) anySelected(path []string, cases []*Case, groups []*Group) bool {
	for _, c := range cases {
		if r.selected(extend(path, c.Name)) {
			return true
		}
	}
	for _, g := range groups {
		if r.anySelected(extend(path, g.Name), g.Cases, g.Groups) {
			return true
		}
	}
	return false
}

// runScope runs setup then the cases and groups below path within one snapshot
func (r *Runner) runScope(ctx context.Context, path []string, setup []Step, cases []*Case, groups []*Group, tr tracker) {
	if !r.anySelected(path, cases, groups) {
		return
	}
	started := time.Now()
	entered := false
	var setupErr error
	err := r.f.Reverter.Scope(ctx, func(ctx context.Context) error {
		entered = true
		r.f.push()
		defer r.f.pop()
		for _, step := range setup {
			if setupErr = r.safeStep(ctx, step); setupErr != nil {
				return nil
			}
		}
		for _, c := range cases {
			cpath := extend(path, c.Name)
			if !r.selected(cpath) {
				continue
			}
			tr.run(c.Name, func(tr tracker) {
				tr.record(ctx, r.runCase(ctx, cpath, c))
			})
		}
		for _, g := range groups {
			gpath := extend(path, g.Name)
			tr.run(g.Name, func(tr tracker) {
				r.runScope(ctx, gpath, g.Setup, g.Cases, g.Groups, tr)
			})
		}
		return nil
	})
	if setupErr == nil && err == nil {
		return
	}
	name := strings.Join(path, PathSeparator)
	switch {
	case setupErr != nil:
		log.L(ctx).Errorf("Setup of %s failed: %s", name, setupErr)
		err = errors.Join(i18n.WrapError(ctx, setupErr, msgs.MsgScenarioSetupFailed, name), err)
	case !entered:
		err = i18n.WrapError(ctx, err, msgs.MsgScenarioSetupFailed, name)
	}
	tr.record(ctx, &Result{Path: path, Status: StatusFailed, Err: err, Started: started, Duration: time.Since(started)})
	if setupErr != nil || !entered {
		r.skip(ctx, path, cases, groups, tr)
	}
}

// skip records every selected case below path as not run
func (r *Runner) skip(ctx context.Context, path []string, cases []*Case, groups []*Group, tr tracker) {
	for _, c := range cases {
		cpath := extend(path, c.Name)
		if !r.selected(cpath) {
			continue
		}
		tr.run(c.Name, func(tr tracker) {
			tr.record(ctx, &Result{
				Path:    cpath,
				Status:  StatusSkipped,
				Err:     i18n.NewError(ctx, msgs.MsgScenarioSkippedAfterFailure),
				Started: time.Now(),
			})
		})
	}
	for _, g := range groups {
		gpath := extend(path, g.Name)
		if !r.anySelected(gpath, g.Cases, g.Groups) {
			continue
		}
		tr.run(g.Name, func(tr tracker) {
			r.skip(ctx, gpath, g.Cases, g.Groups, tr)
		})
	}
}

func (r *Runner) safeStep(ctx context.Context, step Step) (err error) {
	defer func() {
		if panicked := recover(); panicked != nil {
			err = i18n.NewError(ctx, msgs.MsgScenarioPanic, panicked)
		}
	}()
	return step(ctx, r.f)
}

func (r *Runner) runCase(ctx context.Context, path []string, c *Case) (res *Result) {
	res = &Result{Path: path, Started: time.Now()}
	ctx = log.WithScenario(ctx, path[0], strings.Join(path[1:len(path)-1], PathSeparator), c.Name)
	timeout := r.timeout
	if c.Timeout > 0 {
		timeout = c.Timeout
	}
	defer func() {
		if panicked := recover(); panicked != nil {
			log.L(ctx).Errorf("Panic: %v", panicked)
			res.Err = i18n.NewError(ctx, msgs.MsgScenarioPanic, panicked)
		}
		res.Duration = time.Since(res.Started)
		if res.Err != nil {
			res.Status = StatusFailed
			log.L(ctx).Errorf("FAILED: %s", res.Err)
		} else {
			res.Status = StatusPassed
			log.L(ctx).Debugf("Passed in %s", res.Duration)
		}
	}()
	res.Err = r.f.Reverter.Scope(ctx, func(ctx context.Context) error {
		r.f.push()
		defer r.f.pop()
		caseCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		err := r.execute(caseCtx, c)
		if errors.Is(caseCtx.Err(), context.DeadlineExceeded) {
			return i18n.NewError(ctx, msgs.MsgScenarioTimeout, timeout)
		}
		return err
	})
	return res
}

func (r *Runner) execute(ctx context.Context, c *Case) error {
	if c.When == nil {
		return i18n.NewError(ctx, msgs.MsgScenarioNoAction, c.Name)
	}
	for _, step := range c.Given {
		if err := step(ctx, r.f); err != nil {
			return i18n.WrapError(ctx, err, msgs.MsgScenarioSetupFailed, c.Name)
		}
	}
	then := c.Then
	if then == nil {
		then = Succeeds()
	}
	return then.evaluate(ctx, r.f, c.When)
}
