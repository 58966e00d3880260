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
	"testing"
	"time"
)

type testTracker struct {
	t *testing.T
	c *collector
}

func (tt *testTracker) run(name string, fn func(tr tracker)) {
	tt.t.Run(name, func(t *testing.T) {
		fn(&testTracker{t: t, c: tt.c})
	})
}

func (tt *testTracker) record(ctx context.Context, res *Result) {
	tt.c.record(ctx, res)
	switch res.Status {
	case StatusFailed:
		tt.t.Error(res.String())
	case StatusSkipped:
		tt.t.Skip(res.String())
	}
}

// RunT runs a suite as nested subtests, one per group and case, so go test
// output and -run selection follow the scenario tree
func RunT(t *testing.T, r *Runner, s *Suite) *Report {
	rep := &Report{Suite: s.Name, Started: time.Now()}
	c := &collector{runner: r, report: rep}
	t.Run(s.Name, func(t *testing.T) {
		r.runSuite(context.Background(), s, &testTracker{t: t, c: c})
	})
	rep.Duration = time.Since(rep.Started)
	return rep
}
