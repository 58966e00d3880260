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
	"strings"
	"time"
)

type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of a case, or of a group whose setup or scope failed
type Result struct {
	Path     []string
	Status   Status
	Err      error
	Started  time.Time
	Duration time.Duration
}

// PathSeparator joins the elements of a result path
const PathSeparator = " > "

func (r *Result) Name() string {
	return strings.Join(r.Path, PathSeparator)
}

// String renders "Suite > Group > Case: reason", where the reason of a passed
// case is its status
func (r *Result) String() string {
	if r.Err == nil {
		return fmt.Sprintf("%s: %s", r.Name(), r.Status)
	}
	return fmt.Sprintf("%s: %s", r.Name(), r.Err)
}

type Report struct {
	Suite    string
	Started  time.Time
	Duration time.Duration
	Results  []*Result
}

func (rep *Report) count(s Status) int {
	n := 0
	for _, r := range rep.Results {
		if r.Status == s {
			n++
		}
	}
	return n
}

func (rep *Report) Failed() []*Result {
	var failed []*Result
	for _, r := range rep.Results {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

func (rep *Report) Passed() int {
	return rep.count(StatusPassed)
}

func (rep *Report) Skipped() int {
	return rep.count(StatusSkipped)
}

func (rep *Report) OK() bool {
	return len(rep.Failed()) == 0
}

// Find returns the result with the given path elements
func (rep *Report) Find(path ...string) *Result {
	name := strings.Join(path, PathSeparator)
	for _, r := range rep.Results {
		if r.Name() == name {
			return r
		}
	}
	return nil
}
