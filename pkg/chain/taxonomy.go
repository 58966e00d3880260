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

package chain

import (
	"strings"
)

type RejectionKind string

const (
	UnauthorizedCaller  RejectionKind = "unauthorized-caller"
	InvalidArgument     RejectionKind = "invalid-argument"
	UnresolvedReference RejectionKind = "unresolved-reference"
	DisallowedEntity    RejectionKind = "disallowed-entity"
	UpstreamRejected    RejectionKind = "upstream-rejected"
	NothingToScale      RejectionKind = "nothing-to-scale"
	NotFound            RejectionKind = "not-found"
	Other               RejectionKind = "other"
)

// Taxonomy maps custom error names and revert reasons to the kinds of rejection
// they may signify. A name can stand for several kinds, as InvalidAdapter does
// for both an unresolved and a disallowed adapter; the first listed is primary.
type Taxonomy struct {
	errors   map[string][]RejectionKind
	reasons  map[string][]RejectionKind
	prefixes []reasonPrefix
}

type reasonPrefix struct {
	prefix string
	kinds  []RejectionKind
}

func NewTaxonomy() *Taxonomy {
	return &Taxonomy{
		errors:  map[string][]RejectionKind{},
		reasons: map[string][]RejectionKind{},
	}
}

func (t *Taxonomy) Error(name string, kinds ...RejectionKind) *Taxonomy {
	t.errors[name] = append(t.errors[name], kinds...)
	return t
}

func (t *Taxonomy) Reason(reason string, kinds ...RejectionKind) *Taxonomy {
	t.reasons[reason] = append(t.reasons[reason], kinds...)
	return t
}

// ReasonPrefix classifies every reason starting with prefix, such as "INVALID address "
func (t *Taxonomy) ReasonPrefix(prefix string, kinds ...RejectionKind) *Taxonomy {
	t.prefixes = append(t.prefixes, reasonPrefix{prefix: prefix, kinds: kinds})
	return t
}

func (t *Taxonomy) kinds(r *Rejection) []RejectionKind {
	if r == nil {
		return nil
	}
	if !r.IsReason() {
		return t.errors[r.Name]
	}
	if k, ok := t.reasons[r.Reason]; ok {
		return k
	}
	for _, p := range t.prefixes {
		if strings.HasPrefix(r.Reason, p.prefix) {
			return p.kinds
		}
	}
	return nil
}

// Classify returns the primary kind of a rejection
func (t *Taxonomy) Classify(r *Rejection) RejectionKind {
	if k := t.kinds(r); len(k) > 0 {
		return k[0]
	}
	return Other
}

// Allows reports whether the rejection may signify the kind
func (t *Taxonomy) Allows(r *Rejection, kind RejectionKind) bool {
	k := t.kinds(r)
	if len(k) == 0 {
		return kind == Other
	}
	for _, candidate := range k {
		if candidate == kind {
			return true
		}
	}
	return false
}
