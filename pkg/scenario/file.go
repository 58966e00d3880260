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
	"bytes"
	"context"
	"math/big"
	"os"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"gopkg.in/yaml.v3"
)

// The YAML scenario file format. String arguments may be references in the
// forms ParseRef accepts.
type fileSuite struct {
	Suite   string        `yaml:"suite"`
	Setup   []*fileAction `yaml:"setup"`
	Setters []*fileSetter `yaml:"setters"`
	Groups  []*fileGroup  `yaml:"groups"`
}

type fileGroup struct {
	Name    string        `yaml:"name"`
	Setup   []*fileAction `yaml:"setup"`
	Setters []*fileSetter `yaml:"setters"`
	Cases   []*fileCase   `yaml:"cases"`
	Groups  []*fileGroup  `yaml:"groups"`
}

type fileCase struct {
	Name    string        `yaml:"name"`
	Given   []*fileAction `yaml:"given"`
	When    *fileAction   `yaml:"when"`
	Then    *fileThen     `yaml:"then"`
	Timeout string        `yaml:"timeout"`
}

type fileAction struct {
	Invoke      *fileInvoke   `yaml:"invoke"`
	Deploy      *fileDeploy   `yaml:"deploy"`
	DeployProxy *fileDeploy   `yaml:"deployProxy"`
	Sequence    []*fileAction `yaml:"sequence"`
}

type fileInvoke struct {
	As       string      `yaml:"as"`
	Contract string      `yaml:"contract"`
	Method   string      `yaml:"method"`
	Args     []fileValue `yaml:"args"`
}

type fileDeploy struct {
	As          string      `yaml:"as"`
	Artifact    string      `yaml:"artifact"`
	Initializer string      `yaml:"initializer"`
	Args        []fileValue `yaml:"args"`
	Bind        string      `yaml:"bind"`
}

type fileSignal struct {
	Reason string      `yaml:"reason"`
	Error  string      `yaml:"error"`
	Args   []fileValue `yaml:"args"`
	Kind   string      `yaml:"kind"`
}

type fileThen struct {
	Rejects *fileSignal  `yaml:"rejects"`
	Checks  []*fileCheck `yaml:"checks"`
}

type fileCheck struct {
	Stored       *fileStored  `yaml:"stored"`
	Unchanged    *fileStored  `yaml:"unchanged"`
	EmitsOnce    *fileEvent   `yaml:"emitsOnce"`
	BalanceDelta *fileBalance `yaml:"balanceDelta"`
}

type fileStored struct {
	Contract string      `yaml:"contract"`
	Accessor string      `yaml:"accessor"`
	Args     []fileValue `yaml:"args"`
	Want     fileValue   `yaml:"want"`
}

type fileEvent struct {
	Event string      `yaml:"event"`
	Args  []fileValue `yaml:"args"`
}

type fileBalance struct {
	Token  string    `yaml:"token"`
	Holder string    `yaml:"holder"`
	Delta  fileValue `yaml:"delta"`
}

type fileSetter struct {
	Contract     string      `yaml:"contract"`
	Setter       string      `yaml:"setter"`
	Accessor     string      `yaml:"accessor"`
	Event        string      `yaml:"event"`
	As           string      `yaml:"as"`
	Unauthorized string      `yaml:"unauthorized"`
	Value        fileValue   `yaml:"value"`
	Rejects      *fileSignal `yaml:"rejects"`
	ZeroRejects  *fileSignal `yaml:"zeroRejects"`
}

// fileValue is a YAML argument or expectation. Integers keep full precision,
// so token amounts such as 100e18 can be written without quotes.
type fileValue struct {
	v any
}

func (fv *fileValue) UnmarshalYAML(n *yaml.Node) (err error) {
	fv.v, err = nodeValue(n)
	return err
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int":
			var i int
			if err := n.Decode(&i); err == nil {
				return i, nil
			}
			if bi, ok := new(big.Int).SetString(n.Value, 0); ok {
				return bi, nil
			}
			return nil, i18n.NewError(context.Background(), msgs.MsgScenarioFileNumber, n.Value, n.Line)
		case "!!float":
			// exponent forms like 1e20 are accepted when they are whole numbers
			if r, ok := new(big.Rat).SetString(n.Value); ok && r.IsInt() {
				return new(big.Int).Set(r.Num()), nil
			}
			return nil, i18n.NewError(context.Background(), msgs.MsgScenarioFileNumber, n.Value, n.Line)
		}
	}
	var v any
	err := n.Decode(&v)
	return v, err
}

// LoadFile reads a YAML scenario file into a suite
func LoadFile(ctx context.Context, path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgScenarioFileRead, path)
	}
	return ParseFile(ctx, path, data)
}

// ParseFile parses YAML scenario data, naming it source in errors
func ParseFile(ctx context.Context, source string, data []byte) (*Suite, error) {
	var fs fileSuite
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fs); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgScenarioFileInvalid, source)
	}
	b := &fileBuilder{ctx: ctx, source: source}
	s := &Suite{Name: fs.Suite}
	if s.Name == "" {
		s.Name = source
	}
	s.Setup = b.steps(fs.Setup)
	s.Groups = append(b.setters(fs.Setters), b.groups(fs.Groups)...)
	if b.err != nil {
		return nil, b.err
	}
	return s, nil
}

// fileBuilder keeps the first error, so the translation reads straight through
type fileBuilder struct {
	ctx    context.Context
	source string
	err    error
}

func (b *fileBuilder) fail(err error) {
	if b.err == nil {
		b.err = i18n.WrapError(b.ctx, err, msgs.MsgScenarioFileInvalid, b.source)
	}
}

func (b *fileBuilder) invalid() {
	b.fail(i18n.NewError(b.ctx, msgs.MsgScenarioFileInvalid, b.source))
}

func (b *fileBuilder) value(v any) any {
	switch tv := v.(type) {
	case string:
		r, err := ParseRef(b.ctx, tv)
		if err != nil {
			b.fail(err)
			return nil
		}
		return r
	case []any:
		return b.values(tv)
	}
	return v
}

func (b *fileBuilder) values(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = b.value(v)
	}
	return out
}

func (b *fileBuilder) args(fvs []fileValue) []any {
	out := make([]any, len(fvs))
	for i, fv := range fvs {
		out[i] = b.value(fv.v)
	}
	return out
}

func (b *fileBuilder) action(fa *fileAction) *Action {
	switch {
	case fa == nil:
		return nil
	case fa.Invoke != nil:
		i := fa.Invoke
		return Invoke(actors.Role(i.As), i.Contract, i.Method, b.args(i.Args)...)
	case fa.Deploy != nil:
		d := fa.Deploy
		return Deploy(actors.Role(d.As), d.Artifact, b.args(d.Args)...).Bind(d.Bind)
	case fa.DeployProxy != nil:
		d := fa.DeployProxy
		initializer := d.Initializer
		if initializer == "" {
			initializer = "initialize"
		}
		return DeployProxy(actors.Role(d.As), d.Artifact, initializer, b.args(d.Args)...).Bind(d.Bind)
	case len(fa.Sequence) > 0:
		actions := make([]*Action, len(fa.Sequence))
		for i, sub := range fa.Sequence {
			if actions[i] = b.action(sub); actions[i] == nil {
				return nil
			}
		}
		return Sequence(actions...)
	}
	b.invalid()
	return nil
}

func (b *fileBuilder) steps(fas []*fileAction) []Step {
	steps := make([]Step, 0, len(fas))
	for _, fa := range fas {
		if a := b.action(fa); a != nil {
			steps = append(steps, a.Step())
		}
	}
	return steps
}

func (b *fileBuilder) signal(fs *fileSignal) *chain.Signal {
	switch {
	case fs == nil:
		return nil
	case fs.Error != "":
		return chain.CustomError(fs.Error, b.args(fs.Args)...)
	case fs.Reason != "":
		return chain.Reason(fs.Reason)
	}
	return nil
}

func (b *fileBuilder) check(fc *fileCheck) Check {
	switch {
	case fc.Stored != nil:
		s := fc.Stored
		return Stored(s.Contract, s.Accessor, b.value(s.Want.v), b.args(s.Args)...)
	case fc.Unchanged != nil:
		s := fc.Unchanged
		return Unchanged(s.Contract, s.Accessor, b.args(s.Args)...)
	case fc.EmitsOnce != nil:
		return EmitsOnce(fc.EmitsOnce.Event, b.args(fc.EmitsOnce.Args)...)
	case fc.BalanceDelta != nil:
		bd := fc.BalanceDelta
		return BalanceDelta(bd.Token, b.value(bd.Holder), bd.Delta.v)
	}
	b.invalid()
	return nil
}

func (b *fileBuilder) expectation(ft *fileThen) *Expectation {
	if ft == nil {
		return Succeeds()
	}
	checks := make([]Check, 0, len(ft.Checks))
	for _, fc := range ft.Checks {
		if c := b.check(fc); c != nil {
			checks = append(checks, c)
		}
	}
	if ft.Rejects == nil {
		return Succeeds(checks...)
	}
	e := Rejects(b.signal(ft.Rejects), checks...)
	if ft.Rejects.Kind != "" {
		e.Kind(chain.RejectionKind(ft.Rejects.Kind))
	}
	return e
}

func (b *fileBuilder) cases(fcs []*fileCase) []*Case {
	cases := make([]*Case, len(fcs))
	for i, fc := range fcs {
		c := &Case{
			Name:  fc.Name,
			Given: b.steps(fc.Given),
			When:  b.action(fc.When),
			Then:  b.expectation(fc.Then),
		}
		if fc.Timeout != "" {
			d, err := time.ParseDuration(fc.Timeout)
			if err != nil {
				b.fail(err)
			}
			c.Timeout = d
		}
		cases[i] = c
	}
	return cases
}

func (b *fileBuilder) setters(fss []*fileSetter) []*Group {
	specs := make([]SetterSpec, len(fss))
	for i, fs := range fss {
		specs[i] = SetterSpec{
			Contract:           fs.Contract,
			Setter:             fs.Setter,
			Accessor:           fs.Accessor,
			Event:              fs.Event,
			As:                 actors.Role(fs.As),
			Unauthorized:       actors.Role(fs.Unauthorized),
			UnauthorizedSignal: b.signal(fs.Rejects),
			ZeroSignal:         b.signal(fs.ZeroRejects),
		}
		if fs.Value.v != nil {
			specs[i].Value = b.value(fs.Value.v)
		}
	}
	return SetterMatrix(specs...)
}

func (b *fileBuilder) groups(fgs []*fileGroup) []*Group {
	groups := make([]*Group, len(fgs))
	for i, fg := range fgs {
		groups[i] = &Group{
			Name:   fg.Name,
			Setup:  b.steps(fg.Setup),
			Cases:  b.cases(fg.Cases),
			Groups: append(b.setters(fg.Setters), b.groups(fg.Groups)...),
		}
	}
	return groups
}
