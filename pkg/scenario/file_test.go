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

	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileAndRun(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	s, err := LoadFile(ctx, "testdata/wallet.yaml")
	require.NoError(t, err)
	assert.Equal(t, "TraderWallet from file", s.Name)
	assert.Len(t, s.Setup, 5)
	require.Len(t, s.Groups, 3)
	assert.Equal(t, "setVaultAddress", s.Groups[0].Name)
	assert.Equal(t, 5*time.Second, s.Groups[1].Cases[1].Timeout)

	rep := r.Run(ctx, s)
	assertPassed(t, rep)
	assert.Equal(t, 7, rep.Passed())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(context.Background(), "testdata/missing.yaml")
	assert.Regexp(t, "KF010319", err)
}

func TestParseFileErrors(t *testing.T) {
	ctx := context.Background()
	for name, data := range map[string]string{
		"unknown field": "suite: x\nbogus: 1\n",
		"not yaml":      "suite: [\n",
		"bad reference": "suite: x\nsetup:\n  - invoke: {as: trader, contract: c, method: m, args: [$bogus]}\n",
		"empty action":  "suite: x\nsetup:\n  - {}\n",
		"bad check":     "suite: x\ngroups:\n  - name: g\n    cases:\n      - name: c\n        then:\n          checks:\n            - {}\n",
		"bad timeout":   "suite: x\ngroups:\n  - name: g\n    cases:\n      - name: c\n        timeout: soon\n",
		"fraction":      "suite: x\nsetup:\n  - invoke: {as: trader, contract: c, method: m, args: [1.5]}\n",
	} {
		_, err := ParseFile(ctx, name, []byte(data))
		assert.Regexp(t, "KF010312", err, name)
	}
}

func TestParseFileDefaults(t *testing.T) {
	s, err := ParseFile(context.Background(), "inline", []byte(`
groups:
  - name: g
    cases:
      - name: c
        when:
          deployProxy: {as: deployer, artifact: TraderWallet}
`))
	require.NoError(t, err)
	assert.Equal(t, "inline", s.Name)
	c := s.Groups[0].Cases[0]
	assert.Equal(t, "deployer deploys TraderWallet.initialize", c.When.String())
	assert.Equal(t, "succeeds", c.Then.String())
	assert.Equal(t, actors.Deployer, c.When.as)
}

func TestParseFileIntegers(t *testing.T) {
	s, err := ParseFile(context.Background(), "amounts", []byte(`
groups:
  - name: g
    cases:
      - name: c
        when:
          invoke: {as: deployer, contract: usdc, method: mint, args: [$actor.trader, 100000000000000000000, 1e20, 0x10, 7, [2e3]]}
`))
	require.NoError(t, err)
	args := s.Groups[0].Cases[0].When.args
	require.Len(t, args, 6)
	assert.Equal(t, "100000000000000000000", chain.Normalize(args[1]))
	assert.Equal(t, "100000000000000000000", chain.Normalize(args[2]))
	assert.Equal(t, 16, args[3])
	assert.Equal(t, 7, args[4])
	assert.Equal(t, "2000", chain.Normalize(args[5].([]any)[0]))
}

func TestParseFileFraction(t *testing.T) {
	_, err := ParseFile(context.Background(), "amounts", []byte("setup:\n  - invoke: {as: trader, contract: c, method: m, args: [2.5e-1]}\n"))
	assert.Regexp(t, "KF010324.*2.5e-1", err)
}

func TestRunFileTokenAmounts(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	s, err := ParseFile(ctx, "amounts", []byte(`
suite: amounts
setup:
  - deploy: {as: deployer, artifact: ERC20Mock, args: [DAI, DAI, 18], bind: dai}
  - invoke: {as: deployer, contract: dai, method: mint, args: [$actor.trader, 100000000000000000000]}
groups:
  - name: transfers
    cases:
      - name: WHEN trader transfers 1e20 THEN the vault holds it
        when:
          invoke: {as: trader, contract: dai, method: transfer, args: [$actor.vault, 1e20]}
        then:
          checks:
            - balanceDelta: {token: dai, holder: $actor.vault, delta: 100000000000000000000}
            - stored: {contract: dai, accessor: balanceOf, args: [$actor.vault], want: 1e20}
            - stored: {contract: dai, accessor: balanceOf, args: [$actor.trader], want: 0}
`))
	require.NoError(t, err)
	rep := r.Run(ctx, s)
	assertPassed(t, rep)
	assert.Equal(t, 1, rep.Passed())
}
