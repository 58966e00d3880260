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
	"testing"
	"time"

	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/mocks/chainmocks"
	"github.com/roshan123456789/kunji-finance/pkg/actors"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/contracts"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/roshan123456789/kunji-finance/pkg/ledger"
	"github.com/roshan123456789/kunji-finance/pkg/reverter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestFixture(t *testing.T) (context.Context, *Fixture) {
	ctx := context.Background()
	reg := contracts.Registry()
	l := ledger.New(reg, &harnessconf.ChainConfig{})
	t.Cleanup(l.Close)
	a, err := actors.Derive(ctx, &harnessconf.AccountsConfig{})
	require.NoError(t, err)
	return ctx, NewFixture(chain.NewSession(l, reg.Artifacts()), a, reverter.New(l), contracts.Taxonomy())
}

func newTestRunner(t *testing.T, conf *harnessconf.ScenarioConfig, opts ...Option) (context.Context, *Runner) {
	ctx, f := newTestFixture(t)
	r, err := NewRunner(ctx, f, conf, opts...)
	require.NoError(t, err)
	return ctx, r
}

func tokenSetup() []Step {
	return []Step{
		Deploy(actors.Deployer, contracts.ERC20Mock, "USDC", "USDC", 6).Bind("usdc").Step(),
		Invoke(actors.Deployer, "usdc", "mint", Actor(actors.Trader), 1000).Step(),
	}
}

func transfer(amount int) *Action {
	return Invoke(actors.Trader, "usdc", "transfer", Actor(actors.Vault), amount)
}

func assertPassed(t *testing.T, rep *Report) {
	for _, r := range rep.Failed() {
		t.Error(r.String())
	}
	assert.NotZero(t, rep.Passed())
}

func tokenSuite(cases ...*Case) *Suite {
	return &Suite{
		Name:   "ERC20",
		Setup:  tokenSetup(),
		Groups: []*Group{{Name: "transfers", Cases: cases}},
	}
}

func TestRunPassingSuite(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, tokenSuite(
		&Case{
			Name: "WHEN trader transfers 100 THEN balances move",
			When: transfer(100),
			Then: Succeeds(
				BalanceDelta("usdc", Actor(actors.Trader), -100),
				BalanceDelta("usdc", Actor(actors.Vault), 100),
				EmitsOnce("Transfer", Actor(actors.Trader), Actor(actors.Vault), 100),
				Stored("usdc", "balanceOf", 900, Actor(actors.Trader)),
			),
		},
		&Case{
			Name: "WHEN the previous case is reverted THEN the balance is restored",
			When: transfer(1),
			Then: Succeeds(Stored("usdc", "balanceOf", 999, Actor(actors.Trader))),
		},
		&Case{
			Name: "WHEN trader transfers more than held THEN rejects",
			When: transfer(5000),
			Then: Rejects(chain.Reason(contracts.ReasonTransferExceedsBalance),
				Unchanged("usdc", "balanceOf", Actor(actors.Trader)),
			).Kind(chain.UpstreamRejected),
		},
		&Case{
			Name: "WHEN a sequence is rejected part way THEN earlier members keep their effects",
			When: Sequence(transfer(1), transfer(5000), transfer(1)),
			Then: Rejects(chain.Reason(contracts.ReasonTransferExceedsBalance),
				EmitsOnce("Transfer", Anything, Anything, 1),
				BalanceDelta("usdc", Actor(actors.Trader), -1),
			),
		},
	))
	assertPassed(t, rep)
	assert.Equal(t, 4, rep.Passed())
	assert.True(t, rep.OK())
	assert.Equal(t, "ERC20", rep.Suite)
	assert.Equal(t, 0, r.Fixture().Reverter.Depth())

	res := rep.Find("ERC20", "transfers", "WHEN trader transfers 100 THEN balances move")
	require.NotNil(t, res)
	assert.Equal(t, "ERC20 > transfers > WHEN trader transfers 100 THEN balances move: passed", res.String())
}

func TestRunFailurePaths(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, tokenSuite(
		&Case{
			Name: "succeeds unexpectedly",
			When: transfer(1),
			Then: Rejects(chain.Reason(contracts.ReasonTransferExceedsBalance)),
		},
		&Case{
			Name: "rejected unexpectedly",
			When: transfer(5000),
			Then: Succeeds(),
		},
		&Case{
			Name: "wrong reason",
			When: transfer(5000),
			Then: Rejects(chain.Reason("nope")),
		},
		&Case{
			Name: "wrong kind",
			When: transfer(5000),
			Then: Rejects(nil).Kind(chain.UnauthorizedCaller),
		},
		&Case{
			Name: "wrong balance",
			When: transfer(1),
			Then: Succeeds(Stored("usdc", "balanceOf", 1, Actor(actors.Trader))),
		},
		&Case{
			Name: "wrong event payload",
			When: transfer(1),
			Then: Succeeds(EmitsOnce("Transfer", Anything, Anything, 2)),
		},
		&Case{
			Name: "missing event",
			When: transfer(1),
			Then: Succeeds(EmitsOnce("Approval")),
		},
		&Case{
			Name: "wrong delta",
			When: transfer(1),
			Then: Succeeds(BalanceDelta("usdc", Actor(actors.Vault), 2)),
		},
		&Case{
			Name: "no action",
		},
		&Case{
			Name: "unknown contract",
			When: Invoke(actors.Trader, "nope", "transfer"),
		},
		&Case{
			Name: "custom check",
			When: transfer(1),
			Then: Succeeds(Custom("always fails", func(ctx context.Context, f *Fixture, o *Outcome) error {
				return fmt.Errorf("pop")
			})),
		},
	))
	assert.False(t, rep.OK())
	assert.Equal(t, 0, rep.Passed())
	assert.Len(t, rep.Failed(), 11)

	for c, pattern := range map[string]string{
		"succeeds unexpectedly": "KF010300",
		"rejected unexpectedly": "KF010302.*exceeds balance",
		"wrong reason":          `KF010301.*"nope"`,
		"wrong kind":            "KF010316.*unauthorized-caller",
		"wrong balance":         "KF010322.*KF010303",
		"wrong event payload":   "KF010306",
		"missing event":         "KF010304",
		"wrong delta":           "KF010307",
		"no action":             "KF010315",
		"unknown contract":      "KF010323.*KF010308",
		"custom check":          "KF010322.*always fails.*pop",
	} {
		res := rep.Find("ERC20", "transfers", c)
		require.NotNil(t, res, c)
		assert.Equal(t, StatusFailed, res.Status, c)
		assert.Regexp(t, pattern, res.Err, c)
		assert.True(t, strings.HasPrefix(res.String(), "ERC20 > transfers > "+c+": KF0103"), res.String())
	}
}

func TestGroupSetupFailureSkipsSubtree(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, &Suite{
		Name:  "ERC20",
		Setup: tokenSetup(),
		Groups: []*Group{
			{
				Name:  "broken",
				Setup: []Step{transfer(5000).Step()},
				Cases: []*Case{{Name: "first", When: transfer(1)}},
				Groups: []*Group{
					{Name: "nested", Cases: []*Case{{Name: "second", When: transfer(1)}}},
				},
			},
			{
				Name:  "healthy",
				Cases: []*Case{{Name: "third", When: transfer(1)}},
			},
		},
	})
	require.Len(t, rep.Results, 4)

	group := rep.Find("ERC20", "broken")
	require.NotNil(t, group)
	assert.Equal(t, StatusFailed, group.Status)
	assert.Regexp(t, "KF010311.*ERC20 > broken.*KF010323", group.Err)

	for _, path := range [][]string{{"ERC20", "broken", "first"}, {"ERC20", "broken", "nested", "second"}} {
		res := rep.Find(path...)
		require.NotNil(t, res)
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Regexp(t, "KF010317", res.Err)
	}
	assert.Equal(t, StatusPassed, rep.Find("ERC20", "healthy", "third").Status)
	assert.Equal(t, 2, rep.Skipped())
	assert.Equal(t, 1, rep.Passed())
}

func TestCasePanicAndTimeoutAreContained(t *testing.T) {
	var hooked []string
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{Timeout: confutil.P("1s")},
		WithResultHook(func(ctx context.Context, res *Result) {
			hooked = append(hooked, res.Path[len(res.Path)-1])
		}),
	)
	rep := r.Run(ctx, tokenSuite(
		&Case{
			Name:  "panics",
			Given: []Step{func(ctx context.Context, f *Fixture) error { panic("boom") }},
			When:  transfer(1),
		},
		&Case{
			Name: "hangs",
			Given: []Step{func(ctx context.Context, f *Fixture) error {
				<-ctx.Done()
				return ctx.Err()
			}},
			When:    transfer(1),
			Timeout: 10 * time.Millisecond,
		},
		&Case{
			Name: "runs after",
			When: transfer(1),
			Then: Succeeds(Stored("usdc", "balanceOf", 999, Actor(actors.Trader))),
		},
	))
	assert.Regexp(t, "KF010310.*boom", rep.Find("ERC20", "transfers", "panics").Err)
	assert.Regexp(t, "KF010305.*10ms", rep.Find("ERC20", "transfers", "hangs").Err)
	assert.Equal(t, StatusPassed, rep.Find("ERC20", "transfers", "runs after").Status)
	assert.Equal(t, []string{"panics", "hangs", "runs after"}, hooked)
	assert.Equal(t, 0, r.Fixture().Reverter.Depth())
}

func TestSetupPanicFailsGroup(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, &Suite{
		Name:  "S",
		Setup: []Step{func(ctx context.Context, f *Fixture) error { panic("boom") }},
		Groups: []*Group{
			{Name: "G", Cases: []*Case{{Name: "C", When: transfer(1)}}},
		},
	})
	assert.Regexp(t, "KF010311.*KF010310.*boom", rep.Find("S").Err)
	assert.Equal(t, StatusSkipped, rep.Find("S", "G", "C").Status)
}

func TestFilter(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{Filter: "transfers > keep"})
	rep := r.Run(ctx, &Suite{
		Name:  "ERC20",
		Setup: tokenSetup(),
		Groups: []*Group{
			{Name: "transfers", Cases: []*Case{
				{Name: "keep me", When: transfer(1)},
				{Name: "drop me", When: transfer(5000)},
			}},
			{
				Name:  "unselected",
				Setup: []Step{func(ctx context.Context, f *Fixture) error { panic("must not run") }},
				Cases: []*Case{{Name: "other", When: transfer(1)}},
			},
		},
	})
	require.Len(t, rep.Results, 1)
	assert.Equal(t, "ERC20 > transfers > keep me: passed", rep.Results[0].String())
}

func TestInvalidFilter(t *testing.T) {
	ctx, f := newTestFixture(t)
	_, err := NewRunner(ctx, f, &harnessconf.ScenarioConfig{Filter: "["})
	assert.Regexp(t, "KF010320", err)
}

func TestSnapshotFailureFailsSuite(t *testing.T) {
	ctx, f := newTestFixture(t)
	s := chainmocks.NewSnapshotter(t)
	s.On("Snapshot", mock.Anything).Return("", fmt.Errorf("pop"))
	f.Reverter = reverter.New(s)
	r, err := NewRunner(ctx, f, &harnessconf.ScenarioConfig{})
	require.NoError(t, err)

	rep := r.Run(ctx, tokenSuite(&Case{Name: "C", When: transfer(1)}))
	require.Len(t, rep.Results, 2)
	assert.Regexp(t, "KF010311.*KF010204.*pop", rep.Find("ERC20").Err)
	assert.Equal(t, StatusSkipped, rep.Find("ERC20", "transfers", "C").Status)
}

func TestRevertFailureFailsCaseAndGroup(t *testing.T) {
	ctx, f := newTestFixture(t)
	s := chainmocks.NewSnapshotter(t)
	s.On("Snapshot", mock.Anything).Return("0x1", nil)
	s.On("Revert", mock.Anything, "0x1").Return(false, nil)
	f.Reverter = reverter.New(s)
	r, err := NewRunner(ctx, f, &harnessconf.ScenarioConfig{})
	require.NoError(t, err)

	rep := r.Run(ctx, &Suite{
		Name:   "S",
		Groups: []*Group{{Name: "G", Cases: []*Case{{Name: "C"}}}},
	})
	res := rep.Find("S", "G", "C")
	require.NotNil(t, res)
	assert.Regexp(t, "KF010315", res.Err)
	assert.Regexp(t, "KF010203", res.Err)
	assert.Regexp(t, "KF010203", rep.Find("S", "G").Err)
	assert.Regexp(t, "KF010203", rep.Find("S").Err)
}

func TestBindingsEndWithScope(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, tokenSuite(
		&Case{
			Name: "binds",
			When: Deploy(actors.Deployer, contracts.ERC20Mock, "DAI", "DAI", 18).Bind("dai"),
			Then: Succeeds(Stored("dai", "symbol", "DAI")),
		},
		&Case{
			Name: "does not see the binding",
			When: Invoke(actors.Trader, "dai", "transfer", Actor(actors.Vault), 1),
		},
	))
	assert.Equal(t, StatusPassed, rep.Find("ERC20", "transfers", "binds").Status)
	assert.Regexp(t, "KF010308.*dai", rep.Find("ERC20", "transfers", "does not see the binding").Err)
}

func TestActionStrings(t *testing.T) {
	assert.Equal(t, "trader calls usdc.transfer", transfer(1).String())
	assert.Equal(t, "deployer deploys ERC20Mock", Deploy(actors.Deployer, contracts.ERC20Mock).String())
	assert.Equal(t, "trader calls usdc.transfer, then trader calls usdc.transfer", Sequence(transfer(1), transfer(2)).String())
	assert.Equal(t, `rejects "nope" (not-found) with unchanged c.get()`,
		Rejects(chain.Reason("nope"), Unchanged("c", "get")).Kind(chain.NotFound).String())
	assert.Equal(t, "succeeds with emits X, emits 2 Y", Succeeds(EmitsOnce("X"), EmitsEach("Y", nil, nil)).String())
}

func TestBindValue(t *testing.T) {
	ctx, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := r.Run(ctx, tokenSuite(&Case{
		Name: "uses a bound amount",
		Given: []Step{BindValue("amount", func(ctx context.Context, f *Fixture) (any, error) {
			return 25, nil
		})},
		When: Invoke(actors.Trader, "usdc", "transfer", Actor(actors.Vault), Named("amount")),
		Then: Succeeds(EmitsEach("Transfer", []any{Actor(actors.Trader), Actor(actors.Vault), Named("amount")})),
	}))
	assertPassed(t, rep)
}

func TestRunT(t *testing.T) {
	_, r := newTestRunner(t, &harnessconf.ScenarioConfig{})
	rep := RunT(t, r, tokenSuite(
		&Case{Name: "transfer", When: transfer(1), Then: Succeeds(EmitsOnce("Transfer"))},
	))
	assert.True(t, rep.OK())
	assert.Equal(t, 1, rep.Passed())
}
