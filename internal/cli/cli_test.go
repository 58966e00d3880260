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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/roshan123456789/kunji-finance/pkg/report"
	"github.com/roshan123456789/kunji-finance/pkg/suites"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	cmd := NewRootCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

func TestSuites(t *testing.T) {
	out, err := execute(t, "suites")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(suites.Names(), "\n")+"\n", out)
}

func TestAccounts(t *testing.T) {
	out, err := execute(t, "accounts")
	require.NoError(t, err)
	assert.Regexp(t, `deployer\s+0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266\s+m/44'/60'/0'/0/0`, out)
	assert.Regexp(t, `vault\s+0x70997970c51812dc3a010c7d01b50e0d17dc79c8`, out)
}

func TestRunBuiltinJSON(t *testing.T) {
	out, err := execute(t, "run", "BatchedVault", "--format", "json")
	require.NoError(t, err)

	var reports []struct {
		Suite  string `json:"suite"`
		Passed int    `json:"passed"`
		Failed int    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "BatchedVault", reports[0].Suite)
	assert.Equal(t, 1, reports[0].Passed)
	assert.Zero(t, reports[0].Failed)
}

func TestRunFileReportsFailure(t *testing.T) {
	out, err := execute(t, "run", "-f", "testdata/token.yaml")
	assert.Regexp(t, "KF010006.*1 scenario cases failed", err)
	assert.Contains(t, out, "PASS Token smoke > transfer > WHEN trader sends 100 THEN the vault holds 100")
	assert.Regexp(t, "FAIL Token smoke > transfer > WHEN trader sends 100 THEN the vault holds 200: .*KF010303", out)
	assert.Contains(t, out, "1 passing, 1 failing, 0 skipped")
}

func TestRunRecordsAndWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "runs.db")
	metricsFile := filepath.Join(dir, "harness.prom")
	_, err := execute(t, "run", "BatchedVault", "--record", "--dsn", dsn, "--metrics-file", metricsFile)
	require.NoError(t, err)

	ctx := context.Background()
	store, err := report.NewStore(ctx, &harnessconf.ReportConfig{DSN: dsn})
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs(ctx, "BatchedVault", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Passed)

	b, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `kunji_harness_scenario_cases_total{status="passed",suite="BatchedVault"} 1`)
}

func TestRunEnvironmentFilter(t *testing.T) {
	t.Setenv("KF_SCENARIO_FILTER", "no such case")
	out, err := execute(t, "run", "BatchedVault")
	require.NoError(t, err)
	assert.Contains(t, out, "0 passing, 0 failing, 0 skipped")
}

func TestRunConfigFile(t *testing.T) {
	confFile := filepath.Join(t.TempDir(), "harness.yaml")
	err := os.WriteFile(confFile, []byte("scenario:\n  suites: [BatchedVault]\nreport:\n  format: json\n"), 0644)
	require.NoError(t, err)
	out, err := execute(t, "run", "-c", confFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "["))
	assert.Contains(t, out, `"suite": "BatchedVault"`)
}

func TestRunUnknownSuite(t *testing.T) {
	_, err := execute(t, "run", "UsersVault")
	assert.Regexp(t, "KF010318", err)
}

func TestRunMissingFile(t *testing.T) {
	_, err := execute(t, "run", "-f", "testdata/missing.yaml")
	assert.Regexp(t, "KF010319", err)
}

func TestRunBadChainType(t *testing.T) {
	t.Setenv("KF_CHAIN_TYPE", "bogus")
	_, err := execute(t, "run", "BatchedVault")
	assert.Regexp(t, "KF010003.*bogus", err)
}

func TestRunJSONRPCNeedsURL(t *testing.T) {
	_, err := execute(t, "run", "--chain-type", "jsonrpc")
	assert.Regexp(t, "KF010004", err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "accounts", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Regexp(t, "KF010000", err)
}
