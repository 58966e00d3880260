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

package harnessconf

import (
	"context"
	"os"

	"github.com/roshan123456789/kunji-finance/internal/confutil"
)

// HardhatMnemonic is the well known mnemonic behind the default hardhat and anvil accounts
const HardhatMnemonic = "test test test test test test test test test test test junk"

type HarnessConfig struct {
	Log       LogConfig       `json:"log"`
	Network   string          `json:"network"`
	Chain     ChainConfig     `json:"chain"`
	Accounts  AccountsConfig  `json:"accounts"`
	Scenario  ScenarioConfig  `json:"scenario"`
	Report    ReportConfig    `json:"report"`
	Artifacts ArtifactsConfig `json:"artifacts"`
}

type AccountsConfig struct {
	Mnemonic       *string `json:"mnemonic"`
	DerivationPath *string `json:"derivationPath"`
	Count          *int    `json:"count"`
	// PrivateKeys bind explicit keys to roles, overriding derivation (hex, 0x prefix optional)
	PrivateKeys map[string]string `json:"privateKeys"`
}

type ScenarioConfig struct {
	Timeout *string  `json:"timeout"`
	Suites  []string `json:"suites"`
	Files   []string `json:"files"`
	Filter  string   `json:"filter"`
}

type ReportConfig struct {
	Enabled *bool  `json:"enabled"`
	Type    string `json:"type"`
	DSN     string `json:"dsn"`
	// DebugQueries logs every SQL statement
	DebugQueries     bool    `json:"debugQueries"`
	MetricsNamespace *string `json:"metricsNamespace"`
	Format           *string `json:"format"`
}

type ArtifactsConfig struct {
	// Dir is the hardhat artifacts directory, containing <Source>.sol/<Contract>.json files
	Dir   string `json:"dir"`
	Proxy string `json:"proxy"`
}

var AccountsDefaults = &AccountsConfig{
	Mnemonic:       confutil.P(HardhatMnemonic),
	DerivationPath: confutil.P("m/44'/60'/0'/0"),
	Count:          confutil.P(10),
}

var ScenarioDefaults = &ScenarioConfig{
	// TEST_TIMEOUT of the hardhat suites, in milliseconds
	Timeout: confutil.P("100s"),
}

var ReportDefaults = &ReportConfig{
	Enabled:          confutil.P(false),
	Type:             "sqlite",
	DSN:              "file::memory:?cache=shared",
	MetricsNamespace: confutil.P("kunji_harness"),
	Format:           confutil.P("text"),
}

var ArtifactsDefaults = &ArtifactsConfig{
	Proxy: "ERC1967Proxy",
}

// Load reads a YAML config file, then layers the named network (if any) beneath
// the explicit chain settings
func Load(ctx context.Context, filePath string) (*HarnessConfig, error) {
	conf := &HarnessConfig{}
	if filePath != "" {
		if err := confutil.ReadAndParseYAMLFile(ctx, filePath, conf); err != nil {
			return nil, err
		}
	}
	conf.ApplyNetwork()
	if conf.Chain.Fork.URL == "" {
		conf.Chain.Fork.URL = os.Getenv("ARBITRUM_NODE")
	}
	return conf, nil
}

// ApplyNetwork fills unset chain fields from the named network
func (hc *HarnessConfig) ApplyNetwork() {
	n := Networks[hc.Network]
	if n == nil {
		return
	}
	c := &hc.Chain
	if c.Type == nil {
		c.Type = n.Type
	}
	if c.ChainID == nil {
		c.ChainID = n.ChainID
	}
	if c.HTTP.URL == "" {
		c.HTTP.URL = n.HTTP.URL
	}
	if c.Fork.Enabled == nil {
		c.Fork.Enabled = n.Fork.Enabled
	}
	if c.Fork.BlockNumber == nil {
		c.Fork.BlockNumber = n.Fork.BlockNumber
	}
	if c.UnlockedAccounts == nil {
		c.UnlockedAccounts = n.UnlockedAccounts
	}
	if hc.Network != "hardhat" && c.HTTP.URL == "" {
		switch hc.Network {
		case "arbitrum":
			c.HTTP.URL = os.Getenv("ARBITRUM_NODE")
		case "arbitrum_test":
			c.HTTP.URL = os.Getenv("TEST_ARBITRUM_NODE")
		}
	}
	if key := os.Getenv("PRIVATE_KEY"); key != "" && !confutil.Bool(c.UnlockedAccounts, true) {
		if hc.Accounts.PrivateKeys == nil {
			hc.Accounts.PrivateKeys = map[string]string{}
		}
		if _, set := hc.Accounts.PrivateKeys["owner"]; !set {
			hc.Accounts.PrivateKeys["owner"] = key
		}
	}
}
