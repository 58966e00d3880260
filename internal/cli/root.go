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

// Package cli is the harness command line
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, KF_CHAIN_HTTP_URL for chain.http.url
const EnvPrefix = "KF"

var buildVersion = "dev"

type rootOptions struct {
	v *viper.Viper
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	opts.v.SetEnvPrefix(EnvPrefix)
	opts.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	opts.v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "harness",
		Short:         "Kunji Finance contract harness",
		Long:          "Runs declarative contract scenarios against an in-memory ledger, a simulated EVM or a JSON/RPC node.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "harness config file (YAML)")
	flags.String("network", "", "named network: hardhat, arbitrum or arbitrum_test")
	flags.String("chain-type", "", "chain provider: ledger, simulated or jsonrpc")
	flags.String("chain-url", "", "JSON/RPC endpoint")
	flags.String("log-level", "", "log level")
	opts.bind(flags.Lookup("config"), "config")
	opts.bind(flags.Lookup("network"), "network")
	opts.bind(flags.Lookup("chain-type"), "chain.type")
	opts.bind(flags.Lookup("chain-url"), "chain.http.url")
	opts.bind(flags.Lookup("log-level"), "log.level")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newSuitesCommand(opts))
	cmd.AddCommand(newAccountsCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func (o *rootOptions) bind(f *pflag.Flag, key string) {
	// only fails for a nil flag
	_ = o.v.BindPFlag(key, f)
}

// loadConfig reads the config file, then layers flags and KF_ environment
// variables over it, and starts logging
func (o *rootOptions) loadConfig(ctx context.Context) (*harnessconf.HarnessConfig, error) {
	conf, err := harnessconf.Load(ctx, o.v.GetString("config"))
	if err != nil {
		return nil, err
	}
	o.applyOverrides(conf)
	conf.ApplyNetwork()
	log.InitConfig(&conf.Log)
	return conf, nil
}

func (o *rootOptions) applyOverrides(conf *harnessconf.HarnessConfig) {
	v := o.v
	str := func(key string, target **string) {
		if v.IsSet(key) && v.GetString(key) != "" {
			*target = confutil.P(v.GetString(key))
		}
	}
	if v.IsSet("network") {
		conf.Network = v.GetString("network")
	}
	str("chain.type", &conf.Chain.Type)
	if url := v.GetString("chain.http.url"); url != "" {
		conf.Chain.HTTP.URL = url
	}
	if url := v.GetString("chain.fork.url"); url != "" {
		conf.Chain.Fork.URL = url
	}
	str("log.level", &conf.Log.Level)
	str("scenario.timeout", &conf.Scenario.Timeout)
	if v.IsSet("scenario.filter") {
		conf.Scenario.Filter = v.GetString("scenario.filter")
	}
	if suites := v.GetStringSlice("scenario.suites"); len(suites) > 0 {
		conf.Scenario.Suites = suites
	}
	if files := v.GetStringSlice("scenario.files"); len(files) > 0 {
		conf.Scenario.Files = files
	}
	str("report.format", &conf.Report.Format)
	if v.IsSet("report.enabled") {
		conf.Report.Enabled = confutil.P(v.GetBool("report.enabled"))
	}
	if dsn := v.GetString("report.dsn"); dsn != "" {
		conf.Report.DSN = dsn
	}
	if dir := v.GetString("artifacts.dir"); dir != "" {
		conf.Artifacts.Dir = dir
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the harness version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion)
		},
	}
}
