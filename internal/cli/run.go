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
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/roshan123456789/kunji-finance/pkg/report"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
	"github.com/roshan123456789/kunji-finance/pkg/suites"
	"github.com/spf13/cobra"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var metricsFile string
	cmd := &cobra.Command{
		Use:   "run [suite...]",
		Short: "Run built-in suites and scenario files",
		Long:  "Runs the named built-in suites (all of them when neither suites nor files are given) and YAML scenario files, then prints a report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conf, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				conf.Scenario.Suites = args
			}
			return run(ctx, cmd, conf, metricsFile)
		},
	}
	flags := cmd.Flags()
	flags.StringSliceP("file", "f", nil, "YAML scenario file, may be repeated")
	flags.String("filter", "", "regular expression selecting cases by path")
	flags.String("timeout", "", "per case timeout")
	flags.String("format", "", "report format: text or json")
	flags.Bool("record", false, "persist the run to the report database")
	flags.String("dsn", "", "report database DSN")
	flags.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	opts.bind(flags.Lookup("file"), "scenario.files")
	opts.bind(flags.Lookup("filter"), "scenario.filter")
	opts.bind(flags.Lookup("timeout"), "scenario.timeout")
	opts.bind(flags.Lookup("format"), "report.format")
	opts.bind(flags.Lookup("record"), "report.enabled")
	opts.bind(flags.Lookup("dsn"), "report.dsn")
	return cmd
}

func loadSuites(ctx context.Context, conf *harnessconf.ScenarioConfig) ([]*scenario.Suite, error) {
	var selected []*scenario.Suite
	if len(conf.Suites) > 0 || len(conf.Files) == 0 {
		builtins, err := suites.Select(ctx, conf.Suites...)
		if err != nil {
			return nil, err
		}
		selected = append(selected, builtins...)
	}
	for _, f := range conf.Files {
		s, err := scenario.LoadFile(ctx, f)
		if err != nil {
			return nil, err
		}
		selected = append(selected, s)
	}
	if len(selected) == 0 {
		return nil, i18n.NewError(ctx, msgs.MsgConfigNoScenarios)
	}
	return selected, nil
}

func run(ctx context.Context, cmd *cobra.Command, conf *harnessconf.HarnessConfig, metricsFile string) error {
	selected, err := loadSuites(ctx, &conf.Scenario)
	if err != nil {
		return err
	}

	def := harnessconf.ReportDefaults
	metrics := report.NewMetrics(ctx, confutil.StringNotEmpty(conf.Report.MetricsNamespace, *def.MetricsNamespace), prometheus.NewRegistry())
	var store report.Store
	if confutil.Bool(conf.Report.Enabled, *def.Enabled) {
		storeConf := conf.Report
		if storeConf.DSN == "" {
			storeConf.DSN = def.DSN
		}
		if store, err = report.NewStore(ctx, &storeConf); err != nil {
			return err
		}
		defer store.Close()
	}

	env, err := newEnvironment(ctx, conf)
	if err != nil {
		return err
	}
	defer env.Close()
	runner, err := env.newRunner(ctx, &conf.Scenario, metrics.RunnerOption())
	if err != nil {
		return err
	}

	reports := make([]*scenario.Report, 0, len(selected))
	failed := 0
	for _, s := range selected {
		rep := runner.Run(ctx, s)
		metrics.ObserveReport(rep)
		failed += len(rep.Failed())
		reports = append(reports, rep)
		if store != nil {
			if _, err := store.Record(ctx, rep); err != nil {
				return err
			}
		}
	}

	if err := report.Render(ctx, cmd.OutOrStdout(), confutil.StringNotEmpty(conf.Report.Format, *def.Format), reports...); err != nil {
		return err
	}
	if metricsFile != "" {
		if err := metrics.WriteTextfile(ctx, metricsFile); err != nil {
			return err
		}
	}
	if failed > 0 {
		return i18n.NewError(ctx, msgs.MsgConfigCasesFailed, failed)
	}
	log.L(ctx).Infof("All %d suites passed", len(reports))
	return nil
}
