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
	"fmt"
	"text/tabwriter"

	"github.com/roshan123456789/kunji-finance/pkg/suites"
	"github.com/spf13/cobra"
)

func newSuitesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suites",
		Short: "List the built-in suites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range suites.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAccountsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Print the address bound to each actor role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conf, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			env, err := newEnvironment(ctx, conf)
			if err != nil {
				return err
			}
			defer env.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, a := range env.actors.Accounts() {
				path := a.Path
				if path == "" {
					path = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.Role, a.Address, path)
			}
			return w.Flush()
		},
	}
}
