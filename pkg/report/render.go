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

package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var statusLabels = map[scenario.Status]string{
	scenario.StatusPassed:  "PASS",
	scenario.StatusFailed:  "FAIL",
	scenario.StatusSkipped: "SKIP",
}

// Render writes the reports in the given format
func Render(ctx context.Context, w io.Writer, format string, reports ...*scenario.Report) error {
	switch format {
	case "", FormatText:
		return renderText(w, reports)
	case FormatJSON:
		return renderJSON(w, reports)
	}
	return i18n.NewError(ctx, msgs.MsgReportUnknownFormat, format)
}

func renderText(w io.Writer, reports []*scenario.Report) error {
	var passed, failed, skipped int
	for _, rep := range reports {
		if _, err := fmt.Fprintf(w, "%s\n", rep.Suite); err != nil {
			return err
		}
		for _, r := range rep.Results {
			line := fmt.Sprintf("  %s %s", statusLabels[r.Status], r.String())
			if r.Status != scenario.StatusSkipped {
				line += fmt.Sprintf(" (%s)", r.Duration.Round(time.Millisecond))
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		passed += rep.Passed()
		failed += len(rep.Failed())
		skipped += rep.Skipped()
	}
	_, err := fmt.Fprintf(w, "\n%d passing, %d failing, %d skipped\n", passed, failed, skipped)
	return err
}

type jsonResult struct {
	Path       []string `json:"path"`
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	DurationMS int64    `json:"durationMs"`
}

type jsonReport struct {
	Suite      string        `json:"suite"`
	Started    time.Time     `json:"started"`
	DurationMS int64         `json:"durationMs"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Results    []*jsonResult `json:"results"`
}

func renderJSON(w io.Writer, reports []*scenario.Report) error {
	out := make([]*jsonReport, len(reports))
	for i, rep := range reports {
		jr := &jsonReport{
			Suite:      rep.Suite,
			Started:    rep.Started.UTC(),
			DurationMS: rep.Duration.Milliseconds(),
			Passed:     rep.Passed(),
			Failed:     len(rep.Failed()),
			Skipped:    rep.Skipped(),
			Results:    make([]*jsonResult, len(rep.Results)),
		}
		for j, r := range rep.Results {
			res := &jsonResult{Path: r.Path, Status: string(r.Status), DurationMS: r.Duration.Milliseconds()}
			if r.Err != nil {
				res.Reason = r.Err.Error()
			}
			jr.Results[j] = res
		}
		out[i] = jr
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
