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

package retry

import (
	"context"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
)

// Retry is an exponential back-off, used when polling a node for receipts
type Retry struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	factor       float64
	maxAttempts  int
}

func NewRetryIndefinite(conf *harnessconf.RetryConfig) *Retry {
	def := harnessconf.RetryDefaults
	return &Retry{
		initialDelay: confutil.DurationMin(conf.InitialDelay, 0, *def.InitialDelay),
		maxDelay:     confutil.DurationMin(conf.MaxDelay, 0, *def.MaxDelay),
		factor:       confutil.Float64Min(conf.Factor, 1.0, *def.Factor),
	}
}

func NewRetryLimited(conf *harnessconf.RetryConfigWithMax) *Retry {
	r := NewRetryIndefinite(&conf.RetryConfig)
	r.maxAttempts = confutil.IntMin(conf.MaxAttempts, 0, *harnessconf.RetryDefaults.MaxAttempts)
	return r
}

// Do invokes the function until it succeeds, returns a non-retryable error,
// hits the attempt limit, or the context ends
func (r *Retry) Do(ctx context.Context, do func(attempt int) (retryable bool, err error)) error {
	attempt := 0
	for {
		attempt++
		retryable, err := do(attempt)
		if err != nil {
			log.L(ctx).Debugf("%s (attempt=%d)", err, attempt)
		}
		if !retryable || err == nil || (r.maxAttempts > 0 && attempt >= r.maxAttempts) {
			return err
		}
		if err := r.WaitDelay(ctx, attempt); err != nil {
			return err
		}
	}
}

func (r *Retry) delay(failureCount int) time.Duration {
	d := r.initialDelay
	for i := 0; i < (failureCount - 1); i++ {
		d = time.Duration(float64(d) * r.factor)
		if d > r.maxDelay {
			return r.maxDelay
		}
	}
	return d
}

func (r *Retry) WaitDelay(ctx context.Context, failureCount int) error {
	if failureCount <= 0 {
		return nil
	}
	d := r.delay(failureCount)
	log.L(ctx).Tracef("Retrying after %.2fs (failures=%d)", d.Seconds(), failureCount)
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return i18n.NewError(ctx, msgs.MsgContextCanceled)
	}
}

// UTSetMaxAttempts is for unit tests
func (r *Retry) UTSetMaxAttempts(maxAttempts int) {
	r.maxAttempts = maxAttempts
}
