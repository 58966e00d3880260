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
	"fmt"
	"testing"
	"time"

	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryEventuallyOk(t *testing.T) {
	r := NewRetryIndefinite(&harnessconf.RetryConfig{
		InitialDelay: confutil.P("1ms"),
		MaxDelay:     confutil.P("3ms"),
	})
	err := r.Do(context.Background(), func(i int) (retry bool, err error) {
		if i < 10 {
			err = fmt.Errorf("pop")
		}
		return true, err
	})
	require.NoError(t, err)
}

func TestRetryNotRetryable(t *testing.T) {
	r := NewRetryIndefinite(&harnessconf.RetryConfig{})
	calls := 0
	err := r.Do(context.Background(), func(i int) (retry bool, err error) {
		calls++
		return false, fmt.Errorf("reverted")
	})
	assert.Regexp(t, "reverted", err)
	assert.Equal(t, 1, calls)
}

func TestRetryDeadlineTimeout(t *testing.T) {
	r := NewRetryIndefinite(&harnessconf.RetryConfig{
		InitialDelay: confutil.P("1s"),
		MaxDelay:     confutil.P("1s"),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Millisecond)
	defer cancel()
	err := r.Do(ctx, func(i int) (retry bool, err error) {
		return true, fmt.Errorf("pop")
	})
	assert.Regexp(t, "KF010005", err)
}

func TestRetryLimited(t *testing.T) {
	r := NewRetryLimited(&harnessconf.RetryConfigWithMax{
		RetryConfig: harnessconf.RetryConfig{
			InitialDelay: confutil.P("1ms"),
			MaxDelay:     confutil.P("1ms"),
		},
		MaxAttempts: confutil.P(5),
	})
	callCount := 0
	err := r.Do(context.Background(), func(i int) (retry bool, err error) {
		callCount = i
		return true, fmt.Errorf("pop")
	})
	assert.Regexp(t, "pop", err)
	assert.Equal(t, 5, callCount)
}

func TestRetryUTLimited(t *testing.T) {
	r := NewRetryIndefinite(&harnessconf.RetryConfig{
		InitialDelay: confutil.P("1ms"),
		MaxDelay:     confutil.P("1ms"),
	})
	r.UTSetMaxAttempts(2)
	callCount := 0
	err := r.Do(context.Background(), func(i int) (retry bool, err error) {
		callCount = i
		return true, fmt.Errorf("pop")
	})
	assert.Regexp(t, "pop", err)
	assert.Equal(t, 2, callCount)
}

func TestDelayCapped(t *testing.T) {
	r := NewRetryIndefinite(&harnessconf.RetryConfig{
		InitialDelay: confutil.P("10ms"),
		MaxDelay:     confutil.P("50ms"),
		Factor:       confutil.P(2.0),
	})
	assert.Equal(t, 10*time.Millisecond, r.delay(1))
	assert.Equal(t, 20*time.Millisecond, r.delay(2))
	assert.Equal(t, 40*time.Millisecond, r.delay(3))
	assert.Equal(t, 50*time.Millisecond, r.delay(4))
	require.NoError(t, r.WaitDelay(context.Background(), 0))
}

func TestDefaults(t *testing.T) {
	r := NewRetryLimited(&harnessconf.RetryConfigWithMax{})
	assert.Equal(t, 250*time.Millisecond, r.initialDelay)
	assert.Equal(t, 30*time.Second, r.maxDelay)
	assert.Equal(t, 2.0, r.factor)
	assert.Equal(t, 3, r.maxAttempts)
}
