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

package confutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt(t *testing.T) {
	assert.Equal(t, 12345, Int(nil, 12345))
	assert.Equal(t, 23456, Int(P(23456), 12345))
	assert.Equal(t, 10, IntMin(P(0), 1, 10))
	assert.Equal(t, 5, IntMin(P(5), 1, 10))
	assert.Equal(t, int64(10), Int64Min(P(int64(0)), 1, 10))
	assert.Equal(t, int64(77400001), Int64Min(P(int64(77400001)), 0, 10))
}

func TestFloat64(t *testing.T) {
	assert.Equal(t, float64(1.5), Float64Min(P(float64(0.5)), 1, 1.5))
	assert.Equal(t, float64(2), Float64Min(P(float64(2)), 1, 1.5))
}

func TestBoolAndStrings(t *testing.T) {
	assert.True(t, Bool(nil, true))
	assert.True(t, Bool(P(true), false))
	assert.Equal(t, "def", StringNotEmpty(P(""), "def"))
	assert.Equal(t, "val", StringNotEmpty(P("val"), "def"))
	assert.Equal(t, []string{"def"}, StringSlice(nil, []string{"def"}))
	assert.Equal(t, []string{"set"}, StringSlice([]string{"set"}, []string{"def"}))
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 100*time.Second, DurationMin(nil, 0, "100s"))
	assert.Equal(t, 100*time.Second, DurationMin(P("wrong"), 0, "100s"))
	assert.Equal(t, 100*time.Second, DurationMin(P("1ms"), time.Second, "100s"))
	assert.Equal(t, 250*time.Millisecond, DurationMin(P("250ms"), 0, "100s"))
}

func TestByteSize(t *testing.T) {
	assert.Equal(t, int64(1024*1024), ByteSize(nil, 0, "1Mb"))
	assert.Equal(t, int64(16*1024), ByteSize(P("16Kb"), 0, "1Mb"))
}

func TestBigInt(t *testing.T) {
	assert.Equal(t, "1000000000", BigInt(P("1000000000"), 0).String())
	assert.Equal(t, "255", BigInt(P("0xff"), 0).String())
	assert.Equal(t, "7", BigInt(P("not a number"), 7).String())
	assert.Equal(t, "7", BigInt(nil, 7).String())
}

type testConf struct {
	Name  *string `json:"name"`
	Count *int    `json:"count"`
}

func TestReadAndParseYAMLFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "conf.yaml")
	require.NoError(t, os.WriteFile(f, []byte("name: harness\ncount: 3\n"), 0644))

	var c testConf
	err := ReadAndParseYAMLFile(context.Background(), f, &c)
	require.NoError(t, err)
	assert.Equal(t, "harness", *c.Name)
	assert.Equal(t, 3, *c.Count)
}

func TestReadAndParseYAMLFileMissing(t *testing.T) {
	var c testConf
	err := ReadAndParseYAMLFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), &c)
	assert.Regexp(t, "KF010000", err)
}

func TestReadAndParseYAMLFileBadYAML(t *testing.T) {
	f := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(f, []byte("name: [not closed"), 0644))
	var c testConf
	err := ReadAndParseYAMLFile(context.Background(), f, &c)
	assert.Regexp(t, "KF010002", err)
}
