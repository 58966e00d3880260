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

package chain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArtifactJSON = `{
	"contractName": "Counter",
	"sourceName": "contracts/Counter.sol",
	"abi": [{"type":"function","name":"count","inputs":[],"outputs":[{"type":"uint256"}],"stateMutability":"view"}],
	"bytecode": "0x6080"
}`

func TestArtifactDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	dir := filepath.Join(root, "contracts", "Counter.sol")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Counter.json"), []byte(testArtifactJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Counter.dbg.json"), []byte(`{}`), 0644))

	ad := NewArtifactDir(root)
	a, err := ad.Artifact(ctx, "Counter")
	require.NoError(t, err)
	assert.Equal(t, "Counter", a.ContractName)
	assert.Equal(t, "0x6080", a.Bytecode.String())
	assert.NotNil(t, a.ABI.Functions()["count"])

	again, err := ad.Artifact(ctx, "Counter")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = ad.Artifact(ctx, "Counter.dbg")
	assert.Regexp(t, "KF010406", err)
}

func TestArtifactDirMissingRoot(t *testing.T) {
	_, err := NewArtifactDir(filepath.Join(t.TempDir(), "nope")).Artifact(context.Background(), "X")
	assert.Regexp(t, "KF010405", err)
}

func TestParseArtifactBad(t *testing.T) {
	_, err := ParseArtifact(context.Background(), "bad.json", []byte(`{!`))
	assert.Regexp(t, "KF010408", err)

	a, err := ParseArtifact(context.Background(), "dir/Named.json", []byte(`{"abi":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "Named", a.ContractName)
}

func TestArtifactsChain(t *testing.T) {
	ctx := context.Background()
	counter, err := ParseArtifact(ctx, "Counter.json", []byte(testArtifactJSON))
	require.NoError(t, err)
	sources := Artifacts{ArtifactMap{}, ArtifactMap{"Counter": counter}}

	a, err := sources.Artifact(ctx, "Counter")
	require.NoError(t, err)
	assert.Same(t, counter, a)

	_, err = sources.Artifact(ctx, "Other")
	assert.Regexp(t, "KF010406", err)
	_, err = Artifacts{}.Artifact(ctx, "Other")
	assert.Regexp(t, "KF010406", err)
}
