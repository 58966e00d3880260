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
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
)

// Artifact is the subset of a hardhat compilation artifact the harness uses
type Artifact struct {
	ContractName string                    `json:"contractName"`
	SourceName   string                    `json:"sourceName,omitempty"`
	ABI          abi.ABI                   `json:"abi"`
	Bytecode     ethtypes.HexBytes0xPrefix `json:"bytecode"`
}

type ArtifactSource interface {
	Artifact(ctx context.Context, name string) (*Artifact, error)
}

func ParseArtifact(ctx context.Context, source string, data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgChainInvalidABI, source)
	}
	if a.ContractName == "" {
		a.ContractName = strings.TrimSuffix(filepath.Base(source), ".json")
	}
	return &a, nil
}

// ArtifactDir reads <Contract>.json files from anywhere below a hardhat
// artifacts directory, skipping the .dbg.json debug files
type ArtifactDir struct {
	root  string
	mux   sync.Mutex
	index map[string]string
	cache map[string]*Artifact
}

func NewArtifactDir(root string) *ArtifactDir {
	return &ArtifactDir{root: root, cache: map[string]*Artifact{}}
}

func (ad *ArtifactDir) buildIndex(ctx context.Context) error {
	ad.index = map[string]string{}
	err := filepath.WalkDir(ad.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".dbg.json") {
			return nil
		}
		contract := strings.TrimSuffix(name, ".json")
		if _, dup := ad.index[contract]; !dup {
			ad.index[contract] = path
		}
		return nil
	})
	if err != nil {
		ad.index = nil
		return i18n.WrapError(ctx, err, msgs.MsgChainArtifactRead, ad.root)
	}
	log.L(ctx).Debugf("Indexed %d artifacts under %s", len(ad.index), ad.root)
	return nil
}

func (ad *ArtifactDir) Artifact(ctx context.Context, name string) (*Artifact, error) {
	ad.mux.Lock()
	defer ad.mux.Unlock()
	if a := ad.cache[name]; a != nil {
		return a, nil
	}
	if ad.index == nil {
		if err := ad.buildIndex(ctx); err != nil {
			return nil, err
		}
	}
	path, ok := ad.index[name]
	if !ok {
		return nil, i18n.NewError(ctx, msgs.MsgChainArtifactNotFound, name, ad.root)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgChainArtifactRead, path)
	}
	a, err := ParseArtifact(ctx, path, data)
	if err != nil {
		return nil, err
	}
	ad.cache[name] = a
	return a, nil
}

// Artifacts searches each source in turn
type Artifacts []ArtifactSource

func (as Artifacts) Artifact(ctx context.Context, name string) (*Artifact, error) {
	var lastErr error
	for _, s := range as {
		a, err := s.Artifact(ctx, name)
		if err == nil {
			return a, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = i18n.NewError(ctx, msgs.MsgChainArtifactNotFound, name, "(none)")
	}
	return nil, lastErr
}

// ArtifactMap is an in-memory source keyed by contract name
type ArtifactMap map[string]*Artifact

func (am ArtifactMap) Artifact(ctx context.Context, name string) (*Artifact, error) {
	if a, ok := am[name]; ok {
		return a, nil
	}
	return nil, i18n.NewError(ctx, msgs.MsgChainArtifactNotFound, name, "(memory)")
}
