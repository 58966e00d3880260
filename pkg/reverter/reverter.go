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

// Package reverter restores chain state between scenarios. Checkpoints form a
// stack: each is used once, and only the most recent outstanding one can be
// reverted to.
package reverter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

type Checkpoint struct {
	ID    string
	Depth int

	consumed bool
}

func (cp *Checkpoint) String() string {
	return fmt.Sprintf("%s@%d", cp.ID, cp.Depth)
}

func (cp *Checkpoint) Consumed() bool {
	return cp.consumed
}

type Reverter struct {
	mux   sync.Mutex
	s     chain.Snapshotter
	stack []*Checkpoint
}

func New(s chain.Snapshotter) *Reverter {
	return &Reverter{s: s}
}

// Snapshot captures current chain state as a new checkpoint on top of the stack
func (r *Reverter) Snapshot(ctx context.Context) (*Checkpoint, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	id, err := r.s.Snapshot(ctx)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgReverterSnapshotFailed)
	}
	cp := &Checkpoint{ID: id, Depth: len(r.stack)}
	r.stack = append(r.stack, cp)
	log.L(ctx).Tracef("Snapshot %s", cp)
	return cp, nil
}

// Revert restores the most recent checkpoint and consumes it
func (r *Reverter) Revert(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if len(r.stack) == 0 {
		return i18n.NewError(ctx, msgs.MsgReverterNoCheckpoint)
	}
	return r.revertTop(ctx)
}

// RevertTo reverts a specific checkpoint, which must be the top of the stack
func (r *Reverter) RevertTo(ctx context.Context, cp *Checkpoint) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if cp.consumed {
		return i18n.NewError(ctx, msgs.MsgReverterConsumed, cp)
	}
	if len(r.stack) == 0 {
		return i18n.NewError(ctx, msgs.MsgReverterNoCheckpoint)
	}
	if top := r.stack[len(r.stack)-1]; top != cp {
		return i18n.NewError(ctx, msgs.MsgReverterOutOfOrder, cp, top)
	}
	return r.revertTop(ctx)
}

func (r *Reverter) revertTop(ctx context.Context) error {
	top := r.stack[len(r.stack)-1]
	// popped even on failure, as the chain may have consumed the id regardless
	r.stack = r.stack[:len(r.stack)-1]
	top.consumed = true
	ok, err := r.s.Revert(ctx, top.ID)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgReverterRevertFailed, top)
	}
	if !ok {
		return i18n.NewError(ctx, msgs.MsgReverterRevertFailed, top)
	}
	log.L(ctx).Tracef("Reverted %s", top)
	return nil
}

// Recheckpoint reverts the top checkpoint and immediately takes a fresh one at
// the same state, for repeated resets to a common baseline
func (r *Reverter) Recheckpoint(ctx context.Context) (*Checkpoint, error) {
	if err := r.Revert(ctx); err != nil {
		return nil, err
	}
	return r.Snapshot(ctx)
}

func (r *Reverter) Depth() int {
	r.mux.Lock()
	defer r.mux.Unlock()
	return len(r.stack)
}

// Scope runs fn between a snapshot and its revert. The revert happens however fn
// exits, a panic is re-raised once state is restored.
func (r *Reverter) Scope(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	cp, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	defer func() {
		panicked := recover()
		revertErr := r.RevertTo(ctx, cp)
		if panicked != nil {
			if revertErr != nil {
				log.L(ctx).Errorf("Revert after panic failed: %s", revertErr)
			}
			panic(panicked)
		}
		err = errors.Join(err, revertErr)
	}()
	return fn(ctx)
}
