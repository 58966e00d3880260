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

// Package ledger is an in-memory chain whose contracts are native Go programs.
// It keeps the externally visible behavior of an EVM node that scenarios rely
// on: ABI encoded calls and reverts, logs, CREATE addresses, and snapshots.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/confutil"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/chain"
	"github.com/roshan123456789/kunji-finance/pkg/harnessconf"
	"golang.org/x/crypto/sha3"
)

// GenesisTime is the timestamp of block zero, each block adds one second
const GenesisTime = uint64(1690000000)

type snapshot struct {
	id    string
	world *world
}

type Ledger struct {
	mux       sync.Mutex
	registry  *Registry
	chainID   int64
	world     *world
	snapshots []*snapshot
	nextSnap  uint64
}

func New(registry *Registry, conf *harnessconf.ChainConfig) *Ledger {
	return &Ledger{
		registry: registry,
		chainID:  confutil.Int64Min(conf.ChainID, 1, *harnessconf.ChainDefaults.ChainID),
		world:    newWorld(),
	}
}

func (l *Ledger) Registry() *Registry {
	return l.registry
}

func (l *Ledger) ChainID(ctx context.Context) (int64, error) {
	return l.chainID, nil
}

func (l *Ledger) BlockNumber() uint64 {
	l.mux.Lock()
	defer l.mux.Unlock()
	return l.world.block
}

func (l *Ledger) Close() {}

func (l *Ledger) Snapshot(ctx context.Context) (string, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.nextSnap++
	id := fmt.Sprintf("0x%x", l.nextSnap)
	l.snapshots = append(l.snapshots, &snapshot{id: id, world: l.world})
	return id, nil
}

// Revert restores a snapshot, discarding it and every later one
func (l *Ledger) Revert(ctx context.Context, id string) (bool, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	for i, s := range l.snapshots {
		if s.id == id {
			l.world = s.world
			l.snapshots = l.snapshots[:i]
			return true, nil
		}
	}
	log.L(ctx).Warnf("%s", i18n.NewError(ctx, msgs.MsgLedgerUnknownSnapshot, id))
	return false, nil
}

func (l *Ledger) exec(ctx context.Context, w *world, from, self ethtypes.Address0xHex, a abi.ABI, static bool) *Exec {
	return &Exec{
		ctx:    ctx,
		w:      w,
		sender: from,
		self:   self,
		abi:    a,
		static: static,
		block:  w.block + 1,
		time:   GenesisTime + w.block + 1,
		logs:   &[]*chain.Log{},
	}
}

func (l *Ledger) Deploy(ctx context.Context, from ethtypes.Address0xHex, initCode ethtypes.HexBytes0xPrefix) (*chain.Receipt, error) {
	return l.Send(ctx, &chain.TX{From: from, Data: initCode})
}

// Send executes a transaction. A revert leaves state, nonces and block number untouched.
func (l *Ledger) Send(ctx context.Context, tx *chain.TX) (*chain.Receipt, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if tx.Value != nil && tx.Value.Sign() != 0 {
		return nil, i18n.NewError(ctx, msgs.MsgLedgerValueUnsupported)
	}
	w := l.world.clone()
	var x *Exec
	var created *ethtypes.Address0xHex
	var err error
	if tx.To == nil {
		x, created, err = l.create(ctx, w, tx.From, tx.Data)
	} else {
		x, _, err = l.dispatch(ctx, w, tx.From, *tx.To, tx.Data, false)
	}
	if err != nil {
		return nil, err
	}
	w.block++
	w.nonces[tx.From]++
	l.world = w
	receipt := &chain.Receipt{
		TxHash:          newTxHash(),
		BlockNumber:     w.block,
		ContractAddress: created,
		Success:         true,
		GasUsed:         intrinsicGas(tx.Data),
		Logs:            *x.logs,
	}
	log.L(ctx).Tracef("Mined %s in block %d with %d logs", receipt.TxHash, receipt.BlockNumber, len(receipt.Logs))
	return receipt, nil
}

// Call executes against a throwaway copy of state and returns the encoded outputs
func (l *Ledger) Call(ctx context.Context, tx *chain.TX) (ethtypes.HexBytes0xPrefix, error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if tx.To == nil {
		return nil, i18n.NewError(ctx, msgs.MsgLedgerNoTarget)
	}
	_, out, err := l.dispatch(ctx, l.world.clone(), tx.From, *tx.To, tx.Data, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) dispatch(ctx context.Context, w *world, from, to ethtypes.Address0xHex, data []byte, call bool) (*Exec, ethtypes.HexBytes0xPrefix, error) {
	inst := w.code[to]
	if inst == nil {
		if call {
			// eth_call to an account without code succeeds with empty output
			return nil, nil, nil
		}
		return nil, nil, i18n.NewError(ctx, msgs.MsgLedgerNoCode, to)
	}
	a := inst.abi()
	fn := chain.FindBySelector(ctx, a, abi.Function, data)
	if fn == nil {
		log.L(ctx).Debugf("%s", i18n.NewError(ctx, msgs.MsgLedgerUnknownSelector, ethtypes.HexBytes0xPrefix(data), inst.factory.Name))
		return nil, nil, &chain.RevertError{}
	}
	args, err := chain.DecodeCall(ctx, fn, data)
	if err != nil {
		log.L(ctx).Debugf("%s: %s", i18n.NewError(ctx, msgs.MsgLedgerDecodeCall, fn.Name), err)
		return nil, nil, &chain.RevertError{}
	}
	x := l.exec(ctx, w, from, to, a, call && isView(fn))
	out, err := x.invoke(inst, fn, args)
	if err != nil {
		return nil, nil, err
	}
	encoded, err := chain.EncodeValues(ctx, fn.Outputs, out)
	if err != nil {
		return nil, nil, i18n.WrapError(ctx, err, msgs.MsgLedgerEncodeResult, fn.Name)
	}
	return x, encoded, nil
}

func (l *Ledger) create(ctx context.Context, w *world, from ethtypes.Address0xHex, initCode []byte) (*Exec, *ethtypes.Address0xHex, error) {
	name, ctorData, ok := parseMarker(initCode)
	if !ok {
		return nil, nil, i18n.NewError(ctx, msgs.MsgLedgerMissingBytecode)
	}
	f, err := l.registry.Factory(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	addr := ethtypes.Address0xHex(crypto.CreateAddress(common.Address(from), w.nonces[from]))
	x, err := l.install(ctx, w, from, addr, f, ctorData)
	if err != nil {
		return nil, nil, err
	}
	log.L(ctx).Debugf("Created %s at %s", name, addr)
	return x, &addr, nil
}

func (l *Ledger) install(ctx context.Context, w *world, from, addr ethtypes.Address0xHex, f *Factory, ctorData []byte) (*Exec, error) {
	if w.code[addr] != nil {
		return nil, i18n.NewError(ctx, msgs.MsgLedgerAddressInUse, addr)
	}
	var args chain.Values
	if ctor := f.ABI.Constructor(); ctor != nil {
		var err error
		if args, err = chain.DecodeValues(ctx, ctor.Inputs, ctorData); err != nil {
			log.L(ctx).Debugf("%s: %s", i18n.NewError(ctx, msgs.MsgLedgerDecodeCall, f.Name), err)
			return nil, &chain.RevertError{}
		}
	}
	x := l.exec(ctx, w, from, addr, f.ABI, false)
	p, err := x.construct(f, args)
	if err != nil {
		return nil, err
	}
	w.code[addr] = &instance{factory: f, program: p}
	return x, nil
}

// DeployAt installs a program at a fixed address without a transaction, as
// hardhat_setCode does for stand-ins of forked contracts
func (l *Ledger) DeployAt(ctx context.Context, addr ethtypes.Address0xHex, name string, args ...any) error {
	l.mux.Lock()
	defer l.mux.Unlock()
	f, err := l.registry.Factory(ctx, name)
	if err != nil {
		return err
	}
	var ctorData []byte
	if ctor := f.ABI.Constructor(); ctor != nil {
		if ctorData, err = chain.EncodeValues(ctx, ctor.Inputs, args); err != nil {
			return err
		}
	}
	w := l.world.clone()
	if _, err := l.install(ctx, w, ethtypes.Address0xHex{}, addr, f, ctorData); err != nil {
		return err
	}
	l.world = w
	return nil
}

// Program returns the committed storage at an address for inspection. It is
// shared with snapshots, so must not be mutated.
func (l *Ledger) Program(addr ethtypes.Address0xHex) (Program, bool) {
	l.mux.Lock()
	defer l.mux.Unlock()
	inst := l.world.code[addr]
	if inst == nil {
		return nil, false
	}
	return inst.program, true
}

func newTxHash() ethtypes.HexBytes0xPrefix {
	id := uuid.New()
	h := sha3.NewLegacyKeccak256()
	h.Write(id[:])
	return h.Sum(nil)
}

func intrinsicGas(data []byte) uint64 {
	gas := uint64(21000)
	for _, b := range data {
		if b == 0 {
			gas += 4
		} else {
			gas += 16
		}
	}
	return gas
}
