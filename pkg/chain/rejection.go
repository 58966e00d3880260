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
	"fmt"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
)

// ReasonErrorName is the name of the implicit Error(string) raised by revert("...")
const ReasonErrorName = "Error"

// Rejection is a reverted call decoded against the known ABIs. An empty Name
// means the data matched nothing (or there was none).
type Rejection struct {
	Data    ethtypes.HexBytes0xPrefix
	Name    string
	Reason  string
	Args    Values
	Summary string
}

func (r *Rejection) Error() string {
	return i18n.NewError(context.Background(), msgs.MsgChainReverted, r.Summary).Error()
}

// IsReason reports whether this is a plain revert reason string
func (r *Rejection) IsReason() bool {
	return r.Name == ReasonErrorName
}

// DecodeRevert decodes revert data against the errors of an ABI, plus the
// default Error(string)
func DecodeRevert(ctx context.Context, errorsABI abi.ABI, data ethtypes.HexBytes0xPrefix) *Rejection {
	r := &Rejection{Data: data}
	if len(data) == 0 {
		r.Summary = "(no revert data)"
		return r
	}
	e, cv, ok := errorsABI.ParseErrorCtx(ctx, data)
	if !ok {
		r.Summary = i18n.NewError(ctx, msgs.MsgChainUndecodableRevert, data).Error()
		return r
	}
	r.Name = e.Name
	r.Summary = abi.FormatErrorStringCtx(ctx, e, cv)
	r.Args, _ = ValuesOf(ctx, cv)
	if r.IsReason() && len(r.Args) == 1 {
		r.Reason, _ = r.Args[0].(string)
		r.Summary = r.Reason
	}
	return r
}

// Signal identifies an expected rejection, either by reason string or by custom
// error name with optional arguments
type Signal struct {
	Reason string
	Error  string
	Args   []any
}

func Reason(reason string) *Signal {
	return &Signal{Reason: reason}
}

// CustomError matches by name, and also by arguments when any are given
func CustomError(name string, args ...any) *Signal {
	return &Signal{Error: name, Args: args}
}

func (s *Signal) Matches(r *Rejection) bool {
	if r == nil {
		return false
	}
	if s.Error == "" {
		return r.IsReason() && r.Reason == s.Reason
	}
	if r.Name != s.Error {
		return false
	}
	if len(s.Args) == 0 {
		return true
	}
	return Equal(Values(s.Args), r.Args)
}

func (s *Signal) String() string {
	if s.Error == "" {
		return fmt.Sprintf("%q", s.Reason)
	}
	if len(s.Args) == 0 {
		return s.Error
	}
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		n := Normalize(a)
		if str, ok := n.(string); ok {
			args[i] = fmt.Sprintf("%q", str)
		} else {
			args[i] = fmt.Sprintf("%v", n)
		}
	}
	return fmt.Sprintf("%s(%s)", s.Error, strings.Join(args, ","))
}
