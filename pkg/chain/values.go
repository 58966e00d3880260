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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
)

// Values is the decoded form of ABI data in parameter order. Integers are base 10
// strings, addresses and bytes are lower case 0x hex, tuples and arrays nest as Values.
type Values []any

var valueSerializer = abi.NewSerializer().
	SetFormattingMode(abi.FormatAsFlatArrays).
	SetIntSerializer(abi.Base10StringIntSerializer).
	SetByteSerializer(abi.HexByteSerializer0xPrefix).
	SetAddressSerializer(abi.HexAddrSerializer0xPrefix)

// ValuesOf flattens a decoded component tree
func ValuesOf(ctx context.Context, cv *abi.ComponentValue) (Values, error) {
	b, err := valueSerializer.SerializeJSONCtx(ctx, cv)
	if err != nil {
		return nil, err
	}
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	return nest(raw).(Values), nil
}

func nest(v any) any {
	if arr, ok := v.([]any); ok {
		out := make(Values, len(arr))
		for i, e := range arr {
			out[i] = nest(e)
		}
		return out
	}
	return v
}

// Normalize converts Go values into the canonical Values form, so expectations
// written with typed values compare equal to decoded chain data
func Normalize(v any) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case ethtypes.Address0xHex:
		return tv.String()
	case *ethtypes.Address0xHex:
		if tv == nil {
			return nil
		}
		return tv.String()
	case ethtypes.HexBytes0xPrefix:
		return tv.String()
	case []byte:
		return "0x" + hex.EncodeToString(tv)
	case *big.Int:
		if tv == nil {
			return nil
		}
		return tv.String()
	case big.Int:
		return tv.String()
	case bool:
		return tv
	case string:
		if isHex(tv) {
			return strings.ToLower(tv)
		}
		return tv
	case fmt.Stringer:
		return Normalize(tv.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return "0x" + hex.EncodeToString(b)
		}
		fallthrough
	case reflect.Slice:
		out := make(Values, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	return v
}

func isHex(s string) bool {
	if len(s) < 3 || !strings.HasPrefix(s, "0x") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// NormalizeAll normalizes each argument
func NormalizeAll(args []any) Values {
	out := make(Values, len(args))
	for i, a := range args {
		out[i] = Normalize(a)
	}
	return out
}

// Equal compares two values in canonical form
func Equal(a, b any) bool {
	return reflect.DeepEqual(Normalize(a), Normalize(b))
}

func (v Values) at(i int) (any, error) {
	if i < 0 || i >= len(v) {
		return nil, i18n.NewError(context.Background(), msgs.MsgChainValueIndex, i, len(v))
	}
	return v[i], nil
}

func (v Values) conversionError(i int, val any, to string) error {
	return i18n.NewError(context.Background(), msgs.MsgChainValueConversion, i, val, to)
}

func (v Values) Address(i int) (ethtypes.Address0xHex, error) {
	val, err := v.at(i)
	if err != nil {
		return ethtypes.Address0xHex{}, err
	}
	s, _ := val.(string)
	addr, err := ethtypes.NewAddress(s)
	if err != nil {
		return ethtypes.Address0xHex{}, v.conversionError(i, val, "address")
	}
	return *addr, nil
}

func (v Values) BigInt(i int) (*big.Int, error) {
	val, err := v.at(i)
	if err != nil {
		return nil, err
	}
	s, _ := val.(string)
	bi, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, v.conversionError(i, val, "integer")
	}
	return bi, nil
}

func (v Values) Bool(i int) (bool, error) {
	val, err := v.at(i)
	if err != nil {
		return false, err
	}
	b, ok := val.(bool)
	if !ok {
		return false, v.conversionError(i, val, "bool")
	}
	return b, nil
}

func (v Values) String(i int) (string, error) {
	val, err := v.at(i)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok {
		return "", v.conversionError(i, val, "string")
	}
	return s, nil
}

func (v Values) Bytes(i int) (ethtypes.HexBytes0xPrefix, error) {
	val, err := v.at(i)
	if err != nil {
		return nil, err
	}
	s, _ := val.(string)
	b, err := ethtypes.NewHexBytes0xPrefix(s)
	if err != nil {
		return nil, v.conversionError(i, val, "bytes")
	}
	return b, nil
}

func (v Values) Array(i int) (Values, error) {
	val, err := v.at(i)
	if err != nil {
		return nil, err
	}
	arr, ok := val.(Values)
	if !ok {
		return nil, v.conversionError(i, val, "array")
	}
	return arr, nil
}

// The Must variants panic, and are for data already shaped by ABI decoding

func (v Values) MustAddress(i int) ethtypes.Address0xHex {
	return must(v.Address(i))
}

func (v Values) MustBigInt(i int) *big.Int {
	return must(v.BigInt(i))
}

func (v Values) MustBool(i int) bool {
	return must(v.Bool(i))
}

func (v Values) MustString(i int) string {
	return must(v.String(i))
}

func (v Values) MustBytes(i int) ethtypes.HexBytes0xPrefix {
	return must(v.Bytes(i))
}

func (v Values) MustArray(i int) Values {
	return must(v.Array(i))
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
