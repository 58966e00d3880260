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

package harnessconf

import "github.com/roshan123456789/kunji-finance/internal/confutil"

type ChainType string

const (
	// ChainTypeLedger runs against the in-memory ledger hosting the Go contract models
	ChainTypeLedger ChainType = "ledger"
	// ChainTypeJSONRPC runs against a hardhat or anvil node over JSON/RPC
	ChainTypeJSONRPC ChainType = "jsonrpc"
	// ChainTypeSimulated runs against an embedded go-ethereum simulated backend
	ChainTypeSimulated ChainType = "simulated"
)

type HTTPBasicAuthConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type HTTPClientConfig struct {
	URL               string                 `json:"url"`
	HTTPHeaders       map[string]interface{} `json:"httpHeaders"`
	Auth              HTTPBasicAuthConfig    `json:"auth"`
	RequestTimeout    *string                `json:"requestTimeout,omitempty"`
	ConnectionTimeout *string                `json:"connectionTimeout,omitempty"`
}

// ForkConfig pins a local node to a remote archive node at a fixed block,
// via hardhat_reset. Block zero means latest.
type ForkConfig struct {
	Enabled     *bool  `json:"enabled"`
	URL         string `json:"url"`
	BlockNumber *int64 `json:"blockNumber"`
}

type ChainConfig struct {
	Type              *string            `json:"type"`
	ChainID           *int64             `json:"chainId"`
	HTTP              HTTPClientConfig   `json:"http"`
	Fork              ForkConfig         `json:"fork"`
	GasEstimateFactor *float64           `json:"gasEstimateFactor"`
	ReceiptPoll       RetryConfigWithMax `json:"receiptPoll"`
	// UnlockedAccounts sends eth_sendTransaction and lets the node sign, as hardhat does for its default accounts
	UnlockedAccounts *bool `json:"unlockedAccounts"`
	// BlockGasLimit applies to the simulated backend
	BlockGasLimit *int64 `json:"blockGasLimit"`
}

var DefaultHTTPConfig = &HTTPClientConfig{
	ConnectionTimeout: confutil.P("30s"),
	RequestTimeout:    confutil.P("30s"),
}

var ChainDefaults = &ChainConfig{
	Type:    confutil.P(string(ChainTypeLedger)),
	ChainID: confutil.P(int64(31337)),
	Fork: ForkConfig{
		Enabled:     confutil.P(false),
		BlockNumber: confutil.P(int64(77400001)),
	},
	GasEstimateFactor: confutil.P(1.5),
	ReceiptPoll: RetryConfigWithMax{
		RetryConfig: RetryConfig{
			InitialDelay: confutil.P("50ms"),
			MaxDelay:     confutil.P("1s"),
			Factor:       confutil.P(2.0),
		},
		MaxAttempts: confutil.P(20),
	},
	UnlockedAccounts: confutil.P(true),
	BlockGasLimit:    confutil.P(int64(30000000)),
}

// Networks mirrors the named networks of the hardhat project configuration
var Networks = map[string]*ChainConfig{
	"hardhat": {
		Type:    confutil.P(string(ChainTypeJSONRPC)),
		ChainID: confutil.P(int64(31337)),
		HTTP:    HTTPClientConfig{URL: "http://127.0.0.1:8545"},
		Fork: ForkConfig{
			Enabled:     confutil.P(true),
			BlockNumber: confutil.P(int64(77400001)),
		},
	},
	"arbitrum": {
		Type:             confutil.P(string(ChainTypeJSONRPC)),
		ChainID:          confutil.P(int64(42161)),
		UnlockedAccounts: confutil.P(false),
	},
	"arbitrum_test": {
		Type:             confutil.P(string(ChainTypeJSONRPC)),
		ChainID:          confutil.P(int64(421613)),
		UnlockedAccounts: confutil.P(false),
	},
}
