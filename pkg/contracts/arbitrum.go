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

package contracts

import (
	"math/big"
	"time"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

var (
	Amount100         = big.NewInt(100)
	ZeroAmount        = big.NewInt(0)
	ZeroAddress       = ethtypes.Address0xHex{}
	InitialSupplyUSDC = big.NewInt(1000000000)
)

// TestTimeout bounds each scenario case
const TestTimeout = 100 * time.Second

// Tokens are the Arbitrum One token addresses the GMX suites refer to
var Tokens = struct {
	USDC, USDT, WETH, WBTC, DAI, UNI, FRAX, RandomCoin ethtypes.Address0xHex
}{
	USDC:       *ethtypes.MustNewAddress("0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8"),
	USDT:       *ethtypes.MustNewAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"),
	WETH:       *ethtypes.MustNewAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
	WBTC:       *ethtypes.MustNewAddress("0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f"),
	DAI:        *ethtypes.MustNewAddress("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"),
	UNI:        *ethtypes.MustNewAddress("0xFa7F8980b0f1E64A2062791cc3b0871572f1F7f0"),
	FRAX:       *ethtypes.MustNewAddress("0x17FC002b466eEc40DaE837Fc4bE5c67993ddBd6F"),
	RandomCoin: *ethtypes.MustNewAddress("0x1E5E907F690a2aEa6c68D60f8bb9771FE585bC34"),
}

// GMX are the deployed GMX v1 contracts on Arbitrum One
var GMX = struct {
	Router, PositionRouter, Reader, Vault ethtypes.Address0xHex
}{
	Router:         *ethtypes.MustNewAddress("0xaBBc5F99639c9B6bCb58544ddf04EFA6802F4064"),
	PositionRouter: *ethtypes.MustNewAddress("0xb87a436B93fFE9D75c5cFA7bAcFff96430b09868"),
	Reader:         *ethtypes.MustNewAddress("0x22199a49A999c351eF7927602CFB187ec3cae489"),
	Vault:          *ethtypes.MustNewAddress("0x489ee077994B6658eAfA855C308275EAd8097C4A"),
}

// PositionAccount holds the leveraged position seeded into the GMX vault stand-in
var PositionAccount = *ethtypes.MustNewAddress("0xF6113e0e47b4AAd6388A3dEAfcf4c651A28250f0")
