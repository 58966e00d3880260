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
	"github.com/roshan123456789/kunji-finance/pkg/chain"
)

// Taxonomy classifies the rejections of every contract in this package, both
// the custom errors and the revert reasons of the legacy generation
func Taxonomy() *chain.Taxonomy {
	return chain.NewTaxonomy().
		Reason(ReasonNotOwner, chain.UnauthorizedCaller).
		Reason(ReasonCallerNotAllowed, chain.UnauthorizedCaller).
		Error("CallerNotAllowed", chain.UnauthorizedCaller).
		Error("ZeroAddress", chain.InvalidArgument).
		Error("AddressZero", chain.InvalidArgument).
		Error("ZeroAmount", chain.InvalidArgument).
		Error("FeeRateError", chain.InvalidArgument).
		Error("UnderlyingAssetNotAllowed", chain.InvalidArgument, chain.DisallowedEntity).
		ReasonPrefix(ReasonInvalidAddressPrefix, chain.InvalidArgument).
		Reason(ReasonNewOwnerZero, chain.InvalidArgument).
		Reason(ReasonAlreadyInitialized, chain.Other).
		Error("InvalidAdapter", chain.UnresolvedReference, chain.DisallowedEntity, chain.NotFound).
		Reason(ReasonInvalidProtocolID, chain.UnresolvedReference, chain.DisallowedEntity).
		Error("NewTraderNotAllowed", chain.DisallowedEntity).
		Reason(ReasonNewTraderNotAllowed, chain.DisallowedEntity).
		Error("InvalidOperation", chain.DisallowedEntity).
		Error("AdapterPresent", chain.DisallowedEntity).
		Error("TraderAlreadyAllowed", chain.DisallowedEntity).
		Error("AdapterOperationFailed", chain.UpstreamRejected).
		Error("TokenTransferFailed", chain.UpstreamRejected).
		Reason(ReasonInvalidPriceFeed, chain.UpstreamRejected).
		Error("NothingToScale", chain.NothingToScale).
		Reason(ReasonProtocolIDNotFound, chain.NotFound).
		Error("TraderNotFound", chain.NotFound).
		Reason(ReasonInsufficientAllowance, chain.UpstreamRejected).
		Reason(ReasonTransferExceedsBalance, chain.UpstreamRejected)
}
