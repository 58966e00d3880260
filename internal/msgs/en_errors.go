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

package msgs

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const harnessPrefix = "KF01"

var registerOnce sync.Once

var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	registerOnce.Do(func() {
		i18n.RegisterPrefix(harnessPrefix, "Kunji Finance Contract Harness")
	})
	if !strings.HasPrefix(key, harnessPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", harnessPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Config KF0100XX
	MsgConfigFileMissing      = ffe("KF010000", "Config file not found at location: %s")
	MsgConfigFileReadError    = ffe("KF010001", "Failed to read config file %s with error: %s")
	MsgConfigFileParseError   = ffe("KF010002", "Failed to parse config file: %s")
	MsgConfigInvalidChainType = ffe("KF010003", "Invalid chain type '%s'")
	MsgConfigMissingChainURL  = ffe("KF010004", "Missing URL for JSON/RPC chain")
	MsgContextCanceled        = ffe("KF010005", "Context canceled")
	MsgConfigCasesFailed      = ffe("KF010006", "%d scenario cases failed")
	MsgConfigNoScenarios      = ffe("KF010007", "No suites or scenario files selected")

	// Actors KF0101XX
	MsgActorsInvalidMnemonic    = ffe("KF010100", "Invalid mnemonic for actor derivation")
	MsgActorsDerivationFailed   = ffe("KF010101", "Failed to derive key at path %s")
	MsgActorsInvalidPath        = ffe("KF010102", "Invalid derivation path '%s'")
	MsgActorsUnknownRole        = ffe("KF010103", "Unknown actor role '%s'")
	MsgActorsNotEnoughAccounts  = ffe("KF010104", "Need %d accounts to bind roles, only %d available")
	MsgActorsDuplicateAddress   = ffe("KF010105", "Address %s bound to both %s and %s")
	MsgActorsNoKey              = ffe("KF010106", "No private key held for %s")
	MsgActorsInvalidPrivateKey  = ffe("KF010107", "Invalid private key supplied for role %s")
	MsgActorsAddressNotResolved = ffe("KF010108", "Address %s is not bound to any role")

	// Reverter KF0102XX
	MsgReverterNoCheckpoint   = ffe("KF010200", "Revert called with no outstanding snapshot")
	MsgReverterOutOfOrder     = ffe("KF010201", "Snapshot %s is not the most recent outstanding snapshot (top=%s)")
	MsgReverterConsumed       = ffe("KF010202", "Snapshot %s has already been consumed")
	MsgReverterRevertFailed   = ffe("KF010203", "Chain refused to revert to snapshot %s")
	MsgReverterSnapshotFailed = ffe("KF010204", "Failed to take snapshot")
	MsgReverterScopePanic     = ffe("KF010205", "Panic inside snapshot scope: %v")

	// Scenario KF0103XX
	MsgScenarioExpectedRejection   = ffe("KF010300", "Expected rejection %s but the call succeeded")
	MsgScenarioWrongRejection      = ffe("KF010301", "Expected rejection %s but got %s")
	MsgScenarioUnexpectedRejection = ffe("KF010302", "Expected success but the call was rejected: %s")
	MsgScenarioStoredMismatch      = ffe("KF010303", "%s returned %v, expected %v")
	MsgScenarioEventCount          = ffe("KF010304", "Expected exactly one %s event, found %d")
	MsgScenarioTimeout             = ffe("KF010305", "Scenario exceeded timeout of %s")
	MsgScenarioEventArgsMismatch   = ffe("KF010306", "Event %s argument %d is %v, expected %v")
	MsgScenarioBalanceDelta        = ffe("KF010307", "Balance of %s on %s changed by %s, expected %s")
	MsgScenarioUnknownContract     = ffe("KF010308", "Unknown contract '%s' in fixture")
	MsgScenarioUnknownValue        = ffe("KF010309", "Unknown fixture value '%s'")
	MsgScenarioPanic               = ffe("KF010310", "Scenario panicked: %v")
	MsgScenarioSetupFailed         = ffe("KF010311", "Setup of %s failed")
	MsgScenarioFileInvalid         = ffe("KF010312", "Invalid scenario file %s")
	MsgScenarioBadReference        = ffe("KF010313", "Cannot resolve reference '%s'")
	MsgScenarioValueChanged        = ffe("KF010314", "Rejected call changed %s from %v to %v")
	MsgScenarioNoAction            = ffe("KF010315", "Case '%s' has no action")
	MsgScenarioWrongKind           = ffe("KF010316", "Rejection %s classified as %s, expected %s")
	MsgScenarioSkippedAfterFailure = ffe("KF010317", "Not run because setup of the enclosing group failed")
	MsgScenarioUnknownSuite        = ffe("KF010318", "Unknown suite '%s'")
	MsgScenarioFileRead            = ffe("KF010319", "Failed to read scenario file %s")
	MsgScenarioInvalidFilter       = ffe("KF010320", "Invalid scenario filter '%s'")
	MsgScenarioEventsCount         = ffe("KF010321", "Expected %d %s events, found %d")
	MsgScenarioCheckFailed         = ffe("KF010322", "Check %s failed")
	MsgScenarioActionFailed        = ffe("KF010323", "Action %s failed")
	MsgScenarioFileNumber          = ffe("KF010324", "Number '%s' on line %d is not a whole number")

	// Chain KF0104XX
	MsgChainFunctionNotFound   = ffe("KF010400", "Function '%s' not found on contract %s")
	MsgChainInvalidInput       = ffe("KF010401", "Failed to encode inputs for %s")
	MsgChainDecodeOutput       = ffe("KF010402", "Failed to decode outputs of %s")
	MsgChainMissingFrom        = ffe("KF010403", "Transaction sender missing for %s")
	MsgChainReverted           = ffe("KF010404", "Reverted: %s")
	MsgChainArtifactRead       = ffe("KF010405", "Failed to read artifact %s")
	MsgChainArtifactNotFound   = ffe("KF010406", "Artifact '%s' not found under %s")
	MsgChainNoContractAddress  = ffe("KF010407", "Deployment of %s returned no contract address")
	MsgChainInvalidABI         = ffe("KF010408", "Invalid ABI for %s")
	MsgChainTransactionFailed  = ffe("KF010409", "Transaction %s failed without revert data")
	MsgChainValueConversion    = ffe("KF010410", "Value at index %d (%v) cannot be read as %s")
	MsgChainEventNotFound      = ffe("KF010411", "Event '%s' not found on contract %s")
	MsgChainNoInitializer      = ffe("KF010412", "Initializer '%s' not found on %s")
	MsgChainProxyArtifact      = ffe("KF010413", "Proxy artifact %s has no constructor taking (address,bytes)")
	MsgChainUndecodableRevert  = ffe("KF010414", "Revert data %s does not match any known error")
	MsgChainValueIndex         = ffe("KF010415", "No value at index %d (length=%d)")
	MsgChainInvalidAddressText = ffe("KF010416", "Invalid address '%s'")

	// Ledger KF0105XX
	MsgLedgerUnknownProgram   = ffe("KF010500", "No program registered for contract '%s'")
	MsgLedgerNoCode           = ffe("KF010501", "No contract deployed at %s")
	MsgLedgerUnknownSelector  = ffe("KF010502", "Function selector %s not recognized by %s")
	MsgLedgerUnknownSnapshot  = ffe("KF010503", "Unknown snapshot id %s")
	MsgLedgerDecodeCall       = ffe("KF010504", "Failed to decode call to %s")
	MsgLedgerEncodeResult     = ffe("KF010505", "Failed to encode result of %s")
	MsgLedgerCallDepth        = ffe("KF010506", "Call depth exceeded calling %s")
	MsgLedgerStaticMutation   = ffe("KF010507", "State mutation attempted in read-only call to %s")
	MsgLedgerUnknownError     = ffe("KF010508", "Error '%s' not declared in ABI of %s")
	MsgLedgerUnknownEvent     = ffe("KF010509", "Event '%s' not declared in ABI of %s")
	MsgLedgerUnknownTX        = ffe("KF010510", "Transaction %s not found")
	MsgLedgerAddressInUse     = ffe("KF010511", "Address %s already has code")
	MsgLedgerMissingBytecode  = ffe("KF010512", "Deployment data does not start with a registered program marker")
	MsgLedgerProgramMismatch  = ffe("KF010513", "Program at %s does not implement %s")
	MsgLedgerValueUnsupported = ffe("KF010514", "Value transfers are not supported by the in-memory ledger")
	MsgLedgerProgramPanic     = ffe("KF010515", "Program %s panicked: %v")
	MsgLedgerNoTarget         = ffe("KF010516", "Call to the ledger requires a target address")

	// RPC chain KF0106XX
	MsgRPCChainIDFailed   = ffe("KF010600", "Failed to query chain ID")
	MsgRPCCallFailed      = ffe("KF010601", "%s failed: %s")
	MsgRPCReceiptTimeout  = ffe("KF010602", "Timed out waiting for receipt of %s")
	MsgRPCNoConnection    = ffe("KF010603", "No JSON/RPC connection")
	MsgRPCSigningFailed   = ffe("KF010604", "Signing failed for %s")
	MsgRPCReceiptPending  = ffe("KF010605", "Receipt for %s not yet available")
	MsgRPCForkResetFailed = ffe("KF010606", "Failed to reset fork to %s at block %d")

	// Report KF0107XX
	MsgReportDBInvalidType = ffe("KF010700", "Invalid report database type: %s")
	MsgReportDBInitFailed  = ffe("KF010701", "Report database init failed")
	MsgReportStoreFailed   = ffe("KF010702", "Failed to store run %s")
	MsgReportQueryFailed   = ffe("KF010703", "Failed to query runs")
	MsgReportMissingDSN    = ffe("KF010704", "Missing report database DSN")
	MsgReportUnknownFormat = ffe("KF010705", "Unknown report format '%s'")
	MsgReportMetricsWrite  = ffe("KF010706", "Failed to write metrics to %s")

	// Contracts KF0108XX
	MsgContractsInvalidABI = ffe("KF010800", "Invalid embedded ABI for %s")
	MsgContractsBadArg     = ffe("KF010801", "Argument %d of %s is invalid")

	// Simulated chain KF0109XX
	MsgSimChainNoKey        = ffe("KF010900", "No private key for sender %s")
	MsgSimChainSendFailed   = ffe("KF010901", "Failed to submit transaction from %s")
	MsgSimChainNoReceipt    = ffe("KF010902", "No receipt for %s after commit")
	MsgSimChainFork         = ffe("KF010903", "Failed to fork simulated chain at %s")
	MsgSimChainInvalidBlock = ffe("KF010904", "Invalid snapshot id %s")
	MsgSimChainForkHead     = ffe("KF010905", "Revert to %s left the head at %s")
)
