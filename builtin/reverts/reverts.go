// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
)

// Kind classifies why a contract call reverted.
type Kind uint8

const (
	Unknown Kind = iota
	AccessDenied
	InvalidAddress
	AlreadyInitialized
	NotInitialized
	ValueMismatch
	InsufficientBalance
	QueueTooLong
	TransferFailed
	NoClaimableAmount
	ZeroAggregate
)

var kindNames = [...]string{
	Unknown:             "Unknown",
	AccessDenied:        "AccessDenied",
	InvalidAddress:      "InvalidAddress",
	AlreadyInitialized:  "AlreadyInitialized",
	NotInitialized:      "NotInitialized",
	ValueMismatch:       "ValueMismatch",
	InsufficientBalance: "InsufficientBalance",
	QueueTooLong:        "QueueTooLong",
	TransferFailed:      "TransferFailed",
	NoClaimableAmount:   "NoClaimableAmount",
	ZeroAggregate:       "ZeroAggregate",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// ErrRevert is a failed requirement of a contract call, the whole call is reverted.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Bytes returns the revert reason ABI encoded as Error(string).
func (e *ErrRevert) Bytes() []byte {
	if e == nil {
		return nil
	}

	// 4-byte selector for Error(string)
	selector, _ := hex.DecodeString("08c379a0")
	msgBytes := []byte(e.message)
	msgLen := uint64(len(msgBytes))

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 0, 4+32+32+((len(msgBytes)+31)/32)*32)
	encoded = append(encoded, selector...)

	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], msgLen)
	encoded = append(encoded, length...)

	data := make([]byte, ((len(msgBytes)+31)/32)*32)
	copy(data, msgBytes)
	encoded = append(encoded, data...)

	return encoded
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) {
		return ve != nil
	}
	return false
}

// KindOf returns the kind of a revert error, Unknown for other errors.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) && ve != nil {
		return ve.kind
	}
	return Unknown
}

// common reasons shared by the contracts.
var (
	ErrNotOwner           = New(AccessDenied, "Ownable: caller is not the owner")
	ErrZeroAddress        = New(InvalidAddress, "Can not be Zero adress")
	ErrAlreadyInitialized = New(AlreadyInitialized, "Initializable: contract is already initialized")
	ErrNotInitialized     = New(NotInitialized, "contract is not initialized")
	ErrTransferFailed     = New(TransferFailed, "CFX Transfer Failed")
)
