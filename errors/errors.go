package errors

import (
	stderrors "errors"
	"fmt"
)

type Status string

// The account that must authorize the operation did not sign
const MissingSignature Status = "MissingSignature"

// A supplied account does not match the address it must be derived to
const InvalidDerivedAddress Status = "InvalidDerivedAddress"

// The stake record was never initialized
const UninitializedAccount Status = "UninitializedAccount"

// The signer is not the owner recorded at initialization
const InvalidStakeAccount Status = "InvalidStakeAccount"

// The asset account is not the one recorded at initialization
const InvalidTokenAccount Status = "InvalidTokenAccount"

// The record is in the wrong lifecycle state for the operation
const InvalidStakeOperation Status = "InvalidStakeOperation"

// Unknown opcode or empty instruction payload
const InvalidInstructionData Status = "InvalidInstructionData"

// The custody service refused an approve, revoke, freeze or thaw
const DelegationRejected Status = "DelegationRejected"

// The reward-issuance service refused to mint
const IssuanceFailed Status = "IssuanceFailed"

// Account data could not be decoded or encoded
const SerializationFailure Status = "SerializationFailure"

// A program account is not on the trusted allow-list
const UntrustedProgram Status = "UntrustedProgram"

// Reward arithmetic left the u64 range
const ArithmeticOverflow Status = "ArithmeticOverflow"

// The instruction carried fewer accounts than the operation consumes
const NotEnoughAccountKeys Status = "NotEnoughAccountKeys"

// Storage allocation targeted an account that already exists
const AccountAlreadyInUse Status = "AccountAlreadyInUse"

// A transaction signature did not verify
const InvalidSignature Status = "InvalidSignature"

// A transaction with the same signature was already processed
const TransactionExists Status = "TransactionExists"

// No outcome for this error known
const UnknownError Status = "UnknownError"

// program error codes, the first five match the on-chain program
var codes = map[Status]uint32{
	UninitializedAccount:   0,
	InvalidDerivedAddress:  1,
	InvalidStakeAccount:    2,
	InvalidTokenAccount:    3,
	InvalidStakeOperation:  4,
	MissingSignature:       5,
	InvalidInstructionData: 6,
	DelegationRejected:     7,
	IssuanceFailed:         8,
	SerializationFailure:   9,
	UntrustedProgram:       10,
	ArithmeticOverflow:     11,
	NotEnoughAccountKeys:   12,
	AccountAlreadyInUse:    13,
	InvalidSignature:       14,
	TransactionExists:      15,
}

type Error struct {
	Status  Status
	Message string
}

var _ error = &Error{}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

// Code returns the numeric error code reported to callers.
func (e *Error) Code() uint32 {
	if code, ok := codes[e.Status]; ok {
		return code
	}
	return 0xffff
}

func Errorf(status Status, format string, args ...interface{}) error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

func MissingSignaturef(format string, args ...interface{}) error {
	return Errorf(MissingSignature, format, args...)
}

func InvalidDerivedAddressf(format string, args ...interface{}) error {
	return Errorf(InvalidDerivedAddress, format, args...)
}

func InvalidStakeOperationf(format string, args ...interface{}) error {
	return Errorf(InvalidStakeOperation, format, args...)
}

func SerializationFailuref(format string, args ...interface{}) error {
	return Errorf(SerializationFailure, format, args...)
}

// Used when the custody service refuses a delegation request.
func DelegationRejectedf(format string, args ...interface{}) error {
	return Errorf(DelegationRejected, format, args...)
}

// Used when the reward mint refuses to issue.
func IssuanceFailedf(format string, args ...interface{}) error {
	return Errorf(IssuanceFailed, format, args...)
}

func Unknownf(format string, args ...interface{}) error {
	return Errorf(UnknownError, format, args...)
}

// StatusOf returns the status of the first *Error in err's chain.
func StatusOf(err error) Status {
	if err == nil {
		return ""
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Status
	}
	return UnknownError
}

func Is(err error, status Status) bool {
	return err != nil && StatusOf(err) == status
}

// CodeOf returns the numeric code of the first *Error in err's chain.
func CodeOf(err error) uint32 {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code()
	}
	return (&Error{Status: UnknownError}).Code()
}
