package instruction

import (
	"fmt"

	"github.com/cordialsys/nftstake/errors"
)

// Opcode is the first byte of an instruction payload.
type Opcode uint8

const (
	InitializeStakeAccount Opcode = iota
	Stake
	Redeem
	Unstake
)

var opcodeNames = map[Opcode]string{
	InitializeStakeAccount: "InitializeStakeAccount",
	Stake:                  "Stake",
	Redeem:                 "Redeem",
	Unstake:                "Unstake",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// Pack encodes the opcode as an instruction payload.
func (op Opcode) Pack() []byte {
	return []byte{byte(op)}
}

// Unpack decodes the opcode of a payload. Bytes after the opcode are ignored.
func Unpack(data []byte) (Opcode, error) {
	if len(data) == 0 {
		return 0, errors.Errorf(errors.InvalidInstructionData, "empty instruction data")
	}
	op := Opcode(data[0])
	if !op.Valid() {
		return 0, errors.Errorf(errors.InvalidInstructionData, "unknown opcode %d", data[0])
	}
	return op, nil
}
