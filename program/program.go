package program

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Clock reports ledger time in unix seconds.
type Clock interface {
	Now() int64
}

// Runtime is what the external ledger offers to a running program.
type Runtime interface {
	// Invoke runs another program's instruction inside the current transaction.
	// signerSeeds grant signer privilege to addresses derived from the calling
	// program with those seeds.
	Invoke(ctx context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error

	// CreateAccount allocates zeroed storage of the given size at target and
	// assigns it to owner. It fails if target already exists.
	CreateAccount(ctx context.Context, payer *AccountInfo, target *AccountInfo, space uint64, owner solana.PublicKey, signerSeeds ...[][]byte) error
}

// Env is the execution environment of a single instruction.
type Env struct {
	ProgramID solana.PublicKey
	Accounts  []*AccountInfo
	Clock     Clock
	Runtime   Runtime
}

func (env *Env) Iter() *AccountIter {
	return NewAccountIter(env.Accounts)
}

// Program is a native program the ledger can execute.
type Program interface {
	ProgramID() solana.PublicKey
	Process(ctx context.Context, env *Env, data []byte) error
}

// Retarget rebuilds ix so it addresses programID, keeping its accounts and
// data. Builders from the token package always address the canonical program.
func Retarget(ix solana.Instruction, programID solana.PublicKey) (*solana.GenericInstruction, error) {
	data, err := ix.Data()
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, ix.Accounts(), data), nil
}
