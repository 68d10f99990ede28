// Package metadata builds and decodes the token-metadata program
// instructions used to freeze a delegated asset in place.
package metadata

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Instruction discriminators of the token metadata program.
const (
	Instruction_FreezeDelegatedAccount uint8 = 26
	Instruction_ThawDelegatedAccount   uint8 = 27
)

const editionSeed = "edition"
const metadataSeed = "metadata"

// FindMasterEditionAddress derives the master edition of mint under the
// given metadata program.
func FindMasterEditionAddress(metadataProgram solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(EditionSeeds(metadataProgram, mint), metadataProgram)
}

func EditionSeeds(metadataProgram solana.PublicKey, mint solana.PublicKey) [][]byte {
	return [][]byte{
		[]byte(metadataSeed),
		metadataProgram.Bytes(),
		mint.Bytes(),
		[]byte(editionSeed),
	}
}

// DelegatedAccount is the account set of a freeze or thaw of a delegated
// token account.
type DelegatedAccount struct {
	Delegate     solana.PublicKey
	TokenAccount solana.PublicKey
	Edition      solana.PublicKey
	Mint         solana.PublicKey
	TokenProgram solana.PublicKey
}

func (d DelegatedAccount) metas() solana.AccountMetaSlice {
	return solana.AccountMetaSlice{
		solana.Meta(d.Delegate).SIGNER().WRITE(),
		solana.Meta(d.TokenAccount).WRITE(),
		solana.Meta(d.Edition),
		solana.Meta(d.Mint),
		solana.Meta(d.TokenProgram),
	}
}

func NewFreezeDelegatedAccountInstruction(metadataProgram solana.PublicKey, accounts DelegatedAccount) *solana.GenericInstruction {
	return solana.NewInstruction(metadataProgram, accounts.metas(), []byte{Instruction_FreezeDelegatedAccount})
}

func NewThawDelegatedAccountInstruction(metadataProgram solana.PublicKey, accounts DelegatedAccount) *solana.GenericInstruction {
	return solana.NewInstruction(metadataProgram, accounts.metas(), []byte{Instruction_ThawDelegatedAccount})
}

// DecodeInstruction returns the discriminator and account set of a freeze or
// thaw instruction.
func DecodeInstruction(accounts []solana.PublicKey, data []byte) (uint8, DelegatedAccount, error) {
	if len(data) == 0 {
		return 0, DelegatedAccount{}, fmt.Errorf("empty metadata instruction")
	}
	kind := data[0]
	switch kind {
	case Instruction_FreezeDelegatedAccount, Instruction_ThawDelegatedAccount:
	default:
		return 0, DelegatedAccount{}, fmt.Errorf("unsupported metadata instruction %d", kind)
	}
	if len(accounts) < 5 {
		return 0, DelegatedAccount{}, fmt.Errorf("metadata instruction %d needs 5 accounts, got %d", kind, len(accounts))
	}
	return kind, DelegatedAccount{
		Delegate:     accounts[0],
		TokenAccount: accounts[1],
		Edition:      accounts[2],
		Mint:         accounts[3],
		TokenProgram: accounts[4],
	}, nil
}
