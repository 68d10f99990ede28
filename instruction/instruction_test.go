package instruction_test

import (
	"testing"

	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/instruction"
	"github.com/cordialsys/nftstake/metadata"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestUnpack(t *testing.T) {
	vectors := []struct {
		data   []byte
		op     instruction.Opcode
		status errors.Status
	}{
		{[]byte{0}, instruction.InitializeStakeAccount, ""},
		{[]byte{1}, instruction.Stake, ""},
		{[]byte{2, 0xff}, instruction.Redeem, ""},
		{[]byte{3}, instruction.Unstake, ""},
		{[]byte{4}, 0, errors.InvalidInstructionData},
		{[]byte{255}, 0, errors.InvalidInstructionData},
		{nil, 0, errors.InvalidInstructionData},
	}
	for _, v := range vectors {
		op, err := instruction.Unpack(v.data)
		if v.status != "" {
			require.Equal(t, v.status, errors.StatusOf(err), v.data)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, v.op, op)
	}
}

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "Stake", instruction.Stake.String())
	require.Equal(t, "Opcode(9)", instruction.Opcode(9).String())
	require.Equal(t, []byte{3}, instruction.Unstake.Pack())
}

func keys(ix solana.Instruction) []solana.PublicKey {
	out := []solana.PublicKey{}
	for _, meta := range ix.Accounts() {
		out = append(out, meta.PublicKey)
	}
	return out
}

func TestBuilder(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	deriver, err := derive.NewDeriver(programID, 0)
	require.NoError(t, err)
	builder := instruction.NewBuilder(deriver, solana.TokenProgramID, solana.TokenMetadataProgramID)

	owner := solana.NewWallet().PublicKey()
	asset := instruction.AssetArgs{
		Owner:        owner,
		TokenAccount: solana.NewWallet().PublicKey(),
		Mint:         solana.NewWallet().PublicKey(),
	}
	reward := instruction.RewardArgs{
		Mint:        solana.NewWallet().PublicKey(),
		Destination: solana.NewWallet().PublicKey(),
	}
	record, err := deriver.StakeRecord(owner, asset.TokenAccount)
	require.NoError(t, err)
	authority, err := deriver.FreezeAuthority()
	require.NoError(t, err)
	mintAuthority, err := deriver.MintAuthority()
	require.NoError(t, err)
	edition, _, err := metadata.FindMasterEditionAddress(solana.TokenMetadataProgramID, asset.Mint)
	require.NoError(t, err)

	initialize, err := builder.NewInitializeInstruction(owner, asset.TokenAccount)
	require.NoError(t, err)
	require.Equal(t, programID, initialize.ProgramID())
	require.Equal(t, []byte{0}, initialize.DataBytes)
	require.Equal(t, []solana.PublicKey{owner, asset.TokenAccount, record.Address, solana.SystemProgramID}, keys(initialize))
	require.True(t, initialize.AccountValues[0].IsSigner)
	require.True(t, initialize.AccountValues[2].IsWritable)

	stake, err := builder.NewStakeInstruction(asset)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, stake.DataBytes)
	require.Equal(t, []solana.PublicKey{
		owner, asset.TokenAccount, asset.Mint, edition, record.Address, authority.Address,
		solana.TokenProgramID, solana.TokenMetadataProgramID,
	}, keys(stake))

	redeem, err := builder.NewRedeemInstruction(owner, asset.TokenAccount, reward)
	require.NoError(t, err)
	require.Equal(t, []byte{2}, redeem.DataBytes)
	require.Equal(t, []solana.PublicKey{
		owner, asset.TokenAccount, record.Address, reward.Mint, mintAuthority.Address, reward.Destination,
		solana.TokenProgramID,
	}, keys(redeem))

	unstake, err := builder.NewUnstakeInstruction(asset, reward)
	require.NoError(t, err)
	require.Equal(t, []byte{3}, unstake.DataBytes)
	require.Equal(t, []solana.PublicKey{
		owner, asset.TokenAccount, asset.Mint, edition, record.Address, authority.Address,
		reward.Mint, mintAuthority.Address, reward.Destination,
		solana.TokenProgramID, solana.TokenMetadataProgramID,
	}, keys(unstake))
}
