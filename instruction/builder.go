package instruction

import (
	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/metadata"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// Builder assembles client instructions for the staking program, deriving
// every program address from the owner and asset.
type Builder struct {
	deriver         *derive.Deriver
	tokenProgram    solana.PublicKey
	metadataProgram solana.PublicKey
}

func NewBuilder(deriver *derive.Deriver, tokenProgram solana.PublicKey, metadataProgram solana.PublicKey) *Builder {
	return &Builder{
		deriver:         deriver,
		tokenProgram:    tokenProgram,
		metadataProgram: metadataProgram,
	}
}

// AssetArgs names the staked asset.
type AssetArgs struct {
	Owner        solana.PublicKey
	TokenAccount solana.PublicKey
	Mint         solana.PublicKey
}

// RewardArgs names where rewards are minted.
type RewardArgs struct {
	Mint        solana.PublicKey
	Destination solana.PublicKey
}

func (b *Builder) record(owner, tokenAccount solana.PublicKey) (solana.PublicKey, error) {
	record, err := b.deriver.StakeRecord(owner, tokenAccount)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return record.Address, nil
}

func (b *Builder) NewInitializeInstruction(owner solana.PublicKey, tokenAccount solana.PublicKey) (*solana.GenericInstruction, error) {
	record, err := b.record(owner, tokenAccount)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(owner).SIGNER().WRITE(),
		solana.Meta(tokenAccount),
		solana.Meta(record).WRITE(),
		solana.Meta(system.ProgramID),
	}
	return solana.NewInstruction(b.deriver.ProgramID(), metas, InitializeStakeAccount.Pack()), nil
}

func (b *Builder) NewStakeInstruction(asset AssetArgs) (*solana.GenericInstruction, error) {
	record, err := b.record(asset.Owner, asset.TokenAccount)
	if err != nil {
		return nil, err
	}
	authority, err := b.deriver.FreezeAuthority()
	if err != nil {
		return nil, err
	}
	edition, _, err := metadata.FindMasterEditionAddress(b.metadataProgram, asset.Mint)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(asset.Owner).SIGNER().WRITE(),
		solana.Meta(asset.TokenAccount).WRITE(),
		solana.Meta(asset.Mint),
		solana.Meta(edition),
		solana.Meta(record).WRITE(),
		solana.Meta(authority.Address),
		solana.Meta(b.tokenProgram),
		solana.Meta(b.metadataProgram),
	}
	return solana.NewInstruction(b.deriver.ProgramID(), metas, Stake.Pack()), nil
}

func (b *Builder) NewRedeemInstruction(owner solana.PublicKey, tokenAccount solana.PublicKey, reward RewardArgs) (*solana.GenericInstruction, error) {
	record, err := b.record(owner, tokenAccount)
	if err != nil {
		return nil, err
	}
	mintAuthority, err := b.deriver.MintAuthority()
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(owner).SIGNER().WRITE(),
		solana.Meta(tokenAccount),
		solana.Meta(record).WRITE(),
		solana.Meta(reward.Mint).WRITE(),
		solana.Meta(mintAuthority.Address),
		solana.Meta(reward.Destination).WRITE(),
		solana.Meta(b.tokenProgram),
	}
	return solana.NewInstruction(b.deriver.ProgramID(), metas, Redeem.Pack()), nil
}

func (b *Builder) NewUnstakeInstruction(asset AssetArgs, reward RewardArgs) (*solana.GenericInstruction, error) {
	record, err := b.record(asset.Owner, asset.TokenAccount)
	if err != nil {
		return nil, err
	}
	authority, err := b.deriver.FreezeAuthority()
	if err != nil {
		return nil, err
	}
	mintAuthority, err := b.deriver.MintAuthority()
	if err != nil {
		return nil, err
	}
	edition, _, err := metadata.FindMasterEditionAddress(b.metadataProgram, asset.Mint)
	if err != nil {
		return nil, err
	}
	metas := solana.AccountMetaSlice{
		solana.Meta(asset.Owner).SIGNER().WRITE(),
		solana.Meta(asset.TokenAccount).WRITE(),
		solana.Meta(asset.Mint),
		solana.Meta(edition),
		solana.Meta(record).WRITE(),
		solana.Meta(authority.Address),
		solana.Meta(reward.Mint).WRITE(),
		solana.Meta(mintAuthority.Address),
		solana.Meta(reward.Destination).WRITE(),
		solana.Meta(b.tokenProgram),
		solana.Meta(b.metadataProgram),
	}
	return solana.NewInstruction(b.deriver.ProgramID(), metas, Unstake.Pack()), nil
}
