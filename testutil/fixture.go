package testutil

import (
	"context"
	"encoding/binary"

	"github.com/cordialsys/nftstake/custody"
	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/instruction"
	"github.com/cordialsys/nftstake/ledger"
	"github.com/cordialsys/nftstake/lifecycle"
	"github.com/cordialsys/nftstake/state"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	pkgerrors "github.com/pkg/errors"
)

// Fixture is an in-memory ledger with the custody programs and the staking
// program deployed, one owner holding one asset, and a reward mint the
// staking program may issue from.
type Fixture struct {
	Ledger    *ledger.Ledger
	Clock     *ledger.FixedClock
	Programs  custody.Programs
	Processor *lifecycle.Processor
	Builder   *instruction.Builder

	Owner         solana.PrivateKey
	Asset         *custody.Asset
	RewardMint    solana.PublicKey
	RewardAccount solana.PublicKey

	nonce uint64
}

// NewFixture deploys a staking program with the given options at time 0.
func NewFixture(options lifecycle.Options) (*Fixture, error) {
	programs := custody.DefaultPrograms()
	options.TokenProgram = programs.Token
	options.MetadataProgram = programs.Metadata

	clock := ledger.NewFixedClock(0)
	l := ledger.New(ledger.NewMemStore(), clock)
	programs.Register(l)

	processor, err := lifecycle.NewProcessor(solana.NewWallet().PublicKey(), options)
	if err != nil {
		return nil, err
	}
	l.Register(processor)

	f := &Fixture{
		Ledger:    l,
		Clock:     clock,
		Programs:  programs,
		Processor: processor,
		Builder:   instruction.NewBuilder(processor.Deriver(), programs.Token, programs.Metadata),
		Owner:     solana.NewWallet().PrivateKey,
	}
	if f.Asset, err = f.IssueAsset(f.Owner.PublicKey()); err != nil {
		return nil, err
	}

	mintAuthority, err := processor.Deriver().MintAuthority()
	if err != nil {
		return nil, err
	}
	f.RewardMint = solana.NewWallet().PublicKey()
	if err := programs.CreateRewardMint(l, f.RewardMint, 0, mintAuthority.Address); err != nil {
		return nil, err
	}
	if f.RewardAccount, err = programs.CreateTokenAccount(l, f.Owner.PublicKey(), f.RewardMint); err != nil {
		return nil, err
	}
	return f, nil
}

// IssueAsset mints a fresh unique asset to owner.
func (f *Fixture) IssueAsset(owner solana.PublicKey) (*custody.Asset, error) {
	return f.Programs.IssueAsset(f.Ledger, owner, solana.NewWallet().PublicKey())
}

func (f *Fixture) AssetArgs() instruction.AssetArgs {
	return instruction.AssetArgs{
		Owner:        f.Asset.Owner,
		TokenAccount: f.Asset.TokenAccount,
		Mint:         f.Asset.Mint,
	}
}

func (f *Fixture) RewardArgs() instruction.RewardArgs {
	return instruction.RewardArgs{
		Mint:        f.RewardMint,
		Destination: f.RewardAccount,
	}
}

// NewTransaction builds a transaction paid and signed by signer. Each call
// uses a distinct recent blockhash so repeated instructions do not collide.
func (f *Fixture) NewTransaction(signer solana.PrivateKey, ixs ...solana.Instruction) (*solana.Transaction, error) {
	f.nonce++
	var blockhash solana.Hash
	binary.LittleEndian.PutUint64(blockhash[:], f.nonce)
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(signer.PublicKey()))
	if err != nil {
		return nil, err
	}
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(signer.PublicKey()) {
			return &signer
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "sign transaction")
	}
	return tx, nil
}

// SubmitAs signs with signer and submits.
func (f *Fixture) SubmitAs(signer solana.PrivateKey, ixs ...solana.Instruction) (solana.Signature, error) {
	tx, err := f.NewTransaction(signer, ixs...)
	if err != nil {
		return solana.Signature{}, err
	}
	return f.Ledger.Submit(context.Background(), tx)
}

// Submit signs with the fixture owner and submits.
func (f *Fixture) Submit(ixs ...solana.Instruction) (solana.Signature, error) {
	return f.SubmitAs(f.Owner, ixs...)
}

func (f *Fixture) Initialize() error {
	ix, err := f.Builder.NewInitializeInstruction(f.Asset.Owner, f.Asset.TokenAccount)
	if err != nil {
		return err
	}
	_, err = f.Submit(ix)
	return err
}

func (f *Fixture) Stake() error {
	ix, err := f.Builder.NewStakeInstruction(f.AssetArgs())
	if err != nil {
		return err
	}
	_, err = f.Submit(ix)
	return err
}

func (f *Fixture) Redeem() error {
	ix, err := f.Builder.NewRedeemInstruction(f.Asset.Owner, f.Asset.TokenAccount, f.RewardArgs())
	if err != nil {
		return err
	}
	_, err = f.Submit(ix)
	return err
}

func (f *Fixture) Unstake() error {
	ix, err := f.Builder.NewUnstakeInstruction(f.AssetArgs(), f.RewardArgs())
	if err != nil {
		return err
	}
	_, err = f.Submit(ix)
	return err
}

// RecordAddress is the stake record of the fixture owner and asset.
func (f *Fixture) RecordAddress() (derive.Capability, error) {
	return f.Processor.Deriver().StakeRecord(f.Asset.Owner, f.Asset.TokenAccount)
}

// Record reads the committed stake record. A record that was never created
// reads as the default record.
func (f *Fixture) Record() (*state.StakeRecord, error) {
	record, err := f.RecordAddress()
	if err != nil {
		return nil, err
	}
	account, err := f.Ledger.Account(record.Address)
	if ledger.IsNotFound(err) {
		return state.Load(nil)
	}
	if err != nil {
		return nil, err
	}
	return state.Load(account.Data)
}

func (f *Fixture) AssetAccount() (*token.Account, error) {
	return custody.TokenAccount(f.Ledger, f.Asset.TokenAccount)
}

func (f *Fixture) RewardBalance() (uint64, error) {
	account, err := custody.TokenAccount(f.Ledger, f.RewardAccount)
	if err != nil {
		return 0, err
	}
	return account.Amount, nil
}
