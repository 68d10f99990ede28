package custody_test

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/cordialsys/nftstake/custody"
	"github.com/cordialsys/nftstake/ledger"
	"github.com/cordialsys/nftstake/metadata"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/stretchr/testify/suite"
)

type CustodyTestSuite struct {
	suite.Suite
	ledger   *ledger.Ledger
	programs custody.Programs
	owner    solana.PrivateKey
	delegate solana.PrivateKey
	asset    *custody.Asset
	nonce    uint64
}

func (s *CustodyTestSuite) SetupTest() {
	require := s.Require()
	s.ledger = ledger.New(ledger.NewMemStore(), ledger.NewFixedClock(0))
	s.programs = custody.DefaultPrograms()
	s.programs.Register(s.ledger)
	s.owner = solana.NewWallet().PrivateKey
	s.delegate = solana.NewWallet().PrivateKey

	var err error
	s.asset, err = s.programs.IssueAsset(s.ledger, s.owner.PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(err)
}

func TestCustody(t *testing.T) {
	suite.Run(t, new(CustodyTestSuite))
}

func (s *CustodyTestSuite) submit(signers []solana.PrivateKey, ixs ...solana.Instruction) error {
	require := s.Require()
	s.nonce++
	var blockhash solana.Hash
	binary.LittleEndian.PutUint64(blockhash[:], s.nonce)
	tx, err := solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(signers[0].PublicKey()))
	require.NoError(err)
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	})
	require.NoError(err)
	_, err = s.ledger.Submit(context.Background(), tx)
	return err
}

func (s *CustodyTestSuite) account() *token.Account {
	require := s.Require()
	account, err := custody.TokenAccount(s.ledger, s.asset.TokenAccount)
	require.NoError(err)
	return account
}

func (s *CustodyTestSuite) approve() {
	require := s.Require()
	ix, err := token.NewApproveInstruction(1, s.asset.TokenAccount, s.delegate.PublicKey(), s.owner.PublicKey(), nil).ValidateAndBuild()
	require.NoError(err)
	require.NoError(s.submit([]solana.PrivateKey{s.owner}, ix))
}

func (s *CustodyTestSuite) delegated() metadata.DelegatedAccount {
	return metadata.DelegatedAccount{
		Delegate:     s.delegate.PublicKey(),
		TokenAccount: s.asset.TokenAccount,
		Edition:      s.asset.Edition,
		Mint:         s.asset.Mint,
		TokenProgram: s.programs.Token,
	}
}

func (s *CustodyTestSuite) TestIssueAsset() {
	require := s.Require()
	account := s.account()
	require.Equal(s.owner.PublicKey(), account.Owner)
	require.Equal(s.asset.Mint, account.Mint)
	require.EqualValues(1, account.Amount)

	mint, err := custody.Mint(s.ledger, s.asset.Mint)
	require.NoError(err)
	require.EqualValues(1, mint.Supply)
	require.Equal(s.asset.Edition, *mint.MintAuthority)
	require.Equal(s.asset.Edition, *mint.FreezeAuthority)

	_, err = s.programs.IssueAsset(s.ledger, s.owner.PublicKey(), s.asset.Mint)
	require.Error(err)
}

func (s *CustodyTestSuite) TestApproveAndRevoke() {
	require := s.Require()
	s.approve()
	account := s.account()
	require.NotNil(account.Delegate)
	require.Equal(s.delegate.PublicKey(), *account.Delegate)
	require.EqualValues(1, account.DelegatedAmount)

	ix, err := token.NewRevokeInstruction(s.asset.TokenAccount, s.owner.PublicKey(), nil).ValidateAndBuild()
	require.NoError(err)
	require.NoError(s.submit([]solana.PrivateKey{s.owner}, ix))
	account = s.account()
	require.Nil(account.Delegate)
	require.Zero(account.DelegatedAmount)
}

func (s *CustodyTestSuite) TestApproveRequiresOwner() {
	require := s.Require()
	stranger := solana.NewWallet().PrivateKey
	ix, err := token.NewApproveInstruction(1, s.asset.TokenAccount, s.delegate.PublicKey(), stranger.PublicKey(), nil).ValidateAndBuild()
	require.NoError(err)
	err = s.submit([]solana.PrivateKey{stranger}, ix)
	require.ErrorIs(err, custody.ErrOwnerMismatch)
	require.Nil(s.account().Delegate)
}

func (s *CustodyTestSuite) TestFreezeAndThaw() {
	require := s.Require()
	s.approve()
	freeze := metadata.NewFreezeDelegatedAccountInstruction(s.programs.Metadata, s.delegated())
	require.NoError(s.submit([]solana.PrivateKey{s.delegate}, freeze))
	require.Equal(token.Frozen, s.account().State)

	freezeAgain := metadata.NewFreezeDelegatedAccountInstruction(s.programs.Metadata, s.delegated())
	err := s.submit([]solana.PrivateKey{s.delegate}, freezeAgain)
	require.ErrorIs(err, custody.ErrAccountFrozen)

	// frozen accounts cannot move or change delegation
	destination, err := s.programs.CreateTokenAccount(s.ledger, solana.NewWallet().PublicKey(), s.asset.Mint)
	require.NoError(err)
	transfer, err := token.NewTransferInstruction(1, s.asset.TokenAccount, destination, s.owner.PublicKey(), nil).ValidateAndBuild()
	require.NoError(err)
	require.ErrorIs(s.submit([]solana.PrivateKey{s.owner}, transfer), custody.ErrAccountFrozen)
	revoke, err := token.NewRevokeInstruction(s.asset.TokenAccount, s.owner.PublicKey(), nil).ValidateAndBuild()
	require.NoError(err)
	require.ErrorIs(s.submit([]solana.PrivateKey{s.owner}, revoke), custody.ErrAccountFrozen)

	thaw := metadata.NewThawDelegatedAccountInstruction(s.programs.Metadata, s.delegated())
	require.NoError(s.submit([]solana.PrivateKey{s.delegate}, thaw))
	require.Equal(token.Initialized, s.account().State)

	thawAgain := metadata.NewThawDelegatedAccountInstruction(s.programs.Metadata, s.delegated())
	require.ErrorIs(s.submit([]solana.PrivateKey{s.delegate}, thawAgain), custody.ErrAccountNotFrozen)
}

func (s *CustodyTestSuite) TestFreezeRequiresDelegate() {
	require := s.Require()
	freeze := metadata.NewFreezeDelegatedAccountInstruction(s.programs.Metadata, s.delegated())
	err := s.submit([]solana.PrivateKey{s.delegate}, freeze)
	require.ErrorIs(err, custody.ErrOwnerMismatch)
	require.Equal(token.Initialized, s.account().State)
}

func (s *CustodyTestSuite) TestTransferByDelegate() {
	require := s.Require()
	s.approve()
	recipient := solana.NewWallet().PublicKey()
	destination, err := s.programs.CreateTokenAccount(s.ledger, recipient, s.asset.Mint)
	require.NoError(err)
	transfer, err := token.NewTransferInstruction(1, s.asset.TokenAccount, destination, s.delegate.PublicKey(), nil).ValidateAndBuild()
	require.NoError(err)
	require.NoError(s.submit([]solana.PrivateKey{s.delegate}, transfer))

	source := s.account()
	require.Zero(source.Amount)
	require.Nil(source.Delegate)
	moved, err := custody.TokenAccount(s.ledger, destination)
	require.NoError(err)
	require.EqualValues(1, moved.Amount)
}

func (s *CustodyTestSuite) TestMintTo() {
	require := s.Require()
	authority := solana.NewWallet().PrivateKey
	mint := solana.NewWallet().PublicKey()
	authorityKey := authority.PublicKey()
	require.NoError(s.programs.CreateMint(s.ledger, mint, 6, &authorityKey, nil))
	require.Error(s.programs.CreateMint(s.ledger, mint, 6, &authorityKey, nil))
	destination, err := s.programs.CreateTokenAccount(s.ledger, s.owner.PublicKey(), mint)
	require.NoError(err)

	ix, err := token.NewMintToInstruction(500, mint, destination, authorityKey, nil).ValidateAndBuild()
	require.NoError(err)
	require.NoError(s.submit([]solana.PrivateKey{authority}, ix))

	account, err := custody.TokenAccount(s.ledger, destination)
	require.NoError(err)
	require.EqualValues(500, account.Amount)
	minted, err := custody.Mint(s.ledger, mint)
	require.NoError(err)
	require.EqualValues(500, minted.Supply)

	stranger := solana.NewWallet().PrivateKey
	ix, err = token.NewMintToInstruction(1, mint, destination, stranger.PublicKey(), nil).ValidateAndBuild()
	require.NoError(err)
	require.ErrorIs(s.submit([]solana.PrivateKey{stranger}, ix), custody.ErrOwnerMismatch)
}

func (s *CustodyTestSuite) TestUniqueAssetCannotBeMinted() {
	require := s.Require()
	ix, err := token.NewMintToInstruction(1, s.asset.Mint, s.asset.TokenAccount, s.owner.PublicKey(), nil).ValidateAndBuild()
	require.NoError(err)
	require.ErrorIs(s.submit([]solana.PrivateKey{s.owner}, ix), custody.ErrOwnerMismatch)
}
