package custody

import (
	"github.com/cordialsys/nftstake/ledger"
	"github.com/cordialsys/nftstake/metadata"
	"github.com/cordialsys/nftstake/program"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	pkgerrors "github.com/pkg/errors"
)

// Programs names the token and metadata programs assets are issued under.
type Programs struct {
	Token    solana.PublicKey
	Metadata solana.PublicKey
}

func DefaultPrograms() Programs {
	return Programs{Token: solana.TokenProgramID, Metadata: solana.TokenMetadataProgramID}
}

// Register deploys both custody programs on l.
func (p Programs) Register(l *ledger.Ledger) {
	l.Register(NewTokenProgram(p.Token))
	l.Register(NewMetadataProgram(p.Metadata, p.Token))
}

// Asset is a uniquely owned token: a mint with supply one, its master
// edition and the owner's token account holding the single unit.
type Asset struct {
	Mint         solana.PublicKey `json:"mint"`
	Edition      solana.PublicKey `json:"edition"`
	TokenAccount solana.PublicKey `json:"token_account"`
	Owner        solana.PublicKey `json:"owner"`
}

// masterEditionData is a master edition record (key 6) with zero supply
// and a max supply of Some(0).
func masterEditionData() []byte {
	data := make([]byte, 1+8+1+8)
	data[0] = 6
	data[9] = 1
	return data
}

// CreateMint writes an initialized mint.
func (p Programs) CreateMint(l *ledger.Ledger, mint solana.PublicKey, decimals uint8, mintAuthority *solana.PublicKey, freezeAuthority *solana.PublicKey) error {
	if existing, err := l.Account(mint); err == nil && existing.Exists() {
		return pkgerrors.Errorf("mint %s already exists", mint)
	}
	raw, err := EncodeMint(&token.Mint{
		MintAuthority:   mintAuthority,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: freezeAuthority,
	})
	if err != nil {
		return err
	}
	return l.SetAccount(mint, &program.Account{Owner: p.Token, Data: raw})
}

// CreateRewardMint writes a mint that only authority can issue from.
func (p Programs) CreateRewardMint(l *ledger.Ledger, mint solana.PublicKey, decimals uint8, authority solana.PublicKey) error {
	return p.CreateMint(l, mint, decimals, &authority, nil)
}

// CreateTokenAccount writes the associated token account of owner for mint
// and returns its address.
func (p Programs) CreateTokenAccount(l *ledger.Ledger, owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, error) {
	address, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if existing, err := l.Account(address); err == nil && existing.Exists() {
		return address, nil
	}
	raw, err := EncodeTokenAccount(&token.Account{
		Mint:  mint,
		Owner: owner,
		State: token.Initialized,
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	return address, l.SetAccount(address, &program.Account{Owner: p.Token, Data: raw})
}

// IssueAsset mints a new unique asset to owner. The master edition is both
// mint and freeze authority, so no further supply can be created.
func (p Programs) IssueAsset(l *ledger.Ledger, owner solana.PublicKey, mint solana.PublicKey) (*Asset, error) {
	edition, _, err := metadata.FindMasterEditionAddress(p.Metadata, mint)
	if err != nil {
		return nil, err
	}
	if existing, err := l.Account(mint); err == nil && existing.Exists() {
		return nil, pkgerrors.Errorf("mint %s already exists", mint)
	}
	if err := l.SetAccount(edition, &program.Account{Owner: p.Metadata, Data: masterEditionData()}); err != nil {
		return nil, err
	}
	tokenAccount, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	raw, err := EncodeTokenAccount(&token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: 1,
		State:  token.Initialized,
	})
	if err != nil {
		return nil, err
	}
	if err := l.SetAccount(tokenAccount, &program.Account{Owner: p.Token, Data: raw}); err != nil {
		return nil, err
	}
	rawMint, err := EncodeMint(&token.Mint{
		MintAuthority:   &edition,
		Supply:          1,
		IsInitialized:   true,
		FreezeAuthority: &edition,
	})
	if err != nil {
		return nil, err
	}
	if err := l.SetAccount(mint, &program.Account{Owner: p.Token, Data: rawMint}); err != nil {
		return nil, err
	}
	return &Asset{
		Mint:         mint,
		Edition:      edition,
		TokenAccount: tokenAccount,
		Owner:        owner,
	}, nil
}

// TokenAccount reads a committed token account.
func TokenAccount(l *ledger.Ledger, address solana.PublicKey) (*token.Account, error) {
	account, err := l.Account(address)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "token account %s", address)
	}
	return DecodeTokenAccount(account.Data)
}

// Mint reads a committed mint.
func Mint(l *ledger.Ledger, address solana.PublicKey) (*token.Mint, error) {
	account, err := l.Account(address)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "mint %s", address)
	}
	return DecodeMint(account.Data)
}
