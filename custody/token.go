package custody

import (
	"bytes"
	"context"
	"math"

	"github.com/cordialsys/nftstake/program"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingSignature  = pkgerrors.New("missing required signature")
	ErrOwnerMismatch     = pkgerrors.New("owner does not match")
	ErrMintMismatch      = pkgerrors.New("account not associated with this mint")
	ErrAccountFrozen     = pkgerrors.New("account is frozen")
	ErrAccountNotFrozen  = pkgerrors.New("account is not frozen")
	ErrInsufficientFunds = pkgerrors.New("insufficient funds")
	ErrOverflow          = pkgerrors.New("operation overflowed")
	ErrNotInitialized    = pkgerrors.New("account is not initialized")
	ErrNoAuthority       = pkgerrors.New("authority is not set for this mint")
	ErrUnsupported       = pkgerrors.New("unsupported instruction")
	ErrInvalidAccount    = pkgerrors.New("invalid account")
)

// Token account and mint sizes of the token program layouts.
const (
	TokenAccountSize = 165
	MintSize         = 82
)

// TokenProgram implements the subset of the token program the staking
// flow drives: delegation, freezing, minting and transfers.
type TokenProgram struct {
	id solana.PublicKey
}

var _ program.Program = &TokenProgram{}

func NewTokenProgram(id solana.PublicKey) *TokenProgram {
	if id.IsZero() {
		id = solana.TokenProgramID
	}
	return &TokenProgram{id: id}
}

func (p *TokenProgram) ProgramID() solana.PublicKey {
	return p.id
}

func DecodeTokenAccount(data []byte) (*token.Account, error) {
	account := &token.Account{}
	if err := account.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, pkgerrors.Wrap(err, "decode token account")
	}
	return account, nil
}

func EncodeTokenAccount(account *token.Account) ([]byte, error) {
	var buf bytes.Buffer
	if err := account.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		return nil, pkgerrors.Wrap(err, "encode token account")
	}
	return buf.Bytes(), nil
}

func DecodeMint(data []byte) (*token.Mint, error) {
	mint := &token.Mint{}
	if err := mint.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, pkgerrors.Wrap(err, "decode mint")
	}
	return mint, nil
}

func EncodeMint(mint *token.Mint) ([]byte, error) {
	var buf bytes.Buffer
	if err := mint.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		return nil, pkgerrors.Wrap(err, "encode mint")
	}
	return buf.Bytes(), nil
}

func (p *TokenProgram) loadAccount(info *program.AccountInfo) (*token.Account, error) {
	if !info.IsOwnedBy(p.id) {
		return nil, pkgerrors.Wrapf(ErrInvalidAccount, "%s is not a token account", info.Key)
	}
	account, err := DecodeTokenAccount(info.Data)
	if err != nil {
		return nil, err
	}
	if account.State == token.Uninitialized {
		return nil, pkgerrors.Wrapf(ErrNotInitialized, "token account %s", info.Key)
	}
	return account, nil
}

func (p *TokenProgram) loadMint(info *program.AccountInfo) (*token.Mint, error) {
	if !info.IsOwnedBy(p.id) {
		return nil, pkgerrors.Wrapf(ErrInvalidAccount, "%s is not a mint", info.Key)
	}
	mint, err := DecodeMint(info.Data)
	if err != nil {
		return nil, err
	}
	if !mint.IsInitialized {
		return nil, pkgerrors.Wrapf(ErrNotInitialized, "mint %s", info.Key)
	}
	return mint, nil
}

func storeAccount(info *program.AccountInfo, account *token.Account) error {
	raw, err := EncodeTokenAccount(account)
	if err != nil {
		return err
	}
	copy(info.Data, raw)
	return nil
}

func storeMint(info *program.AccountInfo, mint *token.Mint) error {
	raw, err := EncodeMint(mint)
	if err != nil {
		return err
	}
	copy(info.Data, raw)
	return nil
}

func requireSigner(info *program.AccountInfo, expected solana.PublicKey) error {
	if !info.Key.Equals(expected) {
		return pkgerrors.Wrapf(ErrOwnerMismatch, "%s is not %s", info.Key, expected)
	}
	if !info.IsSigner {
		return pkgerrors.Wrapf(ErrMissingSignature, "%s", info.Key)
	}
	return nil
}

func (p *TokenProgram) Process(ctx context.Context, env *program.Env, data []byte) error {
	metas := make([]*solana.AccountMeta, len(env.Accounts))
	for i, info := range env.Accounts {
		metas[i] = solana.NewAccountMeta(info.Key, info.IsWritable, info.IsSigner)
	}
	inst, err := token.DecodeInstruction(metas, data)
	if err != nil {
		return pkgerrors.Wrap(ErrUnsupported, err.Error())
	}
	log := logrus.WithField("program", "token")
	switch ix := inst.Impl.(type) {
	case *token.Approve:
		log.Trace("approve")
		return p.approve(env, *ix.Amount)
	case *token.Revoke:
		log.Trace("revoke")
		return p.revoke(env)
	case *token.MintTo:
		log.Trace("mint to")
		return p.mintTo(env, *ix.Amount)
	case *token.FreezeAccount:
		log.Trace("freeze")
		return p.setFrozen(env, true)
	case *token.ThawAccount:
		log.Trace("thaw")
		return p.setFrozen(env, false)
	case *token.Transfer:
		log.Trace("transfer")
		return p.transfer(env, *ix.Amount)
	default:
		return pkgerrors.Wrapf(ErrUnsupported, "token instruction %d", inst.TypeID.Uint8())
	}
}

func (p *TokenProgram) approve(env *program.Env, amount uint64) error {
	accounts, err := env.Iter().NextN(3)
	if err != nil {
		return err
	}
	source, delegate, owner := accounts[0], accounts[1], accounts[2]
	account, err := p.loadAccount(source)
	if err != nil {
		return err
	}
	if err := requireSigner(owner, account.Owner); err != nil {
		return err
	}
	if account.State == token.Frozen {
		return pkgerrors.Wrapf(ErrAccountFrozen, "%s", source.Key)
	}
	delegateKey := delegate.Key
	account.Delegate = &delegateKey
	account.DelegatedAmount = amount
	return storeAccount(source, account)
}

func (p *TokenProgram) revoke(env *program.Env) error {
	accounts, err := env.Iter().NextN(2)
	if err != nil {
		return err
	}
	source, owner := accounts[0], accounts[1]
	account, err := p.loadAccount(source)
	if err != nil {
		return err
	}
	if err := requireSigner(owner, account.Owner); err != nil {
		return err
	}
	if account.State == token.Frozen {
		return pkgerrors.Wrapf(ErrAccountFrozen, "%s", source.Key)
	}
	account.Delegate = nil
	account.DelegatedAmount = 0
	return storeAccount(source, account)
}

func (p *TokenProgram) mintTo(env *program.Env, amount uint64) error {
	accounts, err := env.Iter().NextN(3)
	if err != nil {
		return err
	}
	mintInfo, destination, authority := accounts[0], accounts[1], accounts[2]
	mint, err := p.loadMint(mintInfo)
	if err != nil {
		return err
	}
	account, err := p.loadAccount(destination)
	if err != nil {
		return err
	}
	if !account.Mint.Equals(mintInfo.Key) {
		return pkgerrors.Wrapf(ErrMintMismatch, "%s", destination.Key)
	}
	if account.State == token.Frozen {
		return pkgerrors.Wrapf(ErrAccountFrozen, "%s", destination.Key)
	}
	if mint.MintAuthority == nil {
		return pkgerrors.Wrapf(ErrNoAuthority, "%s", mintInfo.Key)
	}
	if err := requireSigner(authority, *mint.MintAuthority); err != nil {
		return err
	}
	if mint.Supply > math.MaxUint64-amount || account.Amount > math.MaxUint64-amount {
		return pkgerrors.Wrapf(ErrOverflow, "mint %d", amount)
	}
	mint.Supply += amount
	account.Amount += amount
	if err := storeMint(mintInfo, mint); err != nil {
		return err
	}
	return storeAccount(destination, account)
}

func (p *TokenProgram) setFrozen(env *program.Env, frozen bool) error {
	accounts, err := env.Iter().NextN(3)
	if err != nil {
		return err
	}
	target, mintInfo, authority := accounts[0], accounts[1], accounts[2]
	account, err := p.loadAccount(target)
	if err != nil {
		return err
	}
	mint, err := p.loadMint(mintInfo)
	if err != nil {
		return err
	}
	if !account.Mint.Equals(mintInfo.Key) {
		return pkgerrors.Wrapf(ErrMintMismatch, "%s", target.Key)
	}
	if mint.FreezeAuthority == nil {
		return pkgerrors.Wrapf(ErrNoAuthority, "%s", mintInfo.Key)
	}
	if err := requireSigner(authority, *mint.FreezeAuthority); err != nil {
		return err
	}
	if frozen && account.State == token.Frozen {
		return pkgerrors.Wrapf(ErrAccountFrozen, "%s", target.Key)
	}
	if !frozen && account.State != token.Frozen {
		return pkgerrors.Wrapf(ErrAccountNotFrozen, "%s", target.Key)
	}
	account.State = token.Initialized
	if frozen {
		account.State = token.Frozen
	}
	return storeAccount(target, account)
}

func (p *TokenProgram) transfer(env *program.Env, amount uint64) error {
	accounts, err := env.Iter().NextN(3)
	if err != nil {
		return err
	}
	sourceInfo, destinationInfo, authority := accounts[0], accounts[1], accounts[2]
	source, err := p.loadAccount(sourceInfo)
	if err != nil {
		return err
	}
	destination, err := p.loadAccount(destinationInfo)
	if err != nil {
		return err
	}
	if source.State == token.Frozen || destination.State == token.Frozen {
		return pkgerrors.Wrapf(ErrAccountFrozen, "%s -> %s", sourceInfo.Key, destinationInfo.Key)
	}
	if !source.Mint.Equals(destination.Mint) {
		return pkgerrors.Wrapf(ErrMintMismatch, "%s", destinationInfo.Key)
	}
	if !authority.IsSigner {
		return pkgerrors.Wrapf(ErrMissingSignature, "%s", authority.Key)
	}
	switch {
	case authority.Key.Equals(source.Owner):
	case source.Delegate != nil && authority.Key.Equals(*source.Delegate):
		if source.DelegatedAmount < amount {
			return pkgerrors.Wrapf(ErrInsufficientFunds, "delegated %d", source.DelegatedAmount)
		}
		source.DelegatedAmount -= amount
		if source.DelegatedAmount == 0 {
			source.Delegate = nil
		}
	default:
		return pkgerrors.Wrapf(ErrOwnerMismatch, "%s", authority.Key)
	}
	if source.Amount < amount {
		return pkgerrors.Wrapf(ErrInsufficientFunds, "balance %d", source.Amount)
	}
	if sourceInfo.Key.Equals(destinationInfo.Key) {
		return nil
	}
	source.Amount -= amount
	destination.Amount += amount
	if err := storeAccount(sourceInfo, source); err != nil {
		return err
	}
	return storeAccount(destinationInfo, destination)
}
