package custody

import (
	"context"

	"github.com/cordialsys/nftstake/metadata"
	"github.com/cordialsys/nftstake/program"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MetadataProgram freezes and thaws token accounts on behalf of their
// delegate. The mint's freeze authority is the master edition, which this
// program signs for.
type MetadataProgram struct {
	id           solana.PublicKey
	tokenProgram solana.PublicKey
}

var _ program.Program = &MetadataProgram{}

func NewMetadataProgram(id solana.PublicKey, tokenProgram solana.PublicKey) *MetadataProgram {
	if id.IsZero() {
		id = solana.TokenMetadataProgramID
	}
	if tokenProgram.IsZero() {
		tokenProgram = solana.TokenProgramID
	}
	return &MetadataProgram{id: id, tokenProgram: tokenProgram}
}

func (p *MetadataProgram) ProgramID() solana.PublicKey {
	return p.id
}

func (p *MetadataProgram) Process(ctx context.Context, env *program.Env, data []byte) error {
	keys := make([]solana.PublicKey, len(env.Accounts))
	for i, info := range env.Accounts {
		keys[i] = info.Key
	}
	kind, accounts, err := metadata.DecodeInstruction(keys, data)
	if err != nil {
		return pkgerrors.Wrap(ErrUnsupported, err.Error())
	}
	infos := env.Accounts
	delegate, tokenAccount, edition := infos[0], infos[1], infos[2]

	if !delegate.IsSigner {
		return pkgerrors.Wrapf(ErrMissingSignature, "delegate %s", delegate.Key)
	}
	if !accounts.TokenProgram.Equals(p.tokenProgram) {
		return pkgerrors.Wrapf(ErrInvalidAccount, "token program %s", accounts.TokenProgram)
	}
	if !tokenAccount.IsOwnedBy(p.tokenProgram) {
		return pkgerrors.Wrapf(ErrInvalidAccount, "%s is not a token account", tokenAccount.Key)
	}
	account, err := DecodeTokenAccount(tokenAccount.Data)
	if err != nil {
		return err
	}
	if account.Delegate == nil || !account.Delegate.Equals(delegate.Key) {
		return pkgerrors.Wrapf(ErrOwnerMismatch, "%s is not the delegate of %s", delegate.Key, tokenAccount.Key)
	}
	if !account.Mint.Equals(accounts.Mint) {
		return pkgerrors.Wrapf(ErrMintMismatch, "%s", tokenAccount.Key)
	}
	expected, bump, err := metadata.FindMasterEditionAddress(p.id, accounts.Mint)
	if err != nil {
		return err
	}
	if !expected.Equals(edition.Key) || !edition.IsOwnedBy(p.id) {
		return pkgerrors.Wrapf(ErrInvalidAccount, "%s is not the edition of %s", edition.Key, accounts.Mint)
	}

	var ix *token.Instruction
	switch kind {
	case metadata.Instruction_FreezeDelegatedAccount:
		if account.State == token.Frozen {
			return pkgerrors.Wrapf(ErrAccountFrozen, "%s", tokenAccount.Key)
		}
		ix, err = token.NewFreezeAccountInstruction(tokenAccount.Key, accounts.Mint, edition.Key, nil).ValidateAndBuild()
	case metadata.Instruction_ThawDelegatedAccount:
		if account.State != token.Frozen {
			return pkgerrors.Wrapf(ErrAccountNotFrozen, "%s", tokenAccount.Key)
		}
		ix, err = token.NewThawAccountInstruction(tokenAccount.Key, accounts.Mint, edition.Key, nil).ValidateAndBuild()
	}
	if err != nil {
		return err
	}
	retargeted, err := program.Retarget(ix, p.tokenProgram)
	if err != nil {
		return err
	}
	seeds := append(metadata.EditionSeeds(p.id, accounts.Mint), []byte{bump})
	logrus.WithFields(logrus.Fields{
		"program": "metadata",
		"account": tokenAccount.Key.String(),
		"kind":    kind,
	}).Trace("delegated freeze")
	return env.Runtime.Invoke(ctx, retargeted, seeds)
}
