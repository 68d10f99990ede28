package delegation

import (
	"context"

	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/metadata"
	"github.com/cordialsys/nftstake/program"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/sirupsen/logrus"
)

// Asset identifies the accounts of a staked asset the custody service
// needs to lock it.
type Asset struct {
	TokenAccount solana.PublicKey
	Mint         solana.PublicKey
	Edition      solana.PublicKey
}

// Controller drives the custody service: it grants and revokes the transfer
// approval and freezes or thaws the asset under the delegate.
type Controller struct {
	runtime         program.Runtime
	tokenProgram    solana.PublicKey
	metadataProgram solana.PublicKey
}

func NewController(runtime program.Runtime, tokenProgram solana.PublicKey, metadataProgram solana.PublicKey) *Controller {
	return &Controller{
		runtime:         runtime,
		tokenProgram:    tokenProgram,
		metadataProgram: metadataProgram,
	}
}

func (c *Controller) invoke(ctx context.Context, action string, ix solana.Instruction, signerSeeds ...[][]byte) error {
	if err := c.runtime.Invoke(ctx, ix, signerSeeds...); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("custody rejected request")
		return errors.DelegationRejectedf("%s rejected: %v", action, err)
	}
	return nil
}

// GrantTransfer lets delegate move amount units out of account, authorized
// by the owner's signature.
func (c *Controller) GrantTransfer(ctx context.Context, owner solana.PublicKey, account solana.PublicKey, delegate solana.PublicKey, amount uint64) error {
	built, err := token.NewApproveInstruction(amount, account, delegate, owner, nil).ValidateAndBuild()
	if err != nil {
		return errors.DelegationRejectedf("could not build approve: %v", err)
	}
	ix, err := program.Retarget(built, c.tokenProgram)
	if err != nil {
		return errors.DelegationRejectedf("could not encode approve: %v", err)
	}
	return c.invoke(ctx, "approve", ix)
}

// Revoke cancels any standing approval on account.
func (c *Controller) Revoke(ctx context.Context, owner solana.PublicKey, account solana.PublicKey) error {
	built, err := token.NewRevokeInstruction(account, owner, nil).ValidateAndBuild()
	if err != nil {
		return errors.DelegationRejectedf("could not build revoke: %v", err)
	}
	ix, err := program.Retarget(built, c.tokenProgram)
	if err != nil {
		return errors.DelegationRejectedf("could not encode revoke: %v", err)
	}
	return c.invoke(ctx, "revoke", ix)
}

func (c *Controller) delegated(delegate derive.Capability, asset Asset) metadata.DelegatedAccount {
	return metadata.DelegatedAccount{
		Delegate:     delegate.Address,
		TokenAccount: asset.TokenAccount,
		Edition:      asset.Edition,
		Mint:         asset.Mint,
		TokenProgram: c.tokenProgram,
	}
}

// Freeze locks the asset, signed by the delegate capability.
func (c *Controller) Freeze(ctx context.Context, delegate derive.Capability, asset Asset) error {
	ix := metadata.NewFreezeDelegatedAccountInstruction(c.metadataProgram, c.delegated(delegate, asset))
	return c.invoke(ctx, "freeze", ix, delegate.SignerSeeds())
}

// Thaw unlocks the asset, signed by the delegate capability.
func (c *Controller) Thaw(ctx context.Context, delegate derive.Capability, asset Asset) error {
	ix := metadata.NewThawDelegatedAccountInstruction(c.metadataProgram, c.delegated(delegate, asset))
	return c.invoke(ctx, "thaw", ix, delegate.SignerSeeds())
}
