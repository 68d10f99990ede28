package lifecycle

import (
	"context"

	"github.com/cordialsys/nftstake/delegation"
	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/program"
	"github.com/cordialsys/nftstake/state"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// Stake delegates the asset to the freeze authority and freezes it in
// place, then marks the record staked.
func (p *Processor) Stake(ctx context.Context, env *program.Env) error {
	accounts, err := env.Iter().NextN(8)
	if err != nil {
		return err
	}
	owner, asset, mint, edition := accounts[0], accounts[1], accounts[2], accounts[3]
	recordInfo, authorityInfo, tokenProgram, metadataProgram := accounts[4], accounts[5], accounts[6], accounts[7]

	if err := requireSigner(owner); err != nil {
		return err
	}
	authority, err := p.deriver.Verify(derive.TagAuthority, nil, authorityInfo.Key)
	if err != nil {
		return err
	}
	if _, err := p.deriver.Verify(derive.TagStake, []solana.PublicKey{owner.Key, asset.Key}, recordInfo.Key); err != nil {
		return err
	}
	if err := p.requireTokenProgram(tokenProgram); err != nil {
		return err
	}
	if err := p.requireMetadataProgram(metadataProgram); err != nil {
		return err
	}
	record, err := loadOwned(recordInfo, owner.Key, asset.Key)
	if err != nil {
		return err
	}
	next, err := transition(ctx, record, eventStake)
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{
		"owner":  owner.Key.String(),
		"asset":  asset.Key.String(),
		"record": recordInfo.Key.String(),
	})
	controller := p.controller(env)
	if err := controller.GrantTransfer(ctx, owner.Key, asset.Key, authority.Address, 1); err != nil {
		return err
	}
	log.Debug("approved freeze authority")
	custody := delegation.Asset{
		TokenAccount: asset.Key,
		Mint:         mint.Key,
		Edition:      edition.Key,
	}
	if err := controller.Freeze(ctx, authority, custody); err != nil {
		return err
	}
	log.Debug("froze asset")

	now := env.Clock.Now()
	record.CurrentlyStaked = true
	record.LastStaked = state.Timestamp(now)
	if err := commit(recordInfo, record, next); err != nil {
		return err
	}
	log.WithField("last_staked", now).Info("staked")
	return nil
}
