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

// Unstake thaws the asset, revokes the delegation and mints the reward
// accrued since the last stake, whether or not part of it was redeemed.
func (p *Processor) Unstake(ctx context.Context, env *program.Env) error {
	accounts, err := env.Iter().NextN(11)
	if err != nil {
		return err
	}
	owner, asset, mint, edition := accounts[0], accounts[1], accounts[2], accounts[3]
	recordInfo, authorityInfo, rewardMint, mintAuthorityInfo := accounts[4], accounts[5], accounts[6], accounts[7]
	destination, tokenProgram, metadataProgram := accounts[8], accounts[9], accounts[10]

	if err := requireSigner(owner); err != nil {
		return err
	}
	if _, err := p.deriver.Verify(derive.TagStake, []solana.PublicKey{owner.Key, asset.Key}, recordInfo.Key); err != nil {
		return err
	}
	authority, err := p.deriver.Verify(derive.TagAuthority, nil, authorityInfo.Key)
	if err != nil {
		return err
	}
	mintAuthority, err := p.deriver.Verify(derive.TagMint, nil, mintAuthorityInfo.Key)
	if err != nil {
		return err
	}
	if err := p.requireTokenProgram(tokenProgram); err != nil {
		return err
	}
	if err := p.requireMetadataProgram(metadataProgram); err != nil {
		return err
	}
	if err := p.requireRewardMint(rewardMint); err != nil {
		return err
	}
	record, err := loadOwned(recordInfo, owner.Key, asset.Key)
	if err != nil {
		return err
	}
	next, err := transition(ctx, record, eventUnstake)
	if err != nil {
		return err
	}
	now := env.Clock.Now()
	amount, err := p.accrued(record, now)
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{
		"owner":  owner.Key.String(),
		"asset":  asset.Key.String(),
		"record": recordInfo.Key.String(),
		"amount": amount,
	})
	controller := p.controller(env)
	custody := delegation.Asset{
		TokenAccount: asset.Key,
		Mint:         mint.Key,
		Edition:      edition.Key,
	}
	if err := controller.Thaw(ctx, authority, custody); err != nil {
		return err
	}
	log.Debug("thawed asset")
	if err := controller.Revoke(ctx, owner.Key, asset.Key); err != nil {
		return err
	}
	log.Debug("revoked delegation")
	if err := p.issuer(env).Issue(ctx, rewardMint.Key, destination.Key, mintAuthority, amount); err != nil {
		return err
	}

	record.CurrentlyStaked = false
	record.LastWithdrawn = state.Timestamp(now)
	if err := commit(recordInfo, record, next); err != nil {
		return err
	}
	traceReward(eventUnstake, amount)
	log.WithField("last_withdrawn", now).Info("unstaked")
	return nil
}
