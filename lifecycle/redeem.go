package lifecycle

import (
	"context"

	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/program"
	"github.com/cordialsys/nftstake/state"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// accrued is the reward owed for the current stake. Elapsed time always
// counts from the last stake, not the last redeem.
func (p *Processor) accrued(record *state.StakeRecord, now int64) (uint64, error) {
	if record.LastStaked == nil {
		return 0, errors.InvalidStakeOperationf("no stake start time recorded")
	}
	return p.calculator.Accrue(now, *record.LastStaked)
}

// Redeem mints the accrued reward to the owner. The stake stays active.
func (p *Processor) Redeem(ctx context.Context, env *program.Env) error {
	accounts, err := env.Iter().NextN(7)
	if err != nil {
		return err
	}
	owner, asset, recordInfo, rewardMint := accounts[0], accounts[1], accounts[2], accounts[3]
	mintAuthorityInfo, destination, tokenProgram := accounts[4], accounts[5], accounts[6]

	if err := requireSigner(owner); err != nil {
		return err
	}
	if _, err := p.deriver.Verify(derive.TagStake, []solana.PublicKey{owner.Key, asset.Key}, recordInfo.Key); err != nil {
		return err
	}
	mintAuthority, err := p.deriver.Verify(derive.TagMint, nil, mintAuthorityInfo.Key)
	if err != nil {
		return err
	}
	if err := p.requireTokenProgram(tokenProgram); err != nil {
		return err
	}
	if err := p.requireRewardMint(rewardMint); err != nil {
		return err
	}
	record, err := loadOwned(recordInfo, owner.Key, asset.Key)
	if err != nil {
		return err
	}
	next, err := transition(ctx, record, eventRedeem)
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
	if err := p.issuer(env).Issue(ctx, rewardMint.Key, destination.Key, mintAuthority, amount); err != nil {
		return err
	}

	record.LastRedeemed = state.Timestamp(now)
	if err := commit(recordInfo, record, next); err != nil {
		return err
	}
	traceReward(eventRedeem, amount)
	log.WithField("last_redeemed", now).Info("redeemed")
	return nil
}
