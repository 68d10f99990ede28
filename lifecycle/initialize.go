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

// Initialize allocates the stake record of (owner, asset) and binds it to
// that pair. A second Initialize fails in storage allocation.
func (p *Processor) Initialize(ctx context.Context, env *program.Env) error {
	accounts, err := env.Iter().NextN(4)
	if err != nil {
		return err
	}
	owner, asset, recordInfo, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3]

	if err := requireSigner(owner); err != nil {
		return err
	}
	capability, err := p.deriver.Verify(derive.TagStake, []solana.PublicKey{owner.Key, asset.Key}, recordInfo.Key)
	if err != nil {
		return err
	}
	if !systemProgram.Key.Equals(solana.SystemProgramID) {
		return errors.Errorf(errors.UntrustedProgram, "system program %s is not trusted", systemProgram.Key)
	}

	log := logrus.WithFields(logrus.Fields{
		"owner":  owner.Key.String(),
		"asset":  asset.Key.String(),
		"record": recordInfo.Key.String(),
	})
	if err := env.Runtime.CreateAccount(ctx, owner, recordInfo, p.options.RecordSpace, p.programID, capability.SignerSeeds()); err != nil {
		return err
	}
	log.Debug("allocated stake record")

	record, err := state.Load(recordInfo.Data)
	if err != nil {
		return err
	}
	next, err := transition(ctx, record, eventInitialize)
	if err != nil {
		return err
	}
	record.Initialized = true
	record.CurrentlyStaked = false
	record.OwnerRef = owner.Key
	record.AssetRef = asset.Key
	record.LastStaked = nil
	record.LastRedeemed = nil
	record.LastWithdrawn = nil

	if err := commit(recordInfo, record, next); err != nil {
		return err
	}
	log.Info("initialized stake record")
	return nil
}
