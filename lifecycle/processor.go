package lifecycle

import (
	"context"
	"time"

	"github.com/cordialsys/nftstake/delegation"
	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/errors"
	"github.com/cordialsys/nftstake/instruction"
	"github.com/cordialsys/nftstake/program"
	"github.com/cordialsys/nftstake/reward"
	"github.com/cordialsys/nftstake/state"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Rate            uint64
	RecordSpace     uint64
	TokenProgram    solana.PublicKey
	MetadataProgram solana.PublicKey
	// RewardMint pins the mint rewards are issued from. Any mint owned by the
	// mint authority is accepted when unset.
	RewardMint      *solana.PublicKey
	DerivationCache int
}

func DefaultOptions() Options {
	return Options{
		Rate:            reward.DefaultRate,
		RecordSpace:     state.AccountSpace,
		TokenProgram:    solana.TokenProgramID,
		MetadataProgram: solana.TokenMetadataProgramID,
		DerivationCache: derive.DefaultCacheSize,
	}
}

// Processor is the staking program. It is stateless between instructions;
// every record lives in ledger accounts.
type Processor struct {
	programID  solana.PublicKey
	deriver    *derive.Deriver
	calculator reward.Calculator
	options    Options
}

var _ program.Program = &Processor{}

func NewProcessor(programID solana.PublicKey, options Options) (*Processor, error) {
	defaults := DefaultOptions()
	if options.RecordSpace == 0 {
		options.RecordSpace = defaults.RecordSpace
	}
	if options.RecordSpace < state.RecordSize {
		return nil, errors.SerializationFailuref("record space %d is below the record size %d", options.RecordSpace, state.RecordSize)
	}
	if options.TokenProgram.IsZero() {
		options.TokenProgram = defaults.TokenProgram
	}
	if options.MetadataProgram.IsZero() {
		options.MetadataProgram = defaults.MetadataProgram
	}
	deriver, err := derive.NewDeriver(programID, options.DerivationCache)
	if err != nil {
		return nil, err
	}
	calculator := reward.NewCalculator(options.Rate)
	options.Rate = calculator.Rate
	return &Processor{
		programID:  programID,
		deriver:    deriver,
		calculator: calculator,
		options:    options,
	}, nil
}

func (p *Processor) ProgramID() solana.PublicKey {
	return p.programID
}

func (p *Processor) Deriver() *derive.Deriver {
	return p.deriver
}

func (p *Processor) Options() Options {
	return p.options
}

// Process decodes the opcode and runs the matching operation.
func (p *Processor) Process(ctx context.Context, env *program.Env, data []byte) (err error) {
	op, err := instruction.Unpack(data)
	if err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		traceOperation(op.String(), start, err)
	}()

	log := logrus.WithField("operation", op.String())
	log.Trace("processing instruction")
	switch op {
	case instruction.InitializeStakeAccount:
		err = p.Initialize(ctx, env)
	case instruction.Stake:
		err = p.Stake(ctx, env)
	case instruction.Redeem:
		err = p.Redeem(ctx, env)
	case instruction.Unstake:
		err = p.Unstake(ctx, env)
	}
	if err != nil {
		log.WithError(err).Warn("operation rejected")
	}
	return err
}

func (p *Processor) controller(env *program.Env) *delegation.Controller {
	return delegation.NewController(env.Runtime, p.options.TokenProgram, p.options.MetadataProgram)
}

func (p *Processor) issuer(env *program.Env) *reward.Issuer {
	return reward.NewIssuer(env.Runtime, p.options.TokenProgram)
}

func requireSigner(info *program.AccountInfo) error {
	if !info.IsSigner {
		return errors.MissingSignaturef("%s must sign", info.Key)
	}
	return nil
}

func (p *Processor) requireTokenProgram(info *program.AccountInfo) error {
	if !info.Key.Equals(p.options.TokenProgram) {
		return errors.Errorf(errors.UntrustedProgram, "token program %s is not trusted", info.Key)
	}
	return nil
}

func (p *Processor) requireMetadataProgram(info *program.AccountInfo) error {
	if !info.Key.Equals(p.options.MetadataProgram) {
		return errors.Errorf(errors.UntrustedProgram, "metadata program %s is not trusted", info.Key)
	}
	return nil
}

func (p *Processor) requireRewardMint(info *program.AccountInfo) error {
	if p.options.RewardMint != nil && !info.Key.Equals(*p.options.RewardMint) {
		return errors.Errorf(errors.InvalidTokenAccount, "reward mint %s is not %s", info.Key, p.options.RewardMint)
	}
	return nil
}

// loadOwned decodes the record and checks it belongs to owner and asset.
// Ownership is checked here, before the caller checks the lifecycle state,
// so a foreign record is reported as such even when it is not staked.
func loadOwned(info *program.AccountInfo, owner solana.PublicKey, asset solana.PublicKey) (*state.StakeRecord, error) {
	var data []byte
	if info.Account != nil {
		data = info.Data
	}
	record, err := state.Load(data)
	if err != nil {
		return nil, err
	}
	if !record.Initialized {
		return nil, errors.Errorf(errors.UninitializedAccount, "stake record %s is not initialized", info.Key)
	}
	if !record.OwnerRef.Equals(owner) {
		return nil, errors.Errorf(errors.InvalidStakeAccount, "%s is not the owner of stake record %s", owner, info.Key)
	}
	if !record.AssetRef.Equals(asset) {
		return nil, errors.Errorf(errors.InvalidTokenAccount, "%s is not the asset of stake record %s", asset, info.Key)
	}
	return record, nil
}

// commit stores the record and checks it landed in the expected state.
func commit(info *program.AccountInfo, record *state.StakeRecord, expected state.Lifecycle) error {
	if record.State() != expected {
		return errors.Unknownf("record would be %s, expected %s", record.State(), expected)
	}
	if info.Account == nil {
		return errors.SerializationFailuref("stake record %s has no storage", info.Key)
	}
	return state.Store(record, info.Data)
}
