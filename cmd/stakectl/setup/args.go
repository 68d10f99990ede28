package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/cordialsys/nftstake/config"
	"github.com/cordialsys/nftstake/custody"
	"github.com/cordialsys/nftstake/instruction"
	"github.com/cordialsys/nftstake/ledger"
	"github.com/cordialsys/nftstake/lifecycle"
	"github.com/cordialsys/nftstake/program"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type ContextKey string

const ContextEnv ContextKey = "env"

// Env is everything a command needs to talk to the ledger.
type Env struct {
	Config    *config.StakeConfig
	Store     ledger.Store
	Ledger    *ledger.Ledger
	Programs  custody.Programs
	Processor *lifecycle.Processor
	Builder   *instruction.Builder
}

func WrapEnv(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, ContextEnv, env)
}

func UnwrapEnv(ctx context.Context) *Env {
	return ctx.Value(ContextEnv).(*Env)
}

type Args struct {
	ConfigPath     string
	StorePath      string
	VerbosityCount int
	Time           int64
}

func AddArgs(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", os.Getenv("NFTSTAKE_CONFIG"), "Path to config.yaml (may set NFTSTAKE_CONFIG).")
	cmd.PersistentFlags().String("store", "", "Ledger store directory. Overrides stake.store.path.")
	cmd.PersistentFlags().Int64("time", 0, "Ledger time in unix seconds. Defaults to the wall clock.")
	cmd.PersistentFlags().CountP("verbose", "v", "Set verbosity.")
}

func ArgsFromCmd(cmd *cobra.Command) (*Args, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	storePath, err := cmd.Flags().GetString("store")
	if err != nil {
		return nil, err
	}
	now, err := cmd.Flags().GetInt64("time")
	if err != nil {
		return nil, err
	}
	if now < 0 {
		return nil, fmt.Errorf("--time must not be negative")
	}
	count, _ := cmd.Flags().GetCount("verbose")
	return &Args{
		ConfigPath:     configPath,
		StorePath:      storePath,
		VerbosityCount: count,
		Time:           now,
	}, nil
}

func ConfigureLogger(args *Args) {
	config.ConfigureLogger(config.VerbosityLevel(args.VerbosityCount))
}

// LoadEnv opens the ledger store and deploys the custody and staking
// programs on it.
func LoadEnv(args *Args) (*Env, error) {
	cfg, err := config.LoadStakeConfig(args.ConfigPath)
	if err != nil {
		return nil, err
	}
	if args.StorePath != "" {
		cfg.Store.Path = args.StorePath
	}
	programID, err := cfg.Program()
	if err != nil {
		return nil, err
	}
	options, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	processor, err := lifecycle.NewProcessor(programID, options)
	if err != nil {
		return nil, err
	}

	store, err := cfg.OpenStore()
	if err != nil {
		return nil, err
	}
	var clock program.Clock = ledger.SystemClock{}
	if args.Time > 0 {
		clock = ledger.NewFixedClock(args.Time)
	}
	l := ledger.New(store, clock)
	programs := custody.Programs{Token: options.TokenProgram, Metadata: options.MetadataProgram}
	programs.Register(l)
	l.Register(processor)

	logrus.WithFields(logrus.Fields{
		"program": programID.String(),
		"store":   cfg.Store.Path,
		"time":    clock.Now(),
	}).Info("ledger")
	return &Env{
		Config:    cfg,
		Store:     store,
		Ledger:    l,
		Programs:  programs,
		Processor: processor,
		Builder:   instruction.NewBuilder(processor.Deriver(), options.TokenProgram, options.MetadataProgram),
	}, nil
}

// Close releases the ledger store.
func (env *Env) Close() error {
	return env.Store.Close()
}

// RewardMint is the --reward-mint flag if given, else the configured mint.
func (env *Env) RewardMint(flag string) (solana.PublicKey, error) {
	value := flag
	if value == "" {
		value = env.Config.RewardMint
	}
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("no reward mint: pass --reward-mint or set stake.reward_mint")
	}
	return solana.PublicKeyFromBase58(value)
}
