package config

import (
	"path/filepath"

	"github.com/cordialsys/nftstake/config/constants"
	"github.com/cordialsys/nftstake/derive"
	"github.com/cordialsys/nftstake/ledger"
	"github.com/cordialsys/nftstake/lifecycle"
	"github.com/cordialsys/nftstake/reward"
	"github.com/cordialsys/nftstake/state"
	"github.com/gagliardetto/solana-go"
	pkgerrors "github.com/pkg/errors"
)

// Section is the config file section holding StakeConfig.
const Section = "stake"

// DefaultProgramID is the staking program address used when none is configured.
const DefaultProgramID = "D3FGmrPY7A9K23ozkPmeTcZ8ND2vPks1sRt7rXFcTPuL"

const DefaultRewardDecimals = 9

type TrustedPrograms struct {
	Token    string `yaml:"token,omitempty"`
	Metadata string `yaml:"metadata,omitempty"`
}

type StoreConfig struct {
	Path      string `yaml:"path,omitempty"`
	CacheSize int    `yaml:"cache_size,omitempty"`
	OpenFiles int    `yaml:"open_files,omitempty"`
}

type StakeConfig struct {
	ProgramID       string          `yaml:"program_id,omitempty"`
	RewardRate      uint64          `yaml:"reward_rate,omitempty"`
	RecordSpace     uint64          `yaml:"record_space,omitempty"`
	RewardMint      string          `yaml:"reward_mint,omitempty"`
	RewardDecimals  int             `yaml:"reward_decimals,omitempty"`
	TrustedPrograms TrustedPrograms `yaml:"trusted_programs,omitempty"`
	DerivationCache int             `yaml:"derivation_cache,omitempty"`
	Store           StoreConfig     `yaml:"store,omitempty"`
}

func DefaultStakeConfig() StakeConfig {
	return StakeConfig{
		ProgramID:      DefaultProgramID,
		RewardRate:     reward.DefaultRate,
		RecordSpace:    state.AccountSpace,
		RewardDecimals: DefaultRewardDecimals,
		TrustedPrograms: TrustedPrograms{
			Token:    solana.TokenProgramID.String(),
			Metadata: solana.TokenMetadataProgramID.String(),
		},
		DerivationCache: derive.DefaultCacheSize,
		Store: StoreConfig{
			Path:      filepath.Join(constants.DefaultHome, "ledger"),
			CacheSize: 16,
			OpenFiles: 16,
		},
	}
}

// LoadStakeConfig reads the stake section from path, or from the default
// locations when path is empty.
func LoadStakeConfig(path string) (*StakeConfig, error) {
	cfg := &StakeConfig{}
	var err error
	if path == "" {
		err = RequireConfig(Section, cfg, DefaultStakeConfig())
	} else {
		err = RequireConfigFile(path, Section, cfg, DefaultStakeConfig())
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseKey(name string, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, pkgerrors.Wrapf(err, "invalid %s %q", name, value)
	}
	return key, nil
}

func (c *StakeConfig) Program() (solana.PublicKey, error) {
	return parseKey("program_id", c.ProgramID)
}

// Options converts the configuration into processor options.
func (c *StakeConfig) Options() (lifecycle.Options, error) {
	options := lifecycle.DefaultOptions()
	options.Rate = c.RewardRate
	options.RecordSpace = c.RecordSpace
	options.DerivationCache = c.DerivationCache
	var err error
	if c.TrustedPrograms.Token != "" {
		if options.TokenProgram, err = parseKey("trusted_programs.token", c.TrustedPrograms.Token); err != nil {
			return options, err
		}
	}
	if c.TrustedPrograms.Metadata != "" {
		if options.MetadataProgram, err = parseKey("trusted_programs.metadata", c.TrustedPrograms.Metadata); err != nil {
			return options, err
		}
	}
	if c.RewardMint != "" {
		mint, err := parseKey("reward_mint", c.RewardMint)
		if err != nil {
			return options, err
		}
		options.RewardMint = &mint
	}
	return options, nil
}

// OpenStore opens the persistent ledger store.
func (c *StakeConfig) OpenStore() (*ledger.LevelStore, error) {
	return ledger.OpenLevelStore(c.Store.Path, ledger.LevelOptions{
		CacheSize:              c.Store.CacheSize,
		OpenFilesCacheCapacity: c.Store.OpenFiles,
	})
}
