package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfig(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) writeConfig(content string) string {
	require := s.Require()
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	require.NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigTestSuite) TestStakeConfigDefaults() {
	require := s.Require()
	cfg, err := LoadStakeConfig(filepath.Join(s.T().TempDir(), "missing.yaml"))
	require.NoError(err)
	require.Equal(DefaultStakeConfig(), *cfg)

	options, err := cfg.Options()
	require.NoError(err)
	require.EqualValues(100, options.Rate)
	require.EqualValues(1000, options.RecordSpace)
	require.Equal(solana.TokenProgramID, options.TokenProgram)
	require.Equal(solana.TokenMetadataProgramID, options.MetadataProgram)
	require.Nil(options.RewardMint)

	program, err := cfg.Program()
	require.NoError(err)
	require.Equal(DefaultProgramID, program.String())
}

func (s *ConfigTestSuite) TestStakeConfigOverrides() {
	require := s.Require()
	mint := solana.NewWallet().PublicKey()
	path := s.writeConfig(`
stake:
  reward_rate: 7
  reward_mint: ` + mint.String() + `
  store:
    path: /tmp/nftstake-ledger
`)
	cfg, err := LoadStakeConfig(path)
	require.NoError(err)
	require.EqualValues(7, cfg.RewardRate)
	require.Equal("/tmp/nftstake-ledger", cfg.Store.Path)
	// untouched fields keep their defaults
	require.EqualValues(1000, cfg.RecordSpace)
	require.Equal(16, cfg.Store.CacheSize)
	require.Equal(DefaultProgramID, cfg.ProgramID)

	options, err := cfg.Options()
	require.NoError(err)
	require.EqualValues(7, options.Rate)
	require.NotNil(options.RewardMint)
	require.Equal(mint, *options.RewardMint)
}

func (s *ConfigTestSuite) TestStakeConfigInvalidKey() {
	require := s.Require()
	cfg := DefaultStakeConfig()
	cfg.TrustedPrograms.Token = "not-a-key"
	_, err := cfg.Options()
	require.ErrorContains(err, "trusted_programs.token")
}

func (s *ConfigTestSuite) TestStakeConfigFromEnv() {
	require := s.Require()
	path := s.writeConfig("stake:\n  reward_rate: 3\n")
	s.T().Setenv("NFTSTAKE_CONFIG", path)

	cfg, err := LoadStakeConfig("")
	require.NoError(err)
	require.EqualValues(3, cfg.RewardRate)
	require.EqualValues(1000, cfg.RecordSpace)

	direct := &StakeConfig{}
	require.NoError(RequireConfig(Section, direct, nil))
	require.EqualValues(3, direct.RewardRate)
	require.Zero(direct.RecordSpace)
}

func (s *ConfigTestSuite) TestMissingSectionUsesDefaults() {
	require := s.Require()
	path := s.writeConfig("other:\n  value: 1\n")
	cfg, err := LoadStakeConfig(path)
	require.NoError(err)
	require.Equal(DefaultStakeConfig(), *cfg)
}

func (s *ConfigTestSuite) TestApplyDefaults() {
	require := s.Require()
	type inner struct {
		A string `yaml:"a,omitempty"`
		B int    `yaml:"b,omitempty"`
	}
	type outer struct {
		Name  string   `yaml:"name,omitempty"`
		List  []string `yaml:"list,omitempty"`
		Inner inner    `yaml:"inner,omitempty"`
	}
	defaults := outer{Name: "default", List: []string{"x"}, Inner: inner{A: "a", B: 2}}
	override := outer{Inner: inner{B: 5}}
	var merged outer
	require.NoError(ApplyDefaults(defaults, override, &merged))
	require.Equal(outer{Name: "default", List: []string{"x"}, Inner: inner{A: "a", B: 5}}, merged)
}

func (s *ConfigTestSuite) TestGetSecretEnv() {
	require := s.Require()
	os.Setenv("NFTSTAKE_TEST", "mysecret")
	secret, err := GetSecret("env:NFTSTAKE_TEST")
	os.Unsetenv("NFTSTAKE_TEST")
	require.Equal("mysecret", secret)
	require.Nil(err)
}

func (s *ConfigTestSuite) TestGetSecretRaw() {
	require := s.Require()
	secret, err := NewRawSecret("a:b").Load()
	require.NoError(err)
	require.Equal("a:b", secret)
	require.True(HasTypePrefix("raw:x"))
	require.False(HasTypePrefix("gsm:x"))
}

func (s *ConfigTestSuite) TestGetSecretFileHomeErrFileNotFound() {
	require := s.Require()
	secret, err := GetSecret("file:~/config-in-home-missing")
	require.Equal("", secret)
	require.Error(err)
}

func (s *ConfigTestSuite) TestGetSecretErrNoColon() {
	require := s.Require()
	secret, err := GetSecret("invalid")
	require.Equal("", secret)
	require.EqualError(err, "invalid secret source for: ***")
}

func (s *ConfigTestSuite) TestGetSecretErrInvalidType() {
	require := s.Require()
	secret, err := GetSecret("invalid:value")
	require.Equal("", secret)
	require.EqualError(err, "invalid secret source for: ***")
}

func (s *ConfigTestSuite) TestGetSecretFileTrimmed() {
	require := s.Require()
	path := filepath.Join(s.T().TempDir(), "secret")
	require.NoError(os.WriteFile(path, []byte(" MY SECRET \n"), 0o600))
	sec, err := GetSecret("file:" + path)
	require.NoError(err)
	require.Equal("MY SECRET", sec)
}

func (s *ConfigTestSuite) TestSecretPrivateKey() {
	require := s.Require()
	key := solana.NewWallet().PrivateKey

	loaded, err := NewRawSecret(key.String()).PrivateKey()
	require.NoError(err)
	require.Equal(key.PublicKey(), loaded.PublicKey())

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	bz, err := json.Marshal(ints)
	require.NoError(err)
	path := filepath.Join(s.T().TempDir(), "id.json")
	require.NoError(os.WriteFile(path, bz, 0o600))
	loaded, err = Secret("file:" + path).PrivateKey()
	require.NoError(err)
	require.Equal(key.PublicKey(), loaded.PublicKey())

	_, err = NewRawSecret("[1,2,3]").PrivateKey()
	require.Error(err)
	_, err = Secret("env:NFTSTAKE_UNSET_KEY").PrivateKey()
	require.Error(err)
}

type mockedVaultLoader struct {
	data map[string]interface{}
}

var _ VaultLoader = &mockedVaultLoader{}

func (l *mockedVaultLoader) LoadSecretData(path string) (*vault.Secret, error) {
	data, ok := l.data[path]
	if !ok {
		return &vault.Secret{}, errors.New("path not found")
	}
	return &vault.Secret{
		Data: data.(map[string]interface{}),
	}, nil
}

func (s *ConfigTestSuite) TestGetSecretVault() {
	require := s.Require()
	original := NewVaultClient
	defer func() { NewVaultClient = original }()
	NewVaultClient = func(cfg *vault.Config) (VaultLoader, error) {
		vaultRes := `{
			"path1/to": {
				"data": {
					"secret": "mysecret"
				}
			}
		}`
		data := make(map[string]interface{})
		err := json.Unmarshal([]byte(vaultRes), &data)
		require.NoError(err)
		return &mockedVaultLoader{data: data}, nil
	}

	_, err := GetSecret("vault:wrong_args")
	require.ErrorContains(err, "vault secret has 2 comma separated arguments")

	_, err = GetSecret("vault:url,aaa")
	require.ErrorContains(err, "malformed vault secret")

	_, err = GetSecret("vault:url,aaa/secret")
	require.EqualError(err, "path not found")

	secret, err := GetSecret("vault:https://example.com,path1/to/secret")
	require.NoError(err)
	require.Equal("mysecret", secret)

	secret, err = GetSecret("vault:https://example.com,path1/to/secret_none")
	require.NoError(err)
	require.Equal("", secret)
}

func (s *ConfigTestSuite) TestVerbosityLevel() {
	require := s.Require()
	require.Equal("warn", VerbosityLevel(0))
	require.Equal("info", VerbosityLevel(1))
	require.Equal("debug", VerbosityLevel(2))
	require.Equal("trace", VerbosityLevel(5))
}
