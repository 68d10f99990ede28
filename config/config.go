package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cordialsys/nftstake/config/constants"
	vault "github.com/hashicorp/vault/api"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var noSuchFile = "no such file"
var notFoundIn = "not found in"

func getViper() *viper.Viper {
	v := viper.New()
	// config file is config.yaml
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// If the config location env is set, use that.
	v.SetConfigFile(os.Getenv(constants.ConfigEnv))

	// otherwise, prioritize current path or parent
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	// Lastly, check home dir
	v.AddConfigPath(constants.DefaultHome)

	return v
}

// RequireConfig loads a section of the configuration file into dst.
// 1. The file is found through NFTSTAKE_CONFIG, the current path or its parent, then NFTSTAKE_HOME.
// 2. Only the named section is treated as root and deserialized.
// 3. When defaults are given, fields left unset in the file take the default value,
// and a missing file is not an error.
func RequireConfig(section string, dst interface{}, defaults interface{}) error {
	return requireConfig(getViper(), section, dst, defaults)
}

// RequireConfigFile is RequireConfig with an explicit file path.
func RequireConfigFile(path string, section string, dst interface{}, defaults interface{}) error {
	v := getViper()
	if path != "" {
		v.SetConfigFile(path)
	}
	return requireConfig(v, section, dst, defaults)
}

func requireConfig(v *viper.Viper, section string, dst interface{}, defaults interface{}) error {
	err := v.ReadInConfig()
	if err != nil {
		msg := strings.ToLower(err.Error())
		if defaults != nil && (strings.Contains(msg, noSuchFile) || strings.Contains(msg, notFoundIn)) {
			// use the defaults by serializing and deserializing
			bz, err := yaml.Marshal(defaults)
			if err != nil {
				return err
			}
			return yaml.Unmarshal(bz, dst)
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	// viper does not support partial deserialization so we
	// have to re-serialize and parse again
	asMap := v.GetStringMap(section)
	bz, err := yaml.Marshal(asMap)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(bz, dst); err != nil {
		return err
	}
	if defaults != nil {
		return ApplyDefaults(defaults, dst, dst)
	}
	return nil
}

func newVaultClient(cfg *vault.Config) (VaultLoader, error) {
	cli, err := vault.NewClient(cfg)
	if err != nil {
		return &DefaultVaultLoader{}, err
	}
	return &DefaultVaultLoader{Client: cli}, nil
}

var NewVaultClient = newVaultClient

type DefaultVaultLoader struct {
	*vault.Client
}

var _ VaultLoader = &DefaultVaultLoader{}

func (v *DefaultVaultLoader) LoadSecretData(vaultPath string) (*vault.Secret, error) {
	secret, err := v.Logical().Read(vaultPath)
	if err != nil || secret == nil { // yes, secret can be nil
		return &vault.Secret{}, err
	}
	return secret, nil
}

type VaultLoader interface {
	LoadSecretData(path string) (*vault.Secret, error)
}

// GetSecret resolves a secret reference of the form type:value.
func GetSecret(uri string) (string, error) {
	splits := strings.Split(uri, ":")
	if len(splits) < 2 {
		return "", errors.New("invalid secret source for: ***")
	}

	path := splits[1]
	switch SecretType(splits[0]) {
	case Raw:
		return strings.Join(splits[1:], ":"), nil
	case Env:
		return strings.TrimSpace(os.Getenv(path)), nil
	case File:
		if len(path) > 1 && path[0] == '~' {
			path = strings.Replace(path, "~", os.Getenv("HOME"), 1)
		}
		result, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(result)), nil
	case Vault:
		vaultArgs := strings.Split(strings.Join(splits[1:], ":"), ",")
		if len(vaultArgs) != 2 {
			return "", errors.New("vault secret has 2 comma separated arguments (url,path)")
		}
		// expect VAULT_TOKEN in env
		vaultUrl := vaultArgs[0]
		vaultFullPath := vaultArgs[1]

		client, err := NewVaultClient(&vault.Config{Address: vaultUrl})
		if err != nil {
			return "", err
		}

		idx := strings.LastIndex(vaultFullPath, "/")
		if idx == -1 || idx == len(vaultFullPath)-1 {
			return "", errors.New("malformed vault secret in config file")
		}
		vaultKey := vaultFullPath[idx+1:]
		vaultPath := vaultFullPath[:idx]

		secret, err := client.LoadSecretData(vaultPath)
		if err != nil {
			return "", err
		}
		data, _ := secret.Data["data"].(map[string]interface{})
		result, _ := data[vaultKey].(string)
		return strings.TrimSpace(result), nil
	}
	return "", errors.New("invalid secret source for: ***")
}
