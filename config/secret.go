package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	pkgerrors "github.com/pkg/errors"
)

// Secret is a reference to a secret value, e.g. env:OWNER_KEY.
type Secret string

type SecretType string

var Env SecretType = "env"
var Vault SecretType = "vault"
var Raw SecretType = "raw"
var File SecretType = "file"

func (s Secret) Load() (string, error) {
	return GetSecret(string(s))
}

func (s Secret) LoadOrBlank() string {
	deref, _ := GetSecret(string(s))
	return deref
}

func NewRawSecret(secret string) Secret {
	return Secret(fmt.Sprintf("raw:%s", secret))
}

func HasTypePrefix(secretRef string) bool {
	switch SecretType(strings.Split(secretRef, ":")[0]) {
	case Env, Vault, Raw, File:
		return true
	}
	return false
}

// PrivateKey loads the secret as a signing key. Both base58 keys and
// solana-keygen JSON byte arrays are accepted.
func (s Secret) PrivateKey() (solana.PrivateKey, error) {
	value, err := s.Load()
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, pkgerrors.New("secret is empty")
	}
	if strings.HasPrefix(value, "[") {
		var ints []int
		if err := json.Unmarshal([]byte(value), &ints); err != nil {
			return nil, pkgerrors.Wrap(err, "decode keygen file")
		}
		if len(ints) != 64 {
			return nil, pkgerrors.Errorf("keygen key has %d bytes, expected 64", len(ints))
		}
		raw := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, pkgerrors.Errorf("keygen key byte %d is out of range", i)
			}
			raw[i] = byte(v)
		}
		return solana.PrivateKey(raw), nil
	}
	key, err := solana.PrivateKeyFromBase58(value)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "decode base58 key")
	}
	return key, nil
}
