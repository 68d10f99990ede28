package constants

import (
	"os"
	"path/filepath"
)

const DefaultHomeEnv string = "NFTSTAKE_HOME"
const ConfigEnv string = "NFTSTAKE_CONFIG"

var DefaultHome string

func init() {
	if home := os.Getenv(DefaultHomeEnv); home != "" {
		DefaultHome = home
		return
	}
	// ~/.nftstake default
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		DefaultHome = "/data"
	} else {
		DefaultHome = filepath.Join(userHomeDir, ".nftstake")
	}
}
