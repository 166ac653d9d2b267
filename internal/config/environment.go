package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment names the deployment the process runs in
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
	EnvTest        Environment = "test"
)

// IsProduction reports whether gin should run in release mode
func (e Environment) IsProduction() bool {
	return e == EnvProduction
}

// LoadEnvFiles loads .env and .env.local into the process environment when
// present. Variables already set in the environment win.
func LoadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

func errMissing(what string) error {
	return fmt.Errorf("config: %s must be set", what)
}
