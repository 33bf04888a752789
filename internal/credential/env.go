package credential

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvConfig holds configuration for the environment-variable source.
type EnvConfig struct {
	Var string `mapstructure:"var"`
}

type envProvider struct{ c EnvConfig }

func (p envProvider) Acquire(_ context.Context) (Credential, error) {
	name := strings.TrimSpace(p.c.Var)
	if name == "" {
		return Credential{}, fmt.Errorf("credential env: var is required")
	}
	v := os.Getenv(name)
	if strings.TrimSpace(v) == "" {
		return Credential{}, fmt.Errorf("credential env: %s is not set", name)
	}
	return New(v, false)
}

// DotenvConfig holds configuration for the .env file source. The file is
// loaded into the process environment first, so values already exported win.
type DotenvConfig struct {
	Path string `mapstructure:"path"`
	Var  string `mapstructure:"var"`
}

type dotenvProvider struct{ c DotenvConfig }

func (p dotenvProvider) Acquire(ctx context.Context) (Credential, error) {
	path := strings.TrimSpace(p.c.Path)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return Credential{}, fmt.Errorf("credential dotenv: failed to load %s: %w", path, err)
	}
	return envProvider{c: EnvConfig{Var: p.c.Var}}.Acquire(ctx)
}
