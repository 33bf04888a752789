package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loykin/repobatch/internal/common"
	"github.com/loykin/repobatch/internal/credential"
	"github.com/loykin/repobatch/internal/store"
	"github.com/loykin/repobatch/internal/util"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTimeout bounds each API call when the config does not say
	// otherwise.
	DefaultTimeout = 60 * time.Second
	// DefaultBatchSize is one item per API call payload.
	DefaultBatchSize = 1
)

// AzureDevOpsConfig identifies the Azure DevOps organization and API
// version to pin.
type AzureDevOpsConfig struct {
	Organization string `mapstructure:"organization" yaml:"organization"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	APIVersion   string `mapstructure:"api_version" yaml:"api_version"`
	// GithubConnection names the service connection referenced by migrated
	// pipeline YAML.
	GithubConnection string `mapstructure:"github_connection" yaml:"github_connection"`
}

// GithubConfig identifies the GitHub owner and API endpoint.
type GithubConfig struct {
	Owner   string `mapstructure:"owner" yaml:"owner"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// CredentialConfig selects the credential provider and its settings.
type CredentialConfig struct {
	// Provider type key (e.g., "env", "dotenv", "prompt", "oauth2")
	Type string `mapstructure:"type" yaml:"type"`
	// Provider-specific configuration
	Config map[string]interface{} `mapstructure:"config" yaml:"config"`
}

// ClientConfig holds outbound HTTP settings.
type ClientConfig struct {
	Timeout       string `mapstructure:"timeout" yaml:"timeout"`
	Insecure      bool   `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version"`
}

// LogConfig names the outcome log file location.
type LogConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// LoggingConfig configures the structured console logger.
type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable sensitive data masking
}

// ConfigDoc is the full configuration document, resolved once before the
// target enumerator runs.
type ConfigDoc struct {
	AzureDevOps AzureDevOpsConfig `mapstructure:"azure_devops" yaml:"azure_devops"`
	Github      GithubConfig      `mapstructure:"github" yaml:"github"`
	Credential  CredentialConfig  `mapstructure:"credential" yaml:"credential"`
	Client      ClientConfig      `mapstructure:"client" yaml:"client"`
	BatchSize   int               `mapstructure:"batch_size" yaml:"batch_size"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	Store       store.Config      `mapstructure:"store" yaml:"store"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// Load reads the YAML config document at path into the receiver.
func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	return dec.Decode(c)
}

// Timeout returns the configured API timeout, defaulting to 60s.
func (c *ConfigDoc) Timeout() (time.Duration, error) {
	t, ok := util.TrimEmptyCheck(c.Client.Timeout)
	if !ok {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(t)
	if err != nil {
		return 0, fmt.Errorf("invalid client timeout %q: %w", c.Client.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("client timeout must be positive, got %s", d)
	}
	return d, nil
}

// EffectiveBatchSize returns the batch size, defaulting to 1.
func (c *ConfigDoc) EffectiveBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// TLSConfig builds the client TLS settings, or nil for defaults.
func (c *ConfigDoc) TLSConfig() (*tls.Config, error) {
	if !c.Client.Insecure && c.Client.MinTLSVersion == "" {
		return nil, nil
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS13}
	if c.Client.Insecure {
		cfg.InsecureSkipVerify = true // #nosec G402 -- explicit opt-in via config
	}
	switch util.TrimAndLower(c.Client.MinTLSVersion) {
	case "":
	case "1.2":
		cfg.MinVersion = tls.VersionTLS12
	case "1.3":
		cfg.MinVersion = tls.VersionTLS13
	default:
		return nil, fmt.Errorf("invalid min_tls_version: %s (valid: 1.2, 1.3)", c.Client.MinTLSVersion)
	}
	return cfg, nil
}

// ResolveCredential acquires the run credential from the configured
// provider. Defaults to the env provider reading REPOBATCH_PAT so a bare
// config still works in CI.
func (c *ConfigDoc) ResolveCredential(ctx context.Context) (credential.Credential, error) {
	typ, ok := util.TrimEmptyCheck(c.Credential.Type)
	if !ok {
		typ = "env"
	}
	spec := c.Credential.Config
	if spec == nil {
		spec = map[string]interface{}{"var": "REPOBATCH_PAT"}
	}
	return credential.Resolve(ctx, typ, spec)
}

// StoreConfig returns the run-history store configuration with the sqlite
// path defaulted next to the outcome log.
func (c *ConfigDoc) StoreConfig() store.Config {
	sc := c.Store
	if !sc.Disabled && (sc.Type == "" || sc.Type == store.DriverSqlite) && sc.SQLite.Path == "" {
		sc.SQLite.Path = filepath.Join(c.LogDir(), store.DBFileName)
	}
	return sc
}

// ADOBaseURL returns the Azure DevOps API root.
func (c *ConfigDoc) ADOBaseURL() string {
	return util.TrimWithDefault(c.AzureDevOps.BaseURL, "https://dev.azure.com")
}

// ADOAPIVersion returns the pinned api-version query value.
func (c *ConfigDoc) ADOAPIVersion() string {
	return util.TrimWithDefault(c.AzureDevOps.APIVersion, "6.0")
}

// GithubBaseURL returns the GitHub API root.
func (c *ConfigDoc) GithubBaseURL() string {
	return util.TrimWithDefault(c.Github.BaseURL, "https://api.github.com")
}

// LogDir returns the outcome log directory, defaulting to the working
// directory.
func (c *ConfigDoc) LogDir() string {
	return util.TrimWithDefault(c.Log.Dir, ".")
}

// LogPrefix returns the outcome log file prefix.
func (c *ConfigDoc) LogPrefix() string {
	return util.TrimWithDefault(c.Log.Prefix, "repobatch")
}

func (c *ConfigDoc) parseLogLevel() (common.LogLevel, error) {
	level := util.TrimAndLower(c.Logging.Level)
	switch level {
	case "error":
		return common.LogLevelError, nil
	case "warn", "warning":
		return common.LogLevelWarn, nil
	case "info", "":
		return common.LogLevelInfo, nil
	case "debug":
		return common.LogLevelDebug, nil
	default:
		return common.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings.
func (c *ConfigDoc) SetupLogging() error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}

	var logger *common.Logger
	format := util.TrimAndLower(c.Logging.Format)
	switch format {
	case "json":
		logger = common.NewJSONLogger(level)
	case "color", "colour":
		logger = common.NewColorLogger(level)
	case "text", "":
		logger = common.NewLogger(level)
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}

	common.SetDefaultLogger(logger)
	common.EnableMasking(maskingEnabled)

	logger.Debug("logging configured",
		"level", level.String(),
		"format", util.TrimWithDefault(format, "text"),
		"mask_sensitive", maskingEnabled)
	return nil
}
