package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	LLM      LLM      `yaml:"llm"`
	Proxy    Proxy    `yaml:"proxy"`
	Remote   Remote   `yaml:"remote"`
	Defaults Defaults `yaml:"defaults"`
	Sources  Sources  `yaml:"sources"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
}

// LLM configures the direct Gemini transport.
type LLM struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// Proxy configures the server-side relay transport. When URL is set the
// relay is preferred over the direct transport.
type Proxy struct {
	URL      string `yaml:"url"`
	TokenEnv string `yaml:"token_env"`
}

// Remote configures the hosted history backend. Secrets are named by
// environment variable, never stored in the file.
type Remote struct {
	URL            string `yaml:"url"`
	AnonKeyEnv     string `yaml:"anon_key_env"`
	AccessTokenEnv string `yaml:"access_token_env"`
	UserIDEnv      string `yaml:"user_id_env"`
}

// Defaults are the analysis parameters used when a request leaves them
// unset.
type Defaults struct {
	Mode                 string `yaml:"mode"`
	OutputLanguage       string `yaml:"output_language"`
	SummaryLengthSeconds int    `yaml:"summary_length_seconds"`
}

type Sources struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for brevita.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "brevita")
}

// DataDir returns the XDG data directory for brevita.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "brevita")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/brevita/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'brevita init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		LLM: LLM{
			Model:     "gemini-2.0-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Proxy: Proxy{
			TokenEnv: "BREVITA_PROXY_TOKEN",
		},
		Remote: Remote{
			AnonKeyEnv:     "SUPABASE_ANON_KEY",
			AccessTokenEnv: "SUPABASE_ACCESS_TOKEN",
			UserIDEnv:      "SUPABASE_USER_ID",
		},
		Defaults: Defaults{
			Mode:                 "STANDARD",
			OutputLanguage:       "EN",
			SummaryLengthSeconds: 30,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// APIKey reads the Gemini key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

// ProxyToken reads the relay bearer token from the environment.
func (c *Config) ProxyToken() string {
	return os.Getenv(c.Proxy.TokenEnv)
}

// RemoteAnonKey reads the hosted backend's anonymous key from the
// environment.
func (c *Config) RemoteAnonKey() string {
	return os.Getenv(c.Remote.AnonKeyEnv)
}

// Session builds the auth state for this invocation from the environment.
func (c *Config) Session() (userID, accessToken string) {
	return os.Getenv(c.Remote.UserIDEnv), os.Getenv(c.Remote.AccessTokenEnv)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
