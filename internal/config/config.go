package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output   string `yaml:"output"`
	Filename string `yaml:"filename"`

	Language  string `yaml:"language"`
	Title     string `yaml:"title"`
	Author    string `yaml:"author"`
	Subject   string `yaml:"subject"`
	Desc      string `yaml:"description"`
	Publisher string `yaml:"publisher"`
	CoverURL  string `yaml:"cover_url"`

	DefaultURL   string `yaml:"default_url"`
	DefaultRange string `yaml:"default_range"`
	DefaultList  string `yaml:"default_list"`

	RetryAttempts  int     `yaml:"retry_attempts"`
	RetryBackoffMS int     `yaml:"retry_backoff_ms"`
	TimeoutS       int     `yaml:"timeout_s"`
	MinDensity     float64 `yaml:"min_density"`
	MinTextLen     int     `yaml:"min_text_len"`
	RulesFile      string  `yaml:"rules_file"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
	CFBypass   bool   `yaml:"cf_bypass"`

	Debug bool `yaml:"debug"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool

	Output   string
	Filename string

	Language  string
	Title     string
	Author    string
	Subject   string
	Desc      string
	Publisher string
	CoverURL  string

	DefaultURL   string
	DefaultRange string
	DefaultList  string

	RetryAttempts  int
	RetryBackoffMS int
	TimeoutS       int
	RulesFile      string

	Cookie     string
	CookieFile string
	UserAgent  string
	CFBypass   bool
}

func DefaultConfig() *Config {
	return &Config{
		Output:         ".",
		Language:       "en",
		RetryAttempts:  3,
		RetryBackoffMS: 500,
		TimeoutS:       30,
		MinDensity:     0.5,
		MinTextLen:     100,
	}
}

// ConfigPath is the single config file location.
func ConfigPath() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "novelbind", "config.yaml")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "novelbind", "config.yaml")
	}

	// Linux/macOS default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "novelbind", "config.yaml")
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadMerged loads the config file (when present and not ignored) and applies
// CLI flag overrides on top. The returned string describes the source.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `novelbind config init` to create an actual config\n", nil
	}

	cfg, err := loadYAML(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", path, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, path, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Filename != "" {
		c.Filename = o.Filename
	}
	if o.Language != "" {
		c.Language = o.Language
	}
	if o.Title != "" {
		c.Title = o.Title
	}
	if o.Author != "" {
		c.Author = o.Author
	}
	if o.Subject != "" {
		c.Subject = o.Subject
	}
	if o.Desc != "" {
		c.Desc = o.Desc
	}
	if o.Publisher != "" {
		c.Publisher = o.Publisher
	}
	if o.CoverURL != "" {
		c.CoverURL = o.CoverURL
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.DefaultRange != "" {
		c.DefaultRange = o.DefaultRange
	}
	if o.DefaultList != "" {
		c.DefaultList = o.DefaultList
	}
	if o.RetryAttempts != 0 {
		c.RetryAttempts = o.RetryAttempts
	}
	if o.RetryBackoffMS != 0 {
		c.RetryBackoffMS = o.RetryBackoffMS
	}
	if o.TimeoutS != 0 {
		c.TimeoutS = o.TimeoutS
	}
	if o.RulesFile != "" {
		c.RulesFile = o.RulesFile
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.CFBypass {
		c.CFBypass = true
	}
	if o.Debug {
		c.Debug = true
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryBackoffMS == 0 {
		c.RetryBackoffMS = 500
	}
	if c.TimeoutS == 0 {
		c.TimeoutS = 30
	}
	if c.MinDensity == 0 {
		c.MinDensity = 0.5
	}
	if c.MinTextLen == 0 {
		c.MinTextLen = 100
	}
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	if c.Filename != "" {
		fmt.Printf(" -filename: %s\n", c.Filename)
	}
	fmt.Printf(" -language: %s\n", c.Language)
	if c.Title != "" {
		fmt.Printf(" -title: %s\n", c.Title)
	}
	if c.Author != "" {
		fmt.Printf(" -author: %s\n", c.Author)
	}
	if c.Subject != "" {
		fmt.Printf(" -subject: %s\n", c.Subject)
	}
	if c.CoverURL != "" {
		fmt.Printf(" -cover_url: %s\n", c.CoverURL)
	}
	if c.DefaultURL != "" {
		fmt.Printf(" -url: %s\n", c.DefaultURL)
	}
	if c.DefaultRange != "" {
		fmt.Printf(" -range: %s\n", c.DefaultRange)
	}
	if c.DefaultList != "" {
		fmt.Printf(" -list: %s\n", c.DefaultList)
	}
	fmt.Printf(" -retry_attempts: %d\n", c.RetryAttempts)
	fmt.Printf(" -retry_backoff_ms: %d\n", c.RetryBackoffMS)
	fmt.Printf(" -timeout_s: %d\n", c.TimeoutS)
	fmt.Printf(" -min_density: %.2f\n", c.MinDensity)
	fmt.Printf(" -min_text_len: %d\n", c.MinTextLen)
	if c.RulesFile != "" {
		fmt.Printf(" -rules_file: %s\n", c.RulesFile)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if c.CFBypass {
		fmt.Printf(" -cf_bypass: %t\n", c.CFBypass)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
}
