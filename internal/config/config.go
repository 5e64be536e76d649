package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Site           string `yaml:"site"`
	Manga          string `yaml:"manga"`
	Auto           bool   `yaml:"auto"`
	AllChapters    bool   `yaml:"all_chapters"`
	Overwrite      bool   `yaml:"overwrite"`
	Output         string `yaml:"output"`
	Format         string `yaml:"format"`
	LastDownloaded string `yaml:"last_downloaded"`

	Workspace string `yaml:"workspace"`
	Mirror    string `yaml:"mirror"`
	Retries   int    `yaml:"retries"`
	// Timeout is the per-request timeout in seconds.
	Timeout int  `yaml:"timeout"`
	Debug   bool `yaml:"debug"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`
}

type Options struct {
	IgnoreConfig     bool
	Debug            bool
	Site             string
	Manga            string
	Auto             bool
	AllChapters      bool
	Overwrite        bool
	Output           string
	Format           string
	LastDownloaded   string
	Workspace        string
	Mirror           string
	Retries          int
	Timeout          int
	Cookie           string
	CookieFile       string
	UserAgent        string
	CloudflareBypass bool
}

func DefaultConfig() *Config {
	return &Config{
		Site:    "MangaFox",
		Output:  ".",
		Format:  ".cbz",
		Retries: 6,
		Timeout: 30,
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged reads the active profile, or the defaults when there is none
// or it is ignored, and overlays opts. It also reports where the values came
// from.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `mangadl config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.Site != "" {
		c.Site = o.Site
	}
	if o.Manga != "" {
		c.Manga = o.Manga
	}
	if o.Auto {
		c.Auto = true
	}
	if o.AllChapters {
		c.AllChapters = true
	}
	if o.Overwrite {
		c.Overwrite = true
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.LastDownloaded != "" {
		c.LastDownloaded = o.LastDownloaded
	}
	if o.Workspace != "" {
		c.Workspace = o.Workspace
	}
	if o.Mirror != "" {
		c.Mirror = o.Mirror
	}
	if o.Retries != 0 {
		c.Retries = o.Retries
	}
	if o.Timeout != 0 {
		c.Timeout = o.Timeout
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
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.Format == "" {
		c.Format = ".cbz"
	}
	if !strings.HasPrefix(c.Format, ".") {
		c.Format = "." + c.Format
	}
	c.Format = strings.ToLower(c.Format)
	if c.Retries <= 0 {
		c.Retries = 6
	}
	if c.Timeout <= 0 {
		c.Timeout = 30
	}
}

// Validate reports settings a download cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Site) == "" {
		return errors.New("missing --site and no site in config")
	}
	if strings.TrimSpace(c.Manga) == "" {
		return errors.New("missing manga title: pass it as an argument or set manga in config")
	}
	if strings.ContainsAny(c.Format, `/\`) {
		return fmt.Errorf("invalid archive format %q", c.Format)
	}

	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c *Config) Print() {
	c.Fprint(os.Stdout)
}

func (c *Config) Fprint(w io.Writer) {
	fmt.Fprintf(w, " -site: %s\n", c.Site)
	if c.Manga != "" {
		fmt.Fprintf(w, " -manga: %s\n", c.Manga)
	}
	if c.Auto {
		fmt.Fprintf(w, " -auto: %t\n", c.Auto)
	}
	if c.AllChapters {
		fmt.Fprintf(w, " -all_chapters: %t\n", c.AllChapters)
	}
	if c.Overwrite {
		fmt.Fprintf(w, " -overwrite: %t\n", c.Overwrite)
	}
	fmt.Fprintf(w, " -output: %s\n", c.Output)
	fmt.Fprintf(w, " -format: %s\n", c.Format)
	if c.LastDownloaded != "" {
		fmt.Fprintf(w, " -last_downloaded: %s\n", c.LastDownloaded)
	}
	if c.Workspace != "" {
		fmt.Fprintf(w, " -workspace: %s\n", c.Workspace)
	}
	if c.Mirror != "" {
		fmt.Fprintf(w, " -mirror: %s\n", c.Mirror)
	}
	fmt.Fprintf(w, " -retries: %d\n", c.Retries)
	fmt.Fprintf(w, " -timeout: %ds\n", c.Timeout)
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CloudflareBypass {
		fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
}
