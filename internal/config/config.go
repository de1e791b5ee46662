package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultSiteRoot        = "https://www.supremecourt.gov.bd"
	DefaultSearchPath      = "/web/index.php"
	DefaultMaxDocumentSize = 50 * 1024 * 1024 // 50MB
	DefaultFetchTimeout    = 60 * time.Second
	DefaultRenderScale     = 1.5
	DefaultAttribution     = "(C) Copyright to Sheikh Hamza"
)

// Config holds all configuration for the case search server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Upstream site configuration
	SiteRoot   string // scheme://host of the judicial records site
	SearchPath string // path of the search endpoint under SiteRoot

	// Document pipeline configuration
	MaxDocumentSize int64         // maximum fetched PDF size in bytes
	FetchTimeout    time.Duration // per-request timeout for upstream fetches
	RenderScale     float64       // zoom factor for page rasterization
	Attribution     string        // attribution string in the stamped footer

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeStdio, // Default to stdio mode for MCP compatibility
		Host:            DefaultHost,
		Port:            DefaultPort,
		SiteRoot:        DefaultSiteRoot,
		SearchPath:      DefaultSearchPath,
		MaxDocumentSize: DefaultMaxDocumentSize,
		FetchTimeout:    DefaultFetchTimeout,
		RenderScale:     DefaultRenderScale,
		Attribution:     DefaultAttribution,
		Version:         "1.0.0",
		ServerName:      "case-search-app",
		LogLevel:        DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("CASE_SEARCH")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("siteroot", cfg.SiteRoot)
	viper.SetDefault("searchpath", cfg.SearchPath)
	viper.SetDefault("maxdocsize", cfg.MaxDocumentSize)
	viper.SetDefault("fetchtimeout", cfg.FetchTimeout)
	viper.SetDefault("renderscale", cfg.RenderScale)
	viper.SetDefault("attribution", cfg.Attribution)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("siteroot", cfg.SiteRoot, "Root URL of the judicial records site")
	pflag.String("searchpath", cfg.SearchPath, "Path of the search endpoint under the site root")
	pflag.Int64("maxdocsize", cfg.MaxDocumentSize, "Maximum fetched document size in bytes")
	pflag.Duration("fetchtimeout", cfg.FetchTimeout, "Timeout for upstream fetches")
	pflag.Float64("renderscale", cfg.RenderScale, "Zoom factor for page rasterization")
	pflag.String("attribution", cfg.Attribution, "Attribution text in the stamped page footer")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("siteroot", pflag.Lookup("siteroot"))
	_ = viper.BindPFlag("searchpath", pflag.Lookup("searchpath"))
	_ = viper.BindPFlag("maxdocsize", pflag.Lookup("maxdocsize"))
	_ = viper.BindPFlag("fetchtimeout", pflag.Lookup("fetchtimeout"))
	_ = viper.BindPFlag("renderscale", pflag.Lookup("renderscale"))
	_ = viper.BindPFlag("attribution", pflag.Lookup("attribution"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nCase Search - search judicial records and view judgment PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                      # stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server                        # HTTP server on 127.0.0.1:8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_MODE          Server mode\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_HOST          Server host\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_PORT          Server port\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_SITEROOT      Judicial records site root URL\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_SEARCHPATH    Search endpoint path\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_MAXDOCSIZE    Maximum document size\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_FETCHTIMEOUT  Upstream fetch timeout\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_RENDERSCALE   Page rasterization scale\n")
		fmt.Fprintf(os.Stderr, "  CASE_SEARCH_LOGLEVEL      Log level\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.SiteRoot = viper.GetString("siteroot")
	cfg.SearchPath = viper.GetString("searchpath")
	cfg.MaxDocumentSize = viper.GetInt64("maxdocsize")
	cfg.FetchTimeout = viper.GetDuration("fetchtimeout")
	cfg.RenderScale = viper.GetFloat64("renderscale")
	cfg.Attribution = viper.GetString("attribution")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate upstream site root
	if c.SiteRoot == "" {
		return errors.New("site root cannot be empty")
	}
	u, err := url.Parse(c.SiteRoot)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site root must be an absolute URL: %s", c.SiteRoot)
	}

	if !strings.HasPrefix(c.SearchPath, "/") {
		return fmt.Errorf("search path must start with '/': %s", c.SearchPath)
	}

	// Validate max document size
	if c.MaxDocumentSize <= 0 {
		return errors.New("maximum document size must be positive")
	}

	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}

	if c.RenderScale <= 0 || c.RenderScale > 8 {
		return errors.New("render scale must be in (0, 8]")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SearchURL returns the absolute URL of the upstream search endpoint
func (c *Config) SearchURL() string {
	return strings.TrimRight(c.SiteRoot, "/") + c.SearchPath
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, SiteRoot: %s, LogLevel: %s, MaxDocumentSize: %d}",
		c.Mode, c.Host, c.Port, c.SiteRoot, c.LogLevel, c.MaxDocumentSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
