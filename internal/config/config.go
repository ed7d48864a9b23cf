package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port         int           `yaml:"port" default:"8080"`
		Host         string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
	} `yaml:"server"`

	Workers struct {
		PoolSize   int           `yaml:"pool_size" default:"10"`
		QueueSize  int           `yaml:"queue_size" default:"100"`
		RateLimit  int           `yaml:"rate_limit" default:"60"` // requests per minute per host
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
	} `yaml:"workers"`

	Scraper struct {
		Engine         string        `yaml:"engine" default:"static"` // static, browser, auto
		UserAgent      string        `yaml:"user_agent"`
		MaxRetries     int           `yaml:"max_retries" default:"3"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`
		MinHTMLLength  int           `yaml:"min_html_length" default:"1000"`
		HeadlessMode   bool          `yaml:"headless_mode" default:"true"`
		StealthMode    bool          `yaml:"stealth_mode" default:"true"`
	} `yaml:"scraper"`

	// Firecrawl configures the hosted-fetch engine. Only consulted when
	// the scraper engine is set to "firecrawl".
	Firecrawl struct {
		APIKey     string        `yaml:"api_key"`
		APIURL     string        `yaml:"api_url" default:"https://api.firecrawl.dev"`
		Timeout    time.Duration `yaml:"timeout" default:"60s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
		Formats    []string      `yaml:"formats" default:"html"`
	} `yaml:"firecrawl"`

	// Archive configures the official ads-archive API client. Leaving the
	// access token empty disables the archive stage entirely.
	Archive struct {
		AccessToken string        `yaml:"access_token"`
		BaseURL     string        `yaml:"base_url" default:"https://graph.facebook.com/v18.0"`
		Countries   []string      `yaml:"countries"`
		PageIDs     []string      `yaml:"page_ids"`
		Timeout     time.Duration `yaml:"timeout" default:"15s"`
		Limit       int           `yaml:"limit" default:"25"`
	} `yaml:"archive"`

	// Upstream configures the web app API the relay forwards saves and board
	// lookups to.
	Upstream struct {
		BaseURL        string        `yaml:"base_url" default:"http://localhost:3000"`
		AltBaseURL     string        `yaml:"alt_base_url"`
		Token          string        `yaml:"token"`
		SessionCookie  string        `yaml:"session_cookie" default:"next-auth.session-token"`
		Timeout        time.Duration `yaml:"timeout" default:"15s"`
		MaxRetries     int           `yaml:"max_retries" default:"3"`
		RetryBaseDelay time.Duration `yaml:"retry_base_delay" default:"500ms"`
	} `yaml:"upstream"`

	Relay struct {
		SessionTTL time.Duration `yaml:"session_ttl" default:"60s"`
		BoardsTTL  time.Duration `yaml:"boards_ttl" default:"5m"`
	} `yaml:"relay"`

	ResolveCache struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		TTL     time.Duration `yaml:"ttl" default:"1h"`
	} `yaml:"resolve_cache"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	Redis struct {
		URL      string        `yaml:"url" default:"redis://localhost:6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"redis"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or
// $VAR syntax. An unset ${VAR} collapses to the empty string so credential
// fields stay empty and their features stay disabled, instead of the literal
// placeholder passing non-empty checks.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	// Set defaults
	config.Server.Port = 8080
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 30 * time.Second
	config.Server.IdleTimeout = 60 * time.Second

	config.Workers.PoolSize = 10
	config.Workers.QueueSize = 100
	config.Workers.RateLimit = 60
	config.Workers.Timeout = 30 * time.Second
	config.Workers.MaxRetries = 3

	config.Scraper.Engine = "static"
	config.Scraper.MaxRetries = 3
	config.Scraper.RequestTimeout = 30 * time.Second
	config.Scraper.MinHTMLLength = 1000
	config.Scraper.HeadlessMode = true
	config.Scraper.StealthMode = true
	config.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	config.Firecrawl.APIURL = "https://api.firecrawl.dev"
	config.Firecrawl.Timeout = 60 * time.Second
	config.Firecrawl.MaxRetries = 3
	config.Firecrawl.Formats = []string{"html"}

	config.Archive.BaseURL = "https://graph.facebook.com/v18.0"
	config.Archive.Countries = []string{"US", "GB", "CA", "AU", "DE", "FR"}
	config.Archive.Timeout = 15 * time.Second
	config.Archive.Limit = 25

	config.Upstream.BaseURL = "http://localhost:3000"
	config.Upstream.SessionCookie = "next-auth.session-token"
	config.Upstream.Timeout = 15 * time.Second
	config.Upstream.MaxRetries = 3
	config.Upstream.RetryBaseDelay = 500 * time.Millisecond

	config.Relay.SessionTTL = 60 * time.Second
	config.Relay.BoardsTTL = 5 * time.Minute

	config.ResolveCache.Enabled = true
	config.ResolveCache.TTL = time.Hour

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.Output = "stdout"

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.DB = 0
	config.Redis.Timeout = 5 * time.Second

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	// Override with environment variables
	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if token := os.Getenv("FB_ARCHIVE_TOKEN"); token != "" {
		c.Archive.AccessToken = token
	}

	if baseURL := os.Getenv("FB_ARCHIVE_BASE_URL"); baseURL != "" {
		c.Archive.BaseURL = baseURL
	}

	if countries := os.Getenv("FB_ARCHIVE_COUNTRIES"); countries != "" {
		c.Archive.Countries = strings.Split(countries, ",")
	}

	if pageIDs := os.Getenv("FB_ARCHIVE_PAGE_IDS"); pageIDs != "" {
		c.Archive.PageIDs = strings.Split(pageIDs, ",")
	}

	if engine := os.Getenv("SCRAPER_ENGINE"); engine != "" {
		c.Scraper.Engine = engine
	}

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	if upstreamURL := os.Getenv("UPSTREAM_BASE_URL"); upstreamURL != "" {
		c.Upstream.BaseURL = upstreamURL
	}

	if altURL := os.Getenv("UPSTREAM_ALT_BASE_URL"); altURL != "" {
		c.Upstream.AltBaseURL = altURL
	}

	if token := os.Getenv("UPSTREAM_TOKEN"); token != "" {
		c.Upstream.Token = token
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		c.Redis.Password = redisPassword
	}

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			c.Redis.DB = db
		}
	}

	if redisTimeout := os.Getenv("REDIS_TIMEOUT"); redisTimeout != "" {
		if timeout, err := time.ParseDuration(redisTimeout); err == nil {
			c.Redis.Timeout = timeout
		}
	}

	if cacheEnabled := os.Getenv("RESOLVE_CACHE_ENABLED"); cacheEnabled != "" {
		c.ResolveCache.Enabled = cacheEnabled == "true" || cacheEnabled == "1"
	}
}
