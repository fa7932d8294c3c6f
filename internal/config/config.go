package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// FileMap decodes "name=url,name2=url2". envconfig's own map syntax splits
// on ':' and cannot carry URLs.
type FileMap map[string]string

func (m *FileMap) Decode(value string) error {
	out := FileMap{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, url, ok := strings.Cut(pair, "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return fmt.Errorf("invalid file entry %q, want name=url", pair)
		}
		out[name] = url
	}
	*m = out
	return nil
}

// SchemaMap decodes "name=A|B|C,name2=X|Y".
type SchemaMap map[string][]string

func (m *SchemaMap) Decode(value string) error {
	out := SchemaMap{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, cols, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("invalid schema entry %q, want name=A|B|C", pair)
		}
		var schema []string
		for _, c := range strings.Split(cols, "|") {
			if c = strings.TrimSpace(c); c != "" {
				schema = append(schema, c)
			}
		}
		if len(schema) == 0 {
			return fmt.Errorf("schema for %q has no columns", name)
		}
		out[name] = schema
	}
	*m = out
	return nil
}

type Config struct {
	// ----------------------------
	// HTTP API
	// ----------------------------
	APIPort         string        `envconfig:"API_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// ----------------------------
	// Metrics
	// ----------------------------
	MetricsPort string `envconfig:"METRICS_PORT" default:"9090"`

	// ----------------------------
	// Logging
	// ----------------------------
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	AppEnv   string `envconfig:"APP_ENV" default:"production"`

	// ----------------------------
	// Files
	// ----------------------------
	DataDir         string    `envconfig:"DATA_DIR" default:"."`
	DefaultFilename string    `envconfig:"DEFAULT_FILENAME" default:"Moodle_datein.xlsx"`
	RemoteFiles     FileMap   `envconfig:"REMOTE_FILES" default:"PublicMoodleNewsfeed.xlsx=https://digilern.hs-duesseldorf.de/cloud/s/bBZBbH6r8aTLMoy/download/PublicMoodleNewsfeed.xlsx,PublicMoodleData.xlsx=https://digilern.hs-duesseldorf.de/cloud/s/6LC7Q982HJt28qi/download/PublicMoodleData.xlsx"`
	FixedSchemas    SchemaMap `envconfig:"FIXED_SCHEMAS"`
	MaxCSVRows      int       `envconfig:"MAX_CSV_ROWS" default:"100000"`

	// ----------------------------
	// Uploads
	// ----------------------------
	UploadMaxSize   int64   `envconfig:"UPLOAD_MAX_SIZE" default:"5242880"`
	UploadRateLimit float64 `envconfig:"UPLOAD_RATE_LIMIT" default:"2"`

	// ----------------------------
	// Remote fetches
	// ----------------------------
	FetchTimeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	FetchRetries      int           `envconfig:"FETCH_RETRIES" default:"2"`
	FetchMaxRedirects int           `envconfig:"FETCH_MAX_REDIRECTS" default:"5"`
	FetchMaxBytes     int64         `envconfig:"FETCH_MAX_BYTES" default:"20971520"`
	FetchRateLimit    float64       `envconfig:"FETCH_RATE_LIMIT" default:"5"`

	// ----------------------------
	// Database
	// ----------------------------
	StoreDriver   string `envconfig:"STORE_DRIVER" default:"memory"`
	DatabaseURL   string `envconfig:"DATABASE_URL" default:""`
	KeepRevisions int    `envconfig:"KEEP_REVISIONS" default:"20"`

	// ----------------------------
	// SMTP
	// ----------------------------
	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUser     string `envconfig:"SMTP_USER" default:""`
	SMTPPassword string `envconfig:"SMTP_PASSWORD" default:""`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@sheetserve.local"`

	// ----------------------------
	// Notifications
	// ----------------------------
	NotifyTo      string `envconfig:"NOTIFY_TO" default:""`
	NotifyWorkers int    `envconfig:"NOTIFY_WORKERS" default:"2"`
	NotifyQueue   int    `envconfig:"NOTIFY_QUEUE" default:"64"`
	NotifyRate    int    `envconfig:"NOTIFY_RATE" default:"1"`
	RetryAttempts int    `envconfig:"RETRY_ATTEMPTS" default:"3"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be memory or postgres, got %q", c.StoreDriver))
	}

	if c.DefaultFilename == "" {
		errs = append(errs, errors.New("DEFAULT_FILENAME must not be empty"))
	}
	if c.UploadMaxSize <= 0 {
		errs = append(errs, errors.New("UPLOAD_MAX_SIZE must be positive"))
	}
	if c.FetchMaxRedirects < 0 || c.FetchRetries < 0 {
		errs = append(errs, errors.New("FETCH_MAX_REDIRECTS and FETCH_RETRIES must not be negative"))
	}
	if c.NotifyTo != "" && c.NotifyWorkers <= 0 {
		errs = append(errs, errors.New("NOTIFY_WORKERS must be positive when NOTIFY_TO is set"))
	}

	return errors.Join(errs...)
}

func (c *Config) NotificationsEnabled() bool {
	return c.NotifyTo != ""
}
