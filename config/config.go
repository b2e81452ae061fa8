package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "10MB"
	defaultAPITimeout         = 15 * time.Second
	defaultVisitorCookie      = "sf_visitor"
	defaultVisitorIdleTTL     = 30 * time.Minute
	defaultVisitorSweep       = time.Minute
	defaultVisitorRetention   = 30 * 24 * time.Hour
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// API points at the storefront REST backend.
	API APIConfig `json:"api" yaml:"api"`

	// Cache holds the freshness windows of every resource query.
	Cache CacheConfig `json:"cache" yaml:"cache"`

	Visitor VisitorConfig `json:"visitor" yaml:"visitor"`

	// Postgres persists visitor credentials. Optional; visitors live in memory when nil.
	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Redis is the shared store for public catalog queries. Optional.
	Redis *RedisConfig `json:"redis" yaml:"redis"`

	SecretKey struct {
		// Storage seals persisted refresh cookies and fallback tokens (32 bytes, hex or base64).
		Storage string `json:"storage" yaml:"storage"`
	} `json:"secretKey" yaml:"secretKey"`

	// QRCode configuration for order tracking codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// APIConfig describes the remote backend.
type APIConfig struct {
	BaseURL   string        `json:"baseUrl" yaml:"baseUrl"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent string        `json:"userAgent" yaml:"userAgent"`
}

// CacheConfig defines per-resource freshness windows and the read retry policy.
type CacheConfig struct {
	Cart          time.Duration `json:"cart" yaml:"cart"`
	CartSummary   time.Duration `json:"cartSummary" yaml:"cartSummary"`
	Products      time.Duration `json:"products" yaml:"products"`
	ProductDetail time.Duration `json:"productDetail" yaml:"productDetail"`
	Categories    time.Duration `json:"categories" yaml:"categories"`
	Reviews       time.Duration `json:"reviews" yaml:"reviews"`
	Orders        time.Duration `json:"orders" yaml:"orders"`
	Coupons       time.Duration `json:"coupons" yaml:"coupons"`
	Users         time.Duration `json:"users" yaml:"users"`
	Profile       time.Duration `json:"profile" yaml:"profile"`

	// ReadRetries is the number of extra attempts for failed reads. Zero means fail fast.
	ReadRetries int `json:"readRetries" yaml:"readRetries"`
}

// VisitorConfig controls how browser visitors are mapped onto SDK clients.
type VisitorConfig struct {
	CookieName    string        `json:"cookieName" yaml:"cookieName"`
	IdleTTL       time.Duration `json:"idleTtl" yaml:"idleTtl"`
	SweepInterval time.Duration `json:"sweepInterval" yaml:"sweepInterval"`
	SecureCookie  bool          `json:"secureCookie" yaml:"secureCookie"`
	// Retention bounds how long persisted credentials of an absent visitor are kept.
	Retention time.Duration `json:"retention" yaml:"retention"`
}

// RedisConfig defines the shared query store connection.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
	// TrackingURL is the public order tracking page; the order id is appended.
	TrackingURL string `json:"trackingUrl" yaml:"trackingUrl"`
}

// DefaultCache returns the freshness windows used when the config leaves them empty.
func DefaultCache() CacheConfig {
	return CacheConfig{
		Cart:          30 * time.Second,
		CartSummary:   30 * time.Second,
		Products:      5 * time.Minute,
		ProductDetail: 5 * time.Minute,
		Categories:    5 * time.Minute,
		Reviews:       2 * time.Minute,
		Orders:        time.Minute,
		Coupons:       time.Minute,
		Users:         time.Minute,
		Profile:       5 * time.Minute,
	}
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// API_BASEURL -> api.baseUrl
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	// A missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return nil, errors.New("api.baseUrl must be provided")
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = defaultAPITimeout
	}
	if cfg.Visitor.CookieName == "" {
		cfg.Visitor.CookieName = defaultVisitorCookie
	}
	if cfg.Visitor.IdleTTL <= 0 {
		cfg.Visitor.IdleTTL = defaultVisitorIdleTTL
	}
	if cfg.Visitor.SweepInterval <= 0 {
		cfg.Visitor.SweepInterval = defaultVisitorSweep
	}
	if cfg.Visitor.Retention <= 0 {
		cfg.Visitor.Retention = defaultVisitorRetention
	}

	defaults := DefaultCache()
	fill := func(target *time.Duration, fallback time.Duration) {
		if *target <= 0 {
			*target = fallback
		}
	}
	fill(&cfg.Cache.Cart, defaults.Cart)
	fill(&cfg.Cache.CartSummary, defaults.CartSummary)
	fill(&cfg.Cache.Products, defaults.Products)
	fill(&cfg.Cache.ProductDetail, defaults.ProductDetail)
	fill(&cfg.Cache.Categories, defaults.Categories)
	fill(&cfg.Cache.Reviews, defaults.Reviews)
	fill(&cfg.Cache.Orders, defaults.Orders)
	fill(&cfg.Cache.Coupons, defaults.Coupons)
	fill(&cfg.Cache.Users, defaults.Users)
	fill(&cfg.Cache.Profile, defaults.Profile)
	if cfg.Cache.ReadRetries < 0 {
		cfg.Cache.ReadRetries = 0
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
