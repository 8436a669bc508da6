// config/config.go
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultFeatureFlagURL = "http://localhost:7750/v1/feature-flag/dso"
	DefaultCoreURL        = "http://localhost:7750"
	DefaultFeatureFlagTTL = 30 * time.Minute
	DefaultSignatureTTL   = 60 * time.Second
	DefaultSaltRounds     = 10

	// bcrypt cost bounds
	MinSaltRounds = 4
	MaxSaltRounds = 31
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Redis         RedisConfiguration
	FeatureFlag   FeatureFlagConfiguration
	Signature     SignatureConfiguration
	HTTP          HTTPConfiguration
	Cache         CacheConfiguration
	Elasticsearch ElasticsearchConfiguration
	RateLimit     RateLimitConfiguration
	Log           LogConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
}

// FeatureFlagConfiguration points at the flag authority.
type FeatureFlagConfiguration struct {
	CoreURL string
	TTL     time.Duration
}

// SignatureConfiguration points at the credential authority and sets the
// bcrypt cost used when issuing signatures.
type SignatureConfiguration struct {
	CoreURL    string
	TTL        time.Duration
	SaltRounds int
}

// HTTPConfiguration is applied to the client used for authority calls.
type HTTPConfiguration struct {
	Timeout time.Duration
}

// CacheConfiguration toggles per-key request coalescing in the resolver and
// an in-process store used when Redis is unreachable.
type CacheConfiguration struct {
	Coalesce       bool
	MemoryFallback bool
	MemoryEntries  int
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL     string
	Index   string
	Enabled bool
}

type RateLimitConfiguration struct {
	Requests int
	Per      time.Duration
}

type LogConfiguration struct {
	Dir string
}

var config *Configuration

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dialTimeout", "5s")
	v.SetDefault("redis.readTimeout", "3s")
	v.SetDefault("redis.writeTimeout", "3s")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("featureFlag.ttl", DefaultFeatureFlagTTL)
	v.SetDefault("signature.coreUrl", DefaultCoreURL)
	v.SetDefault("signature.ttl", DefaultSignatureTTL)
	v.SetDefault("signature.saltRounds", DefaultSaltRounds)
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("cache.coalesce", false)
	v.SetDefault("cache.memoryFallback", false)
	v.SetDefault("cache.memoryEntries", 1024)
	v.SetDefault("elasticsearch.url", "http://localhost:9200")
	v.SetDefault("elasticsearch.index", "signature-audit")
	v.SetDefault("elasticsearch.enabled", false)
	v.SetDefault("rateLimit.requests", 100)
	v.SetDefault("rateLimit.per", time.Minute)
	v.SetDefault("log.dir", "")
}

func InitConfig() error {
	viper.AddConfigPath("config")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	cfg, err := load(viper.GetViper())
	if err != nil {
		return err
	}
	config = cfg
	return nil
}

// load reads the optional config file and environment into v.
// featureFlag.coreUrl has no static default: CORE_URL wins over the
// built-in URL, an explicit config value wins over both.
func load(v *viper.Viper) (*Configuration, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	_ = v.BindEnv("featureFlag.coreUrl", "FEATUREFLAG_COREURL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.FeatureFlag.CoreURL == "" {
		cfg.FeatureFlag.CoreURL = v.GetString("CORE_URL")
	}
	if cfg.FeatureFlag.CoreURL == "" {
		cfg.FeatureFlag.CoreURL = DefaultFeatureFlagURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the resolvers cannot run with.
func (c *Configuration) Validate() error {
	if c.Signature.SaltRounds < MinSaltRounds || c.Signature.SaltRounds > MaxSaltRounds {
		return fmt.Errorf("signature.saltRounds must be between %d and %d, got %d", MinSaltRounds, MaxSaltRounds, c.Signature.SaltRounds)
	}
	if c.FeatureFlag.TTL <= 0 {
		return fmt.Errorf("featureFlag.ttl must be positive, got %s", c.FeatureFlag.TTL)
	}
	if c.Signature.TTL <= 0 {
		return fmt.Errorf("signature.ttl must be positive, got %s", c.Signature.TTL)
	}
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}
