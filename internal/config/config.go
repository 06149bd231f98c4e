package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server Server `yaml:"server"`
	Data   Data   `yaml:"data"`
	Cache  Cache  `yaml:"cache"`
	Agent  Agent  `yaml:"agent"`
	Mailer Mailer `yaml:"mailer"`
}

// Server holds HTTP server configuration
type Server struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection
func (s Server) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return s.Host
}

// Data holds object-storage locations for the campaign datasets
type Data struct {
	Bucket      string `yaml:"bucket"`
	Region      string `yaml:"region"`
	AWSProfile  string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	LocalPath   string `yaml:"local_path"`  // Non-empty switches to local-directory fetching (dev/tests)
	FlightsKey  string `yaml:"flights_key"`
	UsersKey    string `yaml:"users_key"`
	SegmentsKey string `yaml:"segments_key"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (d Data) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return "" // Use default credential chain (IAM role)
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "" // Running on ECS or Lambda, use IAM role
	}
	return d.AWSProfile
}

// Cache holds Redis read-through cache configuration
type Cache struct {
	Enabled    bool   `yaml:"enabled"`
	RedisAddr  string `yaml:"redis_addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the configured cache TTL as a duration
func (c Cache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Agent holds Bedrock agent configuration
type Agent struct {
	AgentID        string `yaml:"agent_id"`
	AgentAliasID   string `yaml:"agent_alias_id"`
	Region         string `yaml:"region"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (a Agent) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Configured reports whether a live agent identity is available.
// An empty agent id means mock responses only; this is not an error state.
func (a Agent) Configured() bool {
	return a.AgentID != ""
}

// Mailer holds SES test-send configuration
type Mailer struct {
	Enabled     bool   `yaml:"enabled"`
	Region      string `yaml:"region"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	FromAddress string `yaml:"from_address"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Data.Bucket == "" {
		cfg.Data.Bucket = "knowledgebase-bedrock-agent-ab3"
	}
	if cfg.Data.Region == "" {
		cfg.Data.Region = "us-east-1"
	}
	if cfg.Data.FlightsKey == "" {
		cfg.Data.FlightsKey = "data/travel_items.csv"
	}
	if cfg.Data.UsersKey == "" {
		cfg.Data.UsersKey = "data/travel_users.csv"
	}
	if cfg.Data.SegmentsKey == "" {
		cfg.Data.SegmentsKey = "segments/batch_segment_input_ab3.json.out"
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Agent.AgentAliasID == "" {
		cfg.Agent.AgentAliasID = "TSTALIASID"
	}
	if cfg.Agent.Region == "" {
		cfg.Agent.Region = "us-east-1"
	}
	if cfg.Agent.TimeoutSeconds == 0 {
		cfg.Agent.TimeoutSeconds = 120
	}
	if cfg.Mailer.Region == "" {
		cfg.Mailer.Region = "us-east-1"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if v := os.Getenv("AGENT_ID"); v != "" {
		cfg.Agent.AgentID = v
	}
	if v := os.Getenv("AGENT_ALIAS_ID"); v != "" {
		cfg.Agent.AgentAliasID = v
	}
	if v := os.Getenv("AGENT_REGION"); v != "" {
		cfg.Agent.Region = v
	}
	if v := os.Getenv("DATA_BUCKET"); v != "" {
		cfg.Data.Bucket = v
	}
	if v := os.Getenv("DATA_REGION"); v != "" {
		cfg.Data.Region = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		cfg.Cache.Enabled = true
	}
	if v := os.Getenv("SES_ACCESS_KEY"); v != "" {
		cfg.Mailer.AccessKey = v
	}
	if v := os.Getenv("SES_SECRET_KEY"); v != "" {
		cfg.Mailer.SecretKey = v
	}
	if v := os.Getenv("SES_FROM_ADDRESS"); v != "" {
		cfg.Mailer.FromAddress = v
		cfg.Mailer.Enabled = true
	}

	return cfg, nil
}
