package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // "mysql" or "postgres"
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Google struct {
		CredentialsFile string `yaml:"credentialsFile"`
		PollInterval    int    `yaml:"pollIntervalSeconds"`
		PollTimeout     int    `yaml:"pollTimeoutSeconds"`
	} `yaml:"google"`

	OpenAI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"openai"`

	Identity struct {
		APIKey string `yaml:"apiKey"`
	} `yaml:"identity"`

	Mail struct {
		APIKey string `yaml:"apiKey"`
		From   string `yaml:"from"`
	} `yaml:"mail"`
}

// Load reads config.yaml and applies secret overrides from the
// environment in one step. Nothing downstream branches on deployment
// environment; adapters consume the resolved values uniformly.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	overrideString(&c.Google.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	overrideString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	overrideString(&c.Identity.APIKey, "IDENTITY_API_KEY")
	overrideString(&c.Mail.APIKey, "SENDGRID_API_KEY")
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Helper to build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper to build DSN Postgres
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}

// PollInterval is how often long-running annotation jobs are polled.
func (c *Config) PollIntervalDuration() time.Duration {
	if c.Google.PollInterval <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Google.PollInterval) * time.Second
}

// PollTimeoutDuration bounds how long one annotation job may stay outstanding.
func (c *Config) PollTimeoutDuration() time.Duration {
	if c.Google.PollTimeout <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Google.PollTimeout) * time.Second
}
