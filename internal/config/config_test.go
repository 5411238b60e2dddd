package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
server:
  port: 8080
database:
  driver: mysql
  host: localhost
  port: 3306
  user: fluency
  password: from-file
  name: fluency
minio:
  endpoint: localhost:9000
  accessKey: minio
  secretKey: miniosecret
  bucketName: fluency-media-uploads
  region: us-east-1
  useSSL: false
google:
  credentialsFile: /etc/fluency/gcp.json
openai:
  model: gpt-4o-mini
identity:
  apiKey: web-api-key
mail:
  from: hello@voiceunleashed.app
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Minio.BucketName != "fluency-media-uploads" {
		t.Errorf("bucket = %q", cfg.Minio.BucketName)
	}
	if cfg.Identity.APIKey != "web-api-key" {
		t.Errorf("identity key = %q", cfg.Identity.APIKey)
	}
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("password = %q, want env override", cfg.Database.Password)
	}
	if cfg.OpenAI.APIKey != "sk-env" {
		t.Errorf("openai key = %q, want env override", cfg.OpenAI.APIKey)
	}
}

func TestDSNBuilders(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	mysql := cfg.MySQLDSN()
	if !strings.Contains(mysql, "fluency:from-file@tcp(localhost:3306)/fluency") {
		t.Errorf("mysql dsn = %q", mysql)
	}
	if !strings.Contains(mysql, "parseTime=true") {
		t.Errorf("mysql dsn missing parseTime: %q", mysql)
	}

	pg := cfg.PostgresDSN()
	if !strings.Contains(pg, "host=localhost") || !strings.Contains(pg, "sslmode=disable") {
		t.Errorf("postgres dsn = %q", pg)
	}
}

func TestPollDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.PollIntervalDuration(); got != 5*time.Second {
		t.Errorf("default poll interval = %v", got)
	}
	if got := cfg.PollTimeoutDuration(); got != 5*time.Minute {
		t.Errorf("default poll timeout = %v", got)
	}

	cfg.Google.PollInterval = 2
	cfg.Google.PollTimeout = 120
	if got := cfg.PollIntervalDuration(); got != 2*time.Second {
		t.Errorf("poll interval = %v", got)
	}
	if got := cfg.PollTimeoutDuration(); got != 2*time.Minute {
		t.Errorf("poll timeout = %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
