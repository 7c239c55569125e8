// Package config handles configuration for the wormkeeper server, including
// defaults, JSON overlay, environment variables and command-line flags.
package config

// Config holds runtime settings for the wormkeeper server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP endpoint.
//   - UsersDir / BackupDir: directories holding live records and their backups.
//   - MaxBodyBytes: request body budget for JSON endpoints.
//   - MaxDataBytes: cap on the serialized `data` blob accepted at registration.
//   - DebugResponses: when true, error bodies also carry `code` and `detail`.
//     Keep this off in production.
//   - PasswordScheme: "sha256" (legacy-compatible default) or "argon2id".
//   - S3Bucket / S3Region / S3BaseEndpoint / S3RootUser / S3RootPassword:
//     optional object-storage mirror for the backup set. An empty bucket
//     disables the mirror.
type Config struct {
	EndpointAddr   string
	UsersDir       string
	BackupDir      string
	MaxBodyBytes   int64
	MaxDataBytes   int64
	DebugResponses bool
	PasswordScheme string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3RootUser     string
	S3RootPassword string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":3001"
	c.UsersDir = "users"
	c.BackupDir = "backup"
	c.MaxBodyBytes = 20 << 20  // 20 MiB
	c.MaxDataBytes = 256 << 10 // 256 KiB
	c.DebugResponses = false
	c.PasswordScheme = "sha256"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3RootUser = ""
	c.S3RootPassword = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
