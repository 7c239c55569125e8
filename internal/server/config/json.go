package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/wormkeeper/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It is an intermediate DTO used only for reading JSON
// configuration files; after unmarshalling, its fields are copied into the
// runtime Config struct.
//
// Only fields present in the file override the current values, so a partial
// file is fine.
type JsonConfig struct {
	EndpointAddr   *string `json:"endpoint_addr"`
	UsersDir       *string `json:"users_dir"`
	BackupDir      *string `json:"backup_dir"`
	MaxBodyBytes   *int64  `json:"max_body_bytes"`
	MaxDataBytes   *int64  `json:"max_data_bytes"`
	DebugResponses *bool   `json:"debug_responses"`
	PasswordScheme *string `json:"password_scheme"`
	S3Bucket       *string `json:"s3_bucket"`
	S3Region       *string `json:"s3_region"`
	S3BaseEndpoint *string `json:"s3_base_endpoint"`
	S3RootUser     *string `json:"s3_root_user"`
	S3RootPassword *string `json:"s3_root_password"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.UsersDir != nil {
		config.UsersDir = *c.UsersDir
	}
	if c.BackupDir != nil {
		config.BackupDir = *c.BackupDir
	}
	if c.MaxBodyBytes != nil {
		config.MaxBodyBytes = *c.MaxBodyBytes
	}
	if c.MaxDataBytes != nil {
		config.MaxDataBytes = *c.MaxDataBytes
	}
	if c.DebugResponses != nil {
		config.DebugResponses = *c.DebugResponses
	}
	if c.PasswordScheme != nil {
		config.PasswordScheme = *c.PasswordScheme
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.S3Region != nil {
		config.S3Region = *c.S3Region
	}
	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
	if c.S3RootUser != nil {
		config.S3RootUser = *c.S3RootUser
	}
	if c.S3RootPassword != nil {
		config.S3RootPassword = *c.S3RootPassword
	}
}
