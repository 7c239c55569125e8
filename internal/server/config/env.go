package config

import (
	"os"
	"strconv"
)

// parseEnv overlays environment variables onto the Config.
//
// Recognized variables:
//
//	PORT             port number for the HTTP endpoint (e.g. "3001")
//	USERS_DIR        live records directory
//	BACKUP_DIR       backup directory
//	DEBUG_RESPONSES  "true"/"1" enables debug error responses
//
// PORT carries just the port, matching how the service has historically been
// deployed; the bind address stays on all interfaces.
func parseEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			config.EndpointAddr = ":" + port
		}
	}
	if dir := os.Getenv("USERS_DIR"); dir != "" {
		config.UsersDir = dir
	}
	if dir := os.Getenv("BACKUP_DIR"); dir != "" {
		config.BackupDir = dir
	}
	if v := os.Getenv("DEBUG_RESPONSES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.DebugResponses = b
		}
	}
}
