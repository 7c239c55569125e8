package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/wormkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3001")
//	-u string   live records directory
//	-k string   backup directory
//	-m int      request body budget, bytes
//	-x int      registration data cap, bytes
//	-v          include error code/detail in JSON error bodies (dev only)
//	-w string   password hashing scheme ("sha256" or "argon2id")
//	-b string   S3 bucket for the backup mirror (empty disables)
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-i string   S3 root user
//	-p string   S3 root password
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-k", "-m", "-x", "-v", "-w", "-b", "-g", "-e", "-i", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.UsersDir, "u", config.UsersDir, "live records directory")
	fs.StringVar(&config.BackupDir, "k", config.BackupDir, "backup directory")
	fs.Int64Var(&config.MaxBodyBytes, "m", config.MaxBodyBytes, "request body budget (bytes)")
	fs.Int64Var(&config.MaxDataBytes, "x", config.MaxDataBytes, "registration data cap (bytes)")
	fs.BoolVar(&config.DebugResponses, "v", config.DebugResponses, "debug error responses")
	fs.StringVar(&config.PasswordScheme, "w", config.PasswordScheme, "password hashing scheme")

	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for backup mirror")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "i", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
