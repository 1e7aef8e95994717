package config

import (
	"github.com/spf13/pflag"
)

// Flags holds process-level switches that have no environment counterpart.
type Flags struct {
	MigrateOnly bool
}

// ApplyFlags parses command line arguments on top of an env-loaded config.
// Flags left unset keep the environment value.
func ApplyFlags(cfg *AppConfig, args []string) (Flags, error) {
	var f Flags

	fs := pflag.NewFlagSet("docregister", pflag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP listen port")
	fs.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "ledger store backend (postgres|memory)")
	fs.StringVar(&cfg.BlobBackend, "blob", cfg.BlobBackend, "blob store backend (minio|s3)")
	fs.StringVar(&cfg.Register.PolicyFile, "policy", cfg.Register.PolicyFile, "path to the register policy YAML file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.BoolVar(&f.MigrateOnly, "migrate-only", false, "run database migrations and exit")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}
