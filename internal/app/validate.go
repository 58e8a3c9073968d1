package app

import (
	"fmt"
	"os"

	"chatstore/pkg/config"
)

// validateConfig performs quick, fail-fast validation of the effective
// configuration before starting long-running services. Keep checks light
// and focused so callers can surface user-friendly errors.
func validateConfig(eff config.EffectiveConfigResult) error {
	// DB path must be present
	if p := eff.DBPath; p == "" {
		return fmt.Errorf("database path is empty: set --db flag, CHATSTORE_DB_PATH env, or server.db_path in config")
	}

	// TLS cert/key presence check if one is set
	cert := eff.Config.Server.TLS.CertFile
	key := eff.Config.Server.TLS.KeyFile
	if (cert != "" && key == "") || (cert == "" && key != "") {
		return fmt.Errorf("incomplete TLS configuration: both server.tls.cert_file and server.tls.key_file must be set")
	}
	if cert != "" {
		if _, err := os.Stat(cert); err != nil {
			return fmt.Errorf("tls cert file not accessible: %w", err)
		}
		if _, err := os.Stat(key); err != nil {
			return fmt.Errorf("tls key file not accessible: %w", err)
		}
	}

	// A signing secret is useless without a base URL. The reverse is fine:
	// base URL alone serves unsigned links.
	if eff.Config.Blob.Secret != "" && eff.Config.Blob.BaseURL == "" {
		return fmt.Errorf("incomplete blob configuration: blob.secret requires blob.base_url")
	}

	if eff.Config.Query.MaxPageSize < 0 || eff.Config.Query.DefaultPageSize < 0 {
		return fmt.Errorf("query page sizes must not be negative")
	}

	return nil
}
