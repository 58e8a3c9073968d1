package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  address: 127.0.0.1
  port: 9090
  db_path: /var/lib/chatstore
security:
  rate_limit:
    rps: 12.5
    burst: 30
  api_keys:
    backend: [bk1, bk2]
    frontend: [fk1]
blob:
  base_url: https://cdn.example.com
  secret: s3cret
  url_ttl: 15m
validation:
  max_body_bytes: 64KB
  reaction_values: ["👍", "🎉"]
retention:
  enabled: true
  cron: "0 3 * * *"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// TestLoadParsesTypedFields verifies the human-friendly size and duration
// forms parse into their typed values.
func TestLoadParsesTypedFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1:9090", cfg.Addr())
	require.Equal(t, "/var/lib/chatstore", cfg.Server.DBPath)
	require.Equal(t, 12.5, cfg.Security.RateLimit.RPS)
	require.Equal(t, []string{"bk1", "bk2"}, cfg.Security.APIKeys.Backend)
	require.Equal(t, 15*time.Minute, cfg.Blob.URLTTL.Duration())
	require.Equal(t, int64(64000), cfg.Validation.MaxBodyBytes.Int64())
	require.Equal(t, []string{"👍", "🎉"}, cfg.Validation.ReactionValues)
	require.True(t, cfg.Retention.Enabled)
	require.Equal(t, "0 3 * * *", cfg.Retention.Cron)
}

// TestSizeAndDurationFallbacks verifies plain numbers parse as raw bytes and
// seconds respectively, and junk is rejected.
func TestSizeAndDurationFallbacks(t *testing.T) {
	cfg, err := Load(writeConfig(t, "validation:\n  max_body_bytes: 4096\nblob:\n  url_ttl: 90\n"))
	require.NoError(t, err)
	require.Equal(t, int64(4096), cfg.Validation.MaxBodyBytes.Int64())
	require.Equal(t, 90*time.Second, cfg.Blob.URLTTL.Duration())

	_, err = Load(writeConfig(t, "blob:\n  url_ttl: soon\n"))
	require.Error(t, err)
}

// TestAddrDefaults verifies the zero config still yields a usable listen
// address.
func TestAddrDefaults(t *testing.T) {
	var c Config
	require.Equal(t, "0.0.0.0:8080", c.Addr())
}

// TestParseConfigFileMissing verifies an absent default config file is not
// fatal.
func TestParseConfigFileMissing(t *testing.T) {
	flags := Flags{Config: filepath.Join(t.TempDir(), "nope.yaml"), Set: map[string]bool{}}
	cfg, exists, err := ParseConfigFile(flags)
	require.NoError(t, err)
	require.False(t, exists)
	require.NotNil(t, cfg)
}

// TestLoadEffectiveConfigPrecedence pins the single-source selection rules:
// an explicit --config wins and must exist, explicit addr/db flags win next,
// then a present file, then env.
func TestLoadEffectiveConfigPrecedence(t *testing.T) {
	fileCfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	envCfg := &Config{}
	envCfg.Server.Address = "envhost"
	envCfg.Server.Port = 7000
	envCfg.Server.DBPath = "/env/db"

	// explicit --config but no file
	_, err = LoadEffectiveConfig(Flags{Config: "/missing.yaml", Set: map[string]bool{"config": true}}, &Config{}, false, envCfg, EnvResult{})
	require.Error(t, err)

	// explicit --config with the file present
	res, err := LoadEffectiveConfig(Flags{Set: map[string]bool{"config": true}}, fileCfg, true, envCfg, EnvResult{})
	require.NoError(t, err)
	require.Equal(t, "config", res.Source)
	require.Equal(t, "127.0.0.1:9090", res.Addr)
	require.Equal(t, "/var/lib/chatstore", res.DBPath)

	// explicit addr flag wins over everything else
	res, err = LoadEffectiveConfig(Flags{Addr: ":6000", DB: "./.database", Set: map[string]bool{"addr": true}}, fileCfg, true, envCfg, EnvResult{})
	require.NoError(t, err)
	require.Equal(t, "flags", res.Source)
	require.Equal(t, ":6000", res.Addr)
	// the unset db flag falls back to env, then file
	require.Equal(t, "/env/db", res.DBPath)

	// no flags, file present
	res, err = LoadEffectiveConfig(Flags{Set: map[string]bool{}}, fileCfg, true, envCfg, EnvResult{})
	require.NoError(t, err)
	require.Equal(t, "config", res.Source)

	// no flags, no file: env is all that is left
	res, err = LoadEffectiveConfig(Flags{Set: map[string]bool{}}, &Config{}, false, envCfg, EnvResult{EnvUsed: true})
	require.NoError(t, err)
	require.Equal(t, "env", res.Source)
	require.Equal(t, "envhost:7000", res.Addr)
	require.Equal(t, "/env/db", res.DBPath)
}

// TestParseConfigEnvs verifies environment overrides land in a fresh config
// and backend keys double as signing keys.
func TestParseConfigEnvs(t *testing.T) {
	t.Setenv("CHATSTORE_ADDR", "10.0.0.5:8443")
	t.Setenv("CHATSTORE_DB_PATH", "/env/db")
	t.Setenv("CHATSTORE_API_BACKEND_KEYS", "bk1, bk2")
	t.Setenv("CHATSTORE_RATE_RPS", "2.5")
	t.Setenv("CHATSTORE_RETENTION_ENABLED", "true")

	cfg, res := ParseConfigEnvs()
	require.True(t, res.EnvUsed)
	require.Equal(t, "10.0.0.5", cfg.Server.Address)
	require.Equal(t, 8443, cfg.Server.Port)
	require.Equal(t, "/env/db", cfg.Server.DBPath)
	require.Equal(t, 2.5, cfg.Security.RateLimit.RPS)
	require.True(t, cfg.Retention.Enabled)
	require.Contains(t, res.BackendKeys, "bk1")
	require.Contains(t, res.SigningKeys, "bk2")
}

// TestRuntimeSigningKeysCopiedOut verifies readers get a copy, not the live
// map.
func TestRuntimeSigningKeysCopiedOut(t *testing.T) {
	SetRuntime(&RuntimeConfig{SigningKeys: map[string]struct{}{"k1": {}}})
	t.Cleanup(func() { SetRuntime(nil) })

	keys := GetSigningKeys()
	require.Contains(t, keys, "k1")
	delete(keys, "k1")
	require.Contains(t, GetSigningKeys(), "k1")
}
