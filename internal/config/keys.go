package config

import (
	"sort"
	"strings"
)

// Settings flattens cfg into dotted viper keys.
func Settings(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"engine.max_team_size":     cfg.Engine.MaxTeamSize,
		"engine.authentic_context": cfg.Engine.AuthenticContext,
		"catalog.path":             cfg.Catalog.Path,
		"catalog.watch":            cfg.Catalog.Watch,
		"roster.path":              cfg.Roster.Path,
		"snapshot.path":            cfg.Snapshot.Path,
		"state.db_path":            cfg.State.DBPath,
		"learning.db_path":         cfg.Learning.DBPath,
		"logging.level":            cfg.Logging.Level,
		"logging.format":           cfg.Logging.Format,
		"logging.debug_file":       cfg.Logging.DebugFile,
		"server.addr":              cfg.Server.Addr,
		"server.request_timeout":   cfg.Server.RequestTimeout.String(),
	}
}

// Keys returns every known config key in sorted order.
func Keys() []string {
	settings := Settings(Default())
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvVar returns the environment variable that overrides key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
