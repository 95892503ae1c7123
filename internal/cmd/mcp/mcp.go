// Package mcp parses MCP command flags and launches the MCP server.
package mcp

import (
	"context"
	"flag"

	"github.com/plumehq/plume/internal/mcp/service"
	entrypoint "github.com/plumehq/plume/internal/platform/cmd"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath       string `env:"PLUME_MCP_DB_PATH" envDefault:"data/governance.db"`
	RulePackPath string `env:"PLUME_MCP_RULE_PACK"`
	Transport    string `env:"PLUME_MCP_TRANSPORT" envDefault:"stdio"`
	Locale       string `env:"PLUME_MCP_LOCALE" envDefault:"en-US"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The governance SQLite database path")
	fs.StringVar(&cfg.RulePackPath, "rule-pack", cfg.RulePackPath, "Lua compliance rule pack path (empty uses the built-in medical pack)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "The MCP transport (stdio)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "The locale for user-facing tool error messages")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(context.Context) error {
		return service.Run(ctx, service.Config{
			DBPath:       cfg.DBPath,
			RulePackPath: cfg.RulePackPath,
			Transport:    service.TransportKind(cfg.Transport),
			Locale:       cfg.Locale,
		})
	})
}
