// Package governance parses governance command flags and launches the
// automation runtime.
package governance

import (
	"context"
	"flag"
	"time"

	"github.com/plumehq/plume/internal/generator"
	"github.com/plumehq/plume/internal/governance/app"
	"github.com/plumehq/plume/internal/governance/domain"
	entrypoint "github.com/plumehq/plume/internal/platform/cmd"
)

// Config holds governance command configuration.
type Config struct {
	DBPath       string        `env:"PLUME_GOVERNANCE_DB_PATH" envDefault:"data/governance.db"`
	RulePackPath string        `env:"PLUME_GOVERNANCE_RULE_PACK"`
	PollInterval time.Duration `env:"PLUME_GOVERNANCE_POLL_INTERVAL" envDefault:"1m"`
	Tier         string        `env:"PLUME_GOVERNANCE_TIER" envDefault:"BASIC"`
	Locale       string        `env:"PLUME_GOVERNANCE_LOCALE" envDefault:"ko-KR"`
	Persona      string        `env:"PLUME_GOVERNANCE_PERSONA"`
	SessionGrant string        `env:"PLUME_GOVERNANCE_SESSION_GRANT"`
	OpenAI       generator.OpenAIConfig
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The governance SQLite database path")
	fs.StringVar(&cfg.RulePackPath, "rule-pack", cfg.RulePackPath, "Lua compliance rule pack path (empty uses the built-in medical pack)")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Slot publish poll interval")
	fs.StringVar(&cfg.Tier, "tier", cfg.Tier, "Plan tier the automation publishes under")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Content locale passed to the generator")
	fs.StringVar(&cfg.Persona, "persona", cfg.Persona, "Brand persona passed to the generator")
	fs.StringVar(&cfg.SessionGrant, "session-grant", cfg.SessionGrant, "Signed session grant; overrides the tier and may lift the daily gate")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the governance runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGovernance, func(context.Context) error {
		tier, err := domain.ParseTier(cfg.Tier)
		if err != nil {
			return err
		}
		return app.Run(ctx, app.RuntimeConfig{
			DBPath:       cfg.DBPath,
			RulePackPath: cfg.RulePackPath,
			PollInterval: cfg.PollInterval,
			Tier:         tier,
			Locale:       cfg.Locale,
			Persona:      cfg.Persona,
			SessionGrant: cfg.SessionGrant,
			OpenAI:       cfg.OpenAI,
		})
	})
}
