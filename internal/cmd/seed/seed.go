// Package seed parses seed command flags and creates demo governance data.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/plumehq/plume/internal/governance/domain"
	governancesqlite "github.com/plumehq/plume/internal/governance/storage/sqlite"
	entrypoint "github.com/plumehq/plume/internal/platform/cmd"
)

// Config holds seed command configuration.
type Config struct {
	DBPath   string `env:"PLUME_SEED_DB_PATH" envDefault:"data/governance.db"`
	TenantID string `env:"PLUME_SEED_TENANT_ID" envDefault:"demo-clinic"`
	Timezone string `env:"PLUME_SEED_TIMEZONE" envDefault:"Asia/Seoul"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The governance SQLite database path")
	fs.StringVar(&cfg.TenantID, "tenant", cfg.TenantID, "Tenant identifier for the demo slot")
	fs.StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA timezone for the demo slot")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run creates a demo slot with a sample topic plan and prints its identifier.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create governance storage dir: %w", err)
		}
	}
	store, err := governancesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open governance store: %w", err)
	}
	defer store.Close()

	slot, err := domain.NewSlot(domain.NewSlotInput{
		TenantID: cfg.TenantID,
		Timezone: cfg.Timezone,
	}, nil, nil)
	if err != nil {
		return fmt.Errorf("create demo slot: %w", err)
	}
	if err := slot.PlanTopics(demoPlan()); err != nil {
		return fmt.Errorf("install demo plan: %w", err)
	}
	if err := store.PutSlot(ctx, slot); err != nil {
		return fmt.Errorf("store demo slot: %w", err)
	}

	fmt.Fprintf(out, "slot %s created for tenant %s with %d topics\n",
		slot.ID, slot.TenantID, topicCount(slot))
	return nil
}

func demoPlan() []domain.TopicCluster {
	return []domain.TopicCluster{
		{
			Category: "재활 운동",
			Topics: []domain.Topic{
				{Day: 1, Kind: domain.KindPillar, Title: "허리 통증 재활 운동 완벽 가이드"},
				{Day: 2, Kind: domain.KindSatellite, Title: "아침에 하는 5분 허리 스트레칭"},
				{Day: 3, Kind: domain.KindSatellite, Title: "사무직을 위한 자세 교정 팁"},
			},
		},
		{
			Category: "수술 후 관리",
			Topics: []domain.Topic{
				{Day: 1, Kind: domain.KindPillar, Title: "수술 후 회복 기간 관리법"},
				{Day: 2, Kind: domain.KindSatellite, Title: "수술 후 식단으로 회복 돕기"},
			},
		},
	}
}

func topicCount(slot domain.Slot) int {
	count := 0
	for _, cluster := range slot.Clusters {
		count += len(cluster.Topics)
	}
	return count
}
