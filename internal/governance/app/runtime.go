// Package app runs the governance automation runtime: a polling loop that
// drafts and publishes the next planned topic for every slot that has not
// acted today.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/plumehq/plume/internal/generator"
	"github.com/plumehq/plume/internal/governance"
	"github.com/plumehq/plume/internal/governance/compliance"
	"github.com/plumehq/plume/internal/governance/compliance/luapack"
	"github.com/plumehq/plume/internal/governance/domain"
	"github.com/plumehq/plume/internal/governance/plan"
	governancesqlite "github.com/plumehq/plume/internal/governance/storage/sqlite"
	apperrors "github.com/plumehq/plume/internal/platform/errors"
	"github.com/plumehq/plume/internal/session"
	"github.com/plumehq/plume/internal/telemetry"
)

// RuntimeConfig controls governance runtime startup and loop behavior.
type RuntimeConfig struct {
	DBPath       string
	RulePackPath string
	PollInterval time.Duration
	Locale       string
	Persona      string
	// Tier is the plan tier the automation publishes under. Auto-publish
	// runs on the lowest-trust surface, so the entry tier is the default.
	Tier domain.PlanTier
	// SessionGrant is an optional signed caller grant. When set, the
	// verified grant's plan tier replaces Tier, and an operator grant
	// lifts the daily gate.
	SessionGrant string
	// Generator overrides the OpenAI generator; used by tests and demo mode.
	Generator generator.Generator
	// OpenAI configures the default generator when Generator is nil.
	OpenAI generator.OpenAIConfig
}

const (
	defaultGovernanceDB = "data/governance.db"
	defaultPollInterval = time.Minute
)

// Run starts runtime dependencies and the publish loop, returning when the
// context ends.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultGovernanceDB
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if !cfg.Tier.Valid() {
		cfg.Tier = domain.TierBasic
	}

	bypass := false
	if strings.TrimSpace(cfg.SessionGrant) != "" {
		verifier, err := session.LoadVerifierConfigFromEnv(nil)
		if err != nil {
			return fmt.Errorf("load session verifier: %w", err)
		}
		grant, err := session.Verify(cfg.SessionGrant, verifier)
		if err != nil {
			return fmt.Errorf("verify session grant: %w", err)
		}
		cfg.Tier = grant.PlanTier
		bypass = grant.HoldsBypass()
		log.Printf("session grant verified tenant=%s tier=%s role=%s", grant.TenantID, grant.PlanTier, grant.Role)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create governance storage dir: %w", err)
		}
	}

	store, err := governancesqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open governance sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close governance sqlite store: %v", closeErr)
		}
	}()

	ruleSet := compliance.MedicalRuleSet()
	if strings.TrimSpace(cfg.RulePackPath) != "" {
		ruleSet, err = luapack.LoadRulePack(cfg.RulePackPath)
		if err != nil {
			return fmt.Errorf("load rule pack: %w", err)
		}
	}
	filter := compliance.NewFilter(ruleSet)

	gen := cfg.Generator
	if gen == nil {
		gen, err = generator.NewOpenAI(cfg.OpenAI)
		if err != nil {
			return fmt.Errorf("configure generator: %w", err)
		}
	}

	orchestrator := governance.New(store, filter,
		governance.WithEmitter(telemetry.NewEmitter(store)),
	)

	loop := &Loop{
		Store:        store,
		Orchestrator: orchestrator,
		Generator:    gen,
		Tier:         cfg.Tier,
		Locale:       cfg.Locale,
		Persona:      cfg.Persona,
		Bypass:       bypass,
	}

	name, version := filter.RuleSetInfo()
	log.Printf("governance runtime started rule_set=%s version=%s poll=%s", name, version, cfg.PollInterval)
	return loop.Run(ctx, cfg.PollInterval)
}

// SlotLister lists the slots the loop should visit.
type SlotLister interface {
	ListSlotIDs(ctx context.Context) ([]string, error)
	GetSlot(ctx context.Context, id string) (domain.Slot, error)
}

// Loop drafts and publishes the next topic for each eligible slot.
type Loop struct {
	Store        SlotLister
	Orchestrator *governance.Orchestrator
	Generator    generator.Generator
	Tier         domain.PlanTier
	Locale       string
	Persona      string
	// Bypass lifts the daily gate; set only from a verified operator grant.
	Bypass bool
	// Clock returns the current time; nil means time.Now.
	Clock func() time.Time
}

func (l *Loop) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

// Run visits every slot once per interval until the context ends.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := l.RunOnce(ctx); err != nil {
			log.Printf("governance loop pass: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce visits every slot a single time. Per-slot failures are logged
// and do not stop the pass; gate blocks and exhausted plans are expected
// outcomes, not errors.
func (l *Loop) RunOnce(ctx context.Context) error {
	ids, err := l.Store.ListSlotIDs(ctx)
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}

	for _, slotID := range ids {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := l.publishNext(ctx, slotID); err != nil {
			switch {
			case apperrors.IsCode(err, apperrors.CodeDailyGateBlocked),
				apperrors.IsCode(err, apperrors.CodeSlotExhausted):
				// Nothing to do for this slot today.
			default:
				log.Printf("publish slot_id=%s: %v", slotID, err)
			}
		}
	}
	return nil
}

func (l *Loop) publishNext(ctx context.Context, slotID string) error {
	slot, err := l.Store.GetSlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("load slot: %w", err)
	}

	// A closed gate skips the slot before any generation; CommitPublish
	// re-checks against fresh state.
	if !plan.GateOpen(&slot, slot.DayKey(l.now()), l.Bypass) {
		return nil
	}

	topic, err := l.Orchestrator.NextTopic(ctx, slotID)
	if err != nil {
		return err
	}

	category := ""
	if cluster := slot.Cursor.Cluster; cluster < len(slot.Clusters) {
		category = slot.Clusters[cluster].Category
	}
	draft, err := l.Generator.Generate(ctx, generator.TopicRequest{
		Topic:    topic,
		Category: category,
		Persona:  l.Persona,
		Locale:   l.Locale,
	})
	if err != nil {
		return fmt.Errorf("generate draft: %w", err)
	}

	result, err := l.Orchestrator.CommitPublish(ctx, governance.CommitRequest{
		SlotID:  slotID,
		Tier:    l.Tier,
		Step:    slot.Step,
		Content: draft.Body,
		Policy:  governance.PolicyAutoCorrect,
		Bypass:  l.Bypass,
	})
	if err != nil {
		return err
	}

	if result.Corrected {
		log.Printf("published with corrections slot_id=%s topic=%q violations=%d",
			slotID, result.Topic.Title, len(result.Violations))
	} else {
		log.Printf("published slot_id=%s topic=%q", slotID, result.Topic.Title)
	}
	if result.StepAdvanced {
		log.Printf("trust step advanced slot_id=%s step=%s", slotID, result.Step)
	}
	return nil
}
