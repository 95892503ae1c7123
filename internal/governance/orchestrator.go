// Package governance composes the permission matrix, compliance filter,
// plan tracker, and trust machine into the publish pipeline.
//
// Every publish passes through the same gauntlet in order: permission
// check, daily gate, compliance filter, plan advance, trust update. All
// mutating operations on a slot are serialized by a per-slot lock; the
// permission and compliance stages are pure and safe for concurrent reads.
package governance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/plumehq/plume/internal/governance/compliance"
	"github.com/plumehq/plume/internal/governance/domain"
	"github.com/plumehq/plume/internal/governance/permission"
	"github.com/plumehq/plume/internal/governance/plan"
	"github.com/plumehq/plume/internal/governance/storage"
	"github.com/plumehq/plume/internal/governance/trust"
	apperrors "github.com/plumehq/plume/internal/platform/errors"
	"github.com/plumehq/plume/internal/platform/id"
	"github.com/plumehq/plume/internal/telemetry"
)

// Policy selects how a compliance failure is handled for an edit surface.
type Policy int

const (
	// PolicyAutoCorrect silently redacts violations, counts a risk
	// correction, and proceeds. Used on lower-trust edit surfaces.
	PolicyAutoCorrect Policy = iota + 1
	// PolicyRejectOnViolation returns the violation list and suggestions
	// and blocks the publish until resubmission. Used on higher-trust
	// edit surfaces.
	PolicyRejectOnViolation
)

func (p Policy) String() string {
	switch p {
	case PolicyAutoCorrect:
		return "AUTO_CORRECT"
	case PolicyRejectOnViolation:
		return "REJECT_ON_VIOLATION"
	default:
		return "UNSPECIFIED"
	}
}

// Orchestrator is the single entry point for governed mutations.
type Orchestrator struct {
	store       storage.Store
	filter      *compliance.Filter
	emitter     *telemetry.Emitter
	tracer      trace.Tracer
	clock       func() time.Time
	idGenerator func() (string, error)
	locks       *slotLocks
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the orchestrator clock; used by tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithIDGenerator overrides content record ID generation; used by tests.
func WithIDGenerator(generator func() (string, error)) Option {
	return func(o *Orchestrator) { o.idGenerator = generator }
}

// WithEmitter attaches a telemetry emitter.
func WithEmitter(emitter *telemetry.Emitter) Option {
	return func(o *Orchestrator) { o.emitter = emitter }
}

// New creates an orchestrator over the given store and compliance filter.
func New(store storage.Store, filter *compliance.Filter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		filter:      filter,
		tracer:      otel.Tracer("governance"),
		clock:       time.Now,
		idGenerator: id.NewID,
		locks:       newSlotLocks(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Filter exposes the compliance filter for read-only evaluation surfaces.
func (o *Orchestrator) Filter() *compliance.Filter {
	return o.filter
}

// RequestEdit resolves whether the caller may use an edit capability. It
// performs no mutation; the decision carries the deny reason so the UI can
// explain the denial. An unregistered capability fails fast.
func (o *Orchestrator) RequestEdit(ctx context.Context, capability domain.Capability, tier domain.PlanTier, step domain.TrustStep) (permission.Decision, error) {
	_, span := o.tracer.Start(ctx, "governance.RequestEdit",
		trace.WithAttributes(attribute.String("capability", capability.String())))
	defer span.End()

	decision, err := permission.Resolve(capability, tier, step)
	if err != nil {
		return permission.Decision{}, apperrors.WithMetadata(
			apperrors.CodeUnknownCapability,
			err.Error(),
			map[string]string{"Capability": capability.String()},
		)
	}
	return decision, nil
}

// CommitRequest describes a publish attempt for a slot.
type CommitRequest struct {
	SlotID string
	Tier   domain.PlanTier
	Step   domain.TrustStep
	// Capability is the editing capability the publish exercises. The
	// zero value defaults to CapabilityPartialTitleEdit, the matrix's
	// lowest rung; automated publishes exercise nothing stronger.
	Capability domain.Capability
	Content    string
	Policy     Policy
	// Bypass lifts the daily gate; only callers holding an elevated
	// operator grant may set it.
	Bypass bool
}

// CommitResult is the outcome of a successful (or corrected) publish.
type CommitResult struct {
	Content      string
	Corrected    bool
	Violations   []compliance.Violation
	Suggestions  []string
	Topic        domain.Topic
	Step         domain.TrustStep
	StepAdvanced bool
}

// CommitPublish runs the full publish pipeline for a slot: permission
// check, daily gate, compliance filter (under the requested policy), plan
// advance, publish counter, and trust transition, atomically from the
// caller's point of view. The whole pipeline runs under the slot lock.
func (o *Orchestrator) CommitPublish(ctx context.Context, req CommitRequest) (CommitResult, error) {
	ctx, span := o.tracer.Start(ctx, "governance.CommitPublish",
		trace.WithAttributes(
			attribute.String("slot_id", req.SlotID),
			attribute.String("policy", req.Policy.String()),
		))
	defer span.End()

	if req.SlotID == "" {
		return CommitResult{}, apperrors.New(apperrors.CodeSlotEmptyID, "slot id is required")
	}
	if req.Policy == 0 {
		req.Policy = PolicyRejectOnViolation
	}
	capability := req.Capability
	if capability == domain.CapabilityUnspecified {
		capability = domain.CapabilityPartialTitleEdit
	}

	unlock := o.locks.acquire(req.SlotID)
	defer unlock()

	slot, err := o.store.GetSlot(ctx, req.SlotID)
	if err != nil {
		if err == storage.ErrNotFound {
			return CommitResult{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("slot %s not found", req.SlotID), err)
		}
		return CommitResult{}, fmt.Errorf("load slot: %w", err)
	}

	// Permission check uses the caller's session view of tier and step;
	// the trust transition below uses the slot's own refreshed state.
	decision, err := permission.Resolve(capability, req.Tier, req.Step)
	if err != nil {
		return CommitResult{}, apperrors.WithMetadata(
			apperrors.CodeUnknownCapability,
			err.Error(),
			map[string]string{"Capability": capability.String()},
		)
	}
	if !decision.Granted {
		return CommitResult{}, denyError(capability, decision)
	}

	now := o.clock().UTC()
	today := slot.DayKey(now)
	if !plan.GateOpen(&slot, today, req.Bypass) {
		o.emit(ctx, slot.ID, storage.EventDailyGateBlocked, map[string]string{"date": today})
		return CommitResult{}, apperrors.WithMetadata(
			apperrors.CodeDailyGateBlocked,
			fmt.Sprintf("slot %s already published on %s", slot.ID, today),
			map[string]string{"Date": today},
		)
	}

	content := req.Content
	evaluation := o.filter.Evaluate(content)
	corrected := false
	if !evaluation.Passed {
		switch req.Policy {
		case PolicyAutoCorrect:
			content = o.filter.ApplyAutoCorrection(content, evaluation.Violations)
			corrected = true
			slot.Counters = slot.Counters.RecordRiskCorrection()
			o.emit(ctx, slot.ID, storage.EventViolationCorrected, map[string]string{
				"count":    strconv.Itoa(len(evaluation.Violations)),
				"rule_set": evaluation.RuleSetName,
			})
		default:
			o.emit(ctx, slot.ID, storage.EventViolationRejected, map[string]string{
				"count":    strconv.Itoa(len(evaluation.Violations)),
				"rule_set": evaluation.RuleSetName,
			})
			return CommitResult{
					Violations:  evaluation.Violations,
					Suggestions: evaluation.Suggestions,
				}, apperrors.WithMetadata(
					apperrors.CodeComplianceViolation,
					fmt.Sprintf("content has %d compliance violations", len(evaluation.Violations)),
					map[string]string{"Count": strconv.Itoa(len(evaluation.Violations))},
				)
		}
	}

	topic, err := plan.NextTopic(&slot)
	if err != nil {
		if err == plan.ErrSlotExhausted || err == plan.ErrNoPlan {
			return CommitResult{}, apperrors.Wrap(apperrors.CodeSlotExhausted, "topic plan is exhausted", err)
		}
		return CommitResult{}, fmt.Errorf("next topic: %w", err)
	}
	if err := plan.Advance(&slot, now); err != nil {
		return CommitResult{}, fmt.Errorf("advance plan: %w", err)
	}
	topic.Published = true
	topic.PublishedAt = now

	slot.Counters = slot.Counters.RecordPublish()
	newStep, advanced := trust.Evaluate(req.Tier, slot.Step, slot.Counters)
	if advanced {
		slot.Step = newStep
		o.emit(ctx, slot.ID, storage.EventTrustStepAdvanced, map[string]string{"step": newStep.String()})
	}

	slot.LastActionDate = today
	slot.ActionStatus = domain.ActionCompleted
	slot.UpdatedAt = now

	if err := o.store.PutSlot(ctx, slot); err != nil {
		return CommitResult{}, fmt.Errorf("persist slot: %w", err)
	}

	recordID, err := o.idGenerator()
	if err != nil {
		return CommitResult{}, fmt.Errorf("generate content id: %w", err)
	}
	if err := o.store.PutContent(ctx, storage.ContentRecord{
		ID:          recordID,
		SlotID:      slot.ID,
		TopicTitle:  topic.Title,
		Body:        content,
		Corrected:   corrected,
		PublishedAt: now,
	}); err != nil {
		return CommitResult{}, fmt.Errorf("persist content: %w", err)
	}

	o.emit(ctx, slot.ID, storage.EventPublishCommitted, map[string]string{
		"topic":     topic.Title,
		"corrected": strconv.FormatBool(corrected),
	})

	result := CommitResult{
		Content:      content,
		Corrected:    corrected,
		Topic:        topic,
		Step:         slot.Step,
		StepAdvanced: advanced,
	}
	if corrected {
		result.Violations = evaluation.Violations
		result.Suggestions = evaluation.Suggestions
	}
	return result, nil
}

// SyncUpgrade re-checks the Step1→Step2 promotion from the published count.
// It is idempotent and intended to run on every session load.
func (o *Orchestrator) SyncUpgrade(ctx context.Context, slotID string, tier domain.PlanTier) (domain.TrustStep, bool, error) {
	unlock := o.locks.acquire(slotID)
	defer unlock()

	slot, err := o.store.GetSlot(ctx, slotID)
	if err != nil {
		if err == storage.ErrNotFound {
			return 0, false, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("slot %s not found", slotID), err)
		}
		return 0, false, fmt.Errorf("load slot: %w", err)
	}

	newStep, upgraded := trust.SyncUpgrade(tier, slot.Step, slot.Counters.Published)
	if !upgraded {
		return slot.Step, false, nil
	}

	slot.Step = newStep
	slot.UpdatedAt = o.clock().UTC()
	if err := o.store.PutSlot(ctx, slot); err != nil {
		return 0, false, fmt.Errorf("persist slot: %w", err)
	}
	o.emit(ctx, slot.ID, storage.EventTrustStepAdvanced, map[string]string{"step": newStep.String()})
	return newStep, true, nil
}

// RecordEditSuccess counts a verified manual edit outcome for the slot.
func (o *Orchestrator) RecordEditSuccess(ctx context.Context, slotID string) error {
	unlock := o.locks.acquire(slotID)
	defer unlock()

	slot, err := o.store.GetSlot(ctx, slotID)
	if err != nil {
		if err == storage.ErrNotFound {
			return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("slot %s not found", slotID), err)
		}
		return fmt.Errorf("load slot: %w", err)
	}

	slot.Counters = slot.Counters.RecordEditSuccess()
	slot.UpdatedAt = o.clock().UTC()
	if err := o.store.PutSlot(ctx, slot); err != nil {
		return fmt.Errorf("persist slot: %w", err)
	}
	return nil
}

// NextTopic returns the slot's next unpublished topic without publishing it.
func (o *Orchestrator) NextTopic(ctx context.Context, slotID string) (domain.Topic, error) {
	unlock := o.locks.acquire(slotID)
	defer unlock()

	slot, err := o.store.GetSlot(ctx, slotID)
	if err != nil {
		if err == storage.ErrNotFound {
			return domain.Topic{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("slot %s not found", slotID), err)
		}
		return domain.Topic{}, fmt.Errorf("load slot: %w", err)
	}

	before := slot.Cursor
	topic, err := plan.NextTopic(&slot)
	if err != nil {
		if err == plan.ErrSlotExhausted || err == plan.ErrNoPlan {
			return domain.Topic{}, apperrors.Wrap(apperrors.CodeSlotExhausted, "topic plan is exhausted", err)
		}
		return domain.Topic{}, fmt.Errorf("next topic: %w", err)
	}

	// NextTopic may skip the cursor past already-published topics; persist
	// the healed position so reads converge.
	if slot.Cursor != before {
		slot.UpdatedAt = o.clock().UTC()
		if err := o.store.PutSlot(ctx, slot); err != nil {
			return domain.Topic{}, fmt.Errorf("persist slot: %w", err)
		}
	}
	return topic, nil
}

// ResetSlot unpublishes every topic and rewinds the plan. The reset is
// irreversible and requires explicit confirmation from the caller.
func (o *Orchestrator) ResetSlot(ctx context.Context, slotID string, confirm plan.ResetConfirmation) error {
	unlock := o.locks.acquire(slotID)
	defer unlock()

	slot, err := o.store.GetSlot(ctx, slotID)
	if err != nil {
		if err == storage.ErrNotFound {
			return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("slot %s not found", slotID), err)
		}
		return fmt.Errorf("load slot: %w", err)
	}

	if err := plan.Reset(&slot, confirm); err != nil {
		if err == plan.ErrResetUnconfirmed {
			return apperrors.Wrap(apperrors.CodeSlotResetUnconfirmed, "slot reset requires confirmation", err)
		}
		return fmt.Errorf("reset slot: %w", err)
	}

	slot.ActionStatus = domain.ActionIdle
	slot.UpdatedAt = o.clock().UTC()
	if err := o.store.PutSlot(ctx, slot); err != nil {
		return fmt.Errorf("persist slot: %w", err)
	}
	o.emit(ctx, slot.ID, storage.EventSlotReset, map[string]string{"by": confirm.AcknowledgedBy})
	return nil
}

// DestroySlot removes a slot and cascades deletion of its published content
// records. This is an explicit operator action.
func (o *Orchestrator) DestroySlot(ctx context.Context, slotID string) error {
	unlock := o.locks.acquire(slotID)
	defer unlock()

	if err := o.store.DeleteSlot(ctx, slotID); err != nil {
		if err == storage.ErrNotFound {
			return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("slot %s not found", slotID), err)
		}
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// TrustStatus returns the slot's current step and counters.
func (o *Orchestrator) TrustStatus(ctx context.Context, slotID string) (domain.TrustStep, domain.TrustCounters, error) {
	slot, err := o.store.GetSlot(ctx, slotID)
	if err != nil {
		if err == storage.ErrNotFound {
			return 0, domain.TrustCounters{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("slot %s not found", slotID), err)
		}
		return 0, domain.TrustCounters{}, fmt.Errorf("load slot: %w", err)
	}
	return slot.Step, slot.Counters, nil
}

func denyError(capability domain.Capability, decision permission.Decision) error {
	req, err := permission.RequirementFor(capability)
	if err != nil {
		return apperrors.New(apperrors.CodeUnknownCapability, err.Error())
	}
	if decision.Reason == permission.DenyPlan {
		return apperrors.WithMetadata(
			apperrors.CodePermissionDeniedPlan,
			fmt.Sprintf("capability %s requires plan %s", capability, req.MinTier),
			map[string]string{"RequiredTier": req.MinTier.String()},
		)
	}
	return apperrors.WithMetadata(
		apperrors.CodePermissionDeniedStep,
		fmt.Sprintf("capability %s requires trust step %d", capability, int(req.MinStep)),
		map[string]string{"RequiredStep": strconv.Itoa(int(req.MinStep))},
	)
}

func (o *Orchestrator) emit(ctx context.Context, slotID, kind string, detail map[string]string) {
	if o.emitter == nil {
		return
	}
	// Telemetry is best-effort; a failed append never fails the pipeline.
	_ = o.emitter.Emit(ctx, storage.TelemetryEvent{
		SlotID: slotID,
		Kind:   kind,
		Detail: detail,
	})
}
