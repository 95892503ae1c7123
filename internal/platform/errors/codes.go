package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Permission errors
	CodePermissionDeniedPlan Code = "PERMISSION_DENIED_PLAN"
	CodePermissionDeniedStep Code = "PERMISSION_DENIED_STEP"
	CodeUnknownCapability    Code = "UNKNOWN_CAPABILITY"

	// Compliance errors
	CodeComplianceViolation Code = "COMPLIANCE_VIOLATION"
	CodeRulePackInvalid     Code = "RULE_PACK_INVALID"

	// Slot errors
	CodeSlotEmptyID                Code = "SLOT_EMPTY_ID"
	CodeSlotEmptyTenantID          Code = "SLOT_EMPTY_TENANT_ID"
	CodeSlotInvalidPlan            Code = "SLOT_INVALID_PLAN"
	CodeSlotExhausted              Code = "SLOT_EXHAUSTED"
	CodeSlotResetUnconfirmed       Code = "SLOT_RESET_UNCONFIRMED"
	CodeDailyGateBlocked           Code = "DAILY_GATE_BLOCKED"
	CodeConcurrentMutationConflict Code = "CONCURRENT_MUTATION_CONFLICT"

	// Trust errors
	CodeTrustInvalidStep     Code = "TRUST_INVALID_STEP"
	CodeTrustCounterNegative Code = "TRUST_COUNTER_NEGATIVE"

	// Session errors
	CodeSessionGrantInvalid Code = "SESSION_GRANT_INVALID"
	CodeSessionGrantExpired Code = "SESSION_GRANT_EXPIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeSlotEmptyID,
		CodeSlotEmptyTenantID,
		CodeSlotInvalidPlan,
		CodeTrustInvalidStep,
		CodeTrustCounterNegative,
		CodeRulePackInvalid:
		return codes.InvalidArgument

	// PermissionDenied - capability checks
	case CodePermissionDeniedPlan,
		CodePermissionDeniedStep:
		return codes.PermissionDenied

	// FailedPrecondition - state doesn't allow the operation
	case CodeComplianceViolation,
		CodeSlotExhausted,
		CodeSlotResetUnconfirmed,
		CodeDailyGateBlocked:
		return codes.FailedPrecondition

	// Aborted - optimistic concurrency conflicts
	case CodeConcurrentMutationConflict:
		return codes.Aborted

	// Unauthenticated - session grant problems
	case CodeSessionGrantInvalid,
		CodeSessionGrantExpired:
		return codes.Unauthenticated

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
