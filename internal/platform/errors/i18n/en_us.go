package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodePermissionDeniedPlan       = "PERMISSION_DENIED_PLAN"
	CodePermissionDeniedStep       = "PERMISSION_DENIED_STEP"
	CodeUnknownCapability          = "UNKNOWN_CAPABILITY"
	CodeComplianceViolation        = "COMPLIANCE_VIOLATION"
	CodeRulePackInvalid            = "RULE_PACK_INVALID"
	CodeSlotEmptyID                = "SLOT_EMPTY_ID"
	CodeSlotEmptyTenantID          = "SLOT_EMPTY_TENANT_ID"
	CodeSlotInvalidPlan            = "SLOT_INVALID_PLAN"
	CodeSlotExhausted              = "SLOT_EXHAUSTED"
	CodeSlotResetUnconfirmed       = "SLOT_RESET_UNCONFIRMED"
	CodeDailyGateBlocked           = "DAILY_GATE_BLOCKED"
	CodeConcurrentMutationConflict = "CONCURRENT_MUTATION_CONFLICT"
	CodeTrustInvalidStep           = "TRUST_INVALID_STEP"
	CodeTrustCounterNegative       = "TRUST_COUNTER_NEGATIVE"
	CodeSessionGrantInvalid        = "SESSION_GRANT_INVALID"
	CodeSessionGrantExpired        = "SESSION_GRANT_EXPIRED"
	CodeNotFound                   = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Permission errors
		CodePermissionDeniedPlan: "Your current plan does not include this feature",
		CodePermissionDeniedStep: "This feature unlocks at trust step {{.RequiredStep}}",
		CodeUnknownCapability:    "Unknown capability: {{.Capability}}",

		// Compliance errors
		CodeComplianceViolation: "Content contains {{.Count}} compliance violation(s)",
		CodeRulePackInvalid:     "Compliance rule pack could not be loaded",

		// Slot errors
		CodeSlotEmptyID:                "Slot ID cannot be empty",
		CodeSlotEmptyTenantID:          "Tenant ID cannot be empty",
		CodeSlotInvalidPlan:            "Topic plan is invalid: {{.Detail}}",
		CodeSlotExhausted:              "Every topic in the plan has been published",
		CodeSlotResetUnconfirmed:       "Resetting a plan requires explicit confirmation",
		CodeDailyGateBlocked:           "This channel already published today; try again tomorrow",
		CodeConcurrentMutationConflict: "The channel was modified concurrently; retry the operation",

		// Trust errors
		CodeTrustInvalidStep:     "Trust step must be between 1 and 3",
		CodeTrustCounterNegative: "Trust counters cannot decrease",

		// Session errors
		CodeSessionGrantInvalid: "Session grant is invalid",
		CodeSessionGrantExpired: "Session grant has expired",

		// Storage errors
		CodeNotFound: "The requested record was not found",
	},
}
