package i18n

var koKRCatalog = &Catalog{
	locale: "ko-KR",
	messages: map[Code]string{
		// Permission errors
		CodePermissionDeniedPlan: "현재 요금제에서는 이 기능을 사용할 수 없습니다",
		CodePermissionDeniedStep: "이 기능은 신뢰 단계 {{.RequiredStep}}에서 잠금 해제됩니다",
		CodeUnknownCapability:    "알 수 없는 기능: {{.Capability}}",

		// Compliance errors
		CodeComplianceViolation: "콘텐츠에 {{.Count}}건의 규정 위반이 있습니다",
		CodeRulePackInvalid:     "규정 검사 룰 팩을 불러올 수 없습니다",

		// Slot errors
		CodeSlotEmptyID:                "슬롯 ID는 비워둘 수 없습니다",
		CodeSlotEmptyTenantID:          "테넌트 ID는 비워둘 수 없습니다",
		CodeSlotInvalidPlan:            "주제 플랜이 유효하지 않습니다: {{.Detail}}",
		CodeSlotExhausted:              "플랜의 모든 주제가 발행되었습니다",
		CodeSlotResetUnconfirmed:       "플랜 초기화는 명시적인 확인이 필요합니다",
		CodeDailyGateBlocked:           "이 채널은 오늘 이미 발행했습니다. 내일 다시 시도하세요",
		CodeConcurrentMutationConflict: "채널이 동시에 수정되었습니다. 다시 시도하세요",

		// Trust errors
		CodeTrustInvalidStep:     "신뢰 단계는 1에서 3 사이여야 합니다",
		CodeTrustCounterNegative: "신뢰 카운터는 감소할 수 없습니다",

		// Session errors
		CodeSessionGrantInvalid: "세션 그랜트가 유효하지 않습니다",
		CodeSessionGrantExpired: "세션 그랜트가 만료되었습니다",

		// Storage errors
		CodeNotFound: "요청한 레코드를 찾을 수 없습니다",
	},
}
