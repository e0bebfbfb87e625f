package quality

import "testing"

func TestRiskNumberClampsRatings(t *testing.T) {
	if got := RiskNumber(8, 6, 7); got != 336 {
		t.Fatalf("RiskNumber(8,6,7) = %d, want 336", got)
	}
	if got := RiskNumber(0, 5, 5); got != 25 {
		t.Fatalf("RiskNumber(0,5,5) = %d, want 25", got)
	}
	if got := RiskNumber(12, 10, 10); got != 1000 {
		t.Fatalf("RiskNumber(12,10,10) = %d, want 1000", got)
	}
	if got := RiskNumber(-3, -3, -3); got != 1 {
		t.Fatalf("RiskNumber(-3,-3,-3) = %d, want 1", got)
	}
}

func TestActionPriorityFor(t *testing.T) {
	testCases := []struct {
		name       string
		riskNumber int
		severity   int
		want       Priority
	}{
		{name: "high by risk number", riskNumber: 200, severity: 5, want: PriorityHigh},
		{name: "high by severity alone", riskNumber: 36, severity: 9, want: PriorityHigh},
		{name: "severity ten", riskNumber: 10, severity: 10, want: PriorityHigh},
		{name: "medium band", riskNumber: 100, severity: 5, want: PriorityMedium},
		{name: "upper medium band", riskNumber: 199, severity: 8, want: PriorityMedium},
		{name: "low band", riskNumber: 99, severity: 8, want: PriorityLow},
		{name: "minimum", riskNumber: 1, severity: 1, want: PriorityLow},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got := ActionPriorityFor(testCase.riskNumber, testCase.severity)
			if got != testCase.want {
				t.Fatalf("ActionPriorityFor(%d, %d) = %s, want %s",
					testCase.riskNumber, testCase.severity, got, testCase.want)
			}
		})
	}
}

func TestDeriveRiskFillsComputedFields(t *testing.T) {
	line := AnalysisLine{SeverityRating: 8, OccurrenceRating: 6, DetectionRating: 7}
	DeriveRisk(&line)
	if line.RiskNumber != 336 {
		t.Fatalf("RiskNumber = %d, want 336", line.RiskNumber)
	}
	if line.ActionPriority != PriorityHigh {
		t.Fatalf("ActionPriority = %s, want H", line.ActionPriority)
	}
}

func TestRequiresControlReference(t *testing.T) {
	high := AnalysisLine{RiskNumber: 50, ActionPriority: PriorityHigh}
	if !RequiresControlReference(high) {
		t.Fatalf("high priority line should require a control reference")
	}

	mediumAtThreshold := AnalysisLine{RiskNumber: 100, ActionPriority: PriorityMedium}
	if !RequiresControlReference(mediumAtThreshold) {
		t.Fatalf("risk 100 line should require a control reference")
	}

	low := AnalysisLine{RiskNumber: 99, ActionPriority: PriorityLow}
	if RequiresControlReference(low) {
		t.Fatalf("risk 99 low priority line should not require a control reference")
	}
}
