package quality

import "testing"

// consistentSnapshot builds a small graph with one high-risk line fully
// covered by a detection control, instruction step and inspection item.
func consistentSnapshot() GraphSnapshot {
	chID := uint64(10)
	return GraphSnapshot{
		RootID: 1,
		Lines: []AnalysisLine{
			{
				ID:               100,
				RootID:           1,
				SeverityRating:   8,
				OccurrenceRating: 6,
				DetectionRating:  7,
				RiskNumber:       336,
				ActionPriority:   PriorityHigh,
				CharacteristicID: &chID,
			},
		},
		Characteristics: map[uint64]Characteristic{
			chID: {ID: chID, Category: CategoryMajor, LSL: floatPtr(2), USL: floatPtr(4), Unit: "mm"},
		},
		ControlPlanItems: []ControlPlanItem{
			{
				ID:               200,
				StepNo:           1,
				ControlType:      ControlDetection,
				PFMEALineID:      100,
				CharacteristicID: chID,
				SampleSize:       "n=5",
				SampleFrequency:  "every lot",
			},
		},
		InstructionSteps: []InstructionStep{
			{
				ID:             300,
				StepNo:         1,
				LinkedCPItemID: 200,
				KeyPoint:       "Control point: 2mm ~ 4mm; Check: gauge; If NG: quarantine",
			},
		},
		InspectionItems: []InspectionItem{
			{
				ID:                 400,
				ItemNo:             1,
				LinkedCPItemID:     200,
				CharacteristicID:   chID,
				SamplingPlan:       "n=5 / every lot",
				AcceptanceCriteria: "2mm ~ 4mm",
			},
		},
	}
}

func TestEvaluateRulesConsistentGraphHasNoFindings(t *testing.T) {
	findings := EvaluateRules(consistentSnapshot())
	if len(findings) != 0 {
		t.Fatalf("EvaluateRules() = %d findings, want 0: %#v", len(findings), findings)
	}
}

func TestEvaluateRulesUncoveredHighRiskLine(t *testing.T) {
	snap := consistentSnapshot()
	snap.ControlPlanItems = nil
	snap.InstructionSteps = nil
	snap.InspectionItems = nil

	findings := EvaluateRules(snap)
	if len(findings) != 1 {
		t.Fatalf("EvaluateRules() = %d findings, want 1: %#v", len(findings), findings)
	}
	f := findings[0]
	if f.Rule != RuleUncoveredHighRisk || f.Severity != SeverityHigh {
		t.Fatalf("finding = %#v, want R1 HIGH", f)
	}
	if f.TargetKind != TargetAnalysisLine || f.TargetID != 100 {
		t.Fatalf("target = %s %d, want analysis_line 100", f.TargetKind, f.TargetID)
	}
}

func TestEvaluateRulesLowRiskLineNeedsNoCoverage(t *testing.T) {
	snap := GraphSnapshot{
		Lines: []AnalysisLine{
			{ID: 100, RiskNumber: 48, ActionPriority: PriorityLow},
		},
	}
	if findings := EvaluateRules(snap); len(findings) != 0 {
		t.Fatalf("EvaluateRules() = %#v, want none", findings)
	}
}

func TestEvaluateRulesItemWithoutInstruction(t *testing.T) {
	snap := consistentSnapshot()
	snap.InstructionSteps = nil

	findings := EvaluateRules(snap)
	if len(findings) != 1 {
		t.Fatalf("EvaluateRules() = %d findings, want 1: %#v", len(findings), findings)
	}
	if findings[0].Rule != RuleItemWithoutInstruction || findings[0].TargetID != 200 {
		t.Fatalf("finding = %#v, want R2 on item 200", findings[0])
	}
}

func TestEvaluateRulesItemWithoutInspectionSuppressesSamplingCheck(t *testing.T) {
	snap := consistentSnapshot()
	snap.InspectionItems = nil

	findings := EvaluateRules(snap)
	if len(findings) != 1 {
		t.Fatalf("EvaluateRules() = %d findings, want 1: %#v", len(findings), findings)
	}
	if findings[0].Rule != RuleItemWithoutInspection || findings[0].Severity != SeverityHigh {
		t.Fatalf("finding = %#v, want R3 HIGH", findings[0])
	}
}

func TestEvaluateRulesSamplingMismatch(t *testing.T) {
	snap := consistentSnapshot()
	snap.InspectionItems[0].SamplingPlan = "n=3 / daily"

	findings := EvaluateRules(snap)
	if len(findings) != 1 {
		t.Fatalf("EvaluateRules() = %d findings, want 1: %#v", len(findings), findings)
	}
	f := findings[0]
	if f.Rule != RuleSamplingMismatch || f.Severity != SeverityMedium {
		t.Fatalf("finding = %#v, want R4 MEDIUM", f)
	}
	if f.TargetKind != TargetInspectionItem || f.TargetID != 400 {
		t.Fatalf("target = %s %d, want inspection_item 400", f.TargetKind, f.TargetID)
	}
}

func TestEvaluateRulesSamplingComparisonIgnoresCaseAndSpacing(t *testing.T) {
	snap := consistentSnapshot()
	snap.InspectionItems[0].SamplingPlan = "  N=5   /  EVERY LOT "

	if findings := EvaluateRules(snap); len(findings) != 0 {
		t.Fatalf("EvaluateRules() = %#v, want none", findings)
	}
}

func TestEvaluateRulesKeyPointMarkers(t *testing.T) {
	snap := consistentSnapshot()
	snap.InstructionSteps[0].KeyPoint = "tighten to spec"

	findings := EvaluateRules(snap)
	if len(findings) != 1 {
		t.Fatalf("EvaluateRules() = %d findings, want 1: %#v", len(findings), findings)
	}
	if findings[0].Rule != RuleKeyPointIncomplete || findings[0].TargetID != 300 {
		t.Fatalf("finding = %#v, want R5 on step 300", findings[0])
	}

	// One marker is enough to satisfy R5.
	snap.InstructionSteps[0].KeyPoint = "if ng stop the line"
	if findings := EvaluateRules(snap); len(findings) != 0 {
		t.Fatalf("EvaluateRules() = %#v, want none with single marker", findings)
	}
}

func TestEvaluateRulesCriteriaNotQuantified(t *testing.T) {
	snap := consistentSnapshot()
	snap.InspectionItems[0].AcceptanceCriteria = "within tolerance"

	findings := EvaluateRules(snap)
	if len(findings) != 1 {
		t.Fatalf("EvaluateRules() = %d findings, want 1: %#v", len(findings), findings)
	}
	if findings[0].Rule != RuleCriteriaNotQuantified || findings[0].Severity != SeverityLow {
		t.Fatalf("finding = %#v, want R6 LOW", findings[0])
	}
}

func TestEvaluateRulesCriteriaRuleSkipsTextOnlyCharacteristics(t *testing.T) {
	snap := consistentSnapshot()
	ch := snap.Characteristics[10]
	ch.LSL = nil
	ch.USL = nil
	snap.Characteristics[10] = ch
	snap.InspectionItems[0].AcceptanceCriteria = "no visible burrs"

	if findings := EvaluateRules(snap); len(findings) != 0 {
		t.Fatalf("EvaluateRules() = %#v, want none", findings)
	}
}

func TestEvaluateRulesOrderedAndIndependent(t *testing.T) {
	snap := consistentSnapshot()
	// Break several rules at once: missing instruction, sampling drift and
	// unquantified criteria on the same item chain.
	snap.InstructionSteps = nil
	snap.InspectionItems[0].SamplingPlan = "n=3 / daily"
	snap.InspectionItems[0].AcceptanceCriteria = "within tolerance"

	findings := EvaluateRules(snap)
	if len(findings) != 3 {
		t.Fatalf("EvaluateRules() = %d findings, want 3: %#v", len(findings), findings)
	}
	if findings[0].Rule != RuleItemWithoutInstruction ||
		findings[1].Rule != RuleSamplingMismatch ||
		findings[2].Rule != RuleCriteriaNotQuantified {
		t.Fatalf("rule order = %s %s %s, want R2 R4 R6",
			findings[0].Rule, findings[1].Rule, findings[2].Rule)
	}

	counts := CountBySeverity(findings)
	if counts[SeverityHigh] != 1 || counts[SeverityMedium] != 1 || counts[SeverityLow] != 1 {
		t.Fatalf("counts = %#v", counts)
	}
}

func TestCountBySeverityAlwaysKeysAllSeverities(t *testing.T) {
	counts := CountBySeverity(nil)
	for _, severity := range []FindingSeverity{SeverityHigh, SeverityMedium, SeverityLow} {
		if got, ok := counts[severity]; !ok || got != 0 {
			t.Fatalf("counts[%s] = %d, %t, want 0, true", severity, got, ok)
		}
	}
}
