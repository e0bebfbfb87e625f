package quality

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// FindingSeverity grades a consistency finding.
type FindingSeverity string

const (
	SeverityHigh   FindingSeverity = "HIGH"
	SeverityMedium FindingSeverity = "MEDIUM"
	SeverityLow    FindingSeverity = "LOW"
)

// Rule identifiers for the six defect classes.
const (
	RuleUncoveredHighRisk      = "R1"
	RuleItemWithoutInstruction = "R2"
	RuleItemWithoutInspection  = "R3"
	RuleSamplingMismatch       = "R4"
	RuleKeyPointIncomplete     = "R5"
	RuleCriteriaNotQuantified  = "R6"
)

// Finding is one rule violation detected in a document graph.
type Finding struct {
	Rule       string
	Severity   FindingSeverity
	TargetKind string
	TargetID   uint64
	Message    string
}

// Target kinds referenced by findings.
const (
	TargetAnalysisLine    = "analysis_line"
	TargetControlPlanItem = "control_plan_item"
	TargetInstructionStep = "instruction_step"
	TargetInspectionItem  = "inspection_item"
)

// GraphSnapshot is the fully materialized document graph for one analysis
// root. The rule engine evaluates it without further storage access.
type GraphSnapshot struct {
	RootID           uint64
	Lines            []AnalysisLine
	Characteristics  map[uint64]Characteristic
	ControlPlanItems []ControlPlanItem
	InstructionSteps []InstructionStep
	InspectionItems  []InspectionItem
}

// EvaluateRules runs all six consistency rules over the snapshot. Rules are
// independent; several may fire for the same entity. Output order is stable:
// rule id, then target id.
func EvaluateRules(snap GraphSnapshot) []Finding {
	itemsByLine := make(map[uint64]int, len(snap.ControlPlanItems))
	stepsByItem := make(map[uint64]int, len(snap.InstructionSteps))
	inspectionByItem := make(map[uint64]InspectionItem, len(snap.InspectionItems))
	for _, item := range snap.ControlPlanItems {
		itemsByLine[item.PFMEALineID]++
	}
	for _, step := range snap.InstructionSteps {
		stepsByItem[step.LinkedCPItemID]++
	}
	for _, insp := range snap.InspectionItems {
		inspectionByItem[insp.LinkedCPItemID] = insp
	}

	findings := make([]Finding, 0, 8)

	// R1: high-priority lines with no control plan coverage.
	for _, line := range snap.Lines {
		if !RequiresControlReference(line) {
			continue
		}
		if itemsByLine[line.ID] > 0 {
			continue
		}
		findings = append(findings, Finding{
			Rule:       RuleUncoveredHighRisk,
			Severity:   SeverityHigh,
			TargetKind: TargetAnalysisLine,
			TargetID:   line.ID,
			Message: fmt.Sprintf("analysis line %d (priority %s, risk %d) has no control plan item",
				line.ID, line.ActionPriority, line.RiskNumber),
		})
	}

	for _, item := range snap.ControlPlanItems {
		// R2: control without a work instruction.
		if stepsByItem[item.ID] == 0 {
			findings = append(findings, Finding{
				Rule:       RuleItemWithoutInstruction,
				Severity:   SeverityHigh,
				TargetKind: TargetControlPlanItem,
				TargetID:   item.ID,
				Message:    fmt.Sprintf("control plan item %d (step %d) has no instruction step", item.ID, item.StepNo),
			})
		}

		insp, hasInspection := inspectionByItem[item.ID]

		// R3: control without an inspection counterpart.
		if !hasInspection {
			findings = append(findings, Finding{
				Rule:       RuleItemWithoutInspection,
				Severity:   SeverityHigh,
				TargetKind: TargetControlPlanItem,
				TargetID:   item.ID,
				Message:    fmt.Sprintf("control plan item %d (step %d) has no inspection item", item.ID, item.StepNo),
			})
			continue
		}

		// R4: sampling drift between control plan and inspection plan.
		want := SamplingPlanText(item.SampleSize, item.SampleFrequency)
		if !samplingTextEqual(insp.SamplingPlan, want) {
			findings = append(findings, Finding{
				Rule:       RuleSamplingMismatch,
				Severity:   SeverityMedium,
				TargetKind: TargetInspectionItem,
				TargetID:   insp.ID,
				Message: fmt.Sprintf("inspection item %d sampling %q does not match control plan sampling %q",
					insp.ID, insp.SamplingPlan, want),
			})
		}
	}

	// R5: instruction key point missing its markers.
	for _, step := range snap.InstructionSteps {
		lower := strings.ToLower(step.KeyPoint)
		hasControlPoint := strings.Contains(lower, strings.ToLower(ControlPointMarker))
		hasAbnormal := strings.Contains(lower, strings.ToLower(AbnormalActionMarker))
		if hasControlPoint || hasAbnormal {
			continue
		}
		findings = append(findings, Finding{
			Rule:       RuleKeyPointIncomplete,
			Severity:   SeverityMedium,
			TargetKind: TargetInstructionStep,
			TargetID:   step.ID,
			Message:    fmt.Sprintf("instruction step %d key point lacks control point and abnormal action markers", step.ID),
		})
	}

	// R6: numeric limits exist but the criteria text carries no numeral.
	for _, insp := range snap.InspectionItems {
		ch, ok := snap.Characteristics[insp.CharacteristicID]
		if !ok || !ch.HasNumericLimit() {
			continue
		}
		if containsDigit(insp.AcceptanceCriteria) {
			continue
		}
		findings = append(findings, Finding{
			Rule:       RuleCriteriaNotQuantified,
			Severity:   SeverityLow,
			TargetKind: TargetInspectionItem,
			TargetID:   insp.ID,
			Message: fmt.Sprintf("inspection item %d acceptance criteria %q is not quantified despite numeric limits",
				insp.ID, insp.AcceptanceCriteria),
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Rule != findings[j].Rule {
			return findings[i].Rule < findings[j].Rule
		}
		return findings[i].TargetID < findings[j].TargetID
	})
	return findings
}

// CountBySeverity tallies findings per severity, always including all three keys.
func CountBySeverity(findings []Finding) map[FindingSeverity]int {
	counts := map[FindingSeverity]int{
		SeverityHigh:   0,
		SeverityMedium: 0,
		SeverityLow:    0,
	}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

func samplingTextEqual(a, b string) bool {
	return normalizeSampling(a) == normalizeSampling(b)
}

func normalizeSampling(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
