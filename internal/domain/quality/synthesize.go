package quality

import (
	"fmt"
	"strconv"
	"strings"
)

// Deterministic fallback content used when the generative service is
// unreachable or returns a non-conformant result. These functions are pure:
// no I/O, no failure modes. Missing upstream fields are themselves handled by
// the fallback branches.

const (
	// DefaultEstimatedSeconds is used when no estimate is available.
	DefaultEstimatedSeconds = 60

	genericControlMethod = "Check against the released drawing"
	genericReactionPlan  = "Quarantine affected parts and notify the line supervisor"
	genericCriteria      = "Conforms to the released drawing"
	criticalSampleText   = "matches limit sample"

	// NGHandlingText is the fixed three-clause disposition for failed parts.
	NGHandlingText = "Isolate the part; re-inspect up to 2 times and accept only after 2 consecutive passes; after 3 consecutive failures stop the line and open a root-cause analysis."

	// Markers R5 looks for inside instruction key points.
	ControlPointMarker   = "Control point"
	AbnormalActionMarker = "If NG"
)

// ControlPlanContent is the synthesized payload for one control plan item.
type ControlPlanContent struct {
	ControlMethod   string
	SampleSize      string
	SampleFrequency string
	ReactionPlan    string
}

// InstructionContent is the synthesized payload for one instruction step.
type InstructionContent struct {
	Action           string
	KeyPoint         string
	EstimatedSeconds int
}

// InspectionContent is the synthesized payload for one inspection item.
type InspectionContent struct {
	InspectionMethod   string
	SamplingPlan       string
	AcceptanceCriteria string
	NGHandling         string
}

// SamplingFor maps a characteristic category to sampling aggressiveness.
func SamplingFor(category Category) (size string, frequency string) {
	switch category {
	case CategoryCritical:
		return "100%", "every unit"
	case CategoryMajor:
		return "n=5", "every lot"
	default:
		return "n=3", "daily"
	}
}

// SynthesizeControlPlanContent derives control plan item content from the
// analysis line and its characteristic.
func SynthesizeControlPlanContent(line AnalysisLine, ch Characteristic, controlType ControlType) ControlPlanContent {
	size, frequency := SamplingFor(ch.Category)

	method := line.PreventionControl
	if controlType == ControlDetection {
		method = line.DetectionControl
	}
	if strings.TrimSpace(method) == "" {
		method = ch.MeasurementMethod
	}
	if strings.TrimSpace(method) == "" {
		method = genericControlMethod
	}

	reaction := line.RecommendedAction
	if strings.TrimSpace(reaction) == "" {
		reaction = genericReactionPlan
	}

	return ControlPlanContent{
		ControlMethod:   method,
		SampleSize:      size,
		SampleFrequency: frequency,
		ReactionPlan:    reaction,
	}
}

// SynthesizeInstructionContent derives an instruction step from a control
// plan item, its source analysis line and the characteristic.
func SynthesizeInstructionContent(item ControlPlanItem, line AnalysisLine, ch Characteristic) InstructionContent {
	step := strings.TrimSpace(line.ProcessStep)
	if step == "" {
		step = "Perform the operation"
	}
	action := fmt.Sprintf("%s: %s", step, item.ControlMethod)

	controlPoint := strings.TrimSpace(ch.Specification)
	if controlPoint == "" {
		controlPoint = ch.Name
	}
	checkMethod := strings.TrimSpace(ch.MeasurementMethod)
	if checkMethod == "" {
		checkMethod = item.ControlMethod
	}
	keyPoint := fmt.Sprintf("%s: %s; Check: %s; %s: %s",
		ControlPointMarker, controlPoint, checkMethod, AbnormalActionMarker, item.ReactionPlan)

	return InstructionContent{
		Action:           action,
		KeyPoint:         keyPoint,
		EstimatedSeconds: DefaultEstimatedSeconds,
	}
}

// SynthesizeInspectionContent derives an inspection item from a control plan
// item and the characteristic it controls.
func SynthesizeInspectionContent(item ControlPlanItem, ch Characteristic) InspectionContent {
	method := strings.TrimSpace(ch.MeasurementMethod)
	if method == "" {
		method = "Visual inspection"
	}

	return InspectionContent{
		InspectionMethod:   method,
		SamplingPlan:       SamplingPlanText(item.SampleSize, item.SampleFrequency),
		AcceptanceCriteria: AcceptanceCriteria(ch),
		NGHandling:         NGHandlingText,
	}
}

// SamplingPlanText is the canonical rendering of a sampling plan; R4 compares
// inspection rows against it.
func SamplingPlanText(sampleSize, sampleFrequency string) string {
	return fmt.Sprintf("%s / %s", strings.TrimSpace(sampleSize), strings.TrimSpace(sampleFrequency))
}

// AcceptanceCriteria quantifies the accept/reject decision for a
// characteristic, preferring numeric limits over free-text specification.
func AcceptanceCriteria(ch Characteristic) string {
	unit := strings.TrimSpace(ch.Unit)

	switch {
	case ch.LSL != nil && ch.USL != nil:
		return fmt.Sprintf("%s%s ~ %s%s", formatLimit(*ch.LSL), unit, formatLimit(*ch.USL), unit)
	case ch.LSL != nil:
		return fmt.Sprintf(">= %s%s", formatLimit(*ch.LSL), unit)
	case ch.USL != nil:
		return fmt.Sprintf("<= %s%s", formatLimit(*ch.USL), unit)
	case strings.TrimSpace(ch.Specification) != "":
		return strings.TrimSpace(ch.Specification)
	case ch.Category == CategoryCritical:
		return criticalSampleText
	default:
		return genericCriteria
	}
}

func formatLimit(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
