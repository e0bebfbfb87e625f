package quality

const (
	riskPriorityHighThreshold   = 200
	riskPriorityMediumThreshold = 100
	severityHighThreshold       = 9

	// R1 treats these lines as demanding a control plan reference.
	riskReferenceThreshold = 100
)

// RiskNumber is the product of the three 1-10 ratings, range [1, 1000].
func RiskNumber(severity, occurrence, detection int) int {
	return clampRating(severity) * clampRating(occurrence) * clampRating(detection)
}

func clampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// ActionPriorityFor derives the H/M/L action priority. The ordering matters:
// severity alone can force H even at a low risk number.
func ActionPriorityFor(riskNumber, severity int) Priority {
	if riskNumber >= riskPriorityHighThreshold || severity >= severityHighThreshold {
		return PriorityHigh
	}
	if riskNumber >= riskPriorityMediumThreshold {
		return PriorityMedium
	}
	return PriorityLow
}

// DeriveRisk fills the computed fields of a line from its ratings.
func DeriveRisk(line *AnalysisLine) {
	line.RiskNumber = RiskNumber(line.SeverityRating, line.OccurrenceRating, line.DetectionRating)
	line.ActionPriority = ActionPriorityFor(line.RiskNumber, line.SeverityRating)
}

// RequiresControlReference reports whether R1 expects at least one control
// plan item to reference the line.
func RequiresControlReference(line AnalysisLine) bool {
	return line.ActionPriority == PriorityHigh || line.RiskNumber >= riskReferenceThreshold
}
