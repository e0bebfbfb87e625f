package quality

// CharacteristicKind distinguishes product attributes from process attributes.
type CharacteristicKind string

const (
	KindProduct CharacteristicKind = "product"
	KindProcess CharacteristicKind = "process"
)

// Category is the importance classification of a characteristic.
type Category string

const (
	CategoryCritical Category = "critical"
	CategoryMajor    Category = "major"
	CategoryMinor    Category = "minor"
)

// ControlType splits control plan items into prevention and detection controls.
type ControlType string

const (
	ControlPrevention ControlType = "prevention"
	ControlDetection  ControlType = "detection"
)

// Status is a document lifecycle label. Only StatusDraft participates in core
// logic (idempotent generation keys off the draft document).
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
	StatusObsolete Status = "obsolete"
)

// Priority is the action priority derived from risk number and severity.
type Priority string

const (
	PriorityHigh   Priority = "H"
	PriorityMedium Priority = "M"
	PriorityLow    Priority = "L"
)

// Product owns characteristics and the document chain derived from them.
type Product struct {
	ID          uint64
	Code        string
	Name        string
	ProcessName string
}

// Characteristic is the master record for one measurable or visual attribute.
// Downstream documents reference it by id and never copy its content.
type Characteristic struct {
	ID                uint64
	ProductID         uint64
	Name              string
	Kind              CharacteristicKind
	Category          Category
	Specification     string
	LSL               *float64
	USL               *float64
	Unit              string
	MeasurementMethod string
}

// HasNumericLimit reports whether at least one spec limit is set.
func (c Characteristic) HasNumericLimit() bool {
	return c.LSL != nil || c.USL != nil
}

// AnalysisRoot is the failure-mode analysis header, one per (product, process).
type AnalysisRoot struct {
	ID            uint64
	ProductID     uint64
	ProcessName   string
	Revision      int
	Status        Status
	LastCheckedAt string
}

// AnalysisLine is one potential failure mode for one process step.
type AnalysisLine struct {
	ID                uint64
	RootID            uint64
	Seq               int
	ProcessStep       string
	FailureMode       string
	Effect            string
	Cause             string
	PreventionControl string
	DetectionControl  string
	RecommendedAction string
	SeverityRating    int
	OccurrenceRating  int
	DetectionRating   int
	RiskNumber        int
	ActionPriority    Priority
	CharacteristicID  *uint64
}

// ControlPlan is the control plan header, one draft per analysis root.
type ControlPlan struct {
	ID       uint64
	RootID   uint64
	Revision int
	Status   Status
}

// ControlPlanItem is one prevention or detection control for an analysis line.
type ControlPlanItem struct {
	ID               uint64
	ControlPlanID    uint64
	StepNo           int
	ControlType      ControlType
	PFMEALineID      uint64
	CharacteristicID uint64
	ControlMethod    string
	SampleSize       string
	SampleFrequency  string
	ReactionPlan     string
	Provenance       string
}

// InstructionDoc is the work-instruction header, one draft per control plan.
type InstructionDoc struct {
	ID            uint64
	ControlPlanID uint64
	Revision      int
	Status        Status
}

// InstructionStep is one operator action linked to exactly one control plan item.
type InstructionStep struct {
	ID               uint64
	InstructionDocID uint64
	StepNo           int
	LinkedCPItemID   uint64
	Action           string
	KeyPoint         string
	EstimatedSeconds int
}

// InspectionPlan is the inspection standard header, one draft per control plan.
type InspectionPlan struct {
	ID            uint64
	ControlPlanID uint64
	Revision      int
	Status        Status
}

// InspectionItem is the 1:1 inspection counterpart of a control plan item.
type InspectionItem struct {
	ID                 uint64
	InspectionPlanID   uint64
	ItemNo             int
	LinkedCPItemID     uint64
	CharacteristicID   uint64
	InspectionMethod   string
	SamplingPlan       string
	AcceptanceCriteria string
	NGHandling         string
}

// Content provenance values recorded on generated rows.
const (
	ProvenanceGenerated = "generated"
	ProvenanceFallback  = "fallback"
)
