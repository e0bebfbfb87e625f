package model

// DraftKey holds the upstream id while the document is in draft and is
// cleared on promotion. The unique index tolerates multiple NULLs, so at most
// one draft exists per upstream id while revisions accumulate freely.
type AnalysisRoot struct {
	RootID        uint64  `gorm:"column:root_id;primaryKey;autoIncrement"`
	ProductID     uint64  `gorm:"column:product_id;not null;index"`
	ProcessName   string  `gorm:"column:process_name;type:text;not null"`
	Revision      int     `gorm:"column:revision;not null;default:1"`
	Status        string  `gorm:"column:status;type:text;not null"`
	DraftKey      *string `gorm:"column:draft_key;type:text;uniqueIndex"`
	LastCheckedAt string  `gorm:"column:last_checked_at;type:text;not null;default:''"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
}

func (AnalysisRoot) TableName() string {
	return "analysis_roots"
}

type AnalysisLine struct {
	LineID            uint64  `gorm:"column:line_id;primaryKey;autoIncrement"`
	RootID            uint64  `gorm:"column:root_id;not null;index"`
	Seq               int     `gorm:"column:seq;not null"`
	ProcessStep       string  `gorm:"column:process_step;type:text;not null"`
	FailureMode       string  `gorm:"column:failure_mode;type:text;not null"`
	Effect            string  `gorm:"column:effect;type:text;not null"`
	Cause             string  `gorm:"column:cause;type:text;not null"`
	PreventionControl string  `gorm:"column:prevention_control;type:text;not null"`
	DetectionControl  string  `gorm:"column:detection_control;type:text;not null"`
	RecommendedAction string  `gorm:"column:recommended_action;type:text;not null"`
	SeverityRating    int     `gorm:"column:severity;not null"`
	OccurrenceRating  int     `gorm:"column:occurrence;not null"`
	DetectionRating   int     `gorm:"column:detection;not null"`
	RiskNumber        int     `gorm:"column:risk_number;not null"`
	ActionPriority    string  `gorm:"column:action_priority;type:text;not null"`
	CharacteristicID  *uint64 `gorm:"column:characteristic_id;index"`
}

func (AnalysisLine) TableName() string {
	return "analysis_lines"
}
