package model

type ControlPlan struct {
	ControlPlanID uint64  `gorm:"column:control_plan_id;primaryKey;autoIncrement"`
	RootID        uint64  `gorm:"column:root_id;not null;index"`
	Revision      int     `gorm:"column:revision;not null;default:1"`
	Status        string  `gorm:"column:status;type:text;not null"`
	DraftKey      *string `gorm:"column:draft_key;type:text;uniqueIndex"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
}

func (ControlPlan) TableName() string {
	return "control_plans"
}

type ControlPlanItem struct {
	ItemID           uint64 `gorm:"column:item_id;primaryKey;autoIncrement"`
	ControlPlanID    uint64 `gorm:"column:control_plan_id;not null;index"`
	StepNo           int    `gorm:"column:step_no;not null"`
	ControlType      string `gorm:"column:control_type;type:text;not null"`
	PFMEALineID      uint64 `gorm:"column:pfmea_line_id;not null;index"`
	CharacteristicID uint64 `gorm:"column:characteristic_id;not null;index"`
	ControlMethod    string `gorm:"column:control_method;type:text;not null"`
	SampleSize       string `gorm:"column:sample_size;type:text;not null"`
	SampleFrequency  string `gorm:"column:sample_frequency;type:text;not null"`
	ReactionPlan     string `gorm:"column:reaction_plan;type:text;not null"`
	Provenance       string `gorm:"column:provenance;type:text;not null"`
}

func (ControlPlanItem) TableName() string {
	return "control_plan_items"
}
