package model

type InstructionDoc struct {
	InstructionDocID uint64  `gorm:"column:instruction_doc_id;primaryKey;autoIncrement"`
	ControlPlanID    uint64  `gorm:"column:control_plan_id;not null;index"`
	Revision         int     `gorm:"column:revision;not null;default:1"`
	Status           string  `gorm:"column:status;type:text;not null"`
	DraftKey         *string `gorm:"column:draft_key;type:text;uniqueIndex"`
	CreatedAt        string  `gorm:"column:created_at;type:text;not null"`
}

func (InstructionDoc) TableName() string {
	return "instruction_docs"
}

type InstructionStep struct {
	StepID           uint64 `gorm:"column:step_id;primaryKey;autoIncrement"`
	InstructionDocID uint64 `gorm:"column:instruction_doc_id;not null;index"`
	StepNo           int    `gorm:"column:step_no;not null"`
	LinkedCPItemID   uint64 `gorm:"column:linked_cp_item_id;not null;index"`
	Action           string `gorm:"column:action;type:text;not null"`
	KeyPoint         string `gorm:"column:key_point;type:text;not null"`
	EstimatedSeconds int    `gorm:"column:estimated_seconds;not null"`
}

func (InstructionStep) TableName() string {
	return "instruction_steps"
}
