package model

type InspectionPlan struct {
	InspectionPlanID uint64  `gorm:"column:inspection_plan_id;primaryKey;autoIncrement"`
	ControlPlanID    uint64  `gorm:"column:control_plan_id;not null;index"`
	Revision         int     `gorm:"column:revision;not null;default:1"`
	Status           string  `gorm:"column:status;type:text;not null"`
	DraftKey         *string `gorm:"column:draft_key;type:text;uniqueIndex"`
	CreatedAt        string  `gorm:"column:created_at;type:text;not null"`
}

func (InspectionPlan) TableName() string {
	return "inspection_plans"
}

type InspectionItem struct {
	InspectionItemID   uint64 `gorm:"column:inspection_item_id;primaryKey;autoIncrement"`
	InspectionPlanID   uint64 `gorm:"column:inspection_plan_id;not null;index"`
	ItemNo             int    `gorm:"column:item_no;not null"`
	LinkedCPItemID     uint64 `gorm:"column:linked_cp_item_id;not null;index"`
	CharacteristicID   uint64 `gorm:"column:characteristic_id;not null;index"`
	InspectionMethod   string `gorm:"column:inspection_method;type:text;not null"`
	SamplingPlan       string `gorm:"column:sampling_plan;type:text;not null"`
	AcceptanceCriteria string `gorm:"column:acceptance_criteria;type:text;not null"`
	NGHandling         string `gorm:"column:ng_handling;type:text;not null"`
}

func (InspectionItem) TableName() string {
	return "inspection_items"
}
