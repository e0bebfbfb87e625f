package model

type ConsistencyFinding struct {
	FindingID  uint64 `gorm:"column:finding_id;primaryKey;autoIncrement"`
	RootID     uint64 `gorm:"column:root_id;not null;index"`
	Rule       string `gorm:"column:rule;type:text;not null"`
	Severity   string `gorm:"column:severity;type:text;not null"`
	TargetKind string `gorm:"column:target_kind;type:text;not null"`
	TargetID   uint64 `gorm:"column:target_id;not null"`
	Message    string `gorm:"column:message;type:text;not null"`
	CheckedAt  string `gorm:"column:checked_at;type:text;not null"`
}

func (ConsistencyFinding) TableName() string {
	return "consistency_findings"
}
