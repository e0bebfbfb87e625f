package model

type Characteristic struct {
	CharacteristicID  uint64   `gorm:"column:characteristic_id;primaryKey;autoIncrement"`
	ProductID         uint64   `gorm:"column:product_id;not null;index"`
	Name              string   `gorm:"column:name;type:text;not null"`
	Kind              string   `gorm:"column:kind;type:text;not null"`
	Category          string   `gorm:"column:category;type:text;not null"`
	Specification     string   `gorm:"column:specification;type:text;not null"`
	LSL               *float64 `gorm:"column:lsl"`
	USL               *float64 `gorm:"column:usl"`
	Unit              string   `gorm:"column:unit;type:text;not null"`
	MeasurementMethod string   `gorm:"column:measurement_method;type:text;not null"`
	CreatedAt         string   `gorm:"column:created_at;type:text;not null"`
}

func (Characteristic) TableName() string {
	return "characteristics"
}
