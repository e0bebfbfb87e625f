package model

type Product struct {
	ProductID   uint64 `gorm:"column:product_id;primaryKey;autoIncrement"`
	Code        string `gorm:"column:code;type:text;not null;uniqueIndex"`
	Name        string `gorm:"column:name;type:text;not null"`
	ProcessName string `gorm:"column:process_name;type:text;not null"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null"`
}

func (Product) TableName() string {
	return "products"
}
