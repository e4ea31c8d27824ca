package models

// Product is a sellable item with its stock counters.
// InitialStock is fixed at creation; AvailableStock moves as items sell.
type Product struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Description    string    `gorm:"size:1000;not null" json:"description"`
	Image          string    `gorm:"size:255;not null" json:"image"`
	InitialStock   int       `gorm:"column:initial_stock;not null" json:"initialStock"`
	AvailableStock int       `gorm:"column:available_stock;not null" json:"availableStock"`
	CategoryID     uint      `gorm:"column:category_id;index" json:"categoryId"`
	Category       *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (p *Product) TableName() string {
	return "products"
}

// Sold is how many units left stock since creation.
func (p *Product) Sold() int {
	return p.InitialStock - p.AvailableStock
}
