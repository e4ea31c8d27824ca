package models

// Column widths of the text fields.
const (
	NameMaxLen        = 255
	DescriptionMaxLen = 1000
)

// Category groups products under a name and a cover image.
type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Image string `gorm:"size:255;not null" json:"image"`
}

func (c *Category) TableName() string {
	return "categories"
}
