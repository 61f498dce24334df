package models

const (
	DefaultCategoryColor = "#6366f1"

	MaxCategoryNameLen        = 50
	MaxCategoryDescriptionLen = 500
)

// CategoryModel groups posts.
type CategoryModel struct {
	Base        `bson:",inline"`
	Name        string `json:"name"        bson:"name"        gorm:"type:varchar(50);uniqueIndex;not null"`
	Slug        string `json:"slug"        bson:"slug"        gorm:"type:varchar(191);uniqueIndex;not null"`
	Description string `json:"description" bson:"description" gorm:"type:varchar(2000)"`
	Color       string `json:"color"       bson:"color"       gorm:"type:varchar(16)"`
}

func (CategoryModel) TableName() string { return "categories" }
