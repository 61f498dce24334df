package models

import "time"

const (
	DefaultFeaturedImage = "default-post.jpg"

	MaxTitleLen   = 100
	MaxExcerptLen = 200
)

// PostModel is a blog post. Comments are embedded in the post document and
// never stored on their own.
type PostModel struct {
	Base          `bson:",inline"`
	UpdatedAt     time.Time   `json:"updatedAt"     bson:"updatedAt"`
	Title         string      `json:"title"         bson:"title"         gorm:"type:varchar(100);not null"`
	Slug          string      `json:"slug"          bson:"slug"          gorm:"type:varchar(191);uniqueIndex;not null"`
	Content       string      `json:"content"       bson:"content"       gorm:"type:longtext;not null"`
	Excerpt       string      `json:"excerpt"       bson:"excerpt"       gorm:"type:varchar(800)"`
	FeaturedImage string      `json:"featuredImage" bson:"featuredImage"`
	AuthorID      string      `json:"author"        bson:"author"        gorm:"column:author_id;type:char(24);index;not null"`
	CategoryID    string      `json:"category"      bson:"category"      gorm:"column:category_id;type:char(24);index;not null"`
	Tags          StringArray `json:"tags"          bson:"tags"          gorm:"type:longtext"`
	IsPublished   bool        `json:"isPublished"   bson:"isPublished"   gorm:"default:false;index"`
	ViewCount     int64       `json:"viewCount"     bson:"viewCount"     gorm:"default:0"`
	Comments      []Comment   `json:"comments"      bson:"comments"      gorm:"type:longtext;serializer:json"`
}

func (PostModel) TableName() string { return "posts" }

// Touch stamps the modification time, and the creation time when unset.
func (p *PostModel) Touch(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// EditableColumns are the stored names of the fields an edit may change.
// Author, view count, comments and creation time are never written by an edit.
var EditableColumns = []string{
	"title", "slug", "content", "excerpt", "featured_image",
	"category_id", "tags", "is_published", "updated_at",
}

// ApplyEdits copies the editable fields of src onto p.
func (p *PostModel) ApplyEdits(src *PostModel) {
	p.Title = src.Title
	p.Slug = src.Slug
	p.Content = src.Content
	p.Excerpt = src.Excerpt
	p.FeaturedImage = src.FeaturedImage
	p.CategoryID = src.CategoryID
	p.Tags = append(StringArray{}, src.Tags...)
	p.IsPublished = src.IsPublished
	p.UpdatedAt = src.UpdatedAt
}

// Clone returns a deep copy so callers can mutate it without aliasing the
// tags and comments of the original.
func (p *PostModel) Clone() *PostModel {
	cp := *p
	if p.Tags != nil {
		cp.Tags = append(StringArray{}, p.Tags...)
	}
	if p.Comments != nil {
		cp.Comments = append([]Comment{}, p.Comments...)
	}
	return &cp
}
