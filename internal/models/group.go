package models

// GroupTitleMaxLen is the maximum length of a group title.
const GroupTitleMaxLen = 200

// Group is a topical community a post may be filed under.
// Slug is unique and never changes once posts reference it.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:50;not null;uniqueIndex:slug_idx" json:"slug"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
}

// TableName specifies the table name for GORM.
func (Group) TableName() string {
	return "groups"
}
