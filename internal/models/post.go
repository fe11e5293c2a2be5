package models

import "time"

// Post is a text entry written by a user, optionally filed under a group
// and carrying an uploaded image.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	// GroupID is nulled when the referenced group is deleted.
	GroupID *uint  `gorm:"index" json:"group_id,omitempty"`
	Group   *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	// Image is a media-relative path such as "posts/small.gif"; empty when absent.
	Image     string    `gorm:"size:255;not null;default:''" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Post) TableName() string {
	return "posts"
}

// Excerpt returns the first 15 characters of the text.
func (p *Post) Excerpt() string {
	r := []rune(p.Text)
	if len(r) <= 15 {
		return p.Text
	}
	return string(r[:15])
}

// PostPatch carries the mutable fields of a post. Nil fields are left unchanged.
// ClearGroup detaches the post from its group.
type PostPatch struct {
	Text       *string
	GroupID    *uint
	ClearGroup bool
	Image      *string
}

// Apply copies the set fields of patch onto the post.
func (p *Post) Apply(patch PostPatch) {
	if patch.Text != nil {
		p.Text = *patch.Text
	}
	switch {
	case patch.ClearGroup:
		p.GroupID = nil
		p.Group = nil
	case patch.GroupID != nil:
		id := *patch.GroupID
		p.GroupID = &id
		if p.Group != nil && p.Group.ID != id {
			p.Group = nil
		}
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
}
