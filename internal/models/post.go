package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostImage is one entry of a post's ordered image list.
type PostImage struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Post is the post aggregate. LikeCount and CommentCount are stored caches of
// the like set and the post's live comments; they only move inside the
// transaction that changes what they count.
type Post struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uint        `gorm:"not null;index" json:"user_id"`
	User         User        `gorm:"foreignKey:UserID" json:"user"`
	Content      string      `gorm:"type:text;not null" json:"content"`
	Images       []PostImage `gorm:"type:json;serializer:json" json:"images"`
	LikeCount    int         `gorm:"not null;default:0" json:"likes"`
	CommentCount int         `gorm:"not null;default:0" json:"comments"`
	CreatedAt    time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// BeforeCreate assigns a time-ordered identifier.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		p.ID = id
	}
	return nil
}

// Target returns the engagement target for this post.
func (p *Post) Target() TargetRef {
	return TargetRef{Type: TargetPost, ID: p.ID}
}
