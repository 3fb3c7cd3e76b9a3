package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TargetType names the kind of aggregate a like points at.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// TargetRef identifies a likeable aggregate.
type TargetRef struct {
	Type TargetType
	ID   uuid.UUID
}

func (t TargetRef) String() string {
	return fmt.Sprintf("%s:%s", t.Type, t.ID)
}

// Resource is the display name used in error messages.
func (t TargetRef) Resource() string {
	if t.Type == TargetComment {
		return "Comment"
	}
	return "Post"
}

// Like is one member of a target's likedBy set.
// The combination of TargetType, TargetID and UserID must be unique.
type Like struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TargetType TargetType `gorm:"type:varchar(16);not null;uniqueIndex:idx_like_target_user,priority:1" json:"target_type"`
	TargetID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_like_target_user,priority:2" json:"target_id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_like_target_user,priority:3;index" json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// LikeOutcome reports what a like toggle did.
type LikeOutcome string

const (
	OutcomeLiked        LikeOutcome = "liked"
	OutcomeAlreadyLiked LikeOutcome = "already_liked"
	OutcomeUnliked      LikeOutcome = "unliked"
	OutcomeNotLiked     LikeOutcome = "not_liked"
)

// Changed reports whether the toggle mutated the like set.
func (o LikeOutcome) Changed() bool {
	return o == OutcomeLiked || o == OutcomeUnliked
}

// LikeState is the result of a like or unlike.
type LikeState struct {
	Status    LikeOutcome `json:"status,omitempty"`
	LikeCount int         `json:"likes"`
	IsLiked   bool        `json:"is_liked"`
}
