package models

import (
	"time"

	"github.com/google/uuid"
)

// PostView is a post as returned to API clients.
type PostView struct {
	ID        uuid.UUID   `json:"id"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	Images    []PostImage `json:"images"`
	Likes     int         `json:"likes"`
	Comments  int         `json:"comments"`
	IsLiked   bool        `json:"is_liked"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Timestamp string      `json:"timestamp"`
}

// NewPostView shapes a post for a viewer at the given instant.
func NewPostView(p *Post, isLiked bool, now time.Time) PostView {
	images := p.Images
	if images == nil {
		images = []PostImage{}
	}
	return PostView{
		ID:        p.ID,
		Author:    p.User.Summary(),
		Content:   p.Content,
		Images:    images,
		Likes:     p.LikeCount,
		Comments:  p.CommentCount,
		IsLiked:   isLiked,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Timestamp: HumanizeSince(p.CreatedAt, now),
	}
}

// CommentView is a comment as returned to API clients.
type CommentView struct {
	ID              uuid.UUID      `json:"id"`
	PostID          uuid.UUID      `json:"post_id"`
	Author          UserSummary    `json:"author"`
	Content         string         `json:"content"`
	ParentCommentID *uuid.UUID     `json:"parent_comment_id"`
	Likes           int            `json:"likes"`
	ReplyCount      int            `json:"reply_count"`
	IsLiked         bool           `json:"is_liked"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Timestamp       string         `json:"timestamp"`
	Parent          *ParentSummary `json:"parent_comment,omitempty"`
}

// NewCommentView shapes a comment for a viewer at the given instant.
func NewCommentView(c *Comment, isLiked bool, now time.Time) CommentView {
	return CommentView{
		ID:              c.ID,
		PostID:          c.PostID,
		Author:          c.User.Summary(),
		Content:         c.Content,
		ParentCommentID: c.ParentCommentID,
		Likes:           c.LikeCount,
		ReplyCount:      c.ReplyCount,
		IsLiked:         isLiked,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Timestamp:       HumanizeSince(c.CreatedAt, now),
	}
}

// ParentSummary describes the parent of a reply.
type ParentSummary struct {
	ID         uuid.UUID   `json:"id"`
	Author     UserSummary `json:"author"`
	Content    string      `json:"content"`
	ReplyCount int         `json:"reply_count"`
	Timestamp  string      `json:"timestamp"`
}

// NewParentSummary shapes the parent of a reply.
func NewParentSummary(c *Comment, now time.Time) *ParentSummary {
	return &ParentSummary{
		ID:         c.ID,
		Author:     c.User.Summary(),
		Content:    c.Content,
		ReplyCount: c.ReplyCount,
		Timestamp:  HumanizeSince(c.CreatedAt, now),
	}
}

// RepliesView is a parent comment summary with its replies.
type RepliesView struct {
	Parent  *ParentSummary `json:"parent_comment"`
	Replies []CommentView  `json:"replies"`
}

// CommentLikers lists who liked a comment, from the viewer's perspective.
type CommentLikers struct {
	IsLiked bool          `json:"is_liked"`
	Likes   int           `json:"likes"`
	LikedBy []UserSummary `json:"liked_by"`
}

// DeleteResult reports how many comments a cascade removed.
type DeleteResult struct {
	DeletedCount int `json:"deleted_count"`
}
