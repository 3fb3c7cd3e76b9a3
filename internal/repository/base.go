// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"socialfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MissingError reports a row that vanished or never existed. It unwraps to
// gorm.ErrRecordNotFound.
type MissingError struct {
	Resource string
	ID       any
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s %v not found", strings.ToLower(e.Resource), e.ID)
}

func (e *MissingError) Unwrap() error {
	return gorm.ErrRecordNotFound
}

func missing(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &MissingError{Resource: resource, ID: id}
	}
	return err
}

// counterRow is the locked projection of a post or comment.
type counterRow struct {
	ID              uuid.UUID
	PostID          uuid.UUID
	ParentCommentID *uuid.UUID
	LikeCount       int
	ReplyCount      int
	CommentCount    int
}

func tableFor(t models.TargetType) string {
	if t == models.TargetComment {
		return "comments"
	}
	return "posts"
}

// lockRow reads the counters of one row with SELECT ... FOR UPDATE. SQLite has
// no row locks; its single writer connection serializes transactions instead.
func lockRow(tx *gorm.DB, table string, id uuid.UUID) (*counterRow, error) {
	cols := "id, like_count, comment_count"
	if table == "comments" {
		cols = "id, post_id, parent_comment_id, like_count, reply_count"
	}

	var row counterRow
	err := tx.Table(table).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select(cols).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// bump adds delta to a counter column without touching updated_at.
func bump(tx *gorm.DB, table, column string, id uuid.UUID, delta int) error {
	return tx.Table(table).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// newestFirst orders by creation time with the time-ordered id breaking ties.
func newestFirst(db *gorm.DB, table string) *gorm.DB {
	return db.Order(table + ".created_at DESC").Order(table + ".id DESC")
}
