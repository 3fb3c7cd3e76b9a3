package server

import (
	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/notifications"
	"socialfeed/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetComments handles GET /api/comments/post/:postId?parentId=
// @Summary List comments of a post
// @Description Top-level comments by default, or the replies of parentId
// @Tags comments
// @Produce json
// @Param postId path string true "Post ID"
// @Param parentId query string false "Parent comment ID"
// @Success 200 {array} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/post/{postId} [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var parentID *uuid.UUID
	if raw := c.Query("parentId"); raw != "" {
		id, perr := uuid.Parse(raw)
		if perr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewInvalidIDError("parent comment"))
		}
		parentID = &id
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID, parentID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comments)
}

// GetCommentCount handles GET /api/comments/count/:postId
// @Summary Count comments of a post
// @Tags comments
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} object{count=int}
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/count/{postId} [get]
func (s *Server) GetCommentCount(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	count, err := s.commentService.CountForPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// CreateComment handles POST /api/comments/post/:postId
// @Summary Create comment
// @Description Replies are limited to one level
// @Tags comments
// @Accept json
// @Produce json
// @Param postId path string true "Post ID"
// @Param request body object{content=string,parent_comment_id=string} true "Comment content"
// @Success 201 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/post/{postId} [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	var req struct {
		Content         string  `json:"content"`
		ParentCommentID *string `json:"parent_comment_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	in := service.CreateCommentInput{
		UserID:  middleware.UserID(c),
		PostID:  postID,
		Content: req.Content,
	}
	if req.ParentCommentID != nil && *req.ParentCommentID != "" {
		parentID, perr := uuid.Parse(*req.ParentCommentID)
		if perr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewInvalidIDError("parent comment"))
		}
		in.ParentCommentID = &parentID
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	payload := map[string]any{
		"post_id":           comment.PostID,
		"comment_id":        comment.ID,
		"parent_comment_id": comment.ParentCommentID,
		"author_id":         comment.Author.ID,
	}
	s.publishFeedEvent(notifications.EventCommentCreated, payload)
	if post, perr := s.postService.GetPost(c.UserContext(), postID, 0); perr == nil && post.Author.ID != in.UserID {
		s.publishUserEvent(post.Author.ID, notifications.EventCommentCreated, payload)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PUT /api/comments/:commentId
// @Summary Update comment
// @Tags comments
// @Accept json
// @Produce json
// @Param commentId path string true "Comment ID"
// @Param request body object{content=string} true "Comment content"
// @Success 200 {object} models.CommentView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{commentId} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    middleware.UserID(c),
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(notifications.EventCommentUpdated, map[string]any{
		"post_id":    comment.PostID,
		"comment_id": comment.ID,
	})
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:commentId
// @Summary Delete comment
// @Description Deleting a top-level comment also removes its replies
// @Tags comments
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} object{message=string,deleted_count=int}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	res, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    middleware.UserID(c),
		CommentID: commentID,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(notifications.EventCommentDeleted, map[string]any{
		"comment_id":    commentID,
		"deleted_count": res.DeletedCount,
	})
	return c.JSON(fiber.Map{
		"message":       "Comment deleted successfully",
		"deleted_count": res.DeletedCount,
	})
}

// GetReplies handles GET /api/comments/replies/:commentId
// @Summary List replies
// @Tags comments
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} models.RepliesView
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/replies/{commentId} [get]
func (s *Server) GetReplies(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	replies, err := s.commentService.ListReplies(c.UserContext(), commentID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(replies)
}

// GetCommentDetail handles GET /api/comments/detail/:commentId
// @Summary Get comment
// @Tags comments
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} models.CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/detail/{commentId} [get]
func (s *Server) GetCommentDetail(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetDetail(c.UserContext(), commentID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// LikeComment handles POST /api/comments/like/:commentId
// @Summary Like comment
// @Tags likes
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} models.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/like/{commentId} [post]
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.toggleLike(c, "commentId", models.TargetComment, true)
}

// UnlikeComment handles POST /api/comments/unlike/:commentId
// @Summary Unlike comment
// @Tags likes
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} models.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/unlike/{commentId} [post]
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	return s.toggleLike(c, "commentId", models.TargetComment, false)
}

// CheckCommentLike handles GET /api/comments/check-like/:commentId
// @Summary List comment likers
// @Tags likes
// @Produce json
// @Param commentId path string true "Comment ID"
// @Success 200 {object} models.CommentLikers
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/check-like/{commentId} [get]
func (s *Server) CheckCommentLike(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	likers, err := s.engagementService.CommentLikers(c.UserContext(), commentID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(likers)
}
