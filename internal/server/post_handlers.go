package server

import (
	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/notifications"
	"socialfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Content string             `json:"content"`
	Images  []models.PostImage `json:"images"`
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Newest first, with is_liked for the caller when authenticated
// @Tags posts
// @Produce json
// @Success 200 {array} models.PostView
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetLikedPosts handles GET /api/posts/liked
// @Summary List liked posts
// @Tags posts
// @Produce json
// @Success 200 {array} models.PostView
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/liked [get]
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	posts, err := s.engagementService.LikedPosts(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:postId
// @Summary Get post
// @Tags posts
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{content=string,images=[]models.PostImage} true "Post content"
// @Success 201 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:  middleware.UserID(c),
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(notifications.EventPostCreated, map[string]any{
		"post_id":   post.ID,
		"author_id": post.Author.ID,
	})
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:postId
// @Summary Update post
// @Description Only the author may edit; counters are left untouched
// @Tags posts
// @Accept json
// @Produce json
// @Param postId path string true "Post ID"
// @Param request body object{content=string,images=[]models.PostImage} true "Post content"
// @Success 200 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  middleware.UserID(c),
		PostID:  id,
		Content: req.Content,
		Images:  req.Images,
	})
	if err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(notifications.EventPostUpdated, map[string]any{"post_id": post.ID})
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:postId
// @Summary Delete post
// @Description Removes the post with its comments and likes
// @Tags posts
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		UserID: middleware.UserID(c),
		PostID: id,
	}); err != nil {
		return respondError(c, err)
	}

	s.publishFeedEvent(notifications.EventPostDeleted, map[string]any{"post_id": id})
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// LikePost handles POST /api/posts/:postId/like
// @Summary Like post
// @Tags likes
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} models.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.toggleLike(c, "postId", models.TargetPost, true)
}

// UnlikePost handles POST /api/posts/:postId/unlike
// @Summary Unlike post
// @Tags likes
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} models.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId}/unlike [post]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.toggleLike(c, "postId", models.TargetPost, false)
}

// CheckPostLike handles GET /api/posts/:postId/check-like
// @Summary Check post like
// @Tags likes
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} models.LikeState
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId}/check-like [get]
func (s *Server) CheckPostLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	state, err := s.engagementService.State(c.UserContext(),
		models.TargetRef{Type: models.TargetPost, ID: id}, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

var likeEvents = map[models.TargetType][2]string{
	models.TargetPost:    {notifications.EventPostLiked, notifications.EventPostUnliked},
	models.TargetComment: {notifications.EventCommentLiked, notifications.EventCommentUnliked},
}

// toggleLike serves the like and unlike routes of both target types. Repeated
// toggles answer 200 with the current state.
func (s *Server) toggleLike(c *fiber.Ctx, param string, targetType models.TargetType, like bool) error {
	id, err := s.parseID(c, param)
	if err != nil {
		return nil
	}
	target := models.TargetRef{Type: targetType, ID: id}
	userID := middleware.UserID(c)

	var state *models.LikeState
	if like {
		state, err = s.engagementService.Like(c.UserContext(), target, userID)
	} else {
		state, err = s.engagementService.Unlike(c.UserContext(), target, userID)
	}
	if err != nil {
		return respondError(c, err)
	}

	if state.Status.Changed() {
		event := likeEvents[targetType][0]
		if !like {
			event = likeEvents[targetType][1]
		}
		s.publishFeedEvent(event, map[string]any{
			"target_id": id,
			"user_id":   userID,
			"likes":     state.LikeCount,
		})
	}
	return c.JSON(state)
}
