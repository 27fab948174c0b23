package server

import (
	"campuscare/internal/middleware"
	"campuscare/internal/models"
	"campuscare/internal/service"

	"github.com/gofiber/fiber/v2"
)

type submitPostRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category"`
	Anonymous bool   `json:"anonymous"`
}

type addCommentRequest struct {
	Body      string `json:"body"`
	Anonymous bool   `json:"anonymous"`
}

type flagPostRequest struct {
	Reason string `json:"reason"`
}

// ListCategories returns the fixed category set.
func (s *Server) ListCategories(c *fiber.Ctx) error {
	return c.JSON(models.Categories)
}

// ListPosts returns the approved feed, optionally narrowed by ?category=.
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.queries.ListByCategory(c.UserContext(), c.Query("category"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newPostViews(posts, middleware.ActorFrom(c)))
}

// GetPost returns a single post if the caller may see it.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := middleware.ActorFrom(c)
	post, err := s.queries.GetPost(c.UserContext(), viewer, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newPostView(post, viewer))
}

// SubmitPost queues a new post for moderation.
func (s *Server) SubmitPost(c *fiber.Ctx) error {
	var req submitPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	actor := middleware.ActorFrom(c)
	post, err := s.moderation.Submit(c.UserContext(), actor, service.SubmitPostInput{
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		Anonymous: req.Anonymous,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newPostView(post, actor))
}

// DeletePost removes a post and everything attached to it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.moderation.Delete(c.UserContext(), middleware.ActorFrom(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListComments returns a post's thread, oldest first.
func (s *Server) ListComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := middleware.ActorFrom(c)
	if _, err := s.queries.GetPost(c.UserContext(), viewer, postID); err != nil {
		return respondServiceError(c, err)
	}
	comments, err := s.comments.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, newCommentView(comment, viewer))
	}
	return c.JSON(views)
}

// AddComment appends a comment to an approved post.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req addCommentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	actor := middleware.ActorFrom(c)
	comment, err := s.comments.AddComment(c.UserContext(), actor, postID, req.Body, req.Anonymous)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newCommentView(comment, actor))
}

// ToggleLike likes or unlikes a post for the caller.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.engagement.ToggleLike(c.UserContext(), middleware.ActorFrom(c), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// HasLiked reports whether the caller likes a post.
func (s *Server) HasLiked(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.engagement.HasLiked(c.UserContext(), postID, middleware.ActorFrom(c).UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// FlagPost reports a post to the counselors.
func (s *Server) FlagPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req flagPostRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	actor := middleware.ActorFrom(c)
	post, err := s.flags.FlagPost(c.UserContext(), actor, postID, req.Reason)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Report received",
		"flag_count": post.FlagCount,
	})
}

// HasFlagged reports whether the caller already reported a post.
func (s *Server) HasFlagged(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	flagged, err := s.flags.HasFlagged(c.UserContext(), postID, middleware.ActorFrom(c).UserID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"flagged": flagged})
}
