package server

import (
	"context"

	"campuscare/internal/middleware"
	"campuscare/internal/models"

	"github.com/gofiber/fiber/v2"
)

type moderationRequest struct {
	Note string `json:"note"`
}

// ModerationQueue lists pending posts, newest first.
func (s *Server) ModerationQueue(c *fiber.Ctx) error {
	posts, err := s.queries.ListForModeration(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newPostViews(posts, middleware.ActorFrom(c)))
}

// FlaggedPosts lists approved posts with at least one flag.
func (s *Server) FlaggedPosts(c *fiber.Ctx) error {
	posts, err := s.queries.ListFlagged(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newPostViews(posts, middleware.ActorFrom(c)))
}

// ModerationStats returns per-status counts.
func (s *Server) ModerationStats(c *fiber.Ctx) error {
	stats, err := s.queries.Stats(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

// PostFlags lists the reports on a post, newest first.
func (s *Server) PostFlags(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	flags, err := s.flags.GetFlags(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(flags)
}

// ApprovePost publishes a post.
func (s *Server) ApprovePost(c *fiber.Ctx) error {
	return s.decide(c, func(ctx context.Context, actor models.Actor, postID uint, note string) (*models.Post, error) {
		return s.moderation.Approve(ctx, actor, postID, note)
	})
}

// RejectPost hides a post.
func (s *Server) RejectPost(c *fiber.Ctx) error {
	return s.decide(c, func(ctx context.Context, actor models.Actor, postID uint, note string) (*models.Post, error) {
		return s.moderation.Reject(ctx, actor, postID, note)
	})
}

// RequeuePost sends a post back to the moderation queue.
func (s *Server) RequeuePost(c *fiber.Ctx) error {
	return s.decide(c, func(ctx context.Context, actor models.Actor, postID uint, note string) (*models.Post, error) {
		return s.moderation.ResetToPending(ctx, actor, postID, note)
	})
}

// ClearFlags dismisses every report on a post.
func (s *Server) ClearFlags(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	actor := middleware.ActorFrom(c)
	post, err := s.moderation.ClearFlags(c.UserContext(), actor, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newPostView(post, actor))
}

type decision func(ctx context.Context, actor models.Actor, postID uint, note string) (*models.Post, error)

func (s *Server) decide(c *fiber.Ctx, apply decision) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req moderationRequest
	// the note is optional, so an empty body is accepted
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	actor := middleware.ActorFrom(c)
	post, err := apply(c.UserContext(), actor, postID, req.Note)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newPostView(post, actor))
}
