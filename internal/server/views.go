package server

import (
	"time"

	"campuscare/internal/models"
)

// postView is the wire shape of a post. The author id of an anonymous post
// is only shown to counselors.
type postView struct {
	ID             uint              `json:"id"`
	AuthorID       *uint             `json:"author_id,omitempty"`
	AuthorName     string            `json:"author_name"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Category       models.Category   `json:"category"`
	Anonymous      bool              `json:"anonymous"`
	Status         models.PostStatus `json:"status"`
	ModerationNote *string           `json:"moderation_note,omitempty"`
	LikeCount      int64             `json:"like_count"`
	FlagCount      int64             `json:"flag_count"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type commentView struct {
	ID         uint      `json:"id"`
	PostID     uint      `json:"post_id"`
	AuthorID   *uint     `json:"author_id,omitempty"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	Anonymous  bool      `json:"anonymous"`
	CreatedAt  time.Time `json:"created_at"`
}

func revealAuthor(authorID uint, anonymous bool, viewer models.Actor) *uint {
	if anonymous && !viewer.IsCounselor() && viewer.UserID != authorID {
		return nil
	}
	id := authorID
	return &id
}

func newPostView(p *models.Post, viewer models.Actor) postView {
	view := postView{
		ID:             p.ID,
		AuthorID:       revealAuthor(p.AuthorID, p.Anonymous, viewer),
		AuthorName:     p.AuthorName,
		Title:          p.Title,
		Body:           p.Body,
		Category:       p.Category,
		Anonymous:      p.Anonymous,
		Status:         p.Status,
		LikeCount:      p.LikeCount,
		FlagCount:      p.FlagCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	// moderation notes are for the author and counselors
	if viewer.IsCounselor() || (viewer.Authenticated() && viewer.UserID == p.AuthorID) {
		view.ModerationNote = p.ModerationNote
	}
	return view
}

func newPostViews(posts []*models.Post, viewer models.Actor) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p, viewer))
	}
	return views
}

func newCommentView(c *models.Comment, viewer models.Actor) commentView {
	return commentView{
		ID:         c.ID,
		PostID:     c.PostID,
		AuthorID:   revealAuthor(c.AuthorID, c.Anonymous, viewer),
		AuthorName: c.AuthorName,
		Body:       c.Body,
		Anonymous:  c.Anonymous,
		CreatedAt:  c.CreatedAt,
	}
}
