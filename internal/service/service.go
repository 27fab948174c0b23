// Package service implements the forum's moderation, engagement and query
// operations on top of the repository layer.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"campuscare/internal/models"

	"gorm.io/gorm"
)

// Rendered author names.
const (
	AnonymousAuthorName = "Anonymous"
	UnknownAuthorName   = "Unknown member"
)

// AuthorDirectory resolves display names for user ids. Ids it cannot
// resolve are left out of the result.
type AuthorDirectory interface {
	DisplayNames(ctx context.Context, ids []uint) (map[uint]string, error)
}

// clock is swapped in tests that assert on timestamps.
type clock func() time.Time

func systemClock() time.Time { return time.Now() }

// storeError converts repository failures into AppErrors. AppErrors raised
// inside a transaction pass through untouched.
func storeError(err error, resource string, id uint) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewStorageError(err)
}

func requireAuthenticated(actor models.Actor) error {
	if !actor.Authenticated() {
		return models.NewUnauthorizedError("authentication required")
	}
	return nil
}

func requireCounselor(actor models.Actor) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsCounselor() {
		return models.NewForbiddenError("counselor role required")
	}
	return nil
}

// validateText trims s and checks it is non-empty and at most maxRunes long.
func validateText(field, s string, maxRunes int) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", models.NewValidationError(field + " is required")
	}
	if utf8.RuneCountInString(trimmed) > maxRunes {
		return "", models.NewValidationError(field + " is too long")
	}
	return trimmed, nil
}

// notePtr stores blank notes as NULL.
func notePtr(note string) *string {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func lookupNames(ctx context.Context, dir AuthorDirectory, ids []uint) map[uint]string {
	if dir == nil || len(ids) == 0 {
		return nil
	}
	names, err := dir.DisplayNames(ctx, ids)
	if err != nil {
		slog.WarnContext(ctx, "author lookup failed, rendering unknown authors", "err", err)
		return nil
	}
	return names
}

func authorName(names map[uint]string, authorID uint, anonymous bool) string {
	if anonymous {
		return AnonymousAuthorName
	}
	if name, ok := names[authorID]; ok && name != "" {
		return name
	}
	return UnknownAuthorName
}

func renderPostAuthors(ctx context.Context, dir AuthorDirectory, posts ...*models.Post) {
	ids := make([]uint, 0, len(posts))
	seen := make(map[uint]struct{}, len(posts))
	for _, p := range posts {
		if p.Anonymous {
			continue
		}
		if _, ok := seen[p.AuthorID]; !ok {
			seen[p.AuthorID] = struct{}{}
			ids = append(ids, p.AuthorID)
		}
	}
	names := lookupNames(ctx, dir, ids)
	for _, p := range posts {
		p.AuthorName = authorName(names, p.AuthorID, p.Anonymous)
	}
}

func renderCommentAuthors(ctx context.Context, dir AuthorDirectory, comments ...*models.Comment) {
	ids := make([]uint, 0, len(comments))
	seen := make(map[uint]struct{}, len(comments))
	for _, c := range comments {
		if c.Anonymous {
			continue
		}
		if _, ok := seen[c.AuthorID]; !ok {
			seen[c.AuthorID] = struct{}{}
			ids = append(ids, c.AuthorID)
		}
	}
	names := lookupNames(ctx, dir, ids)
	for _, c := range comments {
		c.AuthorName = authorName(names, c.AuthorID, c.Anonymous)
	}
}
