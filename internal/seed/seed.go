// Package seed creates demo data for development databases. Content goes
// through the services so derived counters stay exact.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"campuscare/internal/models"
	"campuscare/internal/repository"
	"campuscare/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much data Run creates.
type Options struct {
	Students   int
	Counselors int
	Posts      int
	// Seed makes runs reproducible. Zero picks a random seed.
	Seed int64
}

// DefaultOptions is a small but lively forum.
var DefaultOptions = Options{Students: 12, Counselors: 2, Posts: 30}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Approved int
	Rejected int
	Pending  int
	Likes    int
	Flags    int
	Comments int
}

// Seeder writes demo users and content.
type Seeder struct {
	store      repository.Store
	faker      *gofakeit.Faker
	moderation *service.ModerationService
	engagement *service.EngagementService
	flags      *service.FlagService
	comments   *service.CommentService
}

// NewSeeder creates a Seeder over store. Caches and notifiers are left out.
func NewSeeder(store repository.Store, seed int64) *Seeder {
	return &Seeder{
		store:      store,
		faker:      gofakeit.New(seed),
		moderation: service.NewModerationService(store, nil, nil),
		engagement: service.NewEngagementService(store, nil),
		flags:      service.NewFlagService(store, nil, nil),
		comments:   service.NewCommentService(store, store.Users(), nil),
	}
}

// Run creates users, then posts with a spread of moderation outcomes, then
// likes, flags and comments on the approved ones.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary
	if opts.Students <= 0 || opts.Counselors <= 0 {
		return summary, fmt.Errorf("seed needs at least one student and one counselor")
	}

	students, err := s.createUsers(ctx, opts.Students, models.RoleStudent)
	if err != nil {
		return summary, err
	}
	counselors, err := s.createUsers(ctx, opts.Counselors, models.RoleCounselor)
	if err != nil {
		return summary, err
	}
	summary.Users = len(students) + len(counselors)

	for i := 0; i < opts.Posts; i++ {
		author := students[s.faker.Number(0, len(students)-1)]
		counselor := counselors[s.faker.Number(0, len(counselors)-1)]

		post, err := s.moderation.Submit(ctx, author, s.buildPost())
		if err != nil {
			return summary, fmt.Errorf("submit post %d: %w", i, err)
		}
		summary.Posts++

		switch roll := s.faker.Number(1, 10); {
		case roll <= 7:
			if _, err := s.moderation.Approve(ctx, counselor, post.ID, ""); err != nil {
				return summary, err
			}
			summary.Approved++
			if err := s.engage(ctx, post.ID, students, &summary); err != nil {
				return summary, err
			}
		case roll == 8:
			if _, err := s.moderation.Reject(ctx, counselor, post.ID, "Please rephrase and resubmit"); err != nil {
				return summary, err
			}
			summary.Rejected++
		default:
			summary.Pending++
		}
	}

	slog.InfoContext(ctx, "seed complete",
		"users", summary.Users,
		"posts", summary.Posts,
		"likes", summary.Likes,
		"flags", summary.Flags,
		"comments", summary.Comments,
	)
	return summary, nil
}

func (s *Seeder) createUsers(ctx context.Context, n int, role models.Role) ([]models.Actor, error) {
	actors := make([]models.Actor, 0, n)
	for i := 0; i < n; i++ {
		name := s.faker.Name()
		if role == models.RoleCounselor {
			name = "Dr. " + s.faker.LastName()
		}
		user := &models.User{
			Username:    fmt.Sprintf("%s_%d", strings.ToLower(s.faker.Username()), s.faker.Number(1000, 9999)),
			DisplayName: name,
			Role:        role,
		}
		if err := s.store.Users().Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create %s: %w", role, err)
		}
		actors = append(actors, models.Actor{UserID: user.ID, Role: role})
	}
	return actors, nil
}

func (s *Seeder) buildPost() service.SubmitPostInput {
	category := models.Categories[s.faker.Number(0, len(models.Categories)-1)]
	return service.SubmitPostInput{
		Title:     strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), "."),
		Body:      s.faker.Paragraph(1, 3, 12, "\n\n"),
		Category:  string(category),
		Anonymous: s.faker.Number(1, 4) == 1,
	}
}

func (s *Seeder) engage(ctx context.Context, postID uint, students []models.Actor, summary *Summary) error {
	for _, student := range students {
		if s.faker.Number(1, 3) == 1 {
			result, err := s.engagement.ToggleLike(ctx, student, postID)
			if err != nil {
				return err
			}
			if result.Liked {
				summary.Likes++
			}
		}
		if s.faker.Number(1, 5) == 1 {
			body := s.faker.Sentence(s.faker.Number(4, 14))
			if _, err := s.comments.AddComment(ctx, student, postID, body, s.faker.Bool()); err != nil {
				return err
			}
			summary.Comments++
		}
		if s.faker.Number(1, 20) == 1 {
			if _, err := s.flags.FlagPost(ctx, student, postID, "Seems off-topic"); err != nil {
				return err
			}
			summary.Flags++
		}
	}
	return nil
}
