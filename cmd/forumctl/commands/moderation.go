package commands

import (
	"context"
	"fmt"
	"strconv"

	"campuscare/internal/models"
	"campuscare/internal/notifications"
	"campuscare/internal/repository"
	"campuscare/internal/service"

	"github.com/spf13/cobra"
)

// services bundles what the moderation commands call.
type services struct {
	store      repository.Store
	moderation *service.ModerationService
	flags      *service.FlagService
	queries    *service.QueryService
}

func newServices(env *Env) *services {
	store := repository.NewStore(env.DB)
	feed := env.Feed()
	notifier := notifications.NewNotifier(env.Redis)
	return &services{
		store:      store,
		moderation: service.NewModerationService(store, feed, notifier),
		flags:      service.NewFlagService(store, feed, notifier),
		queries:    service.NewQueryService(store, store.Users(), feed),
	}
}

// actorFor loads the acting user so its stored role decides what it may do.
func (s *services) actorFor(ctx context.Context, userID uint) (models.Actor, error) {
	if userID == 0 {
		return models.Anonymous, models.NewUnauthorizedError("--as is required")
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return models.Anonymous, fmt.Errorf("load acting user %d: %w", userID, err)
	}
	return models.Actor{UserID: user.ID, Role: user.Role}, nil
}

func parsePostID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("invalid post ID: " + arg)
	}
	return uint(id), nil
}

func newQueueCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List posts awaiting moderation, newest first",
		Args:  cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			posts, err := newServices(env).queries.ListForModeration(cmd.Context())
			if err != nil {
				return err
			}
			printPosts(cmd.OutOrStdout(), posts)
			return nil
		}),
	}
}

func newFlaggedCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "flagged",
		Short: "List approved posts that have been reported",
		Args:  cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			posts, err := newServices(env).queries.ListFlagged(cmd.Context())
			if err != nil {
				return err
			}
			printPosts(cmd.OutOrStdout(), posts)
			return nil
		}),
	}
}

func newFlagsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "flags POST_ID",
		Short: "Show the reports filed against a post",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			postID, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			flags, err := newServices(env).flags.GetFlags(cmd.Context(), postID)
			if err != nil {
				return err
			}
			printFlags(cmd.OutOrStdout(), flags)
			return nil
		}),
	}
}

func newStatsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the moderation workload",
		Args:  cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			stats, err := newServices(env).queries.Stats(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "pending:  %d\n", stats.Pending)
			_, _ = fmt.Fprintf(w, "approved: %d\n", stats.Approved)
			_, _ = fmt.Fprintf(w, "rejected: %d\n", stats.Rejected)
			_, _ = fmt.Fprintf(w, "flagged:  %d\n", stats.Flagged)
			return nil
		}),
	}
}

func newDecisionCmd(open Opener, name, short string) *cobra.Command {
	var (
		actingAs uint
		note     string
	)
	cmd := &cobra.Command{
		Use:   name + " POST_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			postID, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			svc := newServices(env)
			ctx := cmd.Context()
			actor, err := svc.actorFor(ctx, actingAs)
			if err != nil {
				return err
			}

			var post *models.Post
			switch name {
			case "approve":
				post, err = svc.moderation.Approve(ctx, actor, postID, note)
			case "reject":
				post, err = svc.moderation.Reject(ctx, actor, postID, note)
			default:
				post, err = svc.moderation.ResetToPending(ctx, actor, postID, note)
			}
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "post %d is now %s", post.ID, post.Status)
			return nil
		}),
	}
	cmd.Flags().UintVar(&actingAs, "as", 0, "ID of the counselor making the decision")
	cmd.Flags().StringVar(&note, "note", "", "Moderation note shown to the author")
	return cmd
}

func newClearFlagsCmd(open Opener) *cobra.Command {
	var actingAs uint
	cmd := &cobra.Command{
		Use:   "clear-flags POST_ID",
		Short: "Dismiss every report on a post",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			postID, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			svc := newServices(env)
			actor, err := svc.actorFor(cmd.Context(), actingAs)
			if err != nil {
				return err
			}
			if _, err := svc.moderation.ClearFlags(cmd.Context(), actor, postID); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "cleared reports on post %d", postID)
			return nil
		}),
	}
	cmd.Flags().UintVar(&actingAs, "as", 0, "ID of the counselor clearing the reports")
	return cmd
}

func newDeleteCmd(open Opener) *cobra.Command {
	var actingAs uint
	cmd := &cobra.Command{
		Use:   "delete POST_ID",
		Short: "Delete a post with its comments, likes and reports",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			postID, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			svc := newServices(env)
			actor, err := svc.actorFor(cmd.Context(), actingAs)
			if err != nil {
				return err
			}
			if err := svc.moderation.Delete(cmd.Context(), actor, postID); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "deleted post %d", postID)
			return nil
		}),
	}
	cmd.Flags().UintVar(&actingAs, "as", 0, "ID of the user deleting the post")
	return cmd
}
