package commands

import (
	"fmt"
	"time"

	"campuscare/internal/database"
	"campuscare/internal/middleware"
	"campuscare/internal/models"
	"campuscare/internal/repository"
	"campuscare/internal/seed"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func newSeedCmd(open Opener) *cobra.Command {
	opts := seed.DefaultOptions
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo users and posts",
		Args:  cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			if env.Config != nil && env.Config.IsProduction() {
				return fmt.Errorf("refusing to seed a production database")
			}
			summary, err := seed.NewSeeder(repository.NewStore(env.DB), opts.Seed).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			// seeding approves posts without notifying anyone; drop the stale feed once
			env.Feed().InvalidateFeed(cmd.Context())
			printSuccess(cmd.OutOrStdout(), "seeded %d users and %d posts (%d approved, %d rejected, %d pending)",
				summary.Users, summary.Posts, summary.Approved, summary.Rejected, summary.Pending)
			return nil
		}),
	}
	cmd.Flags().IntVar(&opts.Students, "students", opts.Students, "Number of student accounts")
	cmd.Flags().IntVar(&opts.Counselors, "counselors", opts.Counselors, "Number of counselor accounts")
	cmd.Flags().IntVar(&opts.Posts, "posts", opts.Posts, "Number of posts to submit")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	return cmd
}

func newMigrateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the forum schema",
		Args:  cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			if err := database.Migrate(env.DB); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "schema is up to date")
			return nil
		}),
	}
}

func newTokenCmd(open Opener) *cobra.Command {
	var (
		userID uint
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user (development only)",
		Args:  cobra.NoArgs,
		RunE: withEnv(open, func(cmd *cobra.Command, args []string, env *Env) error {
			if env.Config == nil || env.Config.IsProduction() {
				return fmt.Errorf("tokens can only be minted outside production")
			}
			user, err := repository.NewUserRepository(env.DB).GetByID(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("load user %d: %w", userID, err)
			}
			token, err := middleware.NewAuth(env.Config.JWTSecret).Sign(
				models.Actor{UserID: user.ID, Role: user.Role},
				jwt.MapClaims{"exp": time.Now().Add(ttl).Unix()},
			)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		}),
	}
	cmd.Flags().UintVar(&userID, "user", 0, "User ID to issue the token for")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
