// Package commands implements the forumctl subcommands.
package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"campuscare/internal/cache"
	"campuscare/internal/config"
	"campuscare/internal/database"
	"campuscare/internal/observability"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Env is what every subcommand runs against.
type Env struct {
	Config *config.Config
	DB     *gorm.DB
	// Redis is shared with the API process: decisions made here invalidate
	// its feed cache and notify authors. nil when Redis is unreachable.
	Redis *redis.Client

	closeFn func()
}

// Opener connects to the forum database and, when configured, Redis.
type Opener func() (*Env, error)

// DefaultOpener loads configuration from file and environment and connects.
func DefaultOpener() (*Env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	observability.Configure(cfg.Env)
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rdb := cache.Connect(context.Background(), cfg.RedisURL)
	closeFn := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &Env{Config: cfg, DB: db, Redis: rdb, closeFn: closeFn}, nil
}

// Feed returns the approved-feed cache shared with the API process.
func (e *Env) Feed() *cache.Cache {
	var ttl time.Duration
	if e.Config != nil {
		ttl = e.Config.FeedCacheTTL()
	}
	return cache.New(e.Redis, ttl)
}

// Close releases whatever the opener acquired.
func (e *Env) Close() {
	if e.closeFn != nil {
		e.closeFn()
	}
}

var rootVersion = "dev"

// NewRootCmd builds the command tree around open.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "forumctl",
		Short: "forumctl - moderation and operations for the campus forum",
		Long: `forumctl works directly against the forum database.

Counselors use it to work the moderation queue, review reports and
remove posts. Operators use it to migrate the schema, seed demo data
and mint development tokens.`,
		Version:       rootVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(
		newQueueCmd(open),
		newFlaggedCmd(open),
		newFlagsCmd(open),
		newStatsCmd(open),
		newDecisionCmd(open, "approve", "Approve a pending post"),
		newDecisionCmd(open, "reject", "Reject a post"),
		newDecisionCmd(open, "requeue", "Send a post back to the moderation queue"),
		newClearFlagsCmd(open),
		newDeleteCmd(open),
		newSeedCmd(open),
		newMigrateCmd(open),
		newTokenCmd(open),
	)
	return root
}

// Execute runs forumctl against the configured database.
func Execute() error {
	root := NewRootCmd(DefaultOpener)
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		return err
	}
	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootVersion = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func withEnv(open Opener, run func(cmd *cobra.Command, args []string, env *Env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := open()
		if err != nil {
			return err
		}
		defer env.Close()
		return run(cmd, args, env)
	}
}

func init() {
	// force color even when piped; NO_COLOR still wins
	if os.Getenv("NO_COLOR") == "" {
		enableColor()
	}
}
