package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/birdquiz/birdquiz/internal/config"
	"github.com/birdquiz/birdquiz/internal/logging"
	"github.com/birdquiz/birdquiz/internal/questiongen"
	"github.com/birdquiz/birdquiz/internal/store"
)

// runtime bundles what every command needs: configuration, a logger and
// the opened store.
type runtime struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *store.Store
	closeLog func() error
}

// setup loads configuration, builds the logger and opens the store.
// Interactive commands pass quiet so that info logs stay off the terminal.
func setup(cmd *cobra.Command, quiet bool) (*runtime, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{ConfigFile: cfgFile})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if quiet && level != "debug" {
		level = "warn"
	}
	log, closeLog, err := logging.New(logging.Options{
		Level:      level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Console:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg.DB.Path)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", zap.String("path", dbPath))

	return &runtime{cfg: cfg, log: log, store: st, closeLog: closeLog}, nil
}

func (r *runtime) Close() error {
	return errors.Join(r.store.Close(), r.closeLog())
}

// service builds the data service. A zero quiz.seed samples from a
// clock-seeded source.
func (r *runtime) service(identity store.IdentityFunc) *store.Service {
	var gen *questiongen.Generator
	if seed := r.cfg.Quiz.Seed; seed != 0 {
		gen = questiongen.NewSeeded(r.store.Birds(), seed)
	} else {
		now := uint64(time.Now().UnixNano())
		gen = questiongen.New(r.store.Birds(), rand.New(rand.NewPCG(now, rand.Uint64())))
	}
	return store.NewService(r.store, gen, identity, r.log)
}

// fixedUser identifies every caller as userID; an empty id is anonymous.
func fixedUser(userID string) store.IdentityFunc {
	return func(context.Context) (string, bool) {
		return userID, userID != ""
	}
}

// requireUser fetches the --user flag or fails.
func requireUser(cmd *cobra.Command) (string, error) {
	u, _ := cmd.Flags().GetString("user")
	if u == "" {
		return "", errors.New("--user is required")
	}
	return u, nil
}
