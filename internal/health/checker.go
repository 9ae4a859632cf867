// Package health provides periodic health checks with auto-recovery.
package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
)

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Seeder restores the question bank.
type Seeder interface {
	Seed(ctx context.Context, reset bool) (int, error)
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	log      *zap.Logger
}

var errEmptyBank = errors.New("question bank is empty")

// NewChecker creates a checker for the database, the data directory, and
// the question bank. A nil seeder disables bank recovery.
func NewChecker(db *sqlite.DB, dataDir string, seeder Seeder, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	bank := Check{
		Name: "question_bank",
		CheckFn: func(ctx context.Context) error {
			n, err := db.CountQuestions(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				return errEmptyBank
			}
			return nil
		},
	}
	if seeder != nil {
		bank.RecoverFn = func(ctx context.Context) error {
			_, err := seeder.Seed(ctx, false)
			return err
		}
	}

	return &Checker{
		interval: 60 * time.Second,
		log:      log,
		checks: []Check{
			{
				Name: "sqlite",
				CheckFn: func(ctx context.Context) error {
					return db.PingContext(ctx)
				},
			},
			{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkDataDir(dataDir)
				},
			},
			bank,
		},
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

func (c *Checker) runAll(ctx context.Context) {
	log := c.log
	if log == nil {
		log = zap.NewNop()
	}
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		err := check.CheckFn(ctx)
		if err != nil && check.RecoverFn != nil {
			if rerr := check.RecoverFn(ctx); rerr != nil {
				log.Warn("health recovery failed", zap.String("check", check.Name), zap.Error(rerr))
			} else {
				log.Info("health check recovered", zap.String("check", check.Name), zap.NamedError("cause", err))
				err = check.CheckFn(ctx)
			}
		}
		if err != nil {
			s.Error = err.Error()
			log.Warn("health check failed", zap.String("check", check.Name), zap.Error(err))
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	probe, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(filepath.Clean(name))
}
