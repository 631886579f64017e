package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/labimport/internal/workspace"
)

// WorkspaceSweepJob removes extraction workspaces left behind by imports
// that never reached teardown.
type WorkspaceSweepJob struct {
	workspaces *workspace.Manager
	maxAge     time.Duration
}

func NewWorkspaceSweepJob(workspaces *workspace.Manager, maxAge time.Duration) *WorkspaceSweepJob {
	return &WorkspaceSweepJob{workspaces: workspaces, maxAge: maxAge}
}

func (j *WorkspaceSweepJob) Name() string {
	return "workspace_sweep"
}

func (j *WorkspaceSweepJob) Run(ctx context.Context) error {
	if j.workspaces == nil {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	removed, err := j.workspaces.Sweep(ctx, maxAge)
	if removed > 0 {
		logutil.GetLogger(ctx).Info("stale workspaces removed",
			zap.Int("count", removed),
			zap.String("root", j.workspaces.Root()),
		)
	}
	return err
}
