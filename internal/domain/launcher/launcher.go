// Package launcher starts app binaries as independent processes.
package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
)

// ExitFunc is told when a launched process exits
type ExitFunc func(path string, pid int, err error)

// ExecLauncher starts binaries with os/exec. Spawn returns as soon as the
// process has started; the exit is collected in the background.
type ExecLauncher struct {
	logger *logging.Logger
	env    []string
	onExit ExitFunc

	mu      sync.Mutex
	running map[int]string
	wg      sync.WaitGroup
}

// Option configures an ExecLauncher
type Option func(*ExecLauncher)

// WithEnv appends environment variables to the inherited environment
func WithEnv(env ...string) Option {
	return func(l *ExecLauncher) { l.env = append(l.env, env...) }
}

// WithExitFunc observes process exits
func WithExitFunc(fn ExitFunc) Option {
	return func(l *ExecLauncher) { l.onExit = fn }
}

// New creates a launcher
func New(logger *logging.Logger, opts ...Option) *ExecLauncher {
	if logger == nil {
		logger = logging.NewNop()
	}
	l := &ExecLauncher{
		logger:  logger,
		running: make(map[int]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Spawn implements apphandler.ProcessLauncher. The process is not tied to
// ctx; cancelling ctx only aborts a launch that has not started yet.
func (l *ExecLauncher) Spawn(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}

	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", path, err)
	}

	pid := cmd.Process.Pid
	l.track(pid, path)

	l.wg.Add(1)
	go l.reap(cmd, path, pid)

	return pid, nil
}

// Running returns the pids of processes that have not exited yet
func (l *ExecLauncher) Running() map[int]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[int]string, len(l.running))
	for pid, path := range l.running {
		out[pid] = path
	}
	return out
}

// Wait blocks until every launched process has exited
func (l *ExecLauncher) Wait() {
	l.wg.Wait()
}

func (l *ExecLauncher) track(pid int, path string) {
	l.mu.Lock()
	l.running[pid] = path
	l.mu.Unlock()
}

func (l *ExecLauncher) reap(cmd *exec.Cmd, path string, pid int) {
	defer l.wg.Done()

	err := cmd.Wait()

	l.mu.Lock()
	delete(l.running, pid)
	l.mu.Unlock()

	if err != nil {
		l.logger.Info("App process exited", zap.String("path", path), zap.Int("pid", pid), zap.Error(err))
	} else {
		l.logger.Debug("App process exited", zap.String("path", path), zap.Int("pid", pid))
	}
	if l.onExit != nil {
		l.onExit(path, pid, err)
	}
}
