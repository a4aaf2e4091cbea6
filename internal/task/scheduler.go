package task

import (
	"context"
	"time"

	"github.com/haierkeys/offline-note-sync-service/pkg/safe_close"
	"go.uber.org/zap"
)

// Task is a unit of periodic background work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
	LoopInterval() time.Duration
	IsStartupRun() bool
}

// Scheduler drives registered tasks on their intervals and ties their
// lifecycle to the process close signal.
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
}

func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
	}
}

// AddTask registers a task. A nil task is ignored so constructors can
// return nil when their feature is disabled by configuration.
func (s *Scheduler) AddTask(task Task) {
	if task == nil {
		return
	}
	s.tasks = append(s.tasks, task)
}

// Start launches one goroutine per registered task.
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	for _, task := range s.tasks {
		s.startTask(task)
	}
}

func (s *Scheduler) startTask(task Task) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		if task.IsStartupRun() {
			s.logger.Info("task running", zap.String("name", task.Name()), zap.Bool("startupRun", true))
			s.runOnce(task, true)
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.logger.Info("task running", zap.String("name", task.Name()), zap.Bool("loopRun", true))
				s.runOnce(task, false)
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}

func (s *Scheduler) runOnce(task Task, startup bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.Bool("startupRun", startup),
			zap.Error(err))
	}
}
