package services

import (
	"errors"
	"sync"
	"time"

	"bingo-groups-backend/apperrors"
	"bingo-groups-backend/utils/logger"
)

// CallInterval is the pause between automatic calls once a timer or
// card-limit game is running.
const CallInterval = 6 * time.Second

// Scheduler owns the background tasks of the timer and card-limit
// mechanisms: one cancellable task per group, replaced on re-arm and torn
// down on restart, win or pool exhaustion.
type Scheduler struct {
	engine *Engine

	mu    sync.Mutex
	tasks map[uint]chan struct{}

	// interval is swappable so tests do not sit through real ticks.
	interval time.Duration
}

func NewScheduler(engine *Engine) *Scheduler {
	return &Scheduler{
		engine:   engine,
		tasks:    make(map[uint]chan struct{}),
		interval: CallInterval,
	}
}

// replaceTask cancels the group's running task, if any, and registers a fresh
// cancel channel for the next one.
func (s *Scheduler) replaceTask(groupID uint) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.tasks[groupID]; ok {
		close(cancel)
	}
	cancel := make(chan struct{})
	s.tasks[groupID] = cancel
	return cancel
}

// Cancel stops the group's pending countdown or recurring caller. Safe to
// call when nothing is scheduled.
func (s *Scheduler) Cancel(groupID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.tasks[groupID]; ok {
		close(cancel)
		delete(s.tasks, groupID)
	}
}

// release drops the registration of a finished task, unless it has already
// been replaced by a newer one.
func (s *Scheduler) release(groupID uint, cancel chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.tasks[groupID]; ok && current == cancel {
		delete(s.tasks, groupID)
	}
}

// ArmCountdown schedules the one-shot auto-start. Re-arming replaces the
// pending countdown, so expiry fires at most once per armed timer.
func (s *Scheduler) ArmCountdown(groupID uint, d time.Duration) {
	cancel := s.replaceTask(groupID)
	timer := time.NewTimer(d)
	go func() {
		defer timer.Stop()
		select {
		case <-cancel:
			logger.Debugf("group %d: countdown cancelled", groupID)
			return
		case <-timer.C:
		}
		started, err := s.engine.autoStartFromTimer(groupID)
		if err != nil {
			logger.Errorf("group %d: countdown auto-start: %v", groupID, err)
			s.release(groupID, cancel)
			return
		}
		if !started {
			s.release(groupID, cancel)
			return
		}
		s.runCalls(groupID, cancel)
	}()
}

// StartRecurring begins the fixed-interval caller for a game that has just
// auto-started via the card-limit mechanism.
func (s *Scheduler) StartRecurring(groupID uint) {
	cancel := s.replaceTask(groupID)
	go s.runCalls(groupID, cancel)
}

// runCalls draws the first number right away, then one per interval until the
// game produces a winner, exhausts its pool, or the task is cancelled.
func (s *Scheduler) runCalls(groupID uint, cancel chan struct{}) {
	defer s.release(groupID, cancel)

	// The auto-start transition itself triggers a call; the ticker only
	// paces the ones after it.
	if s.callOnce(groupID) {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			logger.Debugf("group %d: recurring caller cancelled", groupID)
			return
		case <-ticker.C:
			if s.callOnce(groupID) {
				return
			}
		}
	}
}

// callOnce draws one number and reports whether the schedule is finished.
// Persistence failures are logged and retried on the next tick; any other
// error means the game was reset or removed and the schedule stops.
func (s *Scheduler) callOnce(groupID uint) bool {
	result, err := s.engine.callForScheduler(groupID)
	if err != nil {
		logger.Errorf("group %d: scheduled call: %v", groupID, err)
		return !errors.Is(err, apperrors.ErrPersistence)
	}
	if result.Winner != nil {
		logger.Infof("group %d: scheduled caller stopping, winner found", groupID)
		return true
	}
	if result.AllCalled {
		logger.Infof("group %d: scheduled caller stopping, all numbers called", groupID)
		return true
	}
	return false
}
