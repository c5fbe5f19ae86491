package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale mutexes
	lockCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	lockStaleThreshold = 10 * time.Minute
)

// SlotLockService serializes check-then-insert booking attempts per
// (doctor, date). Two concurrent requests for the same doctor/day take
// the same mutex, so the second one re-reads the appointment set after
// the first has committed and sees the conflict. The database exclusion
// constraint remains the backstop for writers in other processes.
type SlotLockService struct {
	log *logrus.Logger

	// Per doctor/date mutex
	locks sync.Map // map[string]*slotMutex

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// slotMutex tracks mutex usage for cleanup
type slotMutex struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp

	// Set under mu by cleanup before the entry leaves the map. A caller
	// that loaded the entry before removal sees the flag and retries.
	retired bool
}

// NewSlotLockService creates a SlotLockService and starts the background
// cleanup goroutine. Call Stop() during graceful shutdown.
func NewSlotLockService(log *logrus.Logger) *SlotLockService {
	svc := &SlotLockService{
		log:      log,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupLoop()

	return svc
}

// Lock acquires the mutex for a doctor/date pair, blocking until it is
// held. Release with the returned function.
func (s *SlotLockService) Lock(doctorID uuid.UUID, date time.Time) func() {
	key := lockKey(doctorID, date)

	for {
		value, _ := s.locks.LoadOrStore(key, &slotMutex{})
		lock := value.(*slotMutex)

		lock.mu.Lock()
		if lock.retired {
			lock.mu.Unlock()
			s.locks.CompareAndDelete(key, value)
			continue
		}
		lock.lastUsed.Store(time.Now().Unix())

		return func() {
			lock.lastUsed.Store(time.Now().Unix())
			lock.mu.Unlock()
		}
	}
}

// Stop terminates the cleanup goroutine and waits for it to exit.
func (s *SlotLockService) Stop() {
	if s.stopped.Swap(true) {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
}

func (s *SlotLockService) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanupStaleLocks()
		}
	}
}

// cleanupStaleLocks drops mutexes not used within the stale threshold.
// TryLock guards against removing a mutex that a booking currently holds.
func (s *SlotLockService) cleanupStaleLocks() {
	cutoff := time.Now().Add(-lockStaleThreshold).Unix()
	removed := 0

	s.locks.Range(func(key, value interface{}) bool {
		lock := value.(*slotMutex)
		if lock.lastUsed.Load() >= cutoff {
			return true
		}
		if lock.mu.TryLock() {
			lock.retired = true
			s.locks.Delete(key)
			lock.mu.Unlock()
			removed++
		}
		return true
	})

	if removed > 0 {
		s.log.Debugf("Slot lock cleanup removed %d stale locks", removed)
	}
}

func lockKey(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s:%s", doctorID, date.Format("2006-01-02"))
}
