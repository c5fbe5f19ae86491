package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func TestSlotLockMutualExclusion(t *testing.T) {
	svc := NewSlotLockService(newTestLogger())
	defer svc.Stop()

	doctorID := uuid.New()
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	const workers = 16
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := svc.Lock(doctorID, date)
			defer unlock()
			// Unsynchronized increment; the race detector flags this
			// if the lock fails to serialize holders.
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestSlotLockIndependentKeys(t *testing.T) {
	svc := NewSlotLockService(newTestLogger())
	defer svc.Stop()

	doctorID := uuid.New()
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	unlock := svc.Lock(doctorID, date)
	defer unlock()

	// Other doctors and other dates must not block.
	acquired := make(chan struct{})
	go func() {
		u1 := svc.Lock(uuid.New(), date)
		u1()
		u2 := svc.Lock(doctorID, date.AddDate(0, 0, 1))
		u2()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("independent lock keys blocked each other")
	}
}

func TestSlotLockSameKeyBlocks(t *testing.T) {
	svc := NewSlotLockService(newTestLogger())
	defer svc.Stop()

	doctorID := uuid.New()
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

	unlock := svc.Lock(doctorID, date)

	acquired := make(chan struct{})
	go func() {
		u := svc.Lock(doctorID, date)
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the lock while it was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("lock was not released")
	}
}

func TestSlotLockCleanupDropsStaleLocks(t *testing.T) {
	svc := NewSlotLockService(newTestLogger())
	defer svc.Stop()

	doctorID := uuid.New()
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	key := lockKey(doctorID, date)

	unlock := svc.Lock(doctorID, date)
	unlock()

	// Age the lock past the stale threshold
	value, ok := svc.locks.Load(key)
	if !ok {
		t.Fatal("lock entry missing after use")
	}
	value.(*slotMutex).lastUsed.Store(time.Now().Add(-lockStaleThreshold - time.Minute).Unix())

	svc.cleanupStaleLocks()

	if _, ok := svc.locks.Load(key); ok {
		t.Error("stale lock was not removed")
	}
}

func TestSlotLockCleanupSkipsHeldLocks(t *testing.T) {
	svc := NewSlotLockService(newTestLogger())
	defer svc.Stop()

	doctorID := uuid.New()
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	key := lockKey(doctorID, date)

	unlock := svc.Lock(doctorID, date)
	defer unlock()

	value, _ := svc.locks.Load(key)
	value.(*slotMutex).lastUsed.Store(time.Now().Add(-lockStaleThreshold - time.Minute).Unix())

	svc.cleanupStaleLocks()

	if _, ok := svc.locks.Load(key); !ok {
		t.Error("held lock was removed by cleanup")
	}
}

func TestSlotLockStopIsIdempotent(t *testing.T) {
	svc := NewSlotLockService(newTestLogger())
	svc.Stop()
	svc.Stop()
}

func TestSlotLockRetiredEntryNotReused(t *testing.T) {
	svc := NewSlotLockService(newTestLogger())
	defer svc.Stop()

	doctorID := uuid.New()
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	key := lockKey(doctorID, date)

	// A caller can load an entry just before cleanup retires it. Plant a
	// retired entry in the map to force Lock through that window.
	stale := &slotMutex{retired: true}
	svc.locks.Store(key, stale)

	unlock := svc.Lock(doctorID, date)

	value, ok := svc.locks.Load(key)
	if !ok {
		t.Fatal("no live entry after Lock")
	}
	if value.(*slotMutex) == stale {
		t.Fatal("retired mutex handed back to a caller")
	}

	// Exclusion holds on the replacement entry.
	acquired := make(chan struct{})
	go func() {
		u := svc.Lock(doctorID, date)
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second caller acquired while the lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never acquired after release")
	}
}
