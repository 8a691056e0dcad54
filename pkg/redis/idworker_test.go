package redis

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestIDWorker_SequentialStrictlyIncreasing(t *testing.T) {
	client := getTestClient(t)
	ctx := context.Background()
	day := time.Now().UTC().Format("2006:01:02")
	client.Del(ctx, IncrKey("test-seq", day))

	w := NewIDWorker(client)
	var prev uint64
	for i := 0; i < 100; i++ {
		id, err := w.NextID(ctx, "test-seq")
		if err != nil {
			t.Fatalf("NextID: %v", err)
		}
		if id <= prev {
			t.Fatalf("id %d not greater than previous %d", id, prev)
		}
		prev = id
	}
}

func TestIDWorker_ConcurrentDistinct(t *testing.T) {
	client := getTestClient(t)
	ctx := context.Background()
	day := time.Now().UTC().Format("2006:01:02")
	client.Del(ctx, IncrKey("test-conc", day))

	const (
		workers   = 50
		perWorker = 200
	)
	w := NewIDWorker(client)

	var mu sync.Mutex
	seen := make(map[uint64]struct{}, workers*perWorker)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id, err := w.NextID(ctx, "test-conc")
				if err != nil {
					t.Errorf("NextID: %v", err)
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("expected %d distinct ids, got %d", workers*perWorker, len(seen))
	}
}

func TestIDWorker_SequencePackedInLowBits(t *testing.T) {
	client := getTestClient(t)
	ctx := context.Background()
	day := time.Now().UTC().Format("2006:01:02")
	client.Del(ctx, IncrKey("test-bits", day))

	w := NewIDWorker(client)
	id, err := w.NextID(ctx, "test-bits")
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}

	if id&0xFFFFFFFF != 1 {
		t.Errorf("expected first sequence value 1 in low 32 bits, got %d", id&0xFFFFFFFF)
	}
	seconds := id >> 32
	now := uint64(time.Now().UTC().Unix() - beginTimestamp)
	if seconds > now || now-seconds > 5 {
		t.Errorf("timestamp part %d too far from now %d", seconds, now)
	}
}
