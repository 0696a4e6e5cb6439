package idgen

import (
	"sync"
	"testing"
)

func TestGenerate_ConcurrentUniqueness(t *testing.T) {
	const (
		workers   = 8
		perWorker = 2000
	)

	g := &Snowflake{workerID: 1}

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for j := 0; j < perWorker; j++ {
				ids = append(ids, g.Generate())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				if seen[id] {
					t.Errorf("ID 重复: %d", id)
					return
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Fatalf("期望 %d 个不同ID，实际 %d", workers*perWorker, len(seen))
	}
}

func TestGenerateLockToken_Distinct(t *testing.T) {
	// 同一笔交易的并发重试必须拿到不同的锁令牌
	a := GenerateLockToken()
	b := GenerateLockToken()
	if a == b {
		t.Fatalf("锁令牌重复: %s", a)
	}
	if a == "" || b == "" {
		t.Fatalf("锁令牌不能为空")
	}
}
