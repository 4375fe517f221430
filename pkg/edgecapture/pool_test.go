package edgecapture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOCRPoolProcessesAllTasksThenDrains(t *testing.T) {
	var mu sync.Mutex
	var processed []string

	pool := newOCRPool(2, func(ctx context.Context, task ocrTask) {
		mu.Lock()
		processed = append(processed, task.screenName)
		mu.Unlock()
	})
	pool.start(context.Background(), 2)

	for i := 0; i < 5; i++ {
		pool.tasks <- ocrTask{screenName: "screen"}
	}
	pool.closeAndWait(time.Second)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, processed, 5)
}

func TestOCRPoolClosesPromptlyWithNoTasks(t *testing.T) {
	pool := newOCRPool(1, func(ctx context.Context, task ocrTask) {})
	pool.start(context.Background(), 1)

	start := time.Now()
	pool.closeAndWait(time.Second)
	assert.Less(t, time.Since(start), time.Second)
}
