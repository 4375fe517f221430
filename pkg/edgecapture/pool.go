package edgecapture

import (
	"context"
	"sync"
	"time"
)

// ocrTask is one screen capture awaiting OCR.
type ocrTask struct {
	timestampISO  string
	timestampUnix float64
	screenName    string
	imagePath     string
}

// ocrPool bounds concurrent OCR execution to a fixed worker count via a
// channel-delivered task queue, replacing the original's one-thread-per-
// capture model per spec.md's redesign guidance.
type ocrPool struct {
	tasks  chan ocrTask
	handle func(ctx context.Context, task ocrTask)
	ctx    context.Context
	wg     sync.WaitGroup
}

func newOCRPool(maxConcurrent int, handle func(context.Context, ocrTask)) *ocrPool {
	return &ocrPool{tasks: make(chan ocrTask, maxConcurrent*4), handle: handle}
}

// start launches workers worker goroutines, each pulling from the shared
// task channel until it is closed. ctx is threaded through to handle so a
// cancelled capture loop can interrupt an in-flight OCR call.
func (p *ocrPool) start(ctx context.Context, workers int) {
	p.ctx = ctx
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *ocrPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.handle(p.ctx, task)
	}
}

// closeAndWait stops accepting new tasks and waits for every queued task
// to drain, up to grace. Tasks still running past grace are abandoned;
// their screenshot is already saved, only the OCR/upsert step is lost.
func (p *ocrPool) closeAndWait(grace time.Duration) {
	close(p.tasks)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(grace):
	}
}
