package sentinel

import "sync"

const defaultTaskQueueSize = 1024

// workerPool runs event tasks on a fixed set of workers. Shutdown lets tasks
// that already started run to completion and discards everything still
// queued.
type workerPool struct {
	tasks chan func()
	quit  chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newWorkerPool(workers int, queueSize int) *workerPool {
	p := &workerPool{
		tasks: make(chan func(), queueSize),
		quit:  make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}

	return p
}

func (p *workerPool) work() {
	defer p.wg.Done()

	for {
		// quit wins over queued tasks
		select {
		case <-p.quit:
			return
		default:
		}

		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			task()
		}
	}
}

// Submit queues task for execution. It reports false when the pool is
// stopping or stopped and the task was dropped.
func (p *workerPool) Submit(task func()) bool {
	select {
	case <-p.quit:
		return false
	default:
	}

	select {
	case <-p.quit:
		return false
	case p.tasks <- task:
		return true
	}
}

// Shutdown stops all workers and blocks until tasks that were already
// running have finished.
func (p *workerPool) Shutdown() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
