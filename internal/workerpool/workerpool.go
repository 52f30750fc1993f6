// Package workerpool runs a fixed number of goroutines draining a task
// channel under a shared tomb, the same supervision shape the teacher
// repo used for its matching workers, generalized here to drive NATS
// ingress concurrency instead.
package workerpool

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 256

// TaskFunc is one unit of ingress work: decode-and-submit an order, or
// similar. The tomb is passed through so long-running work can observe
// shutdown.
type TaskFunc func(t *tomb.Tomb, task any) error

// Pool is a fixed-size pool of workers draining a shared task channel.
type Pool struct {
	n     int
	tasks chan any
	work  TaskFunc
}

func New(size int, work TaskFunc) *Pool {
	return &Pool{
		n:     size,
		tasks: make(chan any, taskChanSize),
		work:  work,
	}
}

// Submit enqueues a task. Blocks if the channel is full, applying
// backpressure to the caller rather than growing unboundedly.
func (p *Pool) Submit(task any) {
	p.tasks <- task
}

// Run starts n workers under t and blocks until the tomb is dying.
// Each worker loops pulling tasks until told to stop.
func (p *Pool) Run(t *tomb.Tomb) {
	log.Info().Int("workers", p.n).Msg("starting worker pool")
	for i := 0; i < p.n; i++ {
		t.Go(func() error {
			return p.loop(t)
		})
	}
	<-t.Dying()
}

func (p *Pool) loop(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := p.work(t, task); err != nil {
				log.Error().Err(err).Msg("worker task failed")
			}
		}
	}
}
