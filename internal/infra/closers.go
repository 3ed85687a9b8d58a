package infra

import (
	"sync"

	"go.uber.org/multierr"
)

// Closers collects shutdown hooks and runs them in reverse registration order.
type Closers struct {
	mu  sync.Mutex
	fns []func() error
}

func (c *Closers) Add(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, fn)
}

// Close runs every hook once and returns all of their errors combined.
func (c *Closers) Close() error {
	c.mu.Lock()
	fns := c.fns
	c.fns = nil
	c.mu.Unlock()

	var err error
	for i := len(fns) - 1; i >= 0; i-- {
		err = multierr.Append(err, fns[i]())
	}
	return err
}
