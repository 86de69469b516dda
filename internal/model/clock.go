package model

import (
	"sync"
	"time"

	"github.com/couchbaselabs/logg"
)

// Clock accumulates the time the AI spends thinking.
type Clock struct {
	mu          sync.Mutex
	total       time.Duration
	last        time.Duration // Length of the most recent run
	lastStarted time.Time
	isRunning   bool
}

func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = time.Now()
		c.isRunning = true
	}
}

// Stop ends the current run and returns its length.
func (c *Clock) Stop() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.last = time.Since(c.lastStarted)
		c.total += c.last
		c.isRunning = false
		logg.LogTo("AI", "clock stopped after %v, total %v", c.last, c.total)
	}
	return c.last
}

func (c *Clock) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.total + time.Since(c.lastStarted)
	}
	return c.total
}

func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total, c.last, c.isRunning = 0, 0, false
}
