package core

import "time"

type Clock struct {
	StartTime time.Time
	Elapsed   float64
}

func NewClock() *Clock {
	return &Clock{}
}

// Start resets the clock's start time. Does not reset elapsed.
func (c *Clock) Start() {
	c.StartTime = time.Now()
}

// Update sets elapsed to the time since Start. Call once per frame.
func (c *Clock) Update() {
	if !c.StartTime.IsZero() {
		c.Elapsed = time.Since(c.StartTime).Seconds()
	}
}

func (c *Clock) Stop() {
	c.StartTime = time.Time{}
}
