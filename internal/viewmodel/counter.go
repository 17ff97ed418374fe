// Package viewmodel holds presentation state as plain observable values,
// with no UI framework attached.
package viewmodel

import (
	"fmt"

	"github.com/snapceipt/snapceipt/internal/observable"
)

// Counter is the click-counter view model. Count and Text are observable so
// a presentation layer can subscribe and re-render on change.
type Counter struct {
	Count *observable.Value[int]
	Text  *observable.Value[string]
}

// NewCounter returns a counter at zero.
func NewCounter() *Counter {
	c := &Counter{
		Count: observable.NewValue(0),
		Text:  observable.NewValue("Click me"),
	}
	c.Count.Subscribe(func(_, n int) {
		c.Text.Set(label(n))
	})
	return c
}

// Increment bumps the count by one.
func (c *Counter) Increment() {
	c.Count.Set(c.Count.Get() + 1)
}

func label(n int) string {
	if n == 1 {
		return "Clicked 1 time"
	}
	return fmt.Sprintf("Clicked %d times", n)
}
