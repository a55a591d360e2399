package view

import (
	"sync"
	"time"

	"github.com/azdash-dev/azdash/pkg/cache"
)

const colorTTL = 24 * time.Hour

// palette cycled through as new authors appear.
var palette = []string{
	"#e57373", "#64b5f6", "#81c784", "#ffb74d",
	"#ba68c8", "#4db6ac", "#f06292", "#a1887f",
	"#90a4ae", "#dce775",
}

// ColorAssigner hands out a stable avatar color per author display name for
// the lifetime of the cache entry.
type ColorAssigner struct {
	colors *cache.Cache
	mu     sync.Mutex
	next   int
}

// NewColorAssigner creates an assigner with an empty color cache.
func NewColorAssigner() *ColorAssigner {
	return &ColorAssigner{colors: cache.New(colorTTL)}
}

// Color returns the author's assigned color, assigning the next palette entry
// on first sight.
func (a *ColorAssigner) Color(author string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if cached, ok := a.colors.Get(author); ok {
		if color, ok := cached.(string); ok {
			return color
		}
	}
	color := palette[a.next%len(palette)]
	a.next++
	a.colors.Set(author, color)
	return color
}
