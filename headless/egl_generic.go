//go:build !linux

package headless

import (
	"fmt"

	"github.com/richinsley/gocombiner/graphics"
)

// Headless is unavailable off linux; NewHeadless always fails.
type Headless struct {
	graphics.Context
}

func NewHeadless(width, height int) (*Headless, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}
