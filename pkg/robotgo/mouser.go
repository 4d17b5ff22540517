package astirobotgo

import (
	"github.com/asticode/go-astilog"
	"github.com/go-vgo/robotgo"
)

// Scroll directions
const (
	scrollDown = "down"
	scrollUp   = "up"
)

// Mouser represents an object capable of interacting with a mouse
type Mouser interface {
	ClickLeft(double bool)
	Scroll(x int, direction string)
}

type mouser struct{}

// NewMouser creates a new mouser
func NewMouser() Mouser {
	return mouser{}
}

// ClickLeft clicks the left button of the mouse at its current position
func (m mouser) ClickLeft(double bool) {
	astilog.Debugf("astirobotgo: clicking left, double: %v", double)
	robotgo.MouseClick("left", double)
}

// Scroll scrolls the mouse
func (m mouser) Scroll(x int, direction string) {
	astilog.Debugf("astirobotgo: scrolling %d %s", x, direction)
	robotgo.ScrollMouse(x, direction)
}
