package edgecapture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Screen identifies one physical display available for capture.
type Screen struct {
	Name  string
	Index int
}

// ScreenCapturer enumerates displays and grabs a bitmap from one. Tests
// substitute a fake; production uses displayCapturer.
type ScreenCapturer interface {
	Detect() ([]Screen, error)
	Capture(screen Screen) (image.Image, error)
}

// displayCapturer captures real displays via the OS's native screen APIs,
// wrapped by github.com/kbinani/screenshot — no pack example captures a
// screen, so this is a new, out-of-pack dependency.
type displayCapturer struct{}

// NewDisplayCapturer builds the production ScreenCapturer.
func NewDisplayCapturer() ScreenCapturer { return displayCapturer{} }

func (displayCapturer) Detect() ([]Screen, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, nil
	}
	screens := make([]Screen, n)
	for i := 0; i < n; i++ {
		screens[i] = Screen{Name: fmt.Sprintf("screen_%d", i), Index: i}
	}
	return screens, nil
}

func (displayCapturer) Capture(s Screen) (image.Image, error) {
	bounds := screenshot.GetDisplayBounds(s.Index)
	return screenshot.CaptureRect(bounds)
}
