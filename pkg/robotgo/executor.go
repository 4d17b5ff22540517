package astirobotgo

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/asticode/go-astigesture"
	"github.com/asticode/go-astilog"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
)

// Executor defaults
const (
	DefaultBrowserURL   = "https://www.google.com"
	DefaultScrollAmount = 3
)

// Options represents executor options
type Options struct {
	BrowserURL         string `toml:"browser_url"`
	ScreenshotsDirPath string `toml:"screenshots_dir_path"`
	ScrollAmount       int    `toml:"scroll_amount"`
}

// Executor performs host level actions with robotgo
type Executor struct {
	k     Keyboarder
	m     Mouser
	o     Options
	open  func(url string) error
	s     Screenshoter
	start func(name string, args ...string) error
}

// New creates a new executor
func New(o Options) *Executor {
	// Defaults
	if o.BrowserURL == "" {
		o.BrowserURL = DefaultBrowserURL
	}
	if o.ScrollAmount <= 0 {
		o.ScrollAmount = DefaultScrollAmount
	}
	return &Executor{
		k:     NewKeyboarder(),
		m:     NewMouser(),
		o:     o,
		open:  browser.OpenURL,
		s:     NewScreenshoter(o.ScreenshotsDirPath),
		start: startCommand,
	}
}

// Actions returns the executor's action table
func (e *Executor) Actions() astigesture.Actions {
	return astigesture.Actions{
		astigesture.ActionAltTab:           e.press(keyAlt, keyTab),
		astigesture.ActionCloseApplication: e.press(keyAlt, keyF4),
		astigesture.ActionCloseBrowser:     e.press(keyAlt, keyF4),
		astigesture.ActionConfirm:          e.press(keyEnter),
		astigesture.ActionMaximizeWindow:   e.press(keyCmd, keyUp),
		astigesture.ActionMinimizeWindow:   e.press(keyCmd, keyDown),
		astigesture.ActionMouseClick:       e.click,
		astigesture.ActionMute:             e.press(keyMute),
		astigesture.ActionOpenBrowser:      e.openBrowser,
		astigesture.ActionOpenCalculator:   e.app(calculatorCommand()),
		astigesture.ActionOpenNotepad:      e.app(notepadCommand()),
		astigesture.ActionScreenshot:       e.screenshot,
		astigesture.ActionScrollDown:       e.scroll(scrollDown),
		astigesture.ActionScrollUp:         e.scroll(scrollUp),
		astigesture.ActionStop:             func(context.Context) error { return nil },
		astigesture.ActionUnmute:           e.press(keyMute),
		astigesture.ActionVolumeDown:       e.press(keyVolumeDown),
		astigesture.ActionVolumeUp:         e.press(keyVolumeUp),
		astigesture.ActionZoomIn:           e.press(keyCtrl, keyPlus),
		astigesture.ActionZoomOut:          e.press(keyCtrl, keyMinus),
	}
}

func (e *Executor) press(keys ...string) astigesture.ActionFunc {
	return func(context.Context) error { return e.k.Press(keys...) }
}

func (e *Executor) click(context.Context) error {
	e.m.ClickLeft(false)
	return nil
}

func (e *Executor) scroll(direction string) astigesture.ActionFunc {
	return func(context.Context) error {
		e.m.Scroll(e.o.ScrollAmount, direction)
		return nil
	}
}

func (e *Executor) openBrowser(context.Context) (err error) {
	astilog.Debugf("astirobotgo: opening %s", e.o.BrowserURL)
	if err = e.open(e.o.BrowserURL); err != nil {
		err = errors.Wrapf(err, "astirobotgo: opening %s failed", e.o.BrowserURL)
		return
	}
	return
}

func (e *Executor) screenshot(context.Context) (err error) {
	var p string
	if p, err = e.s.Screenshot(); err != nil {
		err = errors.Wrap(err, "astirobotgo: taking screenshot failed")
		return
	}
	astilog.Infof("astirobotgo: screenshot saved to %s", p)
	return
}

func (e *Executor) app(name string, args []string) astigesture.ActionFunc {
	return func(context.Context) (err error) {
		if err = e.start(name, args...); err != nil {
			err = errors.Wrapf(err, "astirobotgo: starting %s failed", name)
			return
		}
		return
	}
}

func calculatorCommand() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{"-a", "Calculator"}
	case "windows":
		return "calc", nil
	default:
		return "gnome-calculator", nil
	}
}

func notepadCommand() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{"-a", "TextEdit"}
	case "windows":
		return "notepad", nil
	default:
		return "gedit", nil
	}
}

// startCommand starts a command without waiting for it to exit
func startCommand(name string, args ...string) (err error) {
	// Start
	cmd := exec.Command(name, args...)
	astilog.Debugf("astirobotgo: starting %s", strings.Join(cmd.Args, " "))
	if err = cmd.Start(); err != nil {
		return
	}

	// Release resources once the application exits
	go func() {
		if err := cmd.Wait(); err != nil {
			astilog.Debug(errors.Wrapf(err, "astirobotgo: waiting for %s failed", name))
		}
	}()
	return
}
