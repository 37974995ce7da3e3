// Package render draws a running system to a terminal using tcell, as a
// minimal preview surface for the core -- not a debugger, just enough to
// watch a ROM run and drive it from the keyboard.
package render

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"dmgcore/gbcore"
	"dmgcore/gbcore/joypad"
	"dmgcore/gbcore/timing"
)

const (
	gameWidth  = 160
	gameHeight = 144
	minWidth   = gameWidth + 2
	minHeight  = gameHeight/2 + 2

	// keyTimeout is how long a button stays "held" after its last keypress
	// event; terminals never report a key-up, so a button is released once
	// no matching keypress has arrived for this long. Slightly longer than a
	// typical OS key-repeat interval so holding a key down reads as held
	// rather than flickering between press and release.
	keyTimeout = 100 * time.Millisecond
)

// shadeChars maps a grayscale shade index (0=black .. 3=white, the order
// FrameBuffer.ToGrayscale produces) to the block character drawn for it --
// darker shades get denser glyphs so the image reads correctly on a
// light-background-unaware terminal.
var shadeChars = []rune{'█', '▒', '░', ' '}

// Terminal drives a System and renders its frame buffer to a tcell screen
// once per host frame tick, translating a handful of keys to joypad input.
type Terminal struct {
	screen tcell.Screen
	sys    *gbcore.System

	lastSeen map[joypad.Button]time.Time
	held     map[joypad.Button]bool
}

// NewTerminal opens a tcell screen bound to sys.
func NewTerminal(sys *gbcore.System) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("render: failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("render: failed to init terminal: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	return &Terminal{
		screen:   screen,
		sys:      sys,
		lastSeen: make(map[joypad.Button]time.Time),
		held:     make(map[joypad.Button]bool),
	}, nil
}

// Run drives the system and redraws the screen at 60 Hz until the user
// quits (Escape/Ctrl-C) or the process receives a termination signal.
func (t *Terminal) Run() error {
	defer t.screen.Fini()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			events <- t.screen.PollEvent()
		}
	}()

	frames := make(chan struct{}, 1)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		limiter := timing.NewAdaptiveLimiter()
		for {
			select {
			case <-stop:
				return
			default:
			}
			limiter.WaitForNextFrame()
			frames <- struct{}{}
		}
	}()

	for {
		select {
		case <-sig:
			return nil
		case ev := <-events:
			if quit := t.handleEvent(ev); quit {
				return nil
			}
		case <-frames:
			t.expireKeys()
			t.sys.Update(timing.FrameDuration())
			if t.sys.FrameReady() {
				t.draw()
			}
		}
	}
}

func (t *Terminal) handleEvent(ev tcell.Event) (quit bool) {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		if _, ok := ev.(*tcell.EventResize); ok {
			t.screen.Sync()
		}
		return false
	}

	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyEnter:
		t.markPressed(joypad.Start)
	case tcell.KeyRight:
		t.markPressed(joypad.Right)
	case tcell.KeyLeft:
		t.markPressed(joypad.Left)
	case tcell.KeyUp:
		t.markPressed(joypad.Up)
	case tcell.KeyDown:
		t.markPressed(joypad.Down)
	case tcell.KeyRune:
		switch key.Rune() {
		case 'a':
			t.markPressed(joypad.A)
		case 's':
			t.markPressed(joypad.B)
		case 'q':
			t.markPressed(joypad.Select)
		}
	}
	return false
}

// markPressed records that button was just seen in a keypress event,
// pressing it on the system if it wasn't already held.
func (t *Terminal) markPressed(button joypad.Button) {
	t.lastSeen[button] = time.Now()
	if !t.held[button] {
		t.held[button] = true
		t.sys.Press(button)
	}
}

// expireKeys releases any button whose last keypress event is older than
// keyTimeout -- the terminal's stand-in for a missing key-up event.
func (t *Terminal) expireKeys() {
	now := time.Now()
	for button, held := range t.held {
		if !held {
			continue
		}
		if now.Sub(t.lastSeen[button]) >= keyTimeout {
			t.held[button] = false
			t.sys.Release(button)
		}
	}
}

func (t *Terminal) draw() {
	termWidth, termHeight := t.screen.Size()
	if termWidth < minWidth || termHeight < minHeight {
		t.screen.Clear()
		msg := fmt.Sprintf("terminal too small, need at least %dx%d", minWidth, minHeight)
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		for i, ch := range msg {
			t.screen.SetContent(i, termHeight/2, ch, nil, style)
		}
		t.screen.Show()
		return
	}

	shades := t.sys.CurrentFrame().ToGrayscale()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	for y := 0; y < gameHeight; y++ {
		for x := 0; x < gameWidth; x++ {
			shade := shades[y*gameWidth+x]
			t.screen.SetContent(x, y, shadeChars[shade], nil, style)
		}
	}
	t.screen.Show()
}
