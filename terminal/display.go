// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

// Package terminal implements blackjackvm.Display on a text terminal. Each
// character cell shows two pixel rows using an upper half block, so a
// 160x100 frame needs a 160x50 terminal at scale 1.
package terminal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

const (
	halfBlock   = '▀'
	eventBuffer = 64
)

// Display renders frames on a tcell screen and turns terminal events into
// input commands.
type Display struct {
	screen tcell.Screen
	scale  int
	logger blackjackvm.Logger

	events chan tcell.Event
	quit   chan struct{}
	closed atomic.Bool
	once   sync.Once

	frame   *blackjackvm.PixelBuffer
	pressed bool
	lastX   int
	lastY   int
}

// Option configures a Display.
type Option func(*Display)

// WithScale draws every frame pixel as scale x scale terminal pixels.
func WithScale(scale int) Option {
	return func(d *Display) {
		d.scale = scale
	}
}

// WithLogger sets the display logger.
func WithLogger(logger blackjackvm.Logger) Option {
	return func(d *Display) {
		d.logger = logger
	}
}

// Open initialises the controlling terminal and returns a Display on it.
func Open(options ...Option) (*Display, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, blackjackvm.NewError("terminal.Open", blackjackvm.ErrConfiguration, "no usable terminal", err)
	}
	return New(screen, options...)
}

// New initialises screen and starts reading its events.
func New(screen tcell.Screen, options ...Option) (*Display, error) {
	d := &Display{
		screen: screen,
		scale:  blackjackvm.DefaultDisplayScale,
		logger: &blackjackvm.NoOpLogger{},
		events: make(chan tcell.Event, eventBuffer),
		quit:   make(chan struct{}),
	}
	for _, option := range options {
		option(d)
	}
	if d.scale < 1 || d.scale > blackjackvm.MaxScaleFactor {
		return nil, blackjackvm.NewError("terminal.New", blackjackvm.ErrConfiguration,
			fmt.Sprintf("scale %d outside 1..%d", d.scale, blackjackvm.MaxScaleFactor), nil)
	}

	if err := screen.Init(); err != nil {
		return nil, blackjackvm.NewError("terminal.New", blackjackvm.ErrConfiguration, "failed to initialise terminal", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()

	go d.poll()
	return d, nil
}

func (d *Display) poll() {
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			close(d.events)
			return
		}
		select {
		case d.events <- ev:
		case <-d.quit:
			return
		}
	}
}

// Close restores the terminal. It is safe to call more than once.
func (d *Display) Close() {
	d.once.Do(func() {
		d.closed.Store(true)
		close(d.quit)
		d.screen.Fini()
	})
}

// PollInput implements blackjackvm.Display. Escape and Ctrl-C close the
// display.
func (d *Display) PollInput() ([]blackjackvm.InputCommand, error) {
	if d.closed.Load() {
		return nil, blackjackvm.ErrDisplayClosed
	}

	var cmds []blackjackvm.InputCommand
	for {
		select {
		case ev, ok := <-d.events:
			if !ok {
				d.closed.Store(true)
				return cmds, blackjackvm.ErrDisplayClosed
			}
			cmd, quit := d.translate(ev)
			if quit {
				d.closed.Store(true)
				return cmds, blackjackvm.ErrDisplayClosed
			}
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		default:
			return cmds, nil
		}
	}
}

func (d *Display) translate(ev tcell.Event) (blackjackvm.InputCommand, bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuitKey(ev) {
			return nil, true
		}
		cmd, ok := KeyCommand(ev)
		if !ok {
			d.logger.Debug("Unmapped terminal key", blackjackvm.Field{Key: "key", Value: ev.Name()})
			return nil, false
		}
		return cmd, false

	case *tcell.EventMouse:
		return d.mouse(ev), false

	case *tcell.EventResize:
		d.screen.Sync()
		if d.frame != nil {
			d.draw(d.frame)
		}
	}
	return nil, false
}

// mouse turns a button 1 press into a click and motion while it is held
// into drags. Coordinates are in terminal pixels, one column wide and half
// a row high, and are not divided by the display scale.
func (d *Display) mouse(ev *tcell.EventMouse) blackjackvm.InputCommand {
	cx, cy := ev.Position()
	px, py := cx, cy*2

	if ev.Buttons()&tcell.Button1 == 0 {
		d.pressed = false
		return nil
	}

	if !d.pressed {
		d.pressed = true
		d.lastX, d.lastY = px, py
		return blackjackvm.ClickCommand{X: px, Y: py}
	}

	dx, dy := px-d.lastX, py-d.lastY
	if dx == 0 && dy == 0 {
		return nil
	}
	d.lastX, d.lastY = px, py
	return blackjackvm.DragCommand{DX: dx, DY: dy}
}

// Show implements blackjackvm.Display.
func (d *Display) Show(pb *blackjackvm.PixelBuffer) error {
	if d.closed.Load() {
		return blackjackvm.ErrDisplayClosed
	}
	d.frame = pb
	d.draw(pb)
	return nil
}

func (d *Display) draw(pb *blackjackvm.PixelBuffer) {
	k := d.scale
	w, h := pb.Width*k, pb.Height*k

	for cy := 0; cy*2 < h; cy++ {
		for cx := 0; cx < w; cx++ {
			top := pb.At(cx/k, cy*2/k)
			bottom := blackjackvm.ColorBlack
			if cy*2+1 < h {
				bottom = pb.At(cx/k, (cy*2+1)/k)
			}
			style := tcell.StyleDefault.Foreground(tcellColor(top)).Background(tcellColor(bottom))
			d.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	d.screen.Show()
}

// Disconnected implements blackjackvm.Display. It prints the reason on the
// row below the last frame.
func (d *Display) Disconnected(err error) {
	if d.closed.Load() {
		return
	}
	row := 0
	if d.frame != nil {
		row = (d.frame.Height*d.scale + 1) / 2
	}
	if _, h := d.screen.Size(); row >= h {
		row = h - 1
	}

	msg := "Disconnected. Press Esc to quit."
	if err != nil {
		msg = fmt.Sprintf("Disconnected: %v. Press Esc to quit.", err)
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorBlack)
	for i, r := range msg {
		d.screen.SetContent(i, row, r, nil, style)
	}
	d.screen.Show()
}

// Wait blocks until the user presses a quit key, the terminal goes away or
// ctx is done.
func (d *Display) Wait(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-d.events:
			if !ok {
				return
			}
			if key, isKey := ev.(*tcell.EventKey); isKey && isQuitKey(key) {
				return
			}
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
}

func tcellColor(c blackjackvm.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
