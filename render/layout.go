// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	blackjackvm "github.com/AaronLi/BlackjackVM"
)

var (
	colorLogin    = blackjackvm.RGB{R: 50, G: 120, B: 200}
	colorRegister = blackjackvm.RGB{R: 120, G: 90, B: 200}
	colorConfirm  = blackjackvm.RGB{R: 40, G: 160, B: 40}
	colorCancel   = blackjackvm.RGB{R: 90, G: 90, B: 90}
	colorExit     = blackjackvm.RGB{R: 200, G: 40, B: 40}
	colorHit      = blackjackvm.RGB{R: 40, G: 160, B: 40}
	colorDouble   = blackjackvm.RGB{R: 40, G: 80, B: 200}
	colorStand    = blackjackvm.RGB{R: 200, G: 40, B: 40}
	colorSplit    = blackjackvm.RGB{R: 230, G: 140, B: 20}
	colorSubmit   = blackjackvm.RGB{R: 220, G: 180, B: 40}
	colorDisabled = blackjackvm.RGB{R: 120, G: 120, B: 120}
	colorChipAdd  = blackjackvm.RGB{R: 230, G: 200, B: 60}
	colorChipSub  = blackjackvm.RGB{R: 190, G: 70, B: 60}
	colorWon      = blackjackvm.RGB{R: 50, G: 210, B: 235}
	colorTie      = blackjackvm.RGB{R: 150, G: 150, B: 150}
	colorLoss     = blackjackvm.RGB{R: 150, G: 100, B: 100}
	colorNotice   = blackjackvm.RGB{R: 255, G: 80, B: 80}
)

const (
	chipSize    = 16
	chipSpacing = 18
	maxChips    = 4
)

// moveButton binds a move name to the button that performs it.
type moveButton struct {
	move   string
	button *Button
}

// layout holds every fixed widget position for one canvas size.
type layout struct {
	width, height int

	login, register *Button
	scanned         *Button
	submitTotp      *Button
	cancelTotp      *Button

	exit      *Button
	submitBet *Button
	ack       *Button
	yes, no   *Button
	moves     []moveButton
}

func newLayout(w, h int) *layout {
	return &layout{
		width:  w,
		height: h,

		login:      NewButton(w/2-42, h/2+5, 40, 13, "Login", colorLogin),
		register:   NewButton(w/2+2, h/2+5, 40, 13, "Register", colorRegister),
		scanned:    NewButton(w/2-30, h-11, 60, 10, "Scanned it!", colorConfirm),
		submitTotp: NewButton(w/2-20, h-40, 40, 13, "Login", colorLogin),
		cancelTotp: NewButton(2, 2, 9, 12, "<", colorCancel),

		exit:      NewButton(w-17, 1, 16, 12, "X", colorExit),
		submitBet: NewButton(w/2-25, h-12, 50, 11, "Submit Bet", colorSubmit),
		ack:       NewButton(w/2-20, h-13, 40, 12, "Ok", colorConfirm),
		yes:       NewButton(w/2-42, h/2-6, 40, 12, "Yes", colorConfirm),
		no:        NewButton(w/2+2, h/2-6, 40, 12, "No", colorStand),
		moves: []moveButton{
			{blackjackvm.MoveHit, NewButton(w/2-63, h-11, 30, 10, "Hit", colorHit)},
			{blackjackvm.MoveDouble, NewButton(w/2-31, h-11, 30, 10, "Double", colorDouble)},
			{blackjackvm.MoveStand, NewButton(w/2+1, h-11, 30, 10, "Stand", colorStand)},
			{blackjackvm.MoveSplit, NewButton(w/2+33, h-11, 30, 10, "Split", colorSplit)},
		},
	}
}

// betChip is a chip bound to the bet token it sends.
type betChip struct {
	*Chip
	token string
}

// chips lays out the bet adjustments offered in opts. Increases run right
// of centre and decreases left of it, at most four each.
func (l *layout) chips(opts blackjackvm.BetOptions) []betChip {
	y := l.height - 36
	var out []betChip
	for i, opt := range opts.Increase {
		if i == maxChips {
			break
		}
		x := l.width/2 + 2 + i*chipSpacing
		out = append(out, betChip{NewChip(x, y, chipSize, "+"+opt.Label, colorChipAdd), opt.Token})
	}
	for i, opt := range opts.Decrease {
		if i == maxChips {
			break
		}
		x := l.width/2 - chipSpacing - i*chipSpacing
		out = append(out, betChip{NewChip(x, y, chipSize, opt.Label, colorChipSub), opt.Token})
	}
	for _, ch := range out {
		ch.Foreground = blackjackvm.ColorBlack
	}
	return out
}
