// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	"image"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

func (p *Program) drawNotice(c *Canvas) {
	if p.notice != "" {
		c.TextCentered(SmallFace, p.width/2, p.height-TextHeight(SmallFace)-1, p.notice, colorNotice)
	}
}

func (p *Program) drawLogin(c *Canvas) {
	l := p.layout
	fieldH := TextHeight(SmallFace) + 5
	fieldY := p.height/2 - fieldH - 2

	c.TextCentered(LargeFace, p.width/2, fieldY-TextHeight(LargeFace)-4, "Login/Register", blackjackvm.ColorWhite)
	p.usernameField.Draw(c, p.width/2-usernameWidth/2, fieldY)
	l.login.Draw(c)
	l.register.Draw(c)
	p.drawNotice(c)
}

func (p *Program) clickLogin(x, y int) {
	switch {
	case p.layout.login.Hit(x, y):
		p.startLogin()
	case p.layout.register.Hit(x, y):
		p.register()
	}
}

// startLogin moves to TOTP entry for the typed username.
func (p *Program) startLogin() {
	name := p.usernameField.String()
	if name == "" {
		p.notice = "Enter a username"
		return
	}
	p.username = name
	p.notice = ""
	p.totpField.Clear()
}

func (p *Program) register() {
	name := p.usernameField.String()
	if name == "" {
		p.notice = "Enter a username"
		return
	}

	ctx, cancel := p.request()
	defer cancel()

	frame, err := p.auth.Register(ctx, name)
	if err != nil {
		p.logger.Warn("Registration failed", blackjackvm.Field{Key: "user", Value: name}, blackjackvm.Field{Key: "error", Value: err})
		p.notice = noticeFor(err)
		return
	}

	qr, err := blackjackvm.Decode(frame, qrScale)
	if err != nil {
		p.logger.Warn("Registration QR code unreadable", blackjackvm.Field{Key: "error", Value: err})
		p.notice = "Bad QR code from server"
		return
	}

	p.logger.Info("Registered", blackjackvm.Field{Key: "user", Value: name})
	p.username = name
	p.qr = qr
	p.notice = ""
}

func (p *Program) drawQR(c *Canvas) {
	qw, qh := p.qr.Width, p.qr.Height
	c.FillRect(image.Rect(p.width/2-qw/2-2, 0, p.width/2+qw-qw/2+2, p.height), blackjackvm.ColorWhite)

	y := max((p.layout.scanned.Rect.Min.Y-qh)/2, 0)
	c.Blit(p.qr, p.width/2-qw/2, y)
	p.layout.scanned.Draw(c)
}

func (p *Program) clickQR(x, y int) {
	if p.layout.scanned.Hit(x, y) {
		p.qr = nil
		p.totpField.Clear()
	}
}

func (p *Program) drawTotp(c *Canvas) {
	l := p.layout
	boxes := p.totpField.BoxesWidth()

	c.TextCentered(SmallFace, p.width/2, l.submitTotp.Rect.Min.Y-26, "Enter the TOTP for", blackjackvm.ColorWhite)
	c.TextCentered(SmallFace, p.width/2, l.submitTotp.Rect.Min.Y-19, p.username, blackjackvm.ColorWhite)
	p.totpField.DrawBoxes(c, p.width/2-boxes/2, l.submitTotp.Rect.Min.Y-11)

	submit := *l.submitTotp
	if p.totpField.Len() < totpDigits {
		submit.Background = colorDisabled
		submit.Disabled = true
	}
	submit.Draw(c)
	l.cancelTotp.Draw(c)
	p.drawNotice(c)
}

func (p *Program) clickTotp(x, y int) {
	switch {
	case p.layout.cancelTotp.Hit(x, y):
		p.username = ""
		p.notice = ""
		p.totpField.Clear()
	case p.layout.submitTotp.Hit(x, y):
		p.submitTotp()
	}
}

// submitTotp exchanges the typed code for credentials and loads the table.
func (p *Program) submitTotp() {
	if p.totpField.Len() < totpDigits {
		return
	}
	code := p.totpField.String()
	p.totpField.Clear()

	ctx, cancel := p.request()
	defer cancel()

	creds, err := p.auth.Login(ctx, p.username, code)
	if err != nil {
		p.logger.Warn("Login failed", blackjackvm.Field{Key: "user", Value: p.username}, blackjackvm.Field{Key: "error", Value: err})
		p.notice = noticeFor(err)
		if blackjackvm.IsError(err, blackjackvm.ErrRejected) {
			p.username = ""
		}
		return
	}

	p.logger.Info("Logged in", blackjackvm.Field{Key: "user", Value: creds.Username})
	p.creds = &creds
	p.notice = ""
	p.refresh()
}
