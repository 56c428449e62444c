// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	"fmt"
	"image"
	"strconv"

	blackjackvm "github.com/AaronLi/BlackjackVM"
)

const handOffsetY = 23

// refresh polls the engine for the current snapshot. A rejected poll means
// the credentials are no longer accepted.
func (p *Program) refresh() {
	ctx, cancel := p.request()
	defer cancel()

	raw, err := p.engine.CurrentSnapshot(ctx, *p.creds)
	if err != nil {
		p.logger.Warn("Snapshot poll failed", blackjackvm.Field{Key: "error", Value: err})
		return
	}
	if _, err := p.accept(raw); blackjackvm.IsError(err, blackjackvm.ErrRejected) {
		p.logout("poll rejected")
		p.notice = noticeFor(err)
	}
}

// move sends one move token and returns the resulting snapshot, or nil
// when the engine could not be reached or its answer was discarded.
func (p *Program) move(token string) *blackjackvm.Snapshot {
	ctx, cancel := p.request()
	defer cancel()

	p.logger.Debug("Sending move", blackjackvm.Field{Key: "move", Value: token})
	raw, err := p.engine.ApplyMove(ctx, *p.creds, token)
	if err != nil {
		p.logger.Warn("Move failed", blackjackvm.Field{Key: "move", Value: token}, blackjackvm.Field{Key: "error", Value: err})
		return nil
	}
	s, _ := p.accept(raw)
	return s
}

// accept stores raw as the current snapshot. A snapshot that fails to
// parse is logged and leaves the previous one in place.
func (p *Program) accept(raw string) (*blackjackvm.Snapshot, error) {
	s, err := p.snapshot.Update(raw)
	switch {
	case err == nil:
		p.logger.Debug("Snapshot accepted", blackjackvm.Field{Key: "phase", Value: s.Phase()})
	case blackjackvm.IsError(err, blackjackvm.ErrRejected):
		p.logger.Info("Engine rejected request", blackjackvm.Field{Key: "error", Value: err})
	default:
		p.logger.Warn("Discarding invalid snapshot", blackjackvm.Field{Key: "error", Value: err})
	}
	return s, err
}

func (p *Program) drawTable(c *Canvas) {
	c.Fill(blackjackvm.ColorFelt)

	s := p.snapshot.Current()
	if s == nil {
		c.TextCentered(SmallFace, p.width/2, p.height/2-3, "Loading...", blackjackvm.ColorWhite)
		p.layout.exit.Draw(c)
		return
	}

	switch s.Phase() {
	case blackjackvm.PhaseBetting:
		p.drawBetting(c, s)
	case blackjackvm.PhasePlayerMove:
		p.drawHands(c, s)
		p.drawTitle(c, "Your Move")
		p.drawMoves(c, s.LegalMoves())
	case blackjackvm.PhaseDealerMove:
		p.drawHands(c, s)
		p.drawTitle(c, "Dealer's Move")
		p.layout.ack.Draw(c)
	case blackjackvm.PhasePayout:
		p.drawPayout(c, s.Payout())
	case blackjackvm.PhaseContinuePlaying:
		p.drawHands(c, s)
		p.drawPlayAgain(c)
	case blackjackvm.PhaseGameOver:
		c.TextCentered(LargeFace, p.width/2, p.height/2-TextHeight(LargeFace)/2, "Game Over", blackjackvm.ColorWhite)
	default:
		p.drawTitle(c, string(s.Phase()))
	}

	p.drawBets(c, s.Bets())
	p.layout.exit.Draw(c)
}

func (p *Program) drawTitle(c *Canvas, title string) {
	c.TextCentered(SmallFace, p.width/2, 2, title, blackjackvm.ColorWhite)
}

func (p *Program) drawBets(c *Canvas, bets []int) {
	if len(bets) == 0 {
		return
	}
	lh := TextHeight(SmallFace) + 1
	c.Text(SmallFace, 2, 2, "Bets:", blackjackvm.ColorWhite)
	for i, bet := range bets {
		c.Text(SmallFace, 2, 2+lh*(i+1), fmt.Sprintf("Hand %d: %d", i+1, bet), blackjackvm.ColorWhite)
	}
}

// drawHands paints the dealer above centre and the active player hands
// below it, outlining the hand the legal moves refer to.
func (p *Program) drawHands(c *Canvas, s *blackjackvm.Snapshot) {
	cy := p.height / 2
	DrawHand(c, p.width/2, cy-handOffsetY, s.DealerHand().Cards)

	active, hands := s.PlayerHands()
	if active == 0 {
		return
	}
	moves := s.LegalMoves()
	spacing := p.width / (active + 1)

	slot := 0
	for i, h := range hands {
		if !h.State.Has(blackjackvm.HandActive) {
			continue
		}
		slot++
		r := DrawHand(c, spacing*slot, cy+handOffsetY, h.Cards)
		if s.Phase() == blackjackvm.PhasePlayerMove && i == moves.ActiveHand && !h.State.Has(blackjackvm.HandStanding) {
			c.StrokeRect(r.Inset(-2), activeTrim)
		}
	}
}

func (p *Program) drawMoves(c *Canvas, moves blackjackvm.MoveSet) {
	for _, mb := range p.layout.moves {
		b := *mb.button
		b.Disabled = !moves.Enabled(mb.move)
		b.Draw(c)
	}
}

func (p *Program) drawBetting(c *Canvas, s *blackjackvm.Snapshot) {
	opts := s.BetOptions()
	p.drawTitle(c, "Place a bet!")

	amount := strconv.Itoa(s.BetAmount())
	c.TextCentered(LargeFace, p.width/2, 10, amount, blackjackvm.ColorWhite)

	if opts.NoFunds {
		c.TextCentered(SmallFace, p.width/2, p.height/2, "Not enough funds", colorNotice)
		return
	}

	for _, ch := range p.layout.chips(opts) {
		ch.Draw(c)
	}

	submit := *p.layout.submitBet
	if !opts.CanSubmit {
		submit.Background = colorDisabled
		submit.Disabled = true
	}
	submit.Draw(c)
}

func (p *Program) drawPayout(c *Canvas, payout blackjackvm.Payout) {
	var bg blackjackvm.RGB
	var headline, detail string
	switch payout.Result {
	case blackjackvm.PayoutWon:
		bg, headline, detail = colorWon, "You Won!", "+"+strconv.Itoa(payout.Amount)
	case blackjackvm.PayoutTie:
		bg, headline = colorTie, "Tie"
	default:
		bg, headline = colorLoss, "You Lose"
	}

	c.Fill(bg)
	p.drawTitle(c, "Payout")
	lh := TextHeight(LargeFace)
	c.TextCentered(LargeFace, p.width/2, p.height/2-lh-4, headline, blackjackvm.ColorWhite)
	if detail != "" {
		c.TextCentered(LargeFace, p.width/2, p.height/2, detail, blackjackvm.ColorWhite)
	}
	p.layout.ack.Draw(c)
}

func (p *Program) drawPlayAgain(c *Canvas) {
	c.BlendRect(image.Rect(10, 10, p.width-10, p.height-10), overlay)
	c.TextCentered(LargeFace, p.width/2, p.layout.yes.Rect.Min.Y-TextHeight(LargeFace)-6, "Play Again?", blackjackvm.ColorWhite)
	p.layout.yes.Draw(c)
	p.layout.no.Draw(c)
}

func (p *Program) clickTable(x, y int) {
	l := p.layout
	if l.exit.Hit(x, y) {
		p.logout("exit")
		return
	}

	s := p.snapshot.Current()
	if s == nil {
		p.refresh()
		return
	}

	switch s.Phase() {
	case blackjackvm.PhaseBetting:
		opts := s.BetOptions()
		if opts.NoFunds {
			return
		}
		for _, ch := range l.chips(opts) {
			if ch.Hit(x, y) {
				p.move(ch.token)
				return
			}
		}
		if opts.CanSubmit && l.submitBet.Hit(x, y) {
			p.move(blackjackvm.MoveSubmitBet)
		}

	case blackjackvm.PhasePlayerMove:
		moves := s.LegalMoves()
		for _, mb := range l.moves {
			if moves.Enabled(mb.move) && mb.button.Hit(x, y) {
				p.move(moves.Token(mb.move))
				return
			}
		}

	case blackjackvm.PhaseDealerMove, blackjackvm.PhasePayout:
		if l.ack.Hit(x, y) {
			p.move(blackjackvm.MoveAck)
		}

	case blackjackvm.PhaseContinuePlaying:
		switch {
		case l.yes.Hit(x, y):
			p.move(blackjackvm.MoveYes)
		case l.no.Hit(x, y):
			if next := p.move(blackjackvm.MoveNo); next != nil && next.Phase() == blackjackvm.PhaseGameOver {
				p.logout("game over")
			}
		}
	}
}
