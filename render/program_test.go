// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package render

import (
	"context"
	"testing"

	blackjackvm "github.com/AaronLi/BlackjackVM"
	"github.com/AaronLi/BlackjackVM/backend"
)

// fakeBackend scripts the authentication service and the game engine.
type fakeBackend struct {
	registerFrame blackjackvm.EncodedFrame
	registerErr   error
	loginErr      error
	logins        [][2]string

	state   string
	replies map[string]string
	moves   []string
	polls   int
}

func (f *fakeBackend) Register(ctx context.Context, username string) (blackjackvm.EncodedFrame, error) {
	return f.registerFrame, f.registerErr
}

func (f *fakeBackend) Login(ctx context.Context, username, totp string) (backend.Credentials, error) {
	f.logins = append(f.logins, [2]string{username, totp})
	if f.loginErr != nil {
		return backend.Credentials{}, f.loginErr
	}
	return backend.Credentials{Username: username, Token: "tok"}, nil
}

func (f *fakeBackend) CurrentSnapshot(ctx context.Context, creds backend.Credentials) (string, error) {
	f.polls++
	return f.state, nil
}

func (f *fakeBackend) ApplyMove(ctx context.Context, creds backend.Credentials, move string) (string, error) {
	f.moves = append(f.moves, move)
	if raw, ok := f.replies[move]; ok {
		f.state = raw
	}
	return f.state, nil
}

const (
	bettingState     = "success\nbetting 10\nmoves 3 bet10 bet-10 submitbet\n"
	noFundsState     = "success\nbetting 0\nmoves 1 0\n"
	playerMoveState  = "success\nplayermove\nhands 1 2 10 2 0 12\ndealer 2 5 -1\nmovecount 2 hit_0 stand_0\n"
	dealerMoveState  = "success\ndealermove\nhands 1 3 10 2 0 12\ndealer 3 5 20 30\n"
	payoutState      = "success\npayout\nwon 20\n"
	continueState    = "success\ncontinueplaying\nhands 1 3 10 2 0 12\ndealer 3 5 20 30\n"
	gameOverState    = "success\nGAME OVER\n"
	rejectedMoveText = "failed\nillegal move\n"
)

func newTestProgram(t *testing.T, fb *fakeBackend) *Program {
	t.Helper()
	p, err := NewProgram(context.Background(), Config{SessionID: "test", Auth: fb, Engine: fb})
	if err != nil {
		t.Fatalf("NewProgram() error = %v", err)
	}
	return p
}

func typeKeys(p *Program, s string) {
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			p.HandleKey(int(r-'A'+'a'), blackjackvm.ModShift)
		default:
			p.HandleKey(int(r), blackjackvm.ModNone)
		}
	}
}

func clickButton(p *Program, b *Button) {
	c := b.Rect.Min.Add(b.Rect.Size().Div(2))
	p.HandleClick(c.X, c.Y)
}

// loggedIn drives a program through login into the table screen.
func loggedIn(t *testing.T, fb *fakeBackend) *Program {
	t.Helper()
	p := newTestProgram(t, fb)
	typeKeys(p, "bob")
	clickButton(p, p.layout.login)
	typeKeys(p, "123456")
	clickButton(p, p.layout.submitTotp)
	if p.screen() != screenTable {
		t.Fatalf("screen = %v after login, want table", p.screen())
	}
	return p
}

func TestProgram_NewProgramValidation(t *testing.T) {
	fb := &fakeBackend{}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{Auth: fb, Engine: fb}, false},
		{"larger canvas", Config{Auth: fb, Engine: fb, Width: 320, Height: 200}, false},
		{"missing engine", Config{Auth: fb}, true},
		{"too small", Config{Auth: fb, Engine: fb, Width: 80, Height: 50}, true},
		{"too large", Config{Auth: fb, Engine: fb, Width: 4096, Height: 4096}, true},
		{"negative timeout", Config{Auth: fb, Engine: fb, RequestTimeout: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProgram(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProgram() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !blackjackvm.IsError(err, blackjackvm.ErrConfiguration) {
				t.Errorf("NewProgram() error = %v, want configuration error", err)
			}
		})
	}
}

func TestProgram_RenderSize(t *testing.T) {
	p := newTestProgram(t, &fakeBackend{})
	pb := p.Render()
	if pb.Width != blackjackvm.DefaultCanvasWidth || pb.Height != blackjackvm.DefaultCanvasHeight {
		t.Errorf("Render() = %dx%d, want %dx%d", pb.Width, pb.Height, blackjackvm.DefaultCanvasWidth, blackjackvm.DefaultCanvasHeight)
	}
}

func TestProgram_LoginFlow(t *testing.T) {
	fb := &fakeBackend{state: bettingState}
	p := newTestProgram(t, fb)

	clickButton(p, p.layout.login)
	if p.screen() != screenLogin || p.notice == "" {
		t.Fatalf("empty username: screen = %v, notice = %q", p.screen(), p.notice)
	}

	typeKeys(p, "Bob")
	clickButton(p, p.layout.login)
	if p.screen() != screenTotp {
		t.Fatalf("screen = %v, want totp", p.screen())
	}

	// Submitting an incomplete code does nothing.
	typeKeys(p, "123")
	clickButton(p, p.layout.submitTotp)
	if len(fb.logins) != 0 {
		t.Fatalf("incomplete code was submitted: %v", fb.logins)
	}

	p.HandleKey(blackjackvm.KeyKeypad1+3, blackjackvm.ModNone)
	typeKeys(p, "56")
	clickButton(p, p.layout.submitTotp)

	if len(fb.logins) != 1 || fb.logins[0] != [2]string{"Bob", "123456"} {
		t.Fatalf("logins = %v", fb.logins)
	}
	if p.screen() != screenTable {
		t.Fatalf("screen = %v, want table", p.screen())
	}
	if fb.polls != 1 {
		t.Errorf("polls = %d, want 1", fb.polls)
	}
	if s := p.snapshot.Current(); s == nil || s.Phase() != blackjackvm.PhaseBetting {
		t.Errorf("snapshot = %+v, want betting", s)
	}
}

func TestProgram_LoginWithReturnKey(t *testing.T) {
	fb := &fakeBackend{state: bettingState}
	p := newTestProgram(t, fb)

	typeKeys(p, "amy")
	p.HandleKey(blackjackvm.KeyReturn, blackjackvm.ModNone)
	typeKeys(p, "000000")
	p.HandleKey(blackjackvm.KeyReturn, blackjackvm.ModNone)

	if p.screen() != screenTable {
		t.Errorf("screen = %v, want table", p.screen())
	}
}

func TestProgram_LoginRejected(t *testing.T) {
	fb := &fakeBackend{
		loginErr: blackjackvm.NewError("backend.Login", blackjackvm.ErrRejected, "bad code", nil),
	}
	p := newTestProgram(t, fb)
	typeKeys(p, "bob")
	clickButton(p, p.layout.login)
	typeKeys(p, "999999")
	clickButton(p, p.layout.submitTotp)

	if p.screen() != screenLogin {
		t.Errorf("screen = %v, want login", p.screen())
	}
	if p.notice != "bad code" {
		t.Errorf("notice = %q, want the rejection reason", p.notice)
	}
}

func TestProgram_LoginUnavailable(t *testing.T) {
	fb := &fakeBackend{
		loginErr: blackjackvm.NewError("backend.Login", blackjackvm.ErrConnection, "request failed", nil),
	}
	p := newTestProgram(t, fb)
	typeKeys(p, "bob")
	clickButton(p, p.layout.login)
	typeKeys(p, "999999")
	clickButton(p, p.layout.submitTotp)

	if p.screen() != screenTotp {
		t.Errorf("screen = %v, want totp to allow a retry", p.screen())
	}
	if p.notice != "Server unavailable" {
		t.Errorf("notice = %q", p.notice)
	}
}

func TestProgram_CancelTotp(t *testing.T) {
	p := newTestProgram(t, &fakeBackend{})
	typeKeys(p, "bob")
	clickButton(p, p.layout.login)
	clickButton(p, p.layout.cancelTotp)

	if p.screen() != screenLogin {
		t.Errorf("screen = %v, want login", p.screen())
	}
}

func TestProgram_RegisterFlow(t *testing.T) {
	fb := &fakeBackend{registerFrame: "1 ~~~"}
	p := newTestProgram(t, fb)
	typeKeys(p, "bob")
	clickButton(p, p.layout.register)

	if p.screen() != screenQR {
		t.Fatalf("screen = %v, want qr", p.screen())
	}
	if p.qr.Width != 2 || p.qr.Height != 2 {
		t.Errorf("qr = %dx%d, want 2x2", p.qr.Width, p.qr.Height)
	}

	pb := p.Render()
	if got := pb.At(p.width/2, 0); got != blackjackvm.ColorWhite {
		t.Errorf("qr column pixel = %v, want white", got)
	}

	clickButton(p, p.layout.scanned)
	if p.screen() != screenTotp {
		t.Errorf("screen = %v, want totp", p.screen())
	}
}

func TestProgram_RegisterFailures(t *testing.T) {
	tests := []struct {
		name   string
		fb     *fakeBackend
		notice string
	}{
		{
			name:   "rejected",
			fb:     &fakeBackend{registerErr: blackjackvm.NewError("backend.Register", blackjackvm.ErrRejected, "username taken", nil)},
			notice: "username taken",
		},
		{
			name:   "bad qr frame",
			fb:     &fakeBackend{registerFrame: "2 !!!"},
			notice: "Bad QR code from server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProgram(t, tt.fb)
			typeKeys(p, "bob")
			clickButton(p, p.layout.register)
			if p.screen() != screenLogin {
				t.Errorf("screen = %v, want login", p.screen())
			}
			if p.notice != tt.notice {
				t.Errorf("notice = %q, want %q", p.notice, tt.notice)
			}
		})
	}
}

func TestProgram_Betting(t *testing.T) {
	fb := &fakeBackend{state: bettingState}
	p := loggedIn(t, fb)

	chips := p.layout.chips(p.snapshot.Current().BetOptions())
	if len(chips) != 2 {
		t.Fatalf("chips = %d, want 2", len(chips))
	}
	for _, ch := range chips {
		clickButton(p, &ch.Button)
	}
	clickButton(p, p.layout.submitBet)

	want := []string{"bet10", "bet-10", "submitbet"}
	if len(fb.moves) != len(want) {
		t.Fatalf("moves = %v, want %v", fb.moves, want)
	}
	for i := range want {
		if fb.moves[i] != want[i] {
			t.Errorf("move %d = %q, want %q", i, fb.moves[i], want[i])
		}
	}
}

func TestProgram_BettingWithoutFunds(t *testing.T) {
	fb := &fakeBackend{state: noFundsState}
	p := loggedIn(t, fb)

	clickButton(p, p.layout.submitBet)
	p.HandleClick(p.width/2+10, p.height-28)
	if len(fb.moves) != 0 {
		t.Errorf("moves = %v, want none without funds", fb.moves)
	}
}

func TestProgram_PlayerMoves(t *testing.T) {
	fb := &fakeBackend{state: playerMoveState}
	p := loggedIn(t, fb)

	for _, mb := range p.layout.moves {
		clickButton(p, mb.button)
	}

	want := []string{"hit_0", "stand_0"}
	if len(fb.moves) != len(want) || fb.moves[0] != want[0] || fb.moves[1] != want[1] {
		t.Errorf("moves = %v, want %v", fb.moves, want)
	}
}

func TestProgram_AckAndPlayAgain(t *testing.T) {
	fb := &fakeBackend{
		state: dealerMoveState,
		replies: map[string]string{
			"ack": payoutState,
			"yes": bettingState,
		},
	}
	p := loggedIn(t, fb)

	clickButton(p, p.layout.ack)
	if ph := p.snapshot.Current().Phase(); ph != blackjackvm.PhasePayout {
		t.Fatalf("phase = %v, want payout", ph)
	}

	fb.replies["ack"] = continueState
	clickButton(p, p.layout.ack)
	clickButton(p, p.layout.yes)

	if ph := p.snapshot.Current().Phase(); ph != blackjackvm.PhaseBetting {
		t.Errorf("phase = %v, want betting", ph)
	}
}

func TestProgram_DeclineEndsGame(t *testing.T) {
	fb := &fakeBackend{state: continueState, replies: map[string]string{"no": gameOverState}}
	p := loggedIn(t, fb)

	clickButton(p, p.layout.no)
	if p.screen() != screenLogin {
		t.Errorf("screen = %v, want login after game over", p.screen())
	}
	if p.snapshot.Current() != nil {
		t.Error("snapshot kept after logout")
	}
}

func TestProgram_RejectedMoveKeepsSnapshot(t *testing.T) {
	fb := &fakeBackend{state: playerMoveState, replies: map[string]string{"hit_0": rejectedMoveText}}
	p := loggedIn(t, fb)
	before := p.snapshot.Current()

	clickButton(p, p.layout.moves[0].button)

	if p.snapshot.Current() != before {
		t.Error("rejected move replaced the snapshot")
	}
	if p.screen() != screenTable {
		t.Errorf("screen = %v, want table", p.screen())
	}
}

func TestProgram_InvalidSnapshotKeepsPrevious(t *testing.T) {
	fb := &fakeBackend{state: playerMoveState, replies: map[string]string{"stand_0": "success\nplayermove\nhands 1 2 10\n"}}
	p := loggedIn(t, fb)
	before := p.snapshot.Current()

	clickButton(p, p.layout.moves[2].button)
	if p.snapshot.Current() != before {
		t.Error("truncated snapshot replaced the previous one")
	}
}

func TestProgram_RejectedPollLogsOut(t *testing.T) {
	fb := &fakeBackend{state: "failed\nsession expired\n"}
	p := newTestProgram(t, fb)
	typeKeys(p, "bob")
	clickButton(p, p.layout.login)
	typeKeys(p, "123456")
	clickButton(p, p.layout.submitTotp)

	if p.screen() != screenLogin || p.notice != "session expired" {
		t.Errorf("screen = %v, notice = %q", p.screen(), p.notice)
	}
}

func TestProgram_Exit(t *testing.T) {
	p := loggedIn(t, &fakeBackend{state: bettingState})
	clickButton(p, p.layout.exit)
	if p.screen() != screenLogin {
		t.Errorf("screen = %v, want login", p.screen())
	}
	if p.usernameField.Len() != 0 {
		t.Error("username field not cleared")
	}
}

func TestProgram_RenderEveryPhase(t *testing.T) {
	states := map[string]string{
		"betting":    bettingState,
		"no funds":   noFundsState,
		"playermove": playerMoveState,
		"dealermove": dealerMoveState,
		"payout":     payoutState,
		"continue":   continueState,
		"game over":  gameOverState,
	}

	for name, state := range states {
		t.Run(name, func(t *testing.T) {
			p := loggedIn(t, &fakeBackend{state: state})
			pb := p.Render()
			if pb.Width != p.width || pb.Height != p.height {
				t.Fatalf("Render() = %dx%d", pb.Width, pb.Height)
			}
			if got := pb.At(p.width-9, 7); got == blackjackvm.ColorFelt {
				t.Error("exit button not drawn")
			}
		})
	}
}

func TestProgram_RenderPayoutColour(t *testing.T) {
	p := loggedIn(t, &fakeBackend{state: payoutState})
	if got := p.Render().At(1, p.height/2); got != colorWon {
		t.Errorf("background = %v, want %v", got, colorWon)
	}
}

func TestProgram_RenderFelt(t *testing.T) {
	p := loggedIn(t, &fakeBackend{state: bettingState})
	if got := p.Render().At(1, p.height/2); got != blackjackvm.ColorFelt {
		t.Errorf("background = %v, want felt", got)
	}
}

func TestProgram_DragIgnored(t *testing.T) {
	fb := &fakeBackend{state: bettingState}
	p := loggedIn(t, fb)
	p.HandleDrag(5, -5)
	if len(fb.moves) != 0 || p.screen() != screenTable {
		t.Error("drag changed program state")
	}
}
