// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Snapshot status markers (line 0).
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Move names carried in the legal-move line.
const (
	MoveHit    = "hit"
	MoveDouble = "double"
	MoveStand  = "stand"
	MoveSplit  = "split"

	// MoveSubmitBet finalises the bet during the betting phase.
	MoveSubmitBet = "submitbet"
	// MoveAck acknowledges the dealer move and payout screens.
	MoveAck = "ack"
	// MoveYes and MoveNo answer the play-again prompt.
	MoveYes = "yes"
	MoveNo  = "no"

	betTokenPrefix = "bet"
)

// Phase of the game as reported on line 1.
type Phase string

const (
	PhaseBetting         Phase = "betting"
	PhasePlayerMove      Phase = "playermove"
	PhaseDealerMove      Phase = "dealermove"
	PhasePayout          Phase = "payout"
	PhaseContinuePlaying Phase = "continueplaying"
	PhaseGameOver        Phase = "GAME"
)

// ShowsTable reports whether the phase carries hands on lines 2 and 3.
func (p Phase) ShowsTable() bool {
	switch p {
	case PhasePlayerMove, PhaseDealerMove, PhaseContinuePlaying:
		return true
	default:
		return false
	}
}

// PayoutResult is the outcome shown on the payout screen.
type PayoutResult string

const (
	PayoutWon  PayoutResult = "won"
	PayoutTie  PayoutResult = "tie"
	PayoutLoss PayoutResult = "loss"
)

// Payout is the parsed payout line.
type Payout struct {
	Result PayoutResult
	Amount int
}

// MoveSet lists the moves enabled for the active hand.
type MoveSet struct {
	// ActiveHand is the index every move token refers to, or -1 when no
	// move is available.
	ActiveHand int
	// Moves holds the move names in wire order, without the hand suffix.
	Moves []string
}

// Enabled reports whether name is one of the legal moves.
func (m MoveSet) Enabled(name string) bool {
	for _, mv := range m.Moves {
		if mv == name {
			return true
		}
	}
	return false
}

// Token returns the wire token that performs name on the active hand.
func (m MoveSet) Token(name string) string {
	return fmt.Sprintf("%s_%d", name, m.ActiveHand)
}

// BetOption is one bet adjustment offered during the betting phase.
type BetOption struct {
	// Delta is the signed change to the bet.
	Delta int
	// Token is the move to send to apply the change.
	Token string
	// Label is the amount as printed by the engine, e.g. "10" or "-10".
	Label string
}

// BetOptions is the parsed bet line.
type BetOptions struct {
	Increase  []BetOption
	Decrease  []BetOption
	CanSubmit bool
	// NoFunds is set when the engine offers no bet at all.
	NoFunds bool
}

// Snapshot is a validated game-state snapshot. Only the fields relevant to
// its phase are populated.
type Snapshot struct {
	phase       Phase
	phaseFields []string
	betAmount   int
	betOptions  BetOptions
	payout      Payout
	activeHands int
	hands       []Hand
	dealer      Hand
	moves       MoveSet
}

// Phase returns the game phase.
func (s *Snapshot) Phase() Phase { return s.phase }

// PhaseFields returns the fields following the phase token on line 1.
func (s *Snapshot) PhaseFields() []string { return s.phaseFields }

// BetAmount returns the current bet during the betting phase.
func (s *Snapshot) BetAmount() int { return s.betAmount }

// BetOptions returns the bet adjustments offered during the betting phase.
func (s *Snapshot) BetOptions() BetOptions { return s.betOptions }

// Payout returns the result shown during the payout phase.
func (s *Snapshot) Payout() Payout { return s.payout }

// PlayerHands returns the number of active hands and every player hand in order.
func (s *Snapshot) PlayerHands() (int, []Hand) { return s.activeHands, s.hands }

// DealerHand returns the dealer's hand.
func (s *Snapshot) DealerHand() Hand { return s.dealer }

// LegalMoves returns the moves enabled for the active hand.
func (s *Snapshot) LegalMoves() MoveSet { return s.moves }

// Bets returns the amount at stake for each hand with a bet. It is nil in
// phases where bets are not displayed.
func (s *Snapshot) Bets() []int {
	if !s.phase.ShowsTable() || s.phase == PhaseContinuePlaying {
		return nil
	}
	var bets []int
	for _, h := range s.hands {
		if h.Bet > 0 {
			bets = append(bets, h.EffectiveBet())
		}
	}
	return bets
}

// ParseSnapshot validates raw snapshot text and builds its structured form.
// A "failed" status is reported as ErrRejected carrying the engine's reason.
func ParseSnapshot(raw string) (*Snapshot, error) {
	lines := strings.Split(strings.TrimRight(raw, "\r\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	status := strings.TrimSpace(lines[0])
	switch status {
	case StatusSuccess:
	case StatusFailed:
		reason := ""
		if len(lines) > 1 {
			reason = strings.TrimSpace(lines[1])
		}
		return nil, rejectedError("ParseSnapshot", reason, nil)
	case "":
		return nil, malformedSnapshotError("ParseSnapshot", "missing status line", nil)
	default:
		return nil, malformedSnapshotError("ParseSnapshot", fmt.Sprintf("unknown status %q", status), nil)
	}

	if len(lines) < 2 {
		return nil, truncatedSnapshotError("ParseSnapshot", "missing phase line", nil)
	}
	phaseFields := strings.Fields(lines[1])
	if len(phaseFields) == 0 {
		return nil, malformedSnapshotError("ParseSnapshot", "missing phase token", nil)
	}

	s := &Snapshot{
		phase:       Phase(phaseFields[0]),
		phaseFields: phaseFields[1:],
		moves:       MoveSet{ActiveHand: -1},
	}

	line := func(i int, what string) (string, error) {
		if i >= len(lines) {
			return "", truncatedSnapshotError("ParseSnapshot", fmt.Sprintf("missing %s line", what), nil)
		}
		return lines[i], nil
	}

	var err error
	switch {
	case s.phase == PhaseBetting:
		if len(s.phaseFields) < 1 {
			return nil, malformedSnapshotError("ParseSnapshot", "betting phase without bet amount", nil)
		}
		if s.betAmount, err = strconv.Atoi(s.phaseFields[0]); err != nil {
			return nil, malformedSnapshotError("ParseSnapshot",
				fmt.Sprintf("bet amount %q is not an integer", s.phaseFields[0]), err)
		}
		l, err := line(2, "bet option")
		if err != nil {
			return nil, err
		}
		if s.betOptions, err = ParseBetOptions(l); err != nil {
			return nil, err
		}

	case s.phase == PhasePayout:
		l, err := line(2, "payout")
		if err != nil {
			return nil, err
		}
		if s.payout, err = ParsePayout(l); err != nil {
			return nil, err
		}

	case s.phase.ShowsTable():
		l, err := line(2, "player hand")
		if err != nil {
			return nil, err
		}
		if s.activeHands, s.hands, err = ParseHands(l); err != nil {
			return nil, err
		}

		if l, err = line(3, "dealer hand"); err != nil {
			return nil, err
		}
		if s.dealer, err = ParseDealerHand(l); err != nil {
			return nil, err
		}

		// Other phases may list their own unsuffixed moves on line 4.
		if s.phase == PhasePlayerMove {
			if l, err = line(4, "legal move"); err != nil {
				return nil, err
			}
			if s.moves, err = ParseLegalMoves(l); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

// tokenStream walks the integer fields of one snapshot line.
type tokenStream struct {
	op     string
	tokens []string
	pos    int
}

// newTokenStream splits line into fields, skipping a leading label token
// when it is not an integer.
func newTokenStream(op, line string) *tokenStream {
	tokens := strings.Fields(line)
	if len(tokens) > 0 {
		if _, err := strconv.Atoi(tokens[0]); err != nil {
			tokens = tokens[1:]
		}
	}
	return &tokenStream{op: op, tokens: tokens}
}

func (ts *tokenStream) next(field string) (int, error) {
	if ts.pos >= len(ts.tokens) {
		return 0, truncatedSnapshotError(ts.op, fmt.Sprintf("line ended before %s", field), nil)
	}
	tok := ts.tokens[ts.pos]
	ts.pos++
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, malformedSnapshotError(ts.op, fmt.Sprintf("%s %q is not an integer", field, tok), err)
	}
	return v, nil
}

func (ts *tokenStream) count(field string) (int, error) {
	n, err := ts.next(field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, malformedSnapshotError(ts.op, fmt.Sprintf("negative %s %d", field, n), nil)
	}
	return n, nil
}

func (ts *tokenStream) rest() []string {
	return ts.tokens[ts.pos:]
}

func (ts *tokenStream) finish() error {
	if left := len(ts.tokens) - ts.pos; left > 0 {
		return malformedSnapshotError(ts.op, fmt.Sprintf("%d unexpected trailing fields", left), nil)
	}
	return nil
}

func (ts *tokenStream) cards(n int) ([]Card, error) {
	cards := make([]Card, 0, min(n, DeckSize))
	for i := 0; i < n; i++ {
		v, err := ts.next(fmt.Sprintf("card %d of %d", i+1, n))
		if err != nil {
			return nil, err
		}
		c := Card(v)
		if !c.Valid() {
			return nil, malformedSnapshotError(ts.op, fmt.Sprintf("card value %d out of range", v), nil)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// ParseHands parses the player hand line: a hand count followed, per hand,
// by state, bet, card count and exactly that many cards. It returns the
// number of hands flagged active along with all hands in order.
func ParseHands(line string) (int, []Hand, error) {
	ts := newTokenStream("ParseHands", line)

	n, err := ts.count("hand count")
	if err != nil {
		return 0, nil, err
	}

	active := 0
	hands := make([]Hand, 0, min(n, 16))
	for i := 0; i < n; i++ {
		state, err := ts.next(fmt.Sprintf("state of hand %d", i))
		if err != nil {
			return 0, nil, err
		}
		if state&^int(HandStanding|HandActive|HandDoubling) != 0 {
			return 0, nil, malformedSnapshotError("ParseHands", fmt.Sprintf("hand %d has unknown state %d", i, state), nil)
		}
		bet, err := ts.next(fmt.Sprintf("bet of hand %d", i))
		if err != nil {
			return 0, nil, err
		}
		cardCount, err := ts.count(fmt.Sprintf("card count of hand %d", i))
		if err != nil {
			return 0, nil, err
		}
		cards, err := ts.cards(cardCount)
		if err != nil {
			return 0, nil, err
		}

		h := Hand{State: HandState(state), Bet: bet, Cards: cards}
		if h.State.Has(HandActive) {
			active++
		}
		hands = append(hands, h)
	}

	if err := ts.finish(); err != nil {
		return 0, nil, err
	}
	return active, hands, nil
}

// ParseDealerHand parses the dealer line: a card count and exactly that many cards.
func ParseDealerHand(line string) (Hand, error) {
	ts := newTokenStream("ParseDealerHand", line)

	n, err := ts.count("card count")
	if err != nil {
		return Hand{}, err
	}
	cards, err := ts.cards(n)
	if err != nil {
		return Hand{}, err
	}
	if err := ts.finish(); err != nil {
		return Hand{}, err
	}
	return Hand{State: HandActive, Cards: cards}, nil
}

// ParseLegalMoves parses the legal-move line "movecount <n> <move>_<hand>...".
// Every token must name the same hand.
func ParseLegalMoves(line string) (MoveSet, error) {
	const op = "ParseLegalMoves"
	ts := newTokenStream(op, line)

	n, err := ts.count("move count")
	if err != nil {
		return MoveSet{}, err
	}
	tokens := ts.rest()
	if len(tokens) != n {
		return MoveSet{}, malformedSnapshotError(op, fmt.Sprintf("declared %d moves, found %d", n, len(tokens)), nil)
	}

	set := MoveSet{ActiveHand: -1}
	for _, tok := range tokens {
		i := strings.LastIndexByte(tok, '_')
		if i <= 0 || i == len(tok)-1 {
			return MoveSet{}, malformedSnapshotError(op, fmt.Sprintf("move token %q has no hand suffix", tok), nil)
		}
		hand, err := strconv.Atoi(tok[i+1:])
		if err != nil || hand < 0 {
			return MoveSet{}, malformedSnapshotError(op, fmt.Sprintf("move token %q has invalid hand index", tok), err)
		}

		if set.ActiveHand >= 0 && hand != set.ActiveHand {
			return MoveSet{}, inconsistentMoveSetError(op,
				fmt.Sprintf("move %q targets hand %d, expected hand %d", tok, hand, set.ActiveHand), nil)
		}
		set.ActiveHand = hand

		if name := tok[:i]; !set.Enabled(name) {
			set.Moves = append(set.Moves, name)
		}
	}
	return set, nil
}

// ParseBetOptions parses the betting line "<label> <n> <token>...". Tokens are
// "bet<delta>" adjustments or "submitbet"; a lone "0" means no funds.
func ParseBetOptions(line string) (BetOptions, error) {
	const op = "ParseBetOptions"
	ts := newTokenStream(op, line)

	n, err := ts.count("option count")
	if err != nil {
		return BetOptions{}, err
	}
	tokens := ts.rest()

	var opts BetOptions
	if len(tokens) == 1 && tokens[0] == "0" {
		opts.NoFunds = true
		return opts, nil
	}
	if len(tokens) != n {
		return BetOptions{}, malformedSnapshotError(op, fmt.Sprintf("declared %d options, found %d", n, len(tokens)), nil)
	}

	for _, tok := range tokens {
		if tok == MoveSubmitBet {
			opts.CanSubmit = true
			continue
		}
		label, ok := strings.CutPrefix(tok, betTokenPrefix)
		if !ok {
			return BetOptions{}, malformedSnapshotError(op, fmt.Sprintf("unknown bet token %q", tok), nil)
		}
		delta, err := strconv.Atoi(label)
		if err != nil {
			return BetOptions{}, malformedSnapshotError(op, fmt.Sprintf("bet token %q has no amount", tok), err)
		}

		opt := BetOption{Delta: delta, Token: tok, Label: label}
		if strings.HasPrefix(label, "-") {
			opts.Decrease = append(opts.Decrease, opt)
		} else {
			opts.Increase = append(opts.Increase, opt)
		}
	}
	return opts, nil
}

// ParsePayout parses the payout line "won|tie|loss [amount]".
func ParsePayout(line string) (Payout, error) {
	const op = "ParsePayout"
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Payout{}, truncatedSnapshotError(op, "empty payout line", nil)
	}

	p := Payout{Result: PayoutResult(fields[0])}
	switch p.Result {
	case PayoutWon, PayoutTie, PayoutLoss:
	default:
		return Payout{}, malformedSnapshotError(op, fmt.Sprintf("unknown payout result %q", fields[0]), nil)
	}

	if len(fields) > 2 {
		return Payout{}, malformedSnapshotError(op, fmt.Sprintf("%d unexpected trailing fields", len(fields)-2), nil)
	}
	if len(fields) == 2 {
		amount, err := strconv.Atoi(fields[1])
		if err != nil {
			return Payout{}, malformedSnapshotError(op, fmt.Sprintf("payout amount %q is not an integer", fields[1]), err)
		}
		p.Amount = amount
	}
	return p, nil
}

// SnapshotHolder keeps the latest successfully parsed snapshot. A snapshot
// that fails to parse never replaces the current one.
type SnapshotHolder struct {
	current atomic.Pointer[Snapshot]
}

// Update parses raw and, on success, makes it the current snapshot.
func (h *SnapshotHolder) Update(raw string) (*Snapshot, error) {
	s, err := ParseSnapshot(raw)
	if err != nil {
		return nil, err
	}
	h.current.Store(s)
	return s, nil
}

// Current returns the latest snapshot, or nil if none was stored.
func (h *SnapshotHolder) Current() *Snapshot {
	return h.current.Load()
}

// Clear drops the current snapshot.
func (h *SnapshotHolder) Clear() {
	h.current.Store(nil)
}
