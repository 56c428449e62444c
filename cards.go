// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import "fmt"

// Suit of a card. The order matches the card numbering: suit = card / 13.
type Suit int

const (
	SuitHearts Suit = iota
	SuitDiamonds
	SuitSpades
	SuitClubs
)

// String returns the suit name.
func (s Suit) String() string {
	switch s {
	case SuitHearts:
		return "hearts"
	case SuitDiamonds:
		return "diamonds"
	case SuitSpades:
		return "spades"
	case SuitClubs:
		return "clubs"
	default:
		return fmt.Sprintf("suit(%d)", int(s))
	}
}

// IsRed reports whether the suit is drawn in red.
func (s Suit) IsRed() bool {
	switch s {
	case SuitHearts, SuitDiamonds:
		return true
	case SuitSpades, SuitClubs:
		return false
	default:
		return false
	}
}

// Rank of a card: rank = card % 13.
type Rank int

const (
	RankAce Rank = iota
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
)

// Symbol returns the short label printed on the card.
func (r Rank) Symbol() string {
	switch r {
	case RankAce:
		return "A"
	case RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankEight, RankNine, RankTen:
		return fmt.Sprintf("%d", int(r)+1)
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	default:
		return "?"
	}
}

// Scores returns the blackjack values a card of this rank can count as.
func (r Rank) Scores() []int {
	switch r {
	case RankAce:
		return []int{1, 11}
	case RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven, RankEight, RankNine, RankTen:
		return []int{int(r) + 1}
	case RankJack, RankQueen, RankKing:
		return []int{10}
	default:
		return nil
	}
}

// Card is a card number in [0, 51], or CardFaceDown.
type Card int

// CardFaceDown marks a card whose face is hidden from the player.
const CardFaceDown Card = -1

// DeckSize is the number of distinct card values.
const DeckSize = 52

// Valid reports whether c is a card number or the face-down sentinel.
func (c Card) Valid() bool {
	return c == CardFaceDown || (c >= 0 && c < DeckSize)
}

// FaceDown reports whether c is the face-down sentinel.
func (c Card) FaceDown() bool {
	return c == CardFaceDown
}

// Suit returns the suit of a face-up card.
func (c Card) Suit() Suit {
	return Suit(int(c) / 13)
}

// Rank returns the rank of a face-up card.
func (c Card) Rank() Rank {
	return Rank(int(c) % 13)
}

// String returns a short label such as "Q hearts" or "face-down".
func (c Card) String() string {
	if c.FaceDown() {
		return "face-down"
	}
	if !c.Valid() {
		return fmt.Sprintf("card(%d)", int(c))
	}
	return c.Rank().Symbol() + " " + c.Suit().String()
}

// HandState is a set of flags describing one player hand.
type HandState int

const (
	HandInactive HandState = 0
	HandStanding HandState = 1 << (iota - 1)
	HandActive
	HandDoubling
)

// Has reports whether all bits of flag are set.
func (s HandState) Has(flag HandState) bool {
	return s&flag == flag && flag != 0
}

// Hand is one player or dealer hand.
type Hand struct {
	State HandState
	Bet   int
	Cards []Card
}

// EffectiveBet returns the amount at stake, doubled when the hand doubled down.
func (h Hand) EffectiveBet() int {
	if h.State.Has(HandDoubling) {
		return h.Bet * 2
	}
	return h.Bet
}
