package deck

import "fmt"

// Suit is the wire-level suit of a playing card.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Value is the wire-level face value of a playing card.
type Value string

const (
	Ace    Value = "A"
	Two    Value = "2"
	Three  Value = "3"
	Four   Value = "4"
	Five   Value = "5"
	Six    Value = "6"
	Seven  Value = "7"
	Eight  Value = "8"
	Nine   Value = "9"
	Ten    Value = "10"
	Jack   Value = "J"
	Queen  Value = "Q"
	King   Value = "K"
	JokerV Value = "Joker"
)

// JokerSuit is the suit carried by joker cards on the wire.
const JokerSuit Suit = "joker"

// Suits lists the four natural suits in deck order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Values lists the thirteen natural values in ascending order.
var Values = []Value{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// Card is a playing card as it appears on the wire. FaceDown is only
// meaningful for stud-style deals where a dealt card stays hidden.
type Card struct {
	Suit     Suit  `json:"suit"`
	Value    Value `json:"value"`
	FaceDown bool  `json:"faceDown,omitempty"`
}

// New creates a card.
func New(suit Suit, value Value) Card {
	return Card{Suit: suit, Value: value}
}

// Joker creates a joker card.
func Joker() Card {
	return Card{Suit: JokerSuit, Value: JokerV}
}

// Back is the placeholder sent to viewers who may not see a card.
func Back() Card {
	return Card{Suit: "back", Value: "back", FaceDown: true}
}

// IsJoker reports whether the card is a joker.
func (c Card) IsJoker() bool {
	return c.Value == JokerV
}

// Rank returns the comparable rank of the card. Aces are high (14);
// ace-low straights are handled by the evaluator. Jokers rank 15 so a
// raw comparison (as in War) treats them as the strongest card.
func (c Card) Rank() int {
	switch c.Value {
	case Ace:
		return 14
	case King:
		return 13
	case Queen:
		return 12
	case Jack:
		return 11
	case JokerV:
		return 15
	default:
		var n int
		if _, err := fmt.Sscanf(string(c.Value), "%d", &n); err != nil {
			return 0
		}
		if n < 2 || n > 10 {
			return 0
		}
		return n
	}
}

// ValueForRank is the inverse of Card.Rank for natural values 2..14.
func ValueForRank(rank int) Value {
	switch rank {
	case 14:
		return Ace
	case 13:
		return King
	case 12:
		return Queen
	case 11:
		return Jack
	default:
		return Value(fmt.Sprintf("%d", rank))
	}
}

// String renders the card for logs, e.g. "A♠" or "10♥".
func (c Card) String() string {
	if c.IsJoker() {
		return "Jkr"
	}
	var glyph string
	switch c.Suit {
	case Hearts:
		glyph = "♥"
	case Diamonds:
		glyph = "♦"
	case Clubs:
		glyph = "♣"
	case Spades:
		glyph = "♠"
	default:
		glyph = "?"
	}
	return string(c.Value) + glyph
}

// Up returns a face-up copy of the card.
func (c Card) Up() Card {
	c.FaceDown = false
	return c
}

// Down returns a face-down copy of the card.
func (c Card) Down() Card {
	c.FaceDown = true
	return c
}
