package vocab

import "errors"

// Deck is a wrap-around flashcard deck. The front of a card is the
// Russian word, the back its gloss and example.
type Deck struct {
	cards   []Word
	idx     int
	flipped bool
}

// NewDeck builds a deck over the unit in its given order.
func NewDeck(words []Word) (*Deck, error) {
	if len(words) == 0 {
		return nil, errors.New("vocab: empty deck")
	}
	return &Deck{cards: words}, nil
}

// Size returns the number of cards.
func (d *Deck) Size() int { return len(d.cards) }

// Position returns the current card index, zero based.
func (d *Deck) Position() int { return d.idx }

// Current returns the current card.
func (d *Deck) Current() Word { return d.cards[d.idx] }

// Flipped reports whether the back of the card is showing.
func (d *Deck) Flipped() bool { return d.flipped }

// Flip turns the current card over.
func (d *Deck) Flip() { d.flipped = !d.flipped }

// Next advances to the following card front side up, wrapping at the
// end.
func (d *Deck) Next() Word {
	d.idx = (d.idx + 1) % len(d.cards)
	d.flipped = false
	return d.Current()
}

// Prev steps back one card front side up, wrapping at the start.
func (d *Deck) Prev() Word {
	d.idx = (d.idx - 1 + len(d.cards)) % len(d.cards)
	d.flipped = false
	return d.Current()
}
