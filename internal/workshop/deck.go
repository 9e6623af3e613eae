package workshop

// Deck is the flashcard review mode: one card at a time, front first.
type Deck struct {
	cards   []Flashcard
	pos     int
	flipped bool
}

// NewDeck starts a review at the first card.
func NewDeck(cards []Flashcard) *Deck {
	return &Deck{cards: cards}
}

// Current returns the card under review.
func (d *Deck) Current() (Flashcard, bool) {
	if len(d.cards) == 0 {
		return Flashcard{}, false
	}
	return d.cards[d.pos], true
}

// Next moves to the following card, showing its front. It reports whether
// the position changed.
func (d *Deck) Next() bool {
	if d.pos >= len(d.cards)-1 {
		return false
	}
	d.pos++
	d.flipped = false
	return true
}

// Prev moves to the previous card, showing its front.
func (d *Deck) Prev() bool {
	if d.pos == 0 {
		return false
	}
	d.pos--
	d.flipped = false
	return true
}

// Flip turns the current card over.
func (d *Deck) Flip() {
	if len(d.cards) > 0 {
		d.flipped = !d.flipped
	}
}

func (d *Deck) Flipped() bool { return d.flipped }

// Position returns the 1-based index of the current card and the deck size.
func (d *Deck) Position() (int, int) {
	if len(d.cards) == 0 {
		return 0, 0
	}
	return d.pos + 1, len(d.cards)
}
