package flashcards

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/content"
	"github.com/ankidroid/flashcards.go/pkg/contract"
)

// NoteCard is one card of a note as exposed by the per-note cards
// sub-resource.
type NoteCard struct {
	NoteID   int64
	Ord      int
	Name     string
	DeckID   int64
	Question string
	Answer   string
}

// CardState is the scheduling state of a raw card row.
type CardState struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
	Type   int64
	Queue  int64
	Due    int64
	Ivl    int64
	Factor int64
	Reps   int64
	Lapses int64
}

// IsSuspended reports whether the card sits in the suspended queue.
func (s CardState) IsSuspended() bool { return s.Queue == contract.QueueSuspended }

// IsBuried reports whether the card is buried, by the user or the
// scheduler.
func (s CardState) IsBuried() bool {
	return s.Queue == contract.QueueUserBuried || s.Queue == contract.QueueSchedBuried
}

// IsNew reports whether the card has never been answered.
func (s CardState) IsNew() bool {
	return s.Queue == contract.QueueNew && s.Type == contract.CardTypeNew
}

// IsLearning reports whether the card is in the learning queue.
func (s CardState) IsLearning() bool { return s.Queue == contract.QueueLearning }

// IsReview reports whether the card graduated to the review queue.
func (s CardState) IsReview() bool { return s.Queue == contract.QueueReview }

func readNoteCard(cur *content.Cursor) (NoteCard, error) {
	var nc NoteCard

	id, err := cur.GetInt64(contract.NoteCardNoteID)
	if err != nil {
		return nc, err
	}
	nc.NoteID = id

	ord, err := cur.GetInt64(contract.NoteCardOrd)
	if err != nil {
		return nc, err
	}
	nc.Ord = int(ord)

	if nc.Name, err = cur.GetString(contract.NoteCardName); err != nil {
		return nc, err
	}
	if nc.DeckID, err = cur.GetInt64(contract.NoteCardDeckID); err != nil {
		return nc, err
	}
	if nc.Question, err = cur.GetString(contract.NoteCardQuestion); err != nil {
		return nc, err
	}
	if nc.Answer, err = cur.GetString(contract.NoteCardAnswer); err != nil {
		return nc, err
	}
	return nc, nil
}

func readCardState(cur *content.Cursor) (CardState, error) {
	var s CardState

	var err error
	if s.ID, err = cur.GetInt64(contract.CardID); err != nil {
		return s, err
	}
	if s.NoteID, err = cur.GetInt64(contract.CardNid); err != nil {
		return s, err
	}
	if s.DeckID, err = cur.GetInt64(contract.CardDid); err != nil {
		return s, err
	}
	ord, err := cur.GetInt64(contract.CardOrd)
	if err != nil {
		return s, err
	}
	s.Ord = int(ord)

	if s.Type, err = cur.GetInt64(contract.CardType); err != nil {
		return s, err
	}
	if s.Queue, err = cur.GetInt64(contract.CardQueue); err != nil {
		return s, err
	}
	if s.Due, err = cur.GetInt64(contract.CardDue); err != nil {
		return s, err
	}
	if s.Ivl, err = cur.GetInt64(contract.CardIvl); err != nil {
		return s, err
	}
	if s.Factor, err = cur.GetInt64(contract.CardFactor); err != nil {
		return s, err
	}
	if s.Reps, err = cur.GetInt64(contract.CardReps); err != nil {
		return s, err
	}
	if s.Lapses, err = cur.GetInt64(contract.CardLapses); err != nil {
		return s, err
	}
	return s, nil
}

// CardsForNote returns the cards generated for a note.
func (c *Client) CardsForNote(ctx context.Context, noteID int64) ([]NoteCard, error) {
	cur, err := content.Query(c.bridge, contract.NoteCardsURI(noteID)).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return content.Collect(cur, readNoteCard)
}

// GetCardState fetches the scheduling state of one card.
func (c *Client) GetCardState(ctx context.Context, cardID int64) (CardState, error) {
	cur, err := content.Query(c.bridge, contract.CardsURI).
		Selection(contract.CardID+"=?", strconv.FormatInt(cardID, 10)).
		Execute(ctx)
	if err != nil {
		return CardState{}, err
	}
	states, err := content.Collect(cur, readCardState)
	if err != nil {
		return CardState{}, err
	}
	if len(states) == 0 {
		return CardState{}, fmt.Errorf("%w: card %d", constants.ErrNotFound, cardID)
	}
	return states[0], nil
}

// setCardQueue moves a card into a queue, reporting whether a row
// changed.
func (c *Client) setCardQueue(ctx context.Context, cardID, queue int64) (bool, error) {
	updated, err := content.Update(c.bridge, contract.CardsURI).
		Values(bridge.Values{contract.CardQueue: queue}).
		Selection(contract.CardID+"=?", strconv.FormatInt(cardID, 10)).
		Execute(ctx)
	if err != nil {
		return false, err
	}
	return updated > 0, nil
}

// SuspendCard takes the card out of scheduling until unsuspended.
func (c *Client) SuspendCard(ctx context.Context, cardID int64) (bool, error) {
	return c.setCardQueue(ctx, cardID, contract.QueueSuspended)
}

// UnsuspendCard returns a suspended card to the new queue.
func (c *Client) UnsuspendCard(ctx context.Context, cardID int64) (bool, error) {
	return c.setCardQueue(ctx, cardID, contract.QueueNew)
}

// BuryCard hides the card until the next day.
func (c *Client) BuryCard(ctx context.Context, cardID int64) (bool, error) {
	return c.setCardQueue(ctx, cardID, contract.QueueSchedBuried)
}

// UnburyCard returns a buried card to the new queue.
func (c *Client) UnburyCard(ctx context.Context, cardID int64) (bool, error) {
	return c.setCardQueue(ctx, cardID, contract.QueueNew)
}

// ResetCardProgress wipes the card's review history state so it behaves
// like a new card again.
func (c *Client) ResetCardProgress(ctx context.Context, cardID int64) (bool, error) {
	updated, err := content.Update(c.bridge, contract.CardsURI).
		Values(bridge.Values{
			contract.CardQueue:  int64(contract.QueueNew),
			contract.CardType:   int64(contract.CardTypeNew),
			contract.CardDue:    int64(0),
			contract.CardIvl:    int64(0),
			contract.CardFactor: int64(contract.StartingEaseFactor),
			contract.CardReps:   int64(0),
			contract.CardLapses: int64(0),
		}).
		Selection(contract.CardID+"=?", strconv.FormatInt(cardID, 10)).
		Execute(ctx)
	if err != nil {
		return false, err
	}
	return updated > 0, nil
}

// SetCardDue sets the due position of a card.
func (c *Client) SetCardDue(ctx context.Context, cardID, due int64) (bool, error) {
	updated, err := content.Update(c.bridge, contract.CardsURI).
		Values(bridge.Values{contract.CardDue: due}).
		Selection(contract.CardID+"=?", strconv.FormatInt(cardID, 10)).
		Execute(ctx)
	if err != nil {
		return false, err
	}
	return updated > 0, nil
}

// MoveCardToDeck moves one card of a note into a deck via the per-note
// cards sub-resource.
func (c *Client) MoveCardToDeck(ctx context.Context, noteID int64, ord int, deckID int64) error {
	if deckID <= 0 {
		return invalidInput("deck id %d", deckID)
	}
	updated, err := content.Update(c.bridge, contract.NoteCardURI(noteID, ord)).
		Values(bridge.Values{contract.NoteCardDeckID: deckID}).
		Execute(ctx)
	if err != nil {
		return err
	}
	if updated == 0 {
		return fmt.Errorf("%w: card %d of note %d", constants.ErrNotFound, ord, noteID)
	}
	return nil
}

// MoveNoteCardsToDeck moves every card of a note into a deck.
func (c *Client) MoveNoteCardsToDeck(ctx context.Context, noteID, deckID int64) error {
	if deckID <= 0 {
		return invalidInput("deck id %d", deckID)
	}
	return c.moveNoteCards(ctx, noteID, deckID)
}

func (c *Client) moveNoteCards(ctx context.Context, noteID, deckID int64) error {
	cards, err := c.CardsForNote(ctx, noteID)
	if err != nil {
		return err
	}
	for _, card := range cards {
		if card.DeckID == deckID {
			continue
		}
		if err := c.MoveCardToDeck(ctx, noteID, card.Ord, deckID); err != nil {
			return err
		}
	}
	return nil
}
