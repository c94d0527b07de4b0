package flashcards

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/content"
	"github.com/ankidroid/flashcards.go/pkg/contract"
)

// Deck is one deck row.
type Deck struct {
	ID   int64
	Name string
}

const maxDeckNameLength = 100

// validateDeckName rejects names the host cannot store. The "::" nesting
// separator is legal and must pass.
func validateDeckName(name string) error {
	if name == "" {
		return invalidInput("deck name is empty")
	}
	if len(name) > maxDeckNameLength {
		return invalidInput("deck name exceeds %d characters", maxDeckNameLength)
	}
	if strings.ContainsAny(name, "\x00\n\r") {
		return invalidInput("deck name contains control characters")
	}
	return nil
}

// readDeck accepts either column spelling the host answers with.
func readDeck(cur *content.Cursor) (Deck, error) {
	var deck Deck

	id, err := cur.GetString(contract.DeckID)
	if err != nil {
		if id, err = cur.GetString(contract.DeckIDAlt); err != nil {
			return deck, fmt.Errorf("deck row without an id column: %w", err)
		}
	}
	deck.ID, err = strconv.ParseInt(id, 10, 64)
	if err != nil {
		return deck, fmt.Errorf("%w: deck id %q is not numeric", constants.ErrMalformedRow, id)
	}

	deck.Name, err = cur.GetString(contract.DeckName)
	if err != nil {
		if deck.Name, err = cur.GetString(contract.DeckNameAlt); err != nil {
			return deck, fmt.Errorf("deck row without a name column: %w", err)
		}
	}
	return deck, nil
}

// DeckList returns every deck known to the host, keyed by id.
func (c *Client) DeckList(ctx context.Context) (map[int64]string, error) {
	cur, err := content.Query(c.bridge, contract.DecksURI).Execute(ctx)
	if err != nil {
		return nil, err
	}
	decks, err := content.Collect(cur, readDeck)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]string, len(decks))
	for _, d := range decks {
		out[d.ID] = d.Name
	}
	return out, nil
}

// SelectedDeck returns the deck the host currently has open.
func (c *Client) SelectedDeck(ctx context.Context) (Deck, error) {
	cur, err := content.Query(c.bridge, contract.SelectedDeckURI).Execute(ctx)
	if err != nil {
		return Deck{}, err
	}
	decks, err := content.Collect(cur, readDeck)
	if err != nil {
		return Deck{}, err
	}
	if len(decks) == 0 {
		return Deck{}, fmt.Errorf("%w: host reported no selected deck", constants.ErrNotFound)
	}
	return decks[0], nil
}

// FindDeckIDByName looks a deck up by exact name first, then
// case-insensitively.
func (c *Client) FindDeckIDByName(ctx context.Context, name string) (int64, bool, error) {
	decks, err := c.DeckList(ctx)
	if err != nil {
		return 0, false, err
	}

	for id, deckName := range decks {
		if deckName == name {
			return id, true, nil
		}
	}
	for id, deckName := range decks {
		if strings.EqualFold(deckName, name) {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// AddDeck creates a deck. Both column spellings are written because host
// versions differ on which one they read.
func (c *Client) AddDeck(ctx context.Context, name string) (int64, error) {
	if err := validateDeckName(name); err != nil {
		return 0, err
	}

	id, err := content.Insert(c.bridge, contract.DecksURI).
		Values(bridge.Values{
			contract.DeckName:    name,
			contract.DeckNameAlt: name,
		}).
		Execute(ctx)
	if err != nil {
		return 0, err
	}
	c.log.Info("deck created", "deck_id", id, "name", name)
	return id, nil
}

// ResolveDeck returns the id of the named deck, creating it when absent.
// A create failure that looks like a name collision is retried as a
// lookup once; any other failure propagates. The default deck id is never
// used as a fallback.
func (c *Client) ResolveDeck(ctx context.Context, name string) (int64, error) {
	if err := validateDeckName(name); err != nil {
		return 0, err
	}

	if id, found, err := c.FindDeckIDByName(ctx, name); err != nil {
		return 0, err
	} else if found {
		return id, nil
	}

	id, err := c.AddDeck(ctx, name)
	if err == nil {
		return id, nil
	}
	if !isNameConflict(err) {
		return 0, fmt.Errorf("create deck %q: %w", name, err)
	}

	// Another writer created it between the lookup and the insert.
	c.log.Debug("deck create collided, re-querying", "name", name)
	id, found, ferr := c.FindDeckIDByName(ctx, name)
	if ferr != nil {
		return 0, ferr
	}
	if !found {
		return 0, fmt.Errorf("deck %q reported as existing but not found: %w", name, err)
	}
	return id, nil
}
