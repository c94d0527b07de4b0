package content

import (
	"fmt"
	"strings"

	"github.com/ankidroid/flashcards.go/pkg/constants"
)

// Tokens that terminate a statement or mutate schema. Selections are
// forwarded verbatim to the host, so anything on this list is rejected
// before the call is made.
var unsafeTokens = []string{
	"--", "/*", "*/", ";",
	"drop", "delete", "insert", "update",
	"exec", "execute", "union", "alter", "create", "truncate",
}

func validateSelection(selection string) error {
	lower := strings.ToLower(selection)
	for _, tok := range unsafeTokens {
		if strings.Contains(lower, tok) {
			return fmt.Errorf("%w: selection contains unsafe token %q", constants.ErrInvalidInput, tok)
		}
	}
	return nil
}

func validateProjection(projection []string) error {
	for _, col := range projection {
		if col == "" {
			return fmt.Errorf("%w: empty projection column", constants.ErrInvalidInput)
		}
		for _, r := range col {
			if !isIdentRune(r) {
				return fmt.Errorf("%w: projection column %q contains invalid character", constants.ErrInvalidInput, col)
			}
		}
	}
	return nil
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
