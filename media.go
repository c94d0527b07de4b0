package flashcards

import (
	"context"
	"fmt"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/content"
	"github.com/ankidroid/flashcards.go/pkg/contract"
)

// AddMedia registers a media file with the host's collection and returns
// the filename the host stored it under. The host may rename the file to
// avoid clobbering an existing one, so callers must reference the
// returned name in note fields, not the preferred one.
func (c *Client) AddMedia(ctx context.Context, fileURI, preferredName string) (string, error) {
	if fileURI == "" {
		return "", invalidInput("media file uri is empty")
	}
	if preferredName == "" {
		return "", invalidInput("media preferred name is empty")
	}

	path, err := content.Insert(c.bridge, contract.MediaURI).
		Values(bridge.Values{
			contract.MediaFileURI:       fileURI,
			contract.MediaPreferredName: preferredName,
		}).
		ExecutePath(ctx)
	if err != nil {
		return "", err
	}

	name := content.LastPathSegment(path)
	if name == "" {
		return "", fmt.Errorf("%w: host returned no media filename", constants.ErrMalformedRow)
	}
	c.log.Info("media added", "name", name)
	return name, nil
}
