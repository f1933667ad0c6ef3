package upstream

import (
	"context"
	"fmt"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/media"
)

// mirrorListKey is the top-level key of the CDN mirror document.
const mirrorListKey = "MirrorList"

// MirrorAPI reads the CDN mirror list. The list is small and changes
// often, so its client is normally created without a cache.
type MirrorAPI struct {
	client *Client
}

// NewMirrorAPI creates the mirror data source.
func NewMirrorAPI(client *Client) *MirrorAPI {
	return &MirrorAPI{client: client}
}

// Client returns the underlying upstream client.
func (m *MirrorAPI) Client() *Client {
	return m.client
}

// Mirrors returns every mirror.
func (m *MirrorAPI) Mirrors(ctx context.Context) ([]media.Mirror, error) {
	items, _, err := list[media.Mirror](ctx, m.client, "/", nil, mirrorListKey)
	return items, err
}

// Mirror returns the mirror with the given id.
func (m *MirrorAPI) Mirror(ctx context.Context, id string) (media.Mirror, error) {
	mirrors, err := m.Mirrors(ctx)
	if err != nil {
		return media.Mirror{}, err
	}

	for _, mirror := range mirrors {
		if mirror.ID == id {
			return mirror, nil
		}
	}
	return media.Mirror{}, errors.WrapInvalid(fmt.Errorf("%w: mirror %q", errors.ErrNotFound, id),
		"MirrorAPI", "Mirror", "find mirror")
}
