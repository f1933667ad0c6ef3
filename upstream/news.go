package upstream

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/media"
)

// NewsAPI reads the media.ccc.de Atom news feed.
type NewsAPI struct {
	client *Client
}

// NewNewsAPI creates the news data source. The client's base URL is the
// feed URL itself.
func NewNewsAPI(client *Client) *NewsAPI {
	return &NewsAPI{client: client}
}

// Client returns the underlying upstream client.
func (n *NewsAPI) Client() *Client {
	return n.client
}

// News returns every feed entry in feed order. createdAt is the entry's
// published date and updatedAt its updated date.
func (n *NewsAPI) News(ctx context.Context) ([]media.News, error) {
	resp, err := n.client.Fetch(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
			"NewsAPI", "News", "parse feed")
	}

	news := make([]media.News, 0, len(feed.Items))
	for _, item := range feed.Items {
		news = append(news, newsFromItem(item))
	}
	return news, nil
}

// NewsItem returns the entry with the given id.
func (n *NewsAPI) NewsItem(ctx context.Context, id string) (media.News, error) {
	news, err := n.News(ctx)
	if err != nil {
		return media.News{}, err
	}

	for _, item := range news {
		if item.ID == id {
			return item, nil
		}
	}
	return media.News{}, errors.WrapInvalid(fmt.Errorf("%w: news %q", errors.ErrNotFound, id),
		"NewsAPI", "NewsItem", "find entry")
}

func newsFromItem(item *gofeed.Item) media.News {
	var authors []string
	for _, person := range item.Authors {
		if person != nil && person.Name != "" {
			authors = append(authors, person.Name)
		}
	}

	return media.News{
		ID:        item.GUID,
		Title:     item.Title,
		Link:      item.Link,
		Summary:   item.Description,
		Content:   item.Content,
		Author:    strings.Join(authors, ", "),
		CreatedAt: item.Published,
		UpdatedAt: item.Updated,
	}
}
