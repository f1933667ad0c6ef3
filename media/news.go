package media

import (
	"github.com/barnslig/mediacccde-graphql/nodeid"
	"github.com/barnslig/mediacccde-graphql/order"
)

// News is an entry of the media.ccc.de news feed.
type News struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Kind implements Node.
func (News) Kind() nodeid.Kind { return nodeid.News }

// NaturalKey implements Node.
func (n News) NaturalKey() string { return n.ID }

// NewsOrder lists the fields news entries can be sorted by.
var NewsOrder = order.NewFields[News](nil,
	order.Field[News]{Name: "createdAt", Key: func(n News) order.Key { return order.String(n.CreatedAt) }},
	order.Field[News]{Name: "updatedAt", Key: func(n News) order.Key { return order.String(n.UpdatedAt) }},
	order.Field[News]{Name: "title", Key: func(n News) order.Key { return order.String(n.Title) }},
)
