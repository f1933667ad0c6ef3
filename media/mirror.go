package media

import (
	"github.com/barnslig/mediacccde-graphql/nodeid"
	"github.com/barnslig/mediacccde-graphql/order"
)

// Mirror is a CDN mirror server.
type Mirror struct {
	ID             string   `json:"id"`
	ASNum          int      `json:"asnum"`
	ContinentCode  string   `json:"continentCode"`
	CountryCodes   []string `json:"countryCodes"`
	Enabled        bool     `json:"enabled"`
	FileCount      int      `json:"fileCount"`
	HTTPURL        string   `json:"httpUrl"`
	LastSync       string   `json:"lastSync"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	MonthBytes     float64  `json:"monthBytes"`
	MonthDownloads float64  `json:"monthDownloads"`
	SponsorLogoURL string   `json:"sponsorLogoUrl"`
	SponsorName    string   `json:"sponsorName"`
	SponsorURL     string   `json:"sponsorUrl"`
	Up             bool     `json:"up"`
}

// Kind implements Node.
func (Mirror) Kind() nodeid.Kind { return nodeid.Mirror }

// NaturalKey implements Node.
func (m Mirror) NaturalKey() string { return m.ID }

// MirrorOrder lists the fields mirrors can be sorted by.
var MirrorOrder = order.NewFields[Mirror](nil,
	order.Field[Mirror]{Name: "id", Key: func(m Mirror) order.Key { return order.String(m.ID) }},
	order.Field[Mirror]{Name: "lastSync", Key: func(m Mirror) order.Key { return order.String(m.LastSync) }},
	order.Field[Mirror]{Name: "fileCount", Key: func(m Mirror) order.Key { return order.Number(m.FileCount) }},
	order.Field[Mirror]{Name: "monthDownloads", Key: func(m Mirror) order.Key { return order.Number(m.MonthDownloads) }},
)
