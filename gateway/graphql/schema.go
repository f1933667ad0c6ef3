package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/media"
	"github.com/barnslig/mediacccde-graphql/nodeid"
	"github.com/barnslig/mediacccde-graphql/order"
	"github.com/barnslig/mediacccde-graphql/pkg/keycase"
)

// schemaBuilder assembles the executable schema around a Resolver. The
// entity types reference each other, so their fields are thunks resolved
// when the schema is created.
type schemaBuilder struct {
	r *Resolver

	node      *graphql.Interface
	pageInfo  *graphql.Object
	dateTime  *graphql.Scalar
	date      *graphql.Scalar
	direction *graphql.Enum

	conference *graphql.Object
	event      *graphql.Object
	recording  *graphql.Object
	mirror     *graphql.Object
	news       *graphql.Object

	conferenceConnection *graphql.Object
	eventConnection      *graphql.Object
	recordingConnection  *graphql.Object
	mirrorConnection     *graphql.Object
	newsConnection       *graphql.Object

	eventOrder      *graphql.Enum
	eventOrderBy    *graphql.InputObject
	conferenceOrder *graphql.Enum
	conferenceBy    *graphql.InputObject
	mirrorOrder     *graphql.Enum
	mirrorOrderBy   *graphql.InputObject
	newsOrder       *graphql.Enum
	newsOrderBy     *graphql.InputObject
}

// NewSchema builds the GraphQL schema served by the gateway.
func NewSchema(r *Resolver) (graphql.Schema, error) {
	b := &schemaBuilder{r: r}
	b.buildShared()
	b.buildOrdering()
	b.buildEntities()

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: b.query(),
		Types: []graphql.Type{b.conference, b.event, b.recording, b.mirror, b.news},
	})
	if err != nil {
		return graphql.Schema{}, errors.WrapFatal(err, "Schema", "NewSchema", "build schema")
	}
	return schema, nil
}

// stringScalar is a scalar carried as an ISO 8601 string. Empty strings are
// rendered as null.
func stringScalar(name, description string) *graphql.Scalar {
	serialize := func(value interface{}) interface{} {
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case *string:
			if v != nil && *v != "" {
				return *v
			}
		}
		return nil
	}

	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        name,
		Description: description,
		Serialize:   serialize,
		ParseValue:  serialize,
		ParseLiteral: func(valueAST ast.Value) interface{} {
			if v, ok := valueAST.(*ast.StringValue); ok {
				return v.Value
			}
			return nil
		},
	})
}

func (b *schemaBuilder) buildShared() {
	b.dateTime = stringScalar("DateTime", "An ISO 8601 date and time, e.g. 2019-12-27T11:00:00.000+01:00")
	b.date = stringScalar("Date", "An ISO 8601 date, e.g. 2019-12-27")

	b.node = graphql.NewInterface(graphql.InterfaceConfig{
		Name:        "Node",
		Description: "An object with a global id",
		Fields: graphql.Fields{
			"globalId": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
		ResolveType: b.resolveNodeType,
	})

	b.pageInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	b.direction = graphql.NewEnum(graphql.EnumConfig{
		Name: "OrderDirection",
		Values: graphql.EnumValueConfigMap{
			string(order.ASC):  &graphql.EnumValueConfig{Value: string(order.ASC)},
			string(order.DESC): &graphql.EnumValueConfig{Value: string(order.DESC)},
		},
	})
}

// resolveNodeType dispatches on the entity's kind. Untagged records fall back
// to guessing the kind from their contents.
func (b *schemaBuilder) resolveNodeType(p graphql.ResolveTypeParams) *graphql.Object {
	switch v := p.Value.(type) {
	case media.Node:
		return b.objectFor(v.Kind())
	case keycase.Record:
		// no resolver yields untagged records today
		if kind, ok := nodeid.ResolveKind(v); ok {
			return b.objectFor(kind)
		}
	}
	return nil
}

func (b *schemaBuilder) objectFor(kind nodeid.Kind) *graphql.Object {
	switch kind {
	case nodeid.Conference:
		return b.conference
	case nodeid.Event:
		return b.event
	case nodeid.Recording:
		return b.recording
	case nodeid.Mirror:
		return b.mirror
	case nodeid.News:
		return b.news
	}
	return nil
}

// orderEnum lists the enum tokens of a field table, e.g. date_ASC.
func orderEnum[T any](name string, fields order.Fields[T]) *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, token := range fields.Tokens() {
		values[token] = &graphql.EnumValueConfig{Value: token}
	}
	return graphql.NewEnum(graphql.EnumConfig{Name: name, Values: values})
}

// orderByInput builds the {field, direction} input object of a field table.
func orderByInput[T any](typeName string, fields order.Fields[T], direction *graphql.Enum) *graphql.InputObject {
	values := graphql.EnumValueConfigMap{}
	for _, name := range fields.Names() {
		values[name] = &graphql.EnumValueConfig{Value: name}
	}
	fieldEnum := graphql.NewEnum(graphql.EnumConfig{Name: typeName + "OrderField", Values: values})

	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: typeName + "OrderBy",
		Fields: graphql.InputObjectConfigFieldMap{
			"field":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(fieldEnum)},
			"direction": &graphql.InputObjectFieldConfig{Type: direction, DefaultValue: string(order.ASC)},
		},
	})
}

func (b *schemaBuilder) buildOrdering() {
	b.eventOrder = orderEnum("EventOrder", media.EventOrder)
	b.eventOrderBy = orderByInput("Event", media.EventOrder, b.direction)
	b.conferenceOrder = orderEnum("ConferenceOrder", media.ConferenceOrder)
	b.conferenceBy = orderByInput("Conference", media.ConferenceOrder, b.direction)
	b.mirrorOrder = orderEnum("MirrorOrder", media.MirrorOrder)
	b.mirrorOrderBy = orderByInput("Mirror", media.MirrorOrder, b.direction)
	b.newsOrder = orderEnum("NewsOrder", media.NewsOrder)
	b.newsOrderBy = orderByInput("News", media.NewsOrder, b.direction)
}

func pageArgsConfig(defaultLimit int) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"offset": {Type: graphql.Int, DefaultValue: 0},
		"limit":  {Type: graphql.Int, DefaultValue: defaultLimit},
	}
}

func listArgsConfig(orderType *graphql.Enum, orderBy *graphql.InputObject) graphql.FieldConfigArgument {
	args := pageArgsConfig(DefaultLimit)
	args["order"] = &graphql.ArgumentConfig{Type: orderType}
	args["orderBy"] = &graphql.ArgumentConfig{
		Type:        orderBy,
		Description: "Takes precedence over order",
	}
	return args
}

func idArgConfig() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id": {Type: graphql.NewNonNull(graphql.ID)},
	}
}

func connectionType(name string, node *graphql.Object, pageInfo *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name + "Connection",
		Fields: graphql.Fields{
			"nodes":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(node)))},
			"pageInfo":   &graphql.Field{Type: graphql.NewNonNull(pageInfo)},
			"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
}

// source returns the parent value of a nested field as T.
func source[T any](p graphql.ResolveParams) T {
	switch v := p.Source.(type) {
	case T:
		return v
	case *T:
		if v != nil {
			return *v
		}
	}
	var zero T
	return zero
}

// orNil turns a lookup result into a resolver result, keeping misses null.
func orNil[T any](v *T, err error) (interface{}, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return *v, nil
}

func idField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.ID),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if n, ok := p.Source.(media.Node); ok {
				return n.NaturalKey(), nil
			}
			return nil, nil
		},
	}
}

func globalIDField() *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.ID),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			if n, ok := p.Source.(media.Node); ok {
				return media.GlobalID(n), nil
			}
			return nil, nil
		},
	}
}

func stringList() graphql.Output {
	return graphql.NewList(graphql.NewNonNull(graphql.String))
}

func (b *schemaBuilder) buildEntities() {
	nodes := []*graphql.Interface{b.node}

	b.conference = graphql.NewObject(graphql.ObjectConfig{
		Name:       "Conference",
		Interfaces: nodes,
		Fields:     graphql.FieldsThunk(b.conferenceFields),
	})
	b.event = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Event",
		Description: "A talk or lecture",
		Interfaces:  nodes,
		Fields:      graphql.FieldsThunk(b.eventFields),
	})
	b.recording = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Recording",
		Description: "An audio or video file of an event",
		Interfaces:  nodes,
		Fields:      graphql.FieldsThunk(b.recordingFields),
	})
	b.mirror = graphql.NewObject(graphql.ObjectConfig{
		Name:        "Mirror",
		Description: "A CDN mirror server",
		Interfaces:  nodes,
		Fields:      graphql.FieldsThunk(b.mirrorFields),
	})
	b.news = graphql.NewObject(graphql.ObjectConfig{
		Name:       "News",
		Interfaces: nodes,
		Fields:     graphql.FieldsThunk(b.newsFields),
	})

	b.conferenceConnection = connectionType("Conference", b.conference, b.pageInfo)
	b.eventConnection = connectionType("Event", b.event, b.pageInfo)
	b.recordingConnection = connectionType("Recording", b.recording, b.pageInfo)
	b.mirrorConnection = connectionType("Mirror", b.mirror, b.pageInfo)
	b.newsConnection = connectionType("News", b.news, b.pageInfo)
}

func (b *schemaBuilder) conferenceFields() graphql.Fields {
	return graphql.Fields{
		"id":                  idField(),
		"globalId":            globalIDField(),
		"acronym":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"aspectRatio":         &graphql.Field{Type: graphql.String},
		"description":         &graphql.Field{Type: graphql.String},
		"eventLastReleasedAt": &graphql.Field{Type: b.date},
		"imagesUrl":           &graphql.Field{Type: graphql.String},
		"link":                &graphql.Field{Type: graphql.String},
		"logoUrl":             &graphql.Field{Type: graphql.String},
		"recordingsUrl":       &graphql.Field{Type: graphql.String},
		"scheduleUrl":         &graphql.Field{Type: graphql.String},
		"slug":                &graphql.Field{Type: graphql.String},
		"title":               &graphql.Field{Type: graphql.String},
		"updatedAt":           &graphql.Field{Type: b.dateTime},
		"url":                 &graphql.Field{Type: graphql.String},
		"webgenLocation":      &graphql.Field{Type: graphql.String},
		"events": &graphql.Field{
			Type: graphql.NewNonNull(b.eventConnection),
			Args: listArgsConfig(b.eventOrder, b.eventOrderBy),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				args, err := parseListArgs(p.Args)
				if err != nil {
					return nil, wrapError(err, "Conference.events")
				}
				return b.r.ConferenceEvents(p.Context, source[media.Conference](p), args)
			},
		},
	}
}

func (b *schemaBuilder) eventFields() graphql.Fields {
	return graphql.Fields{
		"id":               idField(),
		"globalId":         globalIDField(),
		"guid":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"title":            &graphql.Field{Type: graphql.String},
		"subtitle":         &graphql.Field{Type: graphql.String},
		"slug":             &graphql.Field{Type: graphql.String},
		"link":             &graphql.Field{Type: graphql.String},
		"description":      &graphql.Field{Type: graphql.String},
		"originalLanguage": &graphql.Field{Type: graphql.String},
		"persons":          &graphql.Field{Type: stringList()},
		"tags":             &graphql.Field{Type: stringList()},
		"viewCount":        &graphql.Field{Type: graphql.Int},
		"promoted":         &graphql.Field{Type: graphql.Boolean},
		"date":             &graphql.Field{Type: b.dateTime},
		"releaseDate":      &graphql.Field{Type: b.date},
		"updatedAt":        &graphql.Field{Type: b.dateTime},
		"length":           &graphql.Field{Type: graphql.Int, Description: "Length in seconds"},
		"duration":         &graphql.Field{Type: graphql.Int, Description: "Duration in seconds"},
		"thumbUrl":         &graphql.Field{Type: graphql.String},
		"posterUrl":        &graphql.Field{Type: graphql.String},
		"timelineUrl":      &graphql.Field{Type: graphql.String},
		"thumbnailsUrl":    &graphql.Field{Type: graphql.String},
		"frontendLink":     &graphql.Field{Type: graphql.String},
		"url":              &graphql.Field{Type: graphql.String},
		"conferenceTitle":  &graphql.Field{Type: graphql.String},
		"conferenceUrl":    &graphql.Field{Type: graphql.String},
		"conference": &graphql.Field{
			Type: b.conference,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return orNil(b.r.EventConference(p.Context, source[media.Event](p)))
			},
		},
		"recordings": &graphql.Field{
			Type: graphql.NewNonNull(b.recordingConnection),
			Args: pageArgsConfig(DefaultLimit),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				args, err := parsePageArgs(p.Args, DefaultLimit)
				if err != nil {
					return nil, wrapError(err, "Event.recordings")
				}
				return b.r.EventRecordings(p.Context, source[media.Event](p), args)
			},
		},
		"relatedEvents": &graphql.Field{
			Type:        graphql.NewNonNull(b.eventConnection),
			Description: "Related events, most related first",
			Args:        pageArgsConfig(DefaultRelatedLimit),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				args, err := parsePageArgs(p.Args, DefaultRelatedLimit)
				if err != nil {
					return nil, wrapError(err, "Event.relatedEvents")
				}
				return b.r.EventRelated(p.Context, source[media.Event](p), args)
			},
		},
	}
}

func (b *schemaBuilder) recordingFields() graphql.Fields {
	return graphql.Fields{
		"id":            idField(),
		"globalId":      globalIDField(),
		"filename":      &graphql.Field{Type: graphql.String},
		"folder":        &graphql.Field{Type: graphql.String},
		"height":        &graphql.Field{Type: graphql.Int},
		"width":         &graphql.Field{Type: graphql.Int},
		"highQuality":   &graphql.Field{Type: graphql.Boolean},
		"language":      &graphql.Field{Type: graphql.String},
		"length":        &graphql.Field{Type: graphql.Int},
		"mimeType":      &graphql.Field{Type: graphql.String},
		"recordingUrl":  &graphql.Field{Type: graphql.String},
		"size":          &graphql.Field{Type: graphql.Int, Description: "Size in megabytes"},
		"state":         &graphql.Field{Type: graphql.String},
		"updatedAt":     &graphql.Field{Type: b.dateTime},
		"url":           &graphql.Field{Type: graphql.String},
		"eventUrl":      &graphql.Field{Type: graphql.String},
		"conferenceUrl": &graphql.Field{Type: graphql.String},
		"event": &graphql.Field{
			Type: b.event,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return orNil(b.r.RecordingEvent(p.Context, source[media.Recording](p)))
			},
		},
		"conference": &graphql.Field{
			Type: b.conference,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return orNil(b.r.RecordingConference(p.Context, source[media.Recording](p)))
			},
		},
	}
}

func (b *schemaBuilder) mirrorFields() graphql.Fields {
	return graphql.Fields{
		"id":             idField(),
		"globalId":       globalIDField(),
		"asnum":          &graphql.Field{Type: graphql.Int},
		"continentCode":  &graphql.Field{Type: graphql.String},
		"countryCodes":   &graphql.Field{Type: stringList()},
		"enabled":        &graphql.Field{Type: graphql.Boolean},
		"fileCount":      &graphql.Field{Type: graphql.Int},
		"httpUrl":        &graphql.Field{Type: graphql.String},
		"lastSync":       &graphql.Field{Type: b.dateTime},
		"latitude":       &graphql.Field{Type: graphql.Float},
		"longitude":      &graphql.Field{Type: graphql.Float},
		"monthBytes":     &graphql.Field{Type: graphql.Float},
		"monthDownloads": &graphql.Field{Type: graphql.Float},
		"sponsorLogoUrl": &graphql.Field{Type: graphql.String},
		"sponsorName":    &graphql.Field{Type: graphql.String},
		"sponsorUrl":     &graphql.Field{Type: graphql.String},
		"up":             &graphql.Field{Type: graphql.Boolean},
	}
}

func (b *schemaBuilder) newsFields() graphql.Fields {
	return graphql.Fields{
		"id":        idField(),
		"globalId":  globalIDField(),
		"title":     &graphql.Field{Type: graphql.String},
		"link":      &graphql.Field{Type: graphql.String},
		"summary":   &graphql.Field{Type: graphql.String},
		"content":   &graphql.Field{Type: graphql.String},
		"author":    &graphql.Field{Type: graphql.String},
		"createdAt": &graphql.Field{Type: b.dateTime},
		"updatedAt": &graphql.Field{Type: b.dateTime},
	}
}

func (b *schemaBuilder) query() *graphql.Object {
	r := b.r

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"conferences": &graphql.Field{
				Type: graphql.NewNonNull(b.conferenceConnection),
				Args: listArgsConfig(b.conferenceOrder, b.conferenceBy),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, err := parseListArgs(p.Args)
					if err != nil {
						return nil, wrapError(err, "conferences")
					}
					return r.Conferences(p.Context, args)
				},
			},
			"conference": &graphql.Field{
				Type: b.conference,
				Args: idArgConfig(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return orNil(r.Conference(p.Context, id))
				},
			},
			"events": &graphql.Field{
				Type: graphql.NewNonNull(b.eventConnection),
				Args: pageArgsConfig(DefaultLimit),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, err := parsePageArgs(p.Args, DefaultLimit)
					if err != nil {
						return nil, wrapError(err, "events")
					}
					return r.Events(p.Context, args)
				},
			},
			"event": &graphql.Field{
				Type: b.event,
				Args: idArgConfig(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return orNil(r.Event(p.Context, id))
				},
			},
			"eventsSearch": &graphql.Field{
				Type: graphql.NewNonNull(b.eventConnection),
				Args: func() graphql.FieldConfigArgument {
					args := pageArgsConfig(DefaultLimit)
					args["query"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}
					return args
				}(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, err := parsePageArgs(p.Args, DefaultLimit)
					if err != nil {
						return nil, wrapError(err, "eventsSearch")
					}
					query, _ := p.Args["query"].(string)
					return r.EventsSearch(p.Context, query, args)
				},
			},
			"recordings": &graphql.Field{
				Type: graphql.NewNonNull(b.recordingConnection),
				Args: pageArgsConfig(DefaultLimit),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, err := parsePageArgs(p.Args, DefaultLimit)
					if err != nil {
						return nil, wrapError(err, "recordings")
					}
					return r.Recordings(p.Context, args)
				},
			},
			"recording": &graphql.Field{
				Type: b.recording,
				Args: idArgConfig(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return orNil(r.Recording(p.Context, id))
				},
			},
			"mirrors": &graphql.Field{
				Type: graphql.NewNonNull(b.mirrorConnection),
				Args: listArgsConfig(b.mirrorOrder, b.mirrorOrderBy),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, err := parseListArgs(p.Args)
					if err != nil {
						return nil, wrapError(err, "mirrors")
					}
					return r.Mirrors(p.Context, args)
				},
			},
			"mirror": &graphql.Field{
				Type: b.mirror,
				Args: idArgConfig(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return orNil(r.Mirror(p.Context, id))
				},
			},
			"news": &graphql.Field{
				Type: graphql.NewNonNull(b.newsConnection),
				Args: listArgsConfig(b.newsOrder, b.newsOrderBy),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					args, err := parseListArgs(p.Args)
					if err != nil {
						return nil, wrapError(err, "news")
					}
					return r.News(p.Context, args)
				},
			},
			"node": &graphql.Field{
				Type:        b.node,
				Description: "Fetches an object given its global id",
				Args:        idArgConfig(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					node, err := r.Node(p.Context, id)
					if err != nil || node == nil {
						return nil, err
					}
					return node, nil
				},
			},
		},
	})
}
