package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/geocascade"
	"github.com/samirrijal/backoffice/internal/core/usecases"
)

// buildSchema creates the read-only geography schema.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	countryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Country",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.String},
			"name": &graphql.Field{Type: graphql.String},
			"code": &graphql.Field{Type: graphql.String},
		},
	})

	stateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "State",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.String},
			"name":       &graphql.Field{Type: graphql.String},
			"country_id": &graphql.Field{Type: graphql.String},
		},
	})

	cityFields := graphql.Fields{
		"id":         &graphql.Field{Type: graphql.String},
		"name":       &graphql.Field{Type: graphql.String},
		"state_id":   &graphql.Field{Type: graphql.String},
		"country_id": &graphql.Field{Type: graphql.String},
		"latitude":   &graphql.Field{Type: graphql.Float},
		"longitude":  &graphql.Field{Type: graphql.Float},
	}
	cityType := graphql.NewObject(graphql.ObjectConfig{Name: "City", Fields: cityFields})

	nearbyFields := graphql.Fields{"distance_meters": &graphql.Field{Type: graphql.Float}}
	for k, v := range cityFields {
		nearbyFields[k] = &graphql.Field{Type: v.Type}
	}
	nearbyType := graphql.NewObject(graphql.ObjectConfig{Name: "NearbyCity", Fields: nearbyFields})

	selectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Selection",
		Fields: graphql.Fields{
			"country_id":   &graphql.Field{Type: graphql.String},
			"state_id":     &graphql.Field{Type: graphql.String},
			"city_id":      &graphql.Field{Type: graphql.String},
			"country_name": &graphql.Field{Type: graphql.String},
			"state_name":   &graphql.Field{Type: graphql.String},
			"city_name":    &graphql.Field{Type: graphql.String},
			"latitude":     &graphql.Field{Type: graphql.Float},
			"longitude":    &graphql.Field{Type: graphql.Float},
		},
	})

	selectionInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SelectionInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"country_id":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"state_id":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"city_id":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"country_name": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"state_name":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"city_name":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"latitude":     &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"longitude":    &graphql.InputObjectFieldConfig{Type: graphql.Float},
		},
	})

	cascadeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Cascade",
		Fields: graphql.Fields{
			"selection": &graphql.Field{Type: selectionType},
			"states":    &graphql.Field{Type: graphql.NewList(stateType)},
			"cities":    &graphql.Field{Type: graphql.NewList(cityType)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"countries": &graphql.Field{
				Type:        graphql.NewList(countryType),
				Description: "List all countries",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					countries, err := deps.Geo.ListCountries(p.Context)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(countries))
					for _, c := range countries {
						out = append(out, map[string]interface{}{"id": c.ID, "name": c.Name, "code": c.Code})
					}
					return out, nil
				},
			},
			"states": &graphql.Field{
				Type:        graphql.NewList(stateType),
				Description: "List states, optionally of one country",
				Args: graphql.FieldConfigArgument{
					"country_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					states, err := deps.Geo.ListStates(p.Context, p.Args["country_id"].(string))
					if err != nil {
						return nil, err
					}
					return stateMaps(states), nil
				},
			},
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "List cities, optionally of one country and state",
				Args: graphql.FieldConfigArgument{
					"country_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"state_id":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					cities, err := deps.Geo.ListCities(p.Context, p.Args["country_id"].(string), p.Args["state_id"].(string))
					if err != nil {
						return nil, err
					}
					return cityMaps(cities), nil
				},
			},
			"citiesNearby": &graphql.Field{
				Type:        graphql.NewList(nearbyType),
				Description: "Cities near a point, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					nearby, err := deps.Geo.NearbyCities(p.Context,
						p.Args["lat"].(float64), p.Args["lon"].(float64),
						p.Args["radius"].(float64), p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(nearby))
					for _, n := range nearby {
						m := cityMap(n.City)
						m["distance_meters"] = n.DistanceMeters
						out = append(out, m)
					}
					return out, nil
				},
			},
			"cascade": &graphql.Field{
				Type:        cascadeType,
				Description: "Apply a country, state or city change to a form selection",
				Args: graphql.FieldConfigArgument{
					"event":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"current":    &graphql.ArgumentConfig{Type: selectionInput},
					"country_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"state_id":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"city_id":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"city_text":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					current, _ := p.Args["current"].(map[string]interface{})
					res, err := deps.Geo.Cascade(p.Context, usecases.CascadeRequest{
						Selection: selectionFromArgs(current),
						Event:     usecases.CascadeEvent(p.Args["event"].(string)),
						CountryID: p.Args["country_id"].(string),
						StateID:   p.Args["state_id"].(string),
						CityID:    p.Args["city_id"].(string),
						CityText:  p.Args["city_text"].(string),
					})
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"selection": selectionMap(res.Selection),
						"states":    stateMaps(res.Options.States),
						"cities":    cityMaps(res.Options.Cities),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func stateMaps(states []domain.State) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(states))
	for _, s := range states {
		out = append(out, map[string]interface{}{"id": s.ID, "name": s.Name, "country_id": s.CountryID.ID})
	}
	return out
}

func cityMap(c domain.City) map[string]interface{} {
	m := map[string]interface{}{
		"id":         c.ID,
		"name":       c.Name,
		"state_id":   domain.ExtractID(c.StateID),
		"country_id": domain.ExtractID(c.CountryID),
	}
	if pt, ok := c.Point(); ok {
		m["latitude"], m["longitude"] = pt.Lat, pt.Lon
	}
	return m
}

func cityMaps(cities []domain.City) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(cities))
	for _, c := range cities {
		out = append(out, cityMap(c))
	}
	return out
}

func selectionMap(s geocascade.Selection) map[string]interface{} {
	m := map[string]interface{}{
		"country_id":   s.CountryID,
		"state_id":     s.StateID,
		"city_id":      s.CityID,
		"country_name": s.CountryName,
		"state_name":   s.StateName,
		"city_name":    s.CityName,
	}
	if s.Latitude != nil && s.Longitude != nil {
		m["latitude"], m["longitude"] = *s.Latitude, *s.Longitude
	}
	return m
}

func selectionFromArgs(in map[string]interface{}) geocascade.Selection {
	str := func(k string) string {
		v, _ := in[k].(string)
		return v
	}
	sel := geocascade.Selection{
		CountryID:   str("country_id"),
		StateID:     str("state_id"),
		CityID:      str("city_id"),
		CountryName: str("country_name"),
		StateName:   str("state_name"),
		CityName:    str("city_name"),
	}
	if lat, ok := in["latitude"].(float64); ok {
		sel.Latitude = &lat
	}
	if lon, ok := in["longitude"].(float64); ok {
		sel.Longitude = &lon
	}
	return sel
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
