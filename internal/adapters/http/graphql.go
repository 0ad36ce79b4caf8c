package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/dronepath/internal/core/domain"
)

// buildSchema creates the read-only GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	waypointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Waypoint",
		Fields: graphql.Fields{
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
			"timestamp": &graphql.Field{Type: graphql.Float},
		},
	})

	frameType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Frame",
		Fields: graphql.Fields{
			"index":    &graphql.Field{Type: graphql.Int},
			"step":     &graphql.Field{Type: graphql.Int},
			"steps":    &graphql.Field{Type: graphql.Int},
			"position": &graphql.Field{Type: geoPointType},
			"state":    &graphql.Field{Type: graphql.String},
			"paused":   &graphql.Field{Type: graphql.Boolean},
			"at_end":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"created_at":    &graphql.Field{Type: graphql.String},
			"points":        &graphql.Field{Type: graphql.Int},
			"current_index": &graphql.Field{Type: graphql.Int},
			"is_paused":     &graphql.Field{Type: graphql.Boolean},
			"status":        &graphql.Field{Type: graphql.String},
			"path": &graphql.Field{
				Type: graphql.NewList(waypointType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Source.(map[string]interface{})["id"].(string)
					snap, err := deps.Sessions.Snapshot(id)
					if err != nil {
						return nil, err
					}
					return waypointsToMaps(snap.Path), nil
				},
			},
			"frame": &graphql.Field{
				Type: frameType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Source.(map[string]interface{})["id"].(string)
					f, err := deps.Sessions.Frame(id)
					if err != nil {
						return nil, err
					}
					return frameToMap(f), nil
				},
			},
		},
	})

	savedPathType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SavedPath",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"point_count": &graphql.Field{Type: graphql.Int},
			"length_m":    &graphql.Field{Type: graphql.Float},
			"created_at":  &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"sessions": &graphql.Field{
				Type:        graphql.NewList(sessionType),
				Description: "List live playback sessions",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var result []map[string]interface{}
					for _, s := range deps.Sessions.List() {
						result = append(result, sessionToMap(s))
					}
					return result, nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Get a session by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					s, err := deps.Sessions.Get(id)
					if err != nil {
						return nil, err
					}
					return sessionToMap(*s), nil
				},
			},
			"savedPaths": &graphql.Field{
				Type:        graphql.NewList(savedPathType),
				Description: "List saved paths, newest first",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					paths, err := deps.Library.List(p.Context, limit)
					if err != nil {
						return nil, err
					}
					var result []map[string]interface{}
					for _, sp := range paths {
						result = append(result, map[string]interface{}{
							"id":          sp.ID,
							"name":        sp.Name,
							"point_count": sp.PointCount,
							"length_m":    sp.LengthM,
							"created_at":  sp.CreatedAt.Format(time.RFC3339),
						})
					}
					return result, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func sessionToMap(s domain.Session) map[string]interface{} {
	return map[string]interface{}{
		"id":            s.ID,
		"created_at":    s.CreatedAt.Format(time.RFC3339),
		"points":        s.Points,
		"current_index": s.State.CurrentIndex,
		"is_paused":     s.State.IsPaused,
		"status":        string(s.Status),
	}
}

func frameToMap(f domain.Frame) map[string]interface{} {
	return map[string]interface{}{
		"index":    f.Index,
		"step":     f.Step,
		"steps":    f.Steps,
		"position": map[string]interface{}{"lat": f.Position.Lat, "lon": f.Position.Lon},
		"state":    string(f.Status),
		"paused":   f.Paused,
		"at_end":   f.AtEnd,
	}
}

func waypointsToMaps(p domain.Path) []map[string]interface{} {
	out := make([]map[string]interface{}, len(p))
	for i, w := range p {
		out[i] = map[string]interface{}{
			"latitude":  w.Latitude,
			"longitude": w.Longitude,
			"timestamp": float64(w.Timestamp),
		}
	}
	return out
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
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
