package docs

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type openAPIDoc struct {
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]json.RawMessage            `json:"definitions"`
}

func readDoc(t *testing.T) (string, openAPIDoc) {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)
	var doc openAPIDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return raw, doc
}

func TestDoc_CoversRoutes(t *testing.T) {
	_, doc := readDoc(t)
	routes := map[string][]string{
		"/events":                         {"get", "post"},
		"/events/{eventID}":               {"get"},
		"/events/{eventID}/register":      {"post"},
		"/events/{eventID}/registrations": {"get"},
		"/events/{eventID}/stats":         {"get"},
		"/registrations/my-tickets":       {"get"},
		"/registrations/staff/history":    {"get"},
		"/registrations/validate":         {"post"},
		"/registrations/{ticketID}":       {"get", "delete"},
		"/admin/stats":                    {"get"},
		"/health":                         {"get"},
	}
	for path, methods := range routes {
		for _, m := range methods {
			assert.Contains(t, doc.Paths[path], m, "%s %s", m, path)
		}
	}
}

func TestDoc_RefsResolve(t *testing.T) {
	raw, doc := readDoc(t)
	refs := regexp.MustCompile(`"#/definitions/([^"]+)"`).FindAllStringSubmatch(raw, -1)
	require.NotEmpty(t, refs)
	for _, m := range refs {
		assert.Contains(t, doc.Definitions, m[1])
	}
}

func TestDoc_SuccessSchemas(t *testing.T) {
	_, doc := readDoc(t)
	var op struct {
		Responses map[string]struct {
			Schema struct {
				Ref string `json:"$ref"`
			} `json:"schema"`
		} `json:"responses"`
	}
	require.NoError(t, json.Unmarshal(doc.Paths["/registrations/validate"]["post"], &op))
	assert.Equal(t, "#/definitions/controllers.CheckInSuccessResponse", op.Responses["200"].Schema.Ref)
	assert.Equal(t, "#/definitions/controllers.CheckInSuccessResponse", op.Responses["409"].Schema.Ref)
}
