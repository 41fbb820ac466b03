package docs

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Parameters []struct {
			Name        string `json:"name"`
			In          string `json:"in"`
			Description string `json:"description"`
		} `json:"parameters"`
		Responses map[string]json.RawMessage `json:"responses"`
	} `json:"paths"`
	Definitions map[string]json.RawMessage `json:"definitions"`
}

func readDoc(t *testing.T) (string, swaggerDoc) {
	t.Helper()
	raw := SwaggerInfo.ReadDoc()
	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return raw, doc
}

func TestDoc_ParametersMatchHandlerAnnotations(t *testing.T) {
	_, doc := readDoc(t)

	tests := []struct {
		path, method, param, want string
	}{
		{"/auth/register", "post", "request", "Registration data"},
		{"/auth/login", "post", "request", "Login credentials"},
		{"/projects", "post", "request", "Project data"},
		{"/projects/{id}", "put", "id", "Project ID"},
		{"/projects/{id}", "put", "request", "Fields to change"},
		{"/projects/{projectId}/tasks/{taskId}", "delete", "taskId", "Task ID"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path+" "+tt.param, func(t *testing.T) {
			op, ok := doc.Paths[tt.path][tt.method]
			require.True(t, ok, "operation missing")
			var found bool
			for _, p := range op.Parameters {
				if p.Name == tt.param {
					found = true
					assert.Equal(t, tt.want, p.Description)
				}
			}
			assert.True(t, found, "parameter missing")
		})
	}
}

func TestDoc_ResponsesMatchHandlerAnnotations(t *testing.T) {
	_, doc := readDoc(t)

	register := doc.Paths["/auth/register"]["post"].Responses
	assert.Contains(t, register, "409")
	assert.NotContains(t, register, "403")

	get := doc.Paths["/projects/{projectId}/tasks/{taskId}"]["get"].Responses
	for _, code := range []string{"200", "400", "401", "403", "404", "500"} {
		assert.Contains(t, get, code)
	}
	assert.Contains(t, doc.Paths["/projects/{id}"]["delete"].Responses, "204")
}

func TestDoc_EveryRefResolves(t *testing.T) {
	raw, doc := readDoc(t)

	refs := regexp.MustCompile(`"#/definitions/([^"]+)"`).FindAllStringSubmatch(raw, -1)
	require.NotEmpty(t, refs)
	for _, m := range refs {
		assert.Contains(t, doc.Definitions, m[1])
	}
	assert.True(t, strings.Contains(raw, `"basePath": "/api/v1"`))
}
