package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	docsPath = "/api-docs"
	specPath = "/api-docs/spec"
)

type operationDoc struct {
	Summary     string
	Description string
	Params      []paramDoc
	Body        *bodyDoc
	Responses   []responseDoc
}

type paramDoc struct {
	Name        string
	In          string
	Required    bool
	Description string
}

type bodyDoc struct {
	Description string
	Schema      map[string]any
}

type responseDoc struct {
	Status      int
	Description string
	Schema      map[string]any
}

func schemaRef(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func stringSchema() map[string]any {
	return map[string]any{"type": "string"}
}

func boolSchema() map[string]any {
	return map[string]any{"type": "boolean"}
}

func arraySchema(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func objectSchema(properties map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": properties}
}

var components = map[string]any{
	"schemas": map[string]any{
		"User": objectSchema(map[string]any{
			"_id":       stringSchema(),
			"nom":       stringSchema(),
			"prenom":    stringSchema(),
			"tel":       map[string]any{"type": "string", "pattern": `^\d{8}$`},
			"email":     map[string]any{"type": "string", "format": "email"},
			"createdAt": map[string]any{"type": "string", "format": "date-time"},
			"updatedAt": map[string]any{"type": "string", "format": "date-time"},
		}),
		"UserInput": objectSchema(map[string]any{
			"nom":    stringSchema(),
			"prenom": stringSchema(),
			"email":  stringSchema(),
			"tel":    stringSchema(),
		}),
		"Error": objectSchema(map[string]any{
			"success": boolSchema(),
			"message": stringSchema(),
		}),
	},
}

// openAPIDocument renders the OpenAPI 3.0 document of the given routes.
func openAPIDocument(routes []route) ([]byte, error) {
	paths := map[string]map[string]any{}
	for _, rt := range routes {
		op := map[string]any{
			"summary":     rt.doc.Summary,
			"description": rt.doc.Description,
		}
		if len(rt.doc.Params) > 0 {
			params := make([]map[string]any, len(rt.doc.Params))
			for i, p := range rt.doc.Params {
				params[i] = map[string]any{
					"name":        p.Name,
					"in":          p.In,
					"required":    p.Required,
					"description": p.Description,
					"schema":      stringSchema(),
				}
			}
			op["parameters"] = params
		}
		if rt.doc.Body != nil {
			content := map[string]any{"schema": rt.doc.Body.Schema}
			op["requestBody"] = map[string]any{
				"description": rt.doc.Body.Description,
				"content": map[string]any{
					"application/json":                  content,
					"application/x-www-form-urlencoded": content,
				},
			}
		}
		responses := map[string]any{}
		for _, resp := range rt.doc.Responses {
			r := map[string]any{"description": resp.Description}
			if resp.Schema != nil {
				r["content"] = map[string]any{"application/json": map[string]any{"schema": resp.Schema}}
			}
			responses[strconv.Itoa(resp.Status)] = r
		}
		op["responses"] = responses

		if paths[rt.pattern] == nil {
			paths[rt.pattern] = map[string]any{}
		}
		paths[rt.pattern][strings.ToLower(rt.method)] = op
	}

	doc := map[string]any{
		"openapi": "3.0.0",
		"info": map[string]any{
			"title":       "Gestion des Utilisateurs API",
			"version":     "1.0.0",
			"description": "API pour la gestion des utilisateurs.",
		},
		"paths":      paths,
		"components": components,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("error rendering openapi document: %w", err)
	}
	return data, nil
}

func serveSpec(spec []byte) func(http.ResponseWriter, *http.Request, map[string]string) {
	return func(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(spec)
	}
}

const swaggerPage = `<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="utf-8">
  <title>Gestion des Utilisateurs API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      SwaggerUIBundle({ url: "` + specPath + `", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`

func swaggerUI(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(swaggerPage))
}
