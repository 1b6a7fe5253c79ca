// Package openapi describes the translate service of the dev server as an
// OpenAPI document.
package openapi

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/daveroberts0321/politecode/parser/types"
	"github.com/daveroberts0321/politecode/report"
)

type m = yaml.MapSlice
type kv = yaml.MapItem

// Generate renders the dev server API as a YAML OpenAPI document. Keys keep
// their declaration order.
func Generate(version string) ([]byte, error) {
	if version == "" {
		return nil, errors.New("empty API version")
	}

	categories := []interface{}{
		string(report.Lexical), string(report.Structural), string(report.Scope),
		string(report.Type), string(report.Semantic), string(report.EntryPoint),
	}
	declared := []interface{}{
		types.Integer.String(), types.Decimal.String(), types.Boolean.String(),
		types.Text.String(), types.Void.String(),
	}

	doc := m{
		{Key: "openapi", Value: "3.0.0"},
		{Key: "info", Value: m{
			{Key: "title", Value: "PoliteCode Translate API"},
			{Key: "version", Value: version},
		}},
		{Key: "paths", Value: m{
			{Key: "/api/health", Value: m{
				{Key: "get", Value: m{
					{Key: "summary", Value: "Health check"},
					{Key: "responses", Value: m{
						{Key: "200", Value: jsonResponse("Service is up", "Health")},
					}},
				}},
			}},
			{Key: "/api/translate", Value: m{
				{Key: "post", Value: m{
					{Key: "summary", Value: "Translate PoliteCode source to C#"},
					{Key: "requestBody", Value: m{
						{Key: "required", Value: true},
						{Key: "content", Value: m{
							{Key: "application/json", Value: m{
								{Key: "schema", Value: ref("TranslateRequest")},
							}},
						}},
					}},
					{Key: "responses", Value: m{
						{Key: "200", Value: jsonResponse("Translation result", "TranslateResponse")},
						{Key: "400", Value: m{{Key: "description", Value: "Malformed request"}}},
						{Key: "429", Value: m{{Key: "description", Value: "Rate limit exceeded"}}},
					}},
				}},
			}},
			{Key: "/api/templates", Value: m{
				{Key: "get", Value: m{
					{Key: "summary", Value: "List the bundled example programs"},
					{Key: "responses", Value: m{
						{Key: "200", Value: m{
							{Key: "description", Value: "Template names and sources"},
							{Key: "content", Value: m{
								{Key: "application/json", Value: m{
									{Key: "schema", Value: m{
										{Key: "type", Value: "array"},
										{Key: "items", Value: ref("Template")},
									}},
								}},
							}},
						}},
					}},
				}},
			}},
			{Key: "/metrics", Value: m{
				{Key: "get", Value: m{
					{Key: "summary", Value: "Prometheus metrics"},
					{Key: "responses", Value: m{
						{Key: "200", Value: m{{Key: "description", Value: "Metrics in text exposition format"}}},
					}},
				}},
			}},
		}},
		{Key: "components", Value: m{
			{Key: "schemas", Value: m{
				{Key: "Health", Value: object(m{
					{Key: "status", Value: prop("string", "")},
				})},
				{Key: "TranslateRequest", Value: object(m{
					{Key: "source", Value: prop("string", "PoliteCode program, one statement per line")},
					{Key: "namespace", Value: prop("string", "Wrapping namespace; empty emits the class alone")},
				}, "source")},
				{Key: "TranslateResponse", Value: object(m{
					{Key: "id", Value: m{{Key: "type", Value: "string"}, {Key: "format", Value: "uuid"}}},
					{Key: "ok", Value: prop("boolean", "")},
					{Key: "code", Value: prop("string", "Generated C# program")},
					{Key: "diagnostics", Value: m{
						{Key: "type", Value: "array"},
						{Key: "items", Value: ref("Diagnostic")},
					}},
				}, "id", "ok", "diagnostics")},
				{Key: "Diagnostic", Value: object(m{
					{Key: "category", Value: m{{Key: "type", Value: "string"}, {Key: "enum", Value: categories}}},
					{Key: "message", Value: prop("string", "")},
					{Key: "line", Value: prop("integer", "1-based source line")},
					{Key: "column", Value: prop("integer", "1-based source column")},
					{Key: "terminal", Value: prop("boolean", "The run stopped here")},
				}, "category", "message")},
				{Key: "Template", Value: object(m{
					{Key: "name", Value: prop("string", "")},
					{Key: "source", Value: prop("string", "")},
				}, "name", "source")},
				{Key: "DeclaredType", Value: m{{Key: "type", Value: "string"}, {Key: "enum", Value: declared}}},
			}},
		}},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal openapi document")
	}
	return out, nil
}

// WriteFile renders the document and writes it to path, creating parent
// directories.
func WriteFile(path, version string) error {
	out, err := Generate(version)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	return errors.Wrapf(os.WriteFile(path, out, 0644), "write %s", path)
}

func ref(name string) m {
	return m{{Key: "$ref", Value: "#/components/schemas/" + name}}
}

func prop(typ, description string) m {
	p := m{{Key: "type", Value: typ}}
	if description != "" {
		p = append(p, kv{Key: "description", Value: description})
	}
	return p
}

func object(properties m, required ...string) m {
	o := m{{Key: "type", Value: "object"}, {Key: "properties", Value: properties}}
	if len(required) > 0 {
		req := make([]interface{}, len(required))
		for i, r := range required {
			req[i] = r
		}
		o = append(o, kv{Key: "required", Value: req})
	}
	return o
}

func jsonResponse(description, schema string) m {
	return m{
		{Key: "description", Value: description},
		{Key: "content", Value: m{
			{Key: "application/json", Value: m{
				{Key: "schema", Value: ref(schema)},
			}},
		}},
	}
}
