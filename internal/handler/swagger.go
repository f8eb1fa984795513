package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dafibh/pocketledger/pocketledger-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

const (
	swagger2RefPrefix = "#/definitions/"
	openAPI3RefPrefix = "#/components/schemas/"
)

// OpenAPIDocument is the subset of an OpenAPI 3.0 document we emit
type OpenAPIDocument struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []OpenAPIServer        `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// OpenAPIServer is one entry of the servers list
type OpenAPIServer struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

var defaultServers = []OpenAPIServer{
	{URL: "http://localhost:8080/api/v1", Description: "Local Development"},
	{URL: "https://api.pocketledger.app/api/v1", Description: "Production"},
}

var (
	openAPIOnce sync.Once
	openAPIDoc  *OpenAPIDocument
	openAPIErr  error
)

// ServeOpenAPI3Spec handles GET /openapi.json. The registered swagger 2.0 doc is
// converted once and reused.
func ServeOpenAPI3Spec(c echo.Context) error {
	openAPIOnce.Do(func() {
		var raw string
		raw, openAPIErr = swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if openAPIErr != nil {
			return
		}
		openAPIDoc, openAPIErr = ConvertSwagger2([]byte(raw), defaultServers)
	})
	if openAPIErr != nil {
		log.Error().Err(openAPIErr).Msg("Failed to build OpenAPI document")
		return NewInternalError(c, "API documentation is unavailable")
	}
	return c.JSON(http.StatusOK, openAPIDoc)
}

// ConvertSwagger2 turns a swagger 2.0 JSON document into OpenAPI 3.0.
func ConvertSwagger2(raw []byte, servers []OpenAPIServer) (*OpenAPIDocument, error) {
	var swagger2 map[string]interface{}
	if err := json.Unmarshal(raw, &swagger2); err != nil {
		return nil, fmt.Errorf("parse swagger doc: %w", err)
	}

	info, _ := swagger2["info"].(map[string]interface{})

	paths := make(map[string]interface{})
	if rawPaths, ok := swagger2["paths"].(map[string]interface{}); ok {
		for path, item := range rawPaths {
			methods, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			converted := make(map[string]interface{}, len(methods))
			for method, op := range methods {
				if operation, ok := op.(map[string]interface{}); ok {
					converted[method] = convertOperation(operation)
				}
			}
			paths[path] = converted
		}
	}

	components := make(map[string]interface{})
	if secDefs, ok := swagger2["securityDefinitions"].(map[string]interface{}); ok {
		components["securitySchemes"] = convertSecuritySchemes(secDefs)
	}
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = rewriteRefs(definitions)
	}

	return &OpenAPIDocument{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    servers,
		Paths:      paths,
		Components: components,
	}, nil
}

// convertOperation moves body/formData parameters into requestBody and wraps
// response schemas in a JSON media type.
func convertOperation(op map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(op))
	for key, value := range op {
		switch key {
		case "parameters", "responses", "consumes", "produces":
		default:
			result[key] = rewriteRefs(value)
		}
	}

	var (
		params     []interface{}
		formFields = make(map[string]interface{})
		formNeeded []interface{}
	)
	rawParams, _ := op["parameters"].([]interface{})
	for _, p := range rawParams {
		param, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			body := map[string]interface{}{
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{"schema": rewriteRefs(param["schema"])},
				},
			}
			if desc, ok := param["description"]; ok {
				body["description"] = desc
			}
			if required, ok := param["required"]; ok {
				body["required"] = required
			}
			result["requestBody"] = body
		case "formData":
			name, _ := param["name"].(string)
			field := map[string]interface{}{"type": param["type"]}
			if param["type"] == "file" {
				field = map[string]interface{}{"type": "string", "format": "binary"}
			}
			if desc, ok := param["description"]; ok {
				field["description"] = desc
			}
			formFields[name] = field
			if required, _ := param["required"].(bool); required {
				formNeeded = append(formNeeded, name)
			}
		default:
			params = append(params, convertParameter(param))
		}
	}
	if len(formFields) > 0 {
		schema := map[string]interface{}{"type": "object", "properties": formFields}
		if len(formNeeded) > 0 {
			schema["required"] = formNeeded
		}
		result["requestBody"] = map[string]interface{}{
			"required": true,
			"content": map[string]interface{}{
				"multipart/form-data": map[string]interface{}{"schema": schema},
			},
		}
	}
	if len(params) > 0 {
		result["parameters"] = params
	}

	if rawResponses, ok := op["responses"].(map[string]interface{}); ok {
		responses := make(map[string]interface{}, len(rawResponses))
		for code, r := range rawResponses {
			resp, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			converted := map[string]interface{}{"description": resp["description"]}
			if schema, ok := resp["schema"]; ok {
				converted["content"] = map[string]interface{}{
					"application/json": map[string]interface{}{"schema": rewriteRefs(schema)},
				}
			}
			responses[code] = converted
		}
		result["responses"] = responses
	}

	return result
}

// convertParameter moves type fields of a path/query/header parameter under schema
func convertParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = rewriteRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

// convertSecuritySchemes maps the apiKey Authorization header to a bearer scheme
func convertSecuritySchemes(defs map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(defs))
	for name, d := range defs {
		def, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		if def["type"] == "apiKey" && def["in"] == "header" && def["name"] == echo.HeaderAuthorization {
			result[name] = map[string]interface{}{
				"type":         "http",
				"scheme":       "bearer",
				"bearerFormat": "JWT",
			}
			continue
		}
		result[name] = def
	}
	return result
}

// rewriteRefs points every $ref at components/schemas
func rewriteRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, swagger2RefPrefix, openAPI3RefPrefix, 1)
				continue
			}
			result[key] = rewriteRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = rewriteRefs(item)
		}
		return result
	default:
		return data
	}
}
