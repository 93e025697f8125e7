//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/predict": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Generate a completion",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PredictRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PredictResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/predict/stream": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/x-ndjson"],
                "summary": "Stream a completion as NDJSON",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PredictRequest"}}],
                "responses": {
                    "200": {"description": "One StreamLine per chunk", "schema": {"$ref": "#/definitions/StreamLine"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/v1/tokens/count": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Count prompt tokens",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CountRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/CountResponse"}}}
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "summary": "Server status",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/StatusResponse"}}}
            }
        }
    },
    "definitions": {
        "PredictRequest": {"type": "object", "properties": {"prompt": {"type": "string"}, "max_output_tokens": {"type": "integer"}}},
        "Usage": {"type": "object", "properties": {"prompt_tokens": {"type": "integer"}, "completion_tokens": {"type": "integer"}, "total_tokens": {"type": "integer"}}},
        "PredictResponse": {"type": "object", "properties": {"text": {"type": "string"}, "done": {"type": "boolean"}, "finish_reason": {"type": "string"}, "usage": {"$ref": "#/definitions/Usage"}}},
        "StreamLine": {"type": "object", "properties": {"text": {"type": "string"}, "done": {"type": "boolean"}, "finish_reason": {"type": "string"}, "usage": {"$ref": "#/definitions/Usage"}, "error": {"type": "string"}}},
        "CountRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "CountResponse": {"type": "object", "properties": {"count": {"type": "integer"}}},
        "ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}, "status": {"type": "integer"}}},
        "StatusResponse": {"type": "object", "properties": {"state": {"type": "string"}, "inflight": {"type": "integer"}, "max_inflight": {"type": "integer"}, "queue_len": {"type": "integer"}, "max_tokens": {"type": "integer"}, "stop_sequences": {"type": "array", "items": {"type": "string"}}, "last_error": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "genai API",
	Description:      "HTTP API for streaming text generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// MountSwagger serves the API document and the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
