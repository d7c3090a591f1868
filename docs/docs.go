// Package docs registers the OpenAPI document of the schemakit HTTP API with
// swag, in the layout swag init produces.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "Process is up", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        },
        "/readyz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "A document is published", "schema": {"$ref": "#/definitions/http.HealthResponse"}},
                    "503": {"description": "Still loading", "schema": {"$ref": "#/definitions/http.HealthResponse"}}
                }
            }
        },
        "/schema": {
            "get": {
                "description": "Returns the merged schema document. The fingerprint is sent as ETag and honored in If-None-Match.",
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "Get document",
                "parameters": [
                    {"type": "string", "description": "Fingerprint of a cached copy", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "Schema document", "schema": {"$ref": "#/definitions/schema.Document"}},
                    "304": {"description": "Not modified"}
                }
            }
        },
        "/schema/summary": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "Get summary",
                "responses": {
                    "200": {"description": "Counts and metadata", "schema": {"$ref": "#/definitions/http.SummaryResponse"}}
                }
            }
        },
        "/schema/entities": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "List entities",
                "responses": {
                    "200": {"description": "Entities in name order", "schema": {"type": "array", "items": {"$ref": "#/definitions/http.EntityResponse"}}}
                }
            }
        },
        "/schema/entities/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "Get entity",
                "parameters": [
                    {"type": "string", "description": "Entity name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Entity", "schema": {"$ref": "#/definitions/http.EntityResponse"}},
                    "404": {"description": "Unknown entity", "schema": {"$ref": "#/definitions/http.ErrorResponseBody"}}
                }
            }
        },
        "/schema/relationships": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "List relationships",
                "responses": {
                    "200": {"description": "Relationships in load order", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/schema/indexes": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "List indexes",
                "responses": {
                    "200": {"description": "Indexes in load order", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/schema/migrations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "List migrations",
                "responses": {
                    "200": {"description": "Migrations in load order", "schema": {"type": "array", "items": {"$ref": "#/definitions/schema.Migration"}}}
                }
            }
        },
        "/schema/seeds": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "List seeds",
                "responses": {
                    "200": {"description": "Seeds in load order", "schema": {"type": "array", "items": {"$ref": "#/definitions/schema.Seed"}}}
                }
            }
        },
        "/schema/validate": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "Validate document",
                "responses": {
                    "200": {"description": "Document is consistent", "schema": {"$ref": "#/definitions/http.ValidationResponse"}},
                    "422": {"description": "Problems found", "schema": {"$ref": "#/definitions/http.ValidationResponse"}}
                }
            }
        },
        "/schema/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Schema"],
                "summary": "Reload document",
                "responses": {
                    "200": {"description": "Summary after reload", "schema": {"$ref": "#/definitions/http.SummaryResponse"}},
                    "500": {"description": "Reload failed", "schema": {"$ref": "#/definitions/http.ErrorResponseBody"}}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "http.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/http.ErrorDetail"}
            }
        },
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "http.SummaryResponse": {
            "type": "object",
            "properties": {
                "fingerprint": {"type": "string"},
                "loaded_at": {"type": "string"},
                "generation": {"type": "integer"},
                "counts": {"$ref": "#/definitions/schema.Summary"},
                "entities": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.EntityResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "table": {"type": "string"},
                "entity": {"type": "object"}
            }
        },
        "http.ValidationResponse": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "problems": {"type": "array", "items": {"type": "string"}}
            }
        },
        "schema.Document": {
            "type": "object",
            "properties": {
                "schema": {"type": "object", "additionalProperties": {"type": "object"}},
                "relationships": {"type": "array", "items": {"type": "object"}},
                "indexes": {"type": "array", "items": {"type": "object"}},
                "migrations": {"type": "array", "items": {"$ref": "#/definitions/schema.Migration"}},
                "seeds": {"type": "array", "items": {"$ref": "#/definitions/schema.Seed"}}
            }
        },
        "schema.Migration": {
            "type": "object",
            "properties": {
                "version": {"type": "string"},
                "migration": {"type": "object"}
            }
        },
        "schema.Seed": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "seeds": {}
            }
        },
        "schema.Summary": {
            "type": "object",
            "properties": {
                "entities": {"type": "integer"},
                "relationships": {"type": "integer"},
                "indexes": {"type": "integer"},
                "migrations": {"type": "integer"},
                "seeds": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "schemakit",
	Description:      "Read-only introspection of a merged schema document.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
