// Package docs - OpenAPI описание Spot Resolver API (формат swag init).
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {"name": "MIT", "url": "https://opensource.org/licenses/MIT"},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Degraded", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/resolve": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["spots"],
                "summary": "Resolve a map click",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ResolveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ResolveResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "503": {"description": "Dataset unavailable", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/spots/nearest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["spots"],
                "summary": "Best spot within radius",
                "parameters": [
                    {"type": "string", "name": "date", "in": "query", "required": true},
                    {"type": "string", "name": "time", "in": "query"},
                    {"type": "number", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "name": "lng", "in": "query", "required": true},
                    {"type": "string", "name": "level", "in": "query"},
                    {"type": "number", "name": "radius_km", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.NearestResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}},
                    "404": {"description": "No spot within radius", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/viewport/reconcile": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["markers"],
                "summary": "Reconcile viewport markers",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.ReconcileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ReconcileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/saved/click": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["saved"],
                "summary": "Saved marker click",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SavedClickRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Resolution"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        },
        "/api/v1/users/{user_id}/saved": {
            "get": {
                "produces": ["application/json"],
                "tags": ["saved"],
                "summary": "List saved entries",
                "parameters": [
                    {"type": "string", "name": "user_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SavedListResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["saved"],
                "summary": "Save a forecast snapshot",
                "parameters": [
                    {"type": "string", "name": "user_id", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SaveEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.SavedEntry"}},
                    "404": {"description": "Spot not in dataset", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["saved"],
                "summary": "Delete a saved slot",
                "parameters": [
                    {"type": "string", "name": "user_id", "in": "path", "required": true},
                    {"type": "string", "name": "location_id", "in": "query", "required": true},
                    {"type": "string", "name": "surf_timestamp", "in": "query", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"}
                    }
                }
            }
        },
        "domain.GeoPoint": {
            "type": "object",
            "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}
        },
        "domain.Viewport": {
            "type": "object",
            "properties": {
                "sw": {"$ref": "#/definitions/domain.GeoPoint"},
                "ne": {"$ref": "#/definitions/domain.GeoPoint"}
            }
        },
        "domain.SavedEntry": {
            "type": "object",
            "properties": {
                "locationId": {"type": "string", "example": "38.0765#128.6234"},
                "surfTimestamp": {"type": "string"},
                "snapshot": {"type": "object"},
                "savedAt": {"type": "string"},
                "address": {"type": "string"}
            }
        },
        "domain.Marker": {
            "type": "object",
            "properties": {
                "key": {"type": "string"},
                "kind": {"type": "string", "enum": ["forecast", "saved"]},
                "locationId": {"type": "string"},
                "coord": {"$ref": "#/definitions/domain.GeoPoint"},
                "badge": {"type": "integer"}
            }
        },
        "domain.MarkerOp": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["add", "remove"]},
                "key": {"type": "string"},
                "marker": {"$ref": "#/definitions/domain.Marker"}
            }
        },
        "domain.Resolution": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["idle", "resolving", "detail_shown", "no_match_notice", "slot_picker"]},
                "detail": {"type": "object"},
                "notice": {"type": "object"},
                "picker": {"type": "object"}
            }
        },
        "dto.ResolveRequest": {
            "type": "object",
            "required": ["date", "lat", "lng"],
            "properties": {
                "date": {"type": "string", "example": "2026-10-14"},
                "time": {"type": "string", "example": "06:00"},
                "lat": {"type": "number"},
                "lng": {"type": "number"},
                "level": {"type": "string", "enum": ["BEGINNER", "INTERMEDIATE", "ADVANCED"]},
                "radius_km": {"type": "number"}
            }
        },
        "dto.ResolveResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "detail": {"type": "object"},
                "notice": {"type": "object"},
                "dataset": {"type": "string"}
            }
        },
        "dto.NearestResponse": {
            "type": "object",
            "properties": {
                "record": {"type": "object"},
                "distance_km": {"type": "number"},
                "metrics": {"type": "object"},
                "level": {"type": "string"},
                "radius_km": {"type": "number"}
            }
        },
        "dto.ReconcileRequest": {
            "type": "object",
            "required": ["date", "viewport"],
            "properties": {
                "date": {"type": "string"},
                "time": {"type": "string"},
                "filter": {"type": "string"},
                "viewport": {"$ref": "#/definitions/domain.Viewport"},
                "rendered": {"type": "array", "items": {"type": "object", "properties": {"key": {"type": "string"}, "badge": {"type": "integer"}}}},
                "saved": {"type": "array", "items": {"$ref": "#/definitions/domain.SavedEntry"}}
            }
        },
        "dto.ReconcileResponse": {
            "type": "object",
            "properties": {
                "ops": {"type": "array", "items": {"$ref": "#/definitions/domain.MarkerOp"}},
                "markers": {"type": "integer"},
                "dataset": {"type": "string"}
            }
        },
        "dto.SavedClickRequest": {
            "type": "object",
            "required": ["date", "location_id"],
            "properties": {
                "date": {"type": "string"},
                "time": {"type": "string"},
                "location_id": {"type": "string"},
                "level": {"type": "string"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/domain.SavedEntry"}}
            }
        },
        "dto.SaveEntryRequest": {
            "type": "object",
            "required": ["date", "location_id"],
            "properties": {
                "date": {"type": "string"},
                "time": {"type": "string"},
                "location_id": {"type": "string"},
                "level": {"type": "string"},
                "address": {"type": "string"}
            }
        },
        "dto.SavedListResponse": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/domain.SavedEntry"}},
                "counts": {"type": "object", "additionalProperties": {"type": "integer"}}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "timestamp": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Spot Resolver API",
	Description:      "Выбор спота по клику на карте, сверка маркеров видимой области и сохранённые прогнозы.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
