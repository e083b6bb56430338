// Package docs registers the OpenAPI description of the map calibration API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/maps": {
            "get": {
                "produces": ["application/json"],
                "summary": "List stored maps",
                "parameters": [
                    {"type": "integer", "description": "maximum number of maps", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.MapSummary"}}}
                }
            },
            "post": {
                "consumes": ["text/plain"],
                "produces": ["application/json"],
                "summary": "Import an OziExplorer .map file",
                "parameters": [
                    {"type": "string", "description": "display name", "name": "name", "in": "query"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.MapSummary"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {}}}
                }
            }
        },
        "/maps/{id}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Describe a stored map",
                "parameters": [
                    {"type": "string", "description": "map id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MapSummary"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {}}}
                }
            },
            "delete": {
                "summary": "Delete a stored map",
                "parameters": [
                    {"type": "string", "description": "map id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/maps/{id}/file": {
            "get": {
                "produces": ["text/plain"],
                "summary": "Download a map as .map text",
                "parameters": [
                    {"type": "string", "description": "map id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}}
                }
            }
        },
        "/maps/{id}/points": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Replace the picked points and recalibrate",
                "parameters": [
                    {"type": "string", "description": "map id", "name": "id", "in": "path", "required": true},
                    {"description": "image size and points", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CalibrationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.MapSummary"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {}}}
                }
            }
        },
        "/maps/{id}/latlon": {
            "get": {
                "produces": ["application/json"],
                "summary": "Map a pixel to latitude/longitude",
                "parameters": [
                    {"type": "string", "description": "map id", "name": "id", "in": "path", "required": true},
                    {"type": "number", "description": "pixel x", "name": "x", "in": "query", "required": true},
                    {"type": "number", "description": "pixel y", "name": "y", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LatLon"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {}}}
                }
            }
        }
    },
    "definitions": {
        "models.Bounds": {
            "type": "object",
            "properties": {
                "max_lat": {"type": "number"},
                "max_lon": {"type": "number"},
                "min_lat": {"type": "number"},
                "min_lon": {"type": "number"}
            }
        },
        "models.CalibrationPoint": {
            "type": "object",
            "properties": {
                "lat": {"type": "number", "maximum": 180, "minimum": -180},
                "lon": {"type": "number", "maximum": 180, "minimum": -180},
                "x": {"type": "integer", "minimum": 0},
                "y": {"type": "integer", "minimum": 0}
            }
        },
        "models.CalibrationRequest": {
            "type": "object",
            "required": ["height", "points", "width"],
            "properties": {
                "height": {"type": "integer"},
                "points": {"type": "array", "minItems": 4, "items": {"$ref": "#/definitions/models.CalibrationPoint"}},
                "width": {"type": "integer"}
            }
        },
        "models.LatLon": {
            "type": "object",
            "properties": {
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "x": {"type": "number"},
                "y": {"type": "number"}
            }
        },
        "models.MapSummary": {
            "type": "object",
            "properties": {
                "bounds": {"$ref": "#/definitions/models.Bounds"},
                "height": {"type": "integer"},
                "id": {"type": "string"},
                "image_filename": {"type": "string"},
                "image_filepath": {"type": "string"},
                "name": {"type": "string"},
                "points": {"type": "integer"},
                "scale_factor": {"type": "number"},
                "updated_at": {"type": "string"},
                "valid": {"type": "boolean"},
                "width": {"type": "integer"}
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
	Title:            "Map Calibration API",
	Description:      "Import, calibrate and query OziExplorer .map files.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
