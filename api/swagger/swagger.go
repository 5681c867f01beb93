package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Examboard API",
        "description": "Department-scoped exam leaderboard computation and caching service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Leaderboard", "description": "Ranked student and department leaderboards"},
        {"name": "Admin", "description": "Leaderboard cache administration"},
        {"name": "Events", "description": "System-invoked hooks"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/departments/{departmentId}/leaderboard": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Department leaderboard",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"},
                    {"name": "forceRefresh", "in": "query", "type": "boolean"},
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 100},
                    {"name": "offset", "in": "query", "type": "integer", "minimum": 0}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid pagination bounds"},
                    "403": {"description": "Cross-department access denied"}
                }
            }
        },
        "/api/v1/leaderboard/departments": {
            "get": {
                "tags": ["Leaderboard"],
                "summary": "Global department leaderboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/cache/refresh": {
            "post": {
                "tags": ["Admin"],
                "summary": "Force-refresh leaderboard caches",
                "parameters": [
                    {"name": "departmentId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/cache/status": {
            "get": {
                "tags": ["Admin"],
                "summary": "Leaderboard cache health report",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/admin/cache/{departmentId}": {
            "delete": {
                "tags": ["Admin"],
                "summary": "Force-invalidate one department's cache",
                "parameters": [
                    {"name": "departmentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Department not found"}
                }
            }
        },
        "/api/v1/events/attempts": {
            "post": {
                "tags": ["Events"],
                "summary": "Attempt change notification hook",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttemptEvent"}}
                ],
                "responses": {
                    "204": {"description": "Accepted"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        },
        "AttemptEvent": {
            "type": "object",
            "properties": {
                "previous": {"type": "object"},
                "current": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
