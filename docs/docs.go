// Package docs holds the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/auth/challenge": {
            "post": {
                "description": "Returns a one-time message for the address to sign with personal_sign.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Request a sign-in challenge",
                "parameters": [
                    {"description": "Address to authenticate", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.ChallengeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Exchanges the signature over the outstanding challenge message for a Bearer JWT whose subject is the address.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in with a signed challenge",
                "parameters": [
                    {"description": "Address and hex signature", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request, invalid_signature_length, invalid_signature_v", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events": {
            "get": {
                "description": "Returns every registry address in creation order with the total count.",
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "List event registries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a registry owned by the authenticated address. event_date is unix seconds and must be in the future.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Deploy an event registry",
                "parameters": [
                    {"description": "Event parameters", "name": "event", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/controllers.RegistrySuccessResponse"}},
                    "400": {"description": "error.code: bad_request, past_event_date", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/index/{index}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get the registry at a creation index",
                "parameters": [
                    {"type": "integer", "description": "Zero-based creation index", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: index_out_of_range", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{address}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Get a registry",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RegistrySuccessResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{address}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Enable or disable check-in",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true},
                    {"description": "New status", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.SetStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RegistrySuccessResponse"}},
                    "403": {"description": "error.code: not_owner", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{address}/owner": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Transfer registry ownership",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true},
                    {"description": "New owner", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.TransferOwnershipRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RegistrySuccessResponse"}},
                    "400": {"description": "error.code: invalid_owner", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "403": {"description": "error.code: not_owner", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["events"],
                "summary": "Renounce registry ownership",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/controllers.RegistrySuccessResponse"}},
                    "403": {"description": "error.code: not_owner", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{address}/digest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["signatures"],
                "summary": "Get the digests an organizer signs for an attendee",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true},
                    {"type": "string", "description": "Attendee address", "name": "attendee", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{address}/verify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["signatures"],
                "summary": "Check an attendee authorization",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true},
                    {"description": "Attendee and hex signature", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.VerifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: invalid_signature_length, invalid_signature_v", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{address}/check-ins": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["check-in"],
                "summary": "Check in to an event",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true},
                    {"description": "Hex signature", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/controllers.CheckInRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "401": {"description": "error.code: unauthorized, invalid_signature", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "409": {"description": "error.code: event_inactive, event_ended, already_checked_in, capacity_reached", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{address}/attendees": {
            "get": {
                "produces": ["application/json"],
                "tags": ["check-in"],
                "summary": "List admitted attendees",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "400": {"description": "error.code: bad_request", "schema": {"$ref": "#/definitions/helpers.APIResponse"}},
                    "404": {"description": "error.code: not_found", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/events/{address}/attendees/{attendee}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["check-in"],
                "summary": "Check whether an address has checked in",
                "parameters": [
                    {"type": "string", "description": "Registry address", "name": "address", "in": "path", "required": true},
                    {"type": "string", "description": "Attendee address", "name": "attendee", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Read the notification feed",
                "parameters": [
                    {"type": "integer", "description": "Return notifications with id greater than this", "name": "after", "in": "query"},
                    {"type": "integer", "description": "Maximum items (default 100, max 1000)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Source address; repeat or comma-separate for several", "name": "source", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/helpers.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "controllers.ChallengeRequest": {
            "type": "object",
            "properties": {"address": {"type": "string"}}
        },
        "controllers.LoginRequest": {
            "type": "object",
            "properties": {"address": {"type": "string"}, "signature": {"type": "string"}}
        },
        "controllers.CreateEventRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "event_date": {"type": "integer"}, "max_attendees": {"type": "integer"}}
        },
        "controllers.SetStatusRequest": {
            "type": "object",
            "properties": {"active": {"type": "boolean"}}
        },
        "controllers.TransferOwnershipRequest": {
            "type": "object",
            "properties": {"new_owner": {"type": "string"}}
        },
        "controllers.VerifyRequest": {
            "type": "object",
            "properties": {"attendee": {"type": "string"}, "signature": {"type": "string"}}
        },
        "controllers.CheckInRequest": {
            "type": "object",
            "properties": {"signature": {"type": "string"}}
        },
        "controllers.RegistrySuccessResponse": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/domain.RegistryInfo"},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        },
        "domain.RegistryInfo": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "name": {"type": "string"},
                "event_date": {"type": "integer"},
                "max_attendees": {"type": "integer"},
                "attendee_count": {"type": "integer"},
                "is_active": {"type": "boolean"},
                "owner": {"type": "string"},
                "check_in_deadline": {"type": "integer"}
            }
        },
        "helpers.PageMeta": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"},
                "has_more": {"type": "boolean"}
            }
        },
        "helpers.APIError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "helpers.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/helpers.APIError"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT from /auth/login.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Guest Check-in API",
	Description:      "Event registries with organizer-signed attendee authorizations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
