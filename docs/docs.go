// Package docs registers the OpenAPI document served at /swagger/*.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
        "/webhooks/call": {
            "post": {
                "description": "Receives call lifecycle events. The body is authenticated with an HMAC-SHA256 signature before it is parsed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Webhooks"],
                "summary": "Call provider webhook",
                "parameters": [
                    {"type": "string", "description": "Hex HMAC-SHA256 of the raw body", "name": "x-signature", "in": "header", "required": true},
                    {"type": "string", "description": "Provider API key", "name": "x-api-key", "in": "header", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/common.StatusResponse"}},
                    "400": {"description": "Missing headers, malformed payload or missing meeting id", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "401": {"description": "Invalid signature or API key", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Meeting or agent not found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "413": {"description": "Body larger than 1 MiB", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/meetings/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the meeting with its lifecycle timestamps, artifact URLs and summary",
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Get meeting",
                "parameters": [
                    {"type": "string", "description": "Meeting ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meeting.MeetingResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/meetings/{id}/process": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Publishes a pipeline work item for a meeting that already has a transcript. With force=true the job starts from scratch.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Re-run transcript processing",
                "parameters": [
                    {"type": "string", "description": "Meeting ID", "name": "id", "in": "path", "required": true},
                    {"description": "Processing options", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/meeting.ProcessMeetingRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meeting.ProcessMeetingResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "409": {"description": "Meeting has no transcript", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/meetings/{id}/cancel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Moves an upcoming meeting to cancelled",
                "produces": ["application/json"],
                "tags": ["Meetings"],
                "summary": "Cancel meeting",
                "parameters": [
                    {"type": "string", "description": "Meeting ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/meeting.MeetingResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "409": {"description": "Meeting is not upcoming", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {},
                "info": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "common.StatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "meeting.MeetingResponse": {
            "type": "object",
            "properties": {
                "agent_id": {"type": "string"},
                "created_at": {"type": "string"},
                "duration": {"type": "integer"},
                "ended_at": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "recording_url": {"type": "string"},
                "started_at": {"type": "string"},
                "status": {"type": "string"},
                "summary": {"type": "string"},
                "transcript_url": {"type": "string"},
                "updated_at": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "meeting.ProcessMeetingRequest": {
            "type": "object",
            "properties": {
                "force": {"type": "boolean"}
            }
        },
        "meeting.ProcessMeetingResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "meeting_id": {"type": "string"},
                "transcript_url": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
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
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Meeting Agent API",
	Description:      "Call provider webhooks and operator routes for the meeting lifecycle and transcript pipeline.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
