// Package docs holds the Swagger 2.0 document served at /swagger/*.
//
// The annotations on the handlers are the source of truth; regenerate with
// `swag init -g internal/http/router.go -o internal/http/docs` after changing them.
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
        "/conversations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Conversations"],
                "summary": "List the student's conversations",
                "operationId": "listConversations",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Student ID (UUID)", "name": "X-Student-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Page size (1-100, default 20)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Items to skip", "name": "offset", "in": "query"},
                    {"type": "boolean", "description": "Include archived conversations", "name": "include_archived", "in": "query"},
                    {"type": "string", "description": "ETag from a previous response", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListConversationsResponse"}, "headers": {"ETag": {"type": "string"}}},
                    "304": {"description": "Not modified"},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Conversations"],
                "summary": "Create a conversation",
                "operationId": "createConversation",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Student ID (UUID)", "name": "X-Student-ID", "in": "header"},
                    {"description": "Conversation settings", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateConversationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.ConversationSummaryResponse"}, "headers": {"Location": {"type": "string"}}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/conversations/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Conversations"],
                "summary": "Select a conversation with its full history",
                "operationId": "getConversation",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Student ID (UUID)", "name": "X-Student-ID", "in": "header", "required": true},
                    {"type": "string", "format": "uuid", "description": "Conversation ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ConversationResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Conversation not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["Conversations"],
                "summary": "Delete a conversation",
                "operationId": "deleteConversation",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Student ID (UUID)", "name": "X-Student-ID", "in": "header", "required": true},
                    {"type": "string", "format": "uuid", "description": "Conversation ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Conversation not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/conversations/{id}/title": {
            "put": {
                "consumes": ["application/json"],
                "tags": ["Conversations"],
                "summary": "Rename a conversation",
                "operationId": "renameConversation",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Student ID (UUID)", "name": "X-Student-ID", "in": "header", "required": true},
                    {"type": "string", "format": "uuid", "description": "Conversation ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "New title", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RenameConversationRequest"}}
                ],
                "responses": {
                    "204": {"description": "Renamed"},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Conversation not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conversation not writable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/conversations/{id}/archive": {
            "post": {
                "tags": ["Conversations"],
                "summary": "Archive a conversation",
                "operationId": "archiveConversation",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Student ID (UUID)", "name": "X-Student-ID", "in": "header", "required": true},
                    {"type": "string", "format": "uuid", "description": "Conversation ID (UUID)", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Archived"},
                    "404": {"description": "Conversation not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conversation not writable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/conversations/{id}/messages": {
            "post": {
                "description": "Appends the student's message, generates the teacher's reply and stores both atomically.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Messages"],
                "summary": "Send a student message and get the teacher's reply",
                "operationId": "sendMessage",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Student ID (UUID)", "name": "X-Student-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Idempotency key for safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"type": "string", "format": "uuid", "description": "Conversation ID (UUID)", "name": "id", "in": "path", "required": true},
                    {"description": "Student turn", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SendMessageRequest"}}
                ],
                "responses": {
                    "200": {"description": "Teacher reply", "schema": {"$ref": "#/definitions/handlers.SendMessageResponse"}, "headers": {"Idempotency-Replayed": {"type": "string"}}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Conversation not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conversation not writable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Teacher unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "validation_failed"},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "handlers.CreateConversationRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string", "format": "uuid"},
                "title": {"type": "string", "example": "Ordering at a café"},
                "native_lang": {"type": "string", "example": "en"},
                "target_lang": {"type": "string", "example": "fr"}
            }
        },
        "handlers.RenameConversationRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"}
            }
        },
        "handlers.ConversationSummaryResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "status": {"type": "string", "example": "active"},
                "native_lang": {"type": "string"},
                "target_lang": {"type": "string"},
                "message_count": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "last_activity_at": {"type": "string", "format": "date-time"}
            }
        },
        "handlers.ListConversationsResponse": {
            "type": "object",
            "properties": {
                "conversations": {"type": "array", "items": {"$ref": "#/definitions/handlers.ConversationSummaryResponse"}},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "handlers.MessageResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "role": {"type": "string", "example": "student"},
                "content": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "handlers.ConversationResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "title": {"type": "string"},
                "status": {"type": "string"},
                "native_lang": {"type": "string"},
                "target_lang": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "last_activity_at": {"type": "string", "format": "date-time"},
                "messages": {"type": "array", "items": {"$ref": "#/definitions/handlers.MessageResponse"}}
            }
        },
        "handlers.SendMessageRequest": {
            "type": "object",
            "properties": {
                "student_message": {"type": "string"},
                "creativity_level": {"type": "string", "example": "moderate"},
                "generation_style": {"type": "string", "example": "corrective"}
            }
        },
        "handlers.SendMessageResponse": {
            "type": "object",
            "properties": {
                "teacher_message_id": {"type": "string", "format": "uuid"},
                "student_message_id": {"type": "string", "format": "uuid"},
                "teacher_message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Language Tutor API",
	Description:      "Conversation practice with an AI language teacher.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
