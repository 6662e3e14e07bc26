// Package docs registers the OpenAPI description of the polls API with swag.
// Keep it in step with the godoc annotations on the HTTP handlers.
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
        "/polls": {
            "get": {
                "description": "Returns the five most recently published questions, newest first. An ` + "`" + `error` + "`" + ` query parameter is echoed back as ` + "`" + `message` + "`" + `.",
                "produces": ["application/json"],
                "tags": ["polls"],
                "summary": "Lists the latest questions",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/polls/{id}": {
            "get": {
                "description": "Redirects to the index with a message when the question is not open for voting.",
                "produces": ["application/json"],
                "tags": ["polls"],
                "summary": "Gets a question open for voting",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "303": {"description": "See Other"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/polls/{id}/results": {
            "get": {
                "produces": ["application/json"],
                "tags": ["polls"],
                "summary": "Gets the vote counts of a published question",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/polls/{id}/vote": {
            "post": {
                "description": "Expects the form field ` + "`" + `choice` + "`" + `. Redirects to the question results on success.",
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["polls"],
                "summary": "Votes on a choice",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Choice ID", "name": "choice", "in": "formData", "required": true}
                ],
                "responses": {
                    "303": {"description": "See Other"},
                    "400": {"description": "Bad Request"},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/admin/questions": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "` + "`" + `pub_date` + "`" + ` defaults to now. At least two choices are required.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Creates a question",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/admin/questions/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["admin"],
                "summary": "Deletes a question and its choices",
                "parameters": [
                    {"type": "string", "description": "Question ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Polls API",
	Description:      "Publish questions, vote on their choices and follow the results.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
