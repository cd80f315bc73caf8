// Package docs registers the OpenAPI specification with the swag runtime.
// Code generated by swag init; edits survive regeneration of the template only.
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
        "/users/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email in use"}
                }
            }
        },
        "/users/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login user",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/users/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh the session",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/users/logout": {
            "post": {
                "tags": ["auth"],
                "summary": "Logout",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Missing refresh cookie"}
                }
            }
        },
        "/users/current": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/water": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["water"],
                "summary": "Log water intake",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid input"}
                }
            },
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["water"],
                "summary": "List water entries",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/water/day": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["water"],
                "summary": "Daily summary",
                "responses": {
                    "200": {"description": "OK"}
                }
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

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "AquaTrack API",
	Description:      "AquaTrack is a personal water-intake tracker: accounts, profiles, and per-day water logging with percentage-of-goal computation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
