// Package docs holds the OpenAPI document served at /swagger. Keep it in step
// with the handler annotations.
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
        "/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}], "responses": {"201": {"description": "User registered and token generated", "schema": {"$ref": "#/definitions/models.AuthResponse"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}, "409": {"description": "Email taken", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}},
        "/mobile-login": {"post": {"tags": ["auth"], "summary": "Login user", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}], "responses": {"200": {"description": "User authenticated and token generated", "schema": {"$ref": "#/definitions/models.AuthResponse"}}, "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}},
        "/auth/callback/google": {"post": {"tags": ["auth"], "summary": "Sign in with Google", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.GoogleCallbackRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AuthResponse"}}, "401": {"description": "Exchange failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout", "responses": {"204": {"description": "Logged out"}}}},
        "/features": {"get": {"security": [{"BearerAuth": []}], "tags": ["features"], "summary": "Feature flags", "parameters": [{"type": "string", "default": "mobile", "name": "platform", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.FeatureResponse"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}},
        "/users/currency": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get currency", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CurrencyPayload"}}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update currency", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.CurrencyPayload"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.CurrencyPayload"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}
        },
        "/budgets": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "List budgets", "parameters": [{"type": "string", "name": "user", "in": "query"}, {"type": "string", "name": "sort", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Budget"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Create a budget", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.BudgetInput"}}], "responses": {"201": {"description": "Budget created", "schema": {"$ref": "#/definitions/models.Budget"}}, "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}
        },
        "/budgets/reset": {"post": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Reset budgets", "responses": {"204": {"description": "Reset"}}}},
        "/budgets/ai-create": {"post": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Propose a budget", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.AIBudgetRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AIBudgetResponse"}}, "503": {"description": "Assistant unavailable", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}},
        "/budgets/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Update a budget", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.BudgetPatch"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Budget"}}, "404": {"description": "Budget not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["budgets"], "summary": "Delete a budget", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/categories": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "List categories", "parameters": [{"type": "string", "name": "user", "in": "query"}, {"type": "string", "name": "budget", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Category"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Create a category", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.CategoryInput"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Category"}}}}
        },
        "/categories/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Update a category", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.CategoryPatch"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Category"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["categories"], "summary": "Delete a category", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "Deleted"}, "409": {"description": "Category in use", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}
        },
        "/expenses": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "List expenses", "parameters": [{"type": "string", "name": "user", "in": "query"}, {"type": "string", "name": "budget", "in": "query"}, {"type": "string", "name": "category", "in": "query"}, {"type": "string", "name": "from", "in": "query"}, {"type": "string", "name": "to", "in": "query"}, {"type": "string", "name": "type", "in": "query"}, {"type": "integer", "name": "page", "in": "query"}, {"type": "integer", "name": "pageSize", "in": "query"}], "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Expense"}}}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Create an expense", "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.ExpenseInput"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Expense"}}, "422": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}}}
        },
        "/expenses/{id}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Update an expense", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.ExpensePatch"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Expense"}}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["expenses"], "summary": "Delete an expense", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "Deleted"}}}
        }
    },
    "definitions": {
        "handlers.ErrorBody": {"type": "object", "properties": {"code": {"type": "string", "example": "INVALID_INPUT"}, "message": {"type": "string", "example": "Invalid input"}}},
        "handlers.ErrorResponse": {"type": "object", "properties": {"error": {"$ref": "#/definitions/handlers.ErrorBody"}}},
        "models.User": {"type": "object", "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "name": {"type": "string"}, "plan": {"type": "string", "enum": ["free", "pro", "admin"]}, "currency": {"type": "string"}, "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "models.AuthResponse": {"type": "object", "properties": {"user": {"$ref": "#/definitions/models.User"}, "token": {"type": "string"}, "expires": {"type": "string"}}},
        "models.LoginRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "models.RegisterRequest": {"type": "object", "required": ["email", "password"], "properties": {"email": {"type": "string"}, "password": {"type": "string", "minLength": 8}, "name": {"type": "string"}}},
        "models.GoogleCallbackRequest": {"type": "object", "required": ["code"], "properties": {"code": {"type": "string"}, "redirectUri": {"type": "string"}}},
        "models.CurrencyPayload": {"type": "object", "required": ["currency"], "properties": {"currency": {"type": "string", "example": "USD"}}},
        "models.FeatureResponse": {"type": "object", "properties": {"features": {"type": "object", "additionalProperties": {"type": "boolean"}}, "userType": {"type": "string"}, "userId": {"type": "string"}, "platform": {"type": "string"}}},
        "models.Budget": {"type": "object", "properties": {"id": {"type": "string"}, "userId": {"type": "string"}, "month": {"type": "integer"}, "year": {"type": "integer"}, "totalBudgeted": {"type": "string"}, "totalAvailable": {"type": "string"}, "clientRef": {"type": "string"}, "createdAt": {"type": "string"}, "updatedAt": {"type": "string"}}},
        "models.BudgetInput": {"type": "object", "required": ["month", "year"], "properties": {"month": {"type": "integer", "minimum": 1, "maximum": 12}, "year": {"type": "integer"}, "totalBudgeted": {"type": "string"}, "totalAvailable": {"type": "string"}, "clientRef": {"type": "string"}}},
        "models.BudgetPatch": {"type": "object", "properties": {"month": {"type": "integer"}, "year": {"type": "integer"}, "totalBudgeted": {"type": "string"}, "totalAvailable": {"type": "string"}}},
        "models.Category": {"type": "object", "properties": {"id": {"type": "string"}, "userId": {"type": "string"}, "budgetId": {"type": "string"}, "name": {"type": "string"}, "sectionName": {"type": "string"}, "budgeted": {"type": "string"}, "spent": {"type": "string"}, "clientRef": {"type": "string"}}},
        "models.CategoryInput": {"type": "object", "required": ["budgetId", "name"], "properties": {"budgetId": {"type": "string"}, "name": {"type": "string"}, "sectionName": {"type": "string"}, "budgeted": {"type": "string"}, "clientRef": {"type": "string"}}},
        "models.CategoryPatch": {"type": "object", "properties": {"name": {"type": "string"}, "sectionName": {"type": "string"}, "budgeted": {"type": "string"}}},
        "models.Expense": {"type": "object", "properties": {"id": {"type": "string"}, "userId": {"type": "string"}, "budgetId": {"type": "string"}, "categoryId": {"type": "string"}, "amount": {"type": "string"}, "description": {"type": "string"}, "date": {"type": "string", "example": "2025-03-01"}, "type": {"type": "string", "enum": ["expense", "income"]}, "clientRef": {"type": "string"}}},
        "models.ExpenseInput": {"type": "object", "required": ["budgetId", "categoryId", "date", "type"], "properties": {"budgetId": {"type": "string"}, "categoryId": {"type": "string"}, "amount": {"type": "string"}, "description": {"type": "string"}, "date": {"type": "string"}, "type": {"type": "string"}, "clientRef": {"type": "string"}}},
        "models.ExpensePatch": {"type": "object", "properties": {"categoryId": {"type": "string"}, "amount": {"type": "string"}, "description": {"type": "string"}, "date": {"type": "string"}, "type": {"type": "string"}}},
        "models.AIBudgetRequest": {"type": "object", "required": ["prompt"], "properties": {"prompt": {"type": "string"}, "income": {"type": "string"}}},
        "models.AICategory": {"type": "object", "properties": {"name": {"type": "string"}, "amount": {"type": "string"}, "sectionName": {"type": "string"}}},
        "models.AIBudgetResponse": {"type": "object", "properties": {"income": {"type": "string"}, "categories": {"type": "array", "items": {"$ref": "#/definitions/models.AICategory"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Pennywise API",
	Description:      "Monthly budgets, categories and expenses for the pennywise mobile client.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
