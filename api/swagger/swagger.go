package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Portal Gateway",
        "description": "Backend-for-frontend of the admin, partner and student portals",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "Bearer": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"Bearer": []}],
    "tags": [
        {"name": "Session", "description": "Current session and portal navigation"},
        {"name": "Dashboard", "description": "Portal home charts"},
        {"name": "Courses", "description": "Course catalogue and editor"},
        {"name": "Documents", "description": "Student document review"},
        {"name": "Certifications", "description": "Certification request review"},
        {"name": "Contracts", "description": "Enrolment contracts"},
        {"name": "Payments", "description": "Payments, totals and reports"},
        {"name": "Messages", "description": "Inbox"},
        {"name": "Assistant", "description": "AI chat and content generation"},
        {"name": "Notifications", "description": "Toasts and cache invalidation push"},
        {"name": "Audit", "description": "Mutation audit trail"}
    ],
    "paths": {
        "/session": {
            "get": {"tags": ["Session"], "summary": "Current session", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/shell": {
            "get": {"tags": ["Session"], "summary": "Portal title and navigation", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/dashboard": {
            "get": {"tags": ["Dashboard"], "summary": "Portal home charts", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "parameters": [
                    {"$ref": "#/parameters/q"},
                    {"$ref": "#/parameters/status"},
                    {"name": "minPrice", "in": "query", "type": "number"},
                    {"name": "maxPrice", "in": "query", "type": "number"},
                    {"$ref": "#/parameters/page"},
                    {"$ref": "#/parameters/pageSize"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseForm"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}": {
            "get": {"tags": ["Courses"], "summary": "Get course", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [{"$ref": "#/parameters/id"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseForm"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {"tags": ["Courses"], "summary": "Delete course", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/courses/{id}/form": {
            "get": {"tags": ["Courses"], "summary": "Course editor values, id new for defaults", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/courses/{id}/image": {
            "post": {
                "tags": ["Courses"],
                "summary": "Upload course cover image",
                "consumes": ["multipart/form-data"],
                "parameters": [{"$ref": "#/parameters/id"}, {"name": "image", "in": "formData", "type": "file", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/courses/{id}/disciplines": {
            "get": {"tags": ["Courses"], "summary": "Course curriculum", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/documents": {
            "get": {"tags": ["Documents"], "summary": "List student documents", "parameters": [{"$ref": "#/parameters/q"}, {"$ref": "#/parameters/status"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {
                "tags": ["Documents"],
                "summary": "Upload a student document",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true},
                    {"name": "studentId", "in": "formData", "type": "string"},
                    {"name": "documentType", "in": "formData", "type": "string", "required": true},
                    {"name": "title", "in": "formData", "type": "string"},
                    {"name": "comments", "in": "formData", "type": "string"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/documents/{id}/approve": {
            "post": {"tags": ["Documents"], "summary": "Approve a pending document", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "Approved"}, "409": {"description": "Already reviewed"}}}
        },
        "/documents/{id}/reject": {
            "post": {"tags": ["Documents"], "summary": "Reject a pending document", "parameters": [{"$ref": "#/parameters/id"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectForm"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/certifications": {
            "get": {"tags": ["Certifications"], "summary": "List certification requests", "parameters": [{"$ref": "#/parameters/q"}, {"$ref": "#/parameters/status"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/certifications/{id}/approve": {
            "post": {"tags": ["Certifications"], "summary": "Approve a certification request", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "Approved"}}}
        },
        "/certifications/{id}/reject": {
            "post": {"tags": ["Certifications"], "summary": "Reject a certification request", "parameters": [{"$ref": "#/parameters/id"}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectForm"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/contracts": {
            "get": {"tags": ["Contracts"], "summary": "List contracts", "parameters": [{"$ref": "#/parameters/q"}, {"$ref": "#/parameters/status"}, {"name": "minValue", "in": "query", "type": "number"}, {"name": "maxValue", "in": "query", "type": "number"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/contracts/{id}": {
            "get": {"tags": ["Contracts"], "summary": "Get contract", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/contracts/{id}/sign": {
            "post": {"tags": ["Contracts"], "summary": "Sign a pending contract", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "Signed"}}}
        },
        "/payments": {
            "get": {"tags": ["Payments"], "summary": "List payments", "parameters": [{"$ref": "#/parameters/q"}, {"$ref": "#/parameters/status"}, {"name": "minAmount", "in": "query", "type": "number"}, {"name": "maxAmount", "in": "query", "type": "number"}, {"$ref": "#/parameters/page"}, {"$ref": "#/parameters/pageSize"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/payments/summary": {
            "get": {"tags": ["Payments"], "summary": "Payment totals", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/payments/export": {
            "get": {"tags": ["Payments"], "summary": "Download the payment report", "produces": ["text/csv", "application/pdf"], "parameters": [{"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}, {"$ref": "#/parameters/q"}, {"$ref": "#/parameters/status"}], "responses": {"200": {"description": "File", "schema": {"type": "file"}}}}
        },
        "/payments/{id}": {
            "get": {"tags": ["Payments"], "summary": "Get payment", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/payments/{id}/mark-as-paid": {
            "post": {"tags": ["Payments"], "summary": "Confirm a payment", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"204": {"description": "Confirmed"}, "409": {"description": "Not payable"}}}
        },
        "/messages": {
            "get": {"tags": ["Messages"], "summary": "List received messages", "parameters": [{"$ref": "#/parameters/q"}, {"$ref": "#/parameters/status"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Messages"], "summary": "Send a message", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendMessageForm"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/messages/{id}": {
            "get": {"tags": ["Messages"], "summary": "Open a message, marking it read", "parameters": [{"$ref": "#/parameters/id"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/assistant/messages": {
            "get": {"tags": ["Assistant"], "summary": "Chat history", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}},
            "post": {"tags": ["Assistant"], "summary": "Send a chat turn", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChatForm"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "503": {"description": "Assistant disabled"}}},
            "delete": {"tags": ["Assistant"], "summary": "Start a new conversation", "responses": {"204": {"description": "Cleared"}}}
        },
        "/assistant/content": {
            "post": {"tags": ["Assistant"], "summary": "Queue course material generation", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContentRequestForm"}}], "responses": {"202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/notifications": {
            "get": {"tags": ["Notifications"], "summary": "Latest notifications", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/notifications/ticket": {
            "post": {"tags": ["Notifications"], "summary": "Issue a socket ticket", "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        },
        "/notifications/ws": {
            "get": {"tags": ["Notifications"], "summary": "Notification socket", "security": [], "parameters": [{"name": "ticket", "in": "query", "type": "string", "required": true}], "responses": {"101": {"description": "Switching protocols"}}}
        },
        "/audit-logs": {
            "get": {"tags": ["Audit"], "summary": "Audit trail", "parameters": [{"name": "userId", "in": "query", "type": "string"}, {"name": "resource", "in": "query", "type": "string"}, {"name": "outcome", "in": "query", "type": "string"}, {"name": "limit", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}
        }
    },
    "parameters": {
        "id": {"name": "id", "in": "path", "type": "string", "required": true},
        "q": {"name": "q", "in": "query", "type": "string"},
        "status": {"name": "status", "in": "query", "type": "string"},
        "page": {"name": "page", "in": "query", "type": "integer"},
        "pageSize": {"name": "pageSize", "in": "query", "type": "integer"}
    },
    "definitions": {
        "CourseForm": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "shortDescription": {"type": "string"},
                "description": {"type": "string"},
                "area": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "string", "example": "49.90"},
                "status": {"type": "string", "enum": ["draft", "published", "archived"]}
            }
        },
        "RejectForm": {
            "type": "object",
            "properties": {"comments": {"type": "string", "minLength": 10}}
        },
        "SendMessageForm": {
            "type": "object",
            "properties": {
                "recipientId": {"type": "string"},
                "subject": {"type": "string"},
                "content": {"type": "string"},
                "threadId": {"type": "string"}
            }
        },
        "ChatForm": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "ContentRequestForm": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["lesson", "quiz", "summary", "description"]},
                "topic": {"type": "string"},
                "courseId": {"type": "string"},
                "audience": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
