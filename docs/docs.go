// Package docs registers the OpenAPI document served at /swagger/.
// Regenerate with: swag init -g cmd/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Register a new customer",
                "parameters": [
                    {"description": "Customer registration request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterCustomerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Customer successfully registered", "schema": {"$ref": "#/definitions/dto.CustomerResponse"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Customer already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/customers/{customerID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Customers"],
                "summary": "Retrieve customer details",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Customer ID", "name": "customerID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Customer details retrieved", "schema": {"$ref": "#/definitions/dto.CustomerResponse"}},
                    "400": {"description": "Invalid customer ID format", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/check-eligibility": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Loans"],
                "summary": "Check loan eligibility",
                "parameters": [
                    {"description": "Loan application", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoanApplicationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Eligibility decision", "schema": {"$ref": "#/definitions/dto.EligibilityResponse"}},
                    "400": {"description": "Invalid loan application", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/create-loan": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Loans"],
                "summary": "Create a loan",
                "parameters": [
                    {"description": "Loan application", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoanApplicationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Loan not approved", "schema": {"$ref": "#/definitions/dto.CreateLoanResponse"}},
                    "201": {"description": "Loan created", "schema": {"$ref": "#/definitions/dto.CreateLoanResponse"}},
                    "400": {"description": "Invalid loan application", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/view-loan/{loanID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Loans"],
                "summary": "View a loan",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Loan ID", "name": "loanID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Loan details", "schema": {"$ref": "#/definitions/dto.LoanResponse"}},
                    "404": {"description": "Loan not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/view-loans/{customerID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Loans"],
                "summary": "List a customer's active loans",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Customer ID", "name": "customerID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Active loans", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CustomerLoanItem"}}},
                    "404": {"description": "Customer not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/make-payment/{customerID}/{loanID}": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Loans"],
                "summary": "Post a repayment",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Customer ID", "name": "customerID", "in": "path", "required": true},
                    {"minimum": 1, "type": "integer", "description": "Loan ID", "name": "loanID", "in": "path", "required": true},
                    {"description": "Payment amount", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.MakePaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Payment applied", "schema": {"$ref": "#/definitions/dto.PaymentResponse"}},
                    "400": {"description": "Invalid amount, overpayment or loan already paid", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Loan not found for customer", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/view-statement/{customerID}/{loanID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Loans"],
                "summary": "View a loan statement",
                "parameters": [
                    {"minimum": 1, "type": "integer", "description": "Customer ID", "name": "customerID", "in": "path", "required": true},
                    {"minimum": 1, "type": "integer", "description": "Loan ID", "name": "loanID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Loan statement", "schema": {"$ref": "#/definitions/dto.StatementResponse"}},
                    "404": {"description": "Loan not found for customer", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/dto.ErrorDetail"}
            }
        },
        "dto.RegisterCustomerRequest": {
            "type": "object",
            "properties": {
                "age": {"type": "integer", "example": 36},
                "first_name": {"type": "string", "example": "Ada"},
                "last_name": {"type": "string", "example": "Lovelace"},
                "monthly_income": {"type": "string", "example": "100000"},
                "phone_number": {"type": "string", "example": "9876543210"}
            }
        },
        "dto.CustomerResponse": {
            "type": "object",
            "properties": {
                "age": {"type": "integer", "example": 36},
                "approved_limit": {"type": "string", "example": "3600000.00"},
                "customer_id": {"type": "integer", "example": 1},
                "monthly_income": {"type": "string", "example": "100000.00"},
                "name": {"type": "string", "example": "Ada Lovelace"},
                "phone_number": {"type": "string", "example": "9876543210"}
            }
        },
        "dto.LoanApplicationRequest": {
            "type": "object",
            "properties": {
                "customer_id": {"type": "integer", "example": 1},
                "interest_rate": {"type": "string", "example": "10"},
                "loan_amount": {"type": "string", "example": "500000"},
                "tenure": {"type": "integer", "example": 24}
            }
        },
        "dto.EligibilityResponse": {
            "type": "object",
            "properties": {
                "approval": {"type": "boolean", "example": true},
                "corrected_interest_rate": {"type": "string", "example": "10"},
                "credit_score": {"type": "integer", "example": 100},
                "customer_id": {"type": "integer", "example": 1},
                "interest_rate": {"type": "string", "example": "10"},
                "message": {"type": "string", "example": "loan approved"},
                "monthly_installment": {"type": "string", "example": "23072.46"},
                "tenure": {"type": "integer", "example": 24}
            }
        },
        "dto.CreateLoanResponse": {
            "type": "object",
            "properties": {
                "customer_id": {"type": "integer", "example": 1},
                "loan_approved": {"type": "boolean", "example": true},
                "loan_id": {"type": "integer", "example": 42},
                "message": {"type": "string", "example": "Loan approved"},
                "monthly_installment": {"type": "string", "example": "23072.46"}
            }
        },
        "dto.LoanCustomerSummary": {
            "type": "object",
            "properties": {
                "age": {"type": "integer", "example": 36},
                "first_name": {"type": "string", "example": "Ada"},
                "id": {"type": "integer", "example": 1},
                "last_name": {"type": "string", "example": "Lovelace"},
                "phone_number": {"type": "string", "example": "9876543210"}
            }
        },
        "dto.LoanResponse": {
            "type": "object",
            "properties": {
                "customer": {"$ref": "#/definitions/dto.LoanCustomerSummary"},
                "date_of_approval": {"type": "string", "example": "2024-01-15"},
                "emis_paid_on_time": {"type": "integer", "example": 0},
                "end_date": {"type": "string", "example": "2026-01-15"},
                "interest_rate": {"type": "string", "example": "10"},
                "loan_amount": {"type": "string", "example": "500000.00"},
                "loan_id": {"type": "integer", "example": 42},
                "monthly_installment": {"type": "string", "example": "23072.46"},
                "remaining_balance": {"type": "string", "example": "500000.00"},
                "status": {"type": "string", "example": "ACTIVE"},
                "tenure": {"type": "integer", "example": 24}
            }
        },
        "dto.CustomerLoanItem": {
            "type": "object",
            "properties": {
                "interest_rate": {"type": "string", "example": "10"},
                "loan_amount": {"type": "string", "example": "500000.00"},
                "loan_id": {"type": "integer", "example": 42},
                "monthly_installment": {"type": "string", "example": "23072.46"},
                "repayments_left": {"type": "integer", "example": 24}
            }
        },
        "dto.MakePaymentRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "23072.46"}
            }
        },
        "dto.PaymentResponse": {
            "type": "object",
            "properties": {
                "amount_paid": {"type": "string", "example": "23072.46"},
                "customer_id": {"type": "integer", "example": 1},
                "emis_paid_on_time": {"type": "integer", "example": 1},
                "loan_id": {"type": "integer", "example": 42},
                "message": {"type": "string", "example": "Payment successful"},
                "monthly_installment": {"type": "string", "example": "23072.46"},
                "remaining_balance": {"type": "string", "example": "476927.54"},
                "status": {"type": "string", "example": "ACTIVE"}
            }
        },
        "dto.StatementResponse": {
            "type": "object",
            "properties": {
                "amount_paid": {"type": "string", "example": "0.00"},
                "customer_id": {"type": "integer", "example": 1},
                "interest_rate": {"type": "string", "example": "10"},
                "loan_id": {"type": "integer", "example": 42},
                "monthly_installment": {"type": "string", "example": "23072.46"},
                "principal": {"type": "string", "example": "500000.00"},
                "repayments_left": {"type": "integer", "example": 24}
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
	Title:            "Credit Engine API",
	Description:      "Customer registration, loan eligibility, loan origination and repayment ledger.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
