// internal/api/schemas.go
package api

// Request schemas for write endpoints. Validation happens before decode
// so malformed payloads never reach the store.

const createUserSchema = `{
	"type": "object",
	"required": ["email", "password", "role", "name"],
	"properties": {
		"email": {"type": "string", "format": "email"},
		"password": {"type": "string", "minLength": 8},
		"role": {"type": "string", "enum": ["admin", "vendor", "customer", "investor"]},
		"name": {"type": "string", "minLength": 1},
		"businessType": {"type": "string"},
		"phone": {"type": "string"}
	},
	"additionalProperties": false
}`

const createShopSchema = `{
	"type": "object",
	"required": ["vendorId", "name"],
	"properties": {
		"vendorId": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"businessType": {"type": "string"},
		"address": {"type": "string"},
		"phone": {"type": "string"}
	},
	"additionalProperties": false
}`

const createProductSchema = `{
	"type": "object",
	"required": ["vendorId", "shopId", "name", "price"],
	"properties": {
		"vendorId": {"type": "string", "minLength": 1},
		"shopId": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"price": {"type": "number", "minimum": 0},
		"stock": {"type": "integer", "minimum": 0}
	},
	"additionalProperties": false
}`

const addCartItemSchema = `{
	"type": "object",
	"required": ["productId", "quantity"],
	"properties": {
		"productId": {"type": "string", "minLength": 1},
		"quantity": {"type": "integer", "minimum": 1}
	},
	"additionalProperties": false
}`

const createPlanSchema = `{
	"type": "object",
	"required": ["userId", "businessType", "payload"],
	"properties": {
		"userId": {"type": "string", "minLength": 1},
		"businessType": {"type": "string", "minLength": 1},
		"payload": {"type": "object"}
	},
	"additionalProperties": false
}`

const createInvestmentSchema = `{
	"type": "object",
	"required": ["investorId", "businessName", "amount"],
	"properties": {
		"investorId": {"type": "string", "minLength": 1},
		"businessName": {"type": "string", "minLength": 1},
		"amount": {"type": "number", "minimum": 0}
	},
	"additionalProperties": false
}`

const sendWhatsAppSchema = `{
	"type": "object",
	"required": ["phoneNumber", "message"],
	"properties": {
		"phoneNumber": {"type": "string", "minLength": 1},
		"message": {"type": "string", "minLength": 1}
	},
	"additionalProperties": false
}`
