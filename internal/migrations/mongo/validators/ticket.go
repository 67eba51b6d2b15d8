package validators

import "go.mongodb.org/mongo-driver/bson"

var SupportTicketValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"reference", "user_id", "priority", "subject", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"reference": bson.M{"bsonType": "string", "minLength": 1},
			"user_id":   bson.M{"bsonType": "string", "minLength": 1},
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"listing_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"priority": bson.M{
				"bsonType": "string",
				"enum":     []string{"LOW", "HIGH", "CRITICAL"},
			},
			"subject": bson.M{"bsonType": "string", "minLength": 1, "maxLength": 200},
			"body":    bson.M{"bsonType": "string"},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"open", "closed"},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
