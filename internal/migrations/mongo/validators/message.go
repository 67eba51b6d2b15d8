package validators

import "go.mongodb.org/mongo-driver/bson"

var ChatMessageValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"booking_id", "sender_id", "text", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"sender_id":   bson.M{"bsonType": "string", "minLength": 1},
			"text":        bson.M{"bsonType": "string"},
			"flagged":     bson.M{"bsonType": "bool"},
			"flag_reason": bson.M{"bsonType": "string"},
			"analysis":    bson.M{"bsonType": "object"},
			"flagged_at":  bson.M{"bsonType": "date"},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
