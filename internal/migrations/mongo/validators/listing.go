package validators

import "go.mongodb.org/mongo-driver/bson"

var ListingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"host_id", "title", "short_id", "status", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":     bson.M{"bsonType": "objectId"},
			"host_id": bson.M{"bsonType": "string", "minLength": 1},
			"title":   bson.M{"bsonType": "string", "minLength": 2, "maxLength": 200},
			"short_id": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 20,
			},
			"zone":       bson.M{"bsonType": "string"},
			"asset_type": bson.M{"bsonType": "string"},
			"rooms":      bson.M{"bsonType": "int", "minimum": 1},
			"price_per_night": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},
			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"active",
					"inactive",
					"suspended_for_investigation",
				},
			},
			"violation_count": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},
			"last_violation_at": bson.M{"bsonType": "date"},
			"created_at":        bson.M{"bsonType": "date"},
		},
	},
}
