package validators

import "go.mongodb.org/mongo-driver/bson"

var AuditEntryValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"action", "entity_type", "entity_id", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "objectId"},
			"action":      bson.M{"bsonType": "string", "minLength": 1},
			"entity_type": bson.M{"bsonType": "string", "minLength": 1},
			"entity_id":   bson.M{"bsonType": "string", "minLength": 1},
			"actor_id":    bson.M{"bsonType": "string"},
			"detail":      bson.M{"bsonType": "object"},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
