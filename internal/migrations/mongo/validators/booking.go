package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"guest_id",
			"host_id",
			"listing_id",
			"status",
			"start_date",
			"end_date",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"guest_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"host_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"listing_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"active",
					"completed",
					"cancelled",
					"sos_critical",
				},
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"base_price": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"total_price": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"financials": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"deposit_tier": bson.M{
						"bsonType": "string",
						"enum":     []string{"STANDARD", "LUXURY"},
					},
					"deposit_hold_amount": bson.M{
						"bsonType": "long",
						"minimum":  0,
					},
					"deposit_captured": bson.M{
						"bsonType": "bool",
					},
					"deposit_released": bson.M{
						"bsonType": "bool",
					},
				},
			},

			"emergency_protocol": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"is_active": bson.M{
						"bsonType": "bool",
					},
					"stage": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"host_response_status": bson.M{
						"bsonType": "string",
						"enum":     []string{"waiting", "responded", "resolved"},
					},
				},
			},

			"version": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
