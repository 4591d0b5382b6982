package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"plane_id",
			"seats",
			"total_price",
			"booking_date",
			"travel_date",
			"travel_time",
			"is_paid",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"plane_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"seats": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"plane_id", "row", "column"},
					"properties": bson.M{
						"row":    bson.M{"bsonType": "string"},
						"column": bson.M{"enum": seatColumns},
					},
				},
			},

			"reservation_id": bson.M{
				"bsonType": "string",
			},

			"passengers": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name", "passport_number"},
					"properties": bson.M{
						"name":            bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
						"passport_number": bson.M{"bsonType": "string", "minLength": 5, "maxLength": 20},
						"age":             bson.M{"bsonType": []string{"int", "long"}, "minimum": 0, "maximum": 130},
					},
				},
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"booking_date": bson.M{
				"bsonType": "date",
			},

			"travel_date": bson.M{
				"bsonType": "date",
			},

			"travel_time": bson.M{
				"bsonType": "string",
				"pattern":  travelTimePattern,
			},

			"is_paid": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
