package validators

import "go.mongodb.org/mongo-driver/bson"

var (
	seatColumns = []string{"A", "B", "C", "D", "E", "F"}

	travelTimePattern = `^([01][0-9]|2[0-3]):[0-5][0-9]$`
)

var PlaneValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"name"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},
		},
	},
}

var SeatValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"plane_id", "row", "column"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"plane_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},
			"row": bson.M{
				"bsonType": "string",
				"pattern":  `^[0-9]+$`,
			},
			"column": bson.M{
				"enum": seatColumns,
			},
		},
	},
}

// SeatReservationValidator guards the ledger. The _id is the composite
// plane|date|time|seat key, so it is a string rather than an ObjectID.
var SeatReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"plane_id",
			"seat_id",
			"travel_date",
			"travel_time",
			"is_reserved",
			"is_locked",
		},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"plane_id": bson.M{
				"bsonType": "string",
			},
			"seat_id": bson.M{
				"bsonType": "string",
			},
			"travel_date": bson.M{
				"bsonType": "date",
			},
			"travel_time": bson.M{
				"bsonType": "string",
				"pattern":  travelTimePattern,
			},
			"user_id": bson.M{
				"bsonType": "string",
			},
			"reservation_id": bson.M{
				"bsonType": "string",
			},
			"is_reserved": bson.M{
				"bsonType": "bool",
			},
			"is_locked": bson.M{
				"bsonType": "bool",
			},
		},
	},
}
