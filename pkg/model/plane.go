package model

type Plane struct {
	ID   string `json:"id,omitempty" bson:"_id,omitempty"`
	Name string `json:"name" bson:"name" validate:"required,min=1,max=100"`
}
