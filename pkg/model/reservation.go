package model

const (
	RoleUser       = "user"
	RoleStaff      = "staff"
	RoleManagement = "management"
)

// IsPrivilegedRole reports whether role bypasses seat selection policy.
func IsPrivilegedRole(role string) bool {
	return role == RoleStaff || role == RoleManagement
}

// SeatRequest identifies seats of one flight instance on behalf of a user.
// It is the body of the reserve, lock, unlock and unreserve endpoints.
type SeatRequest struct {
	PlaneID    string   `json:"planeId" validate:"required"`
	SeatIDs    []string `json:"seatIds" validate:"required,min=1,unique,dive,required"`
	UserID     string   `json:"userId" validate:"required"`
	UserRole   string   `json:"userRole,omitempty" validate:"omitempty,oneof=user staff management"`
	TravelDate string   `json:"travelDate" validate:"required,travel_date"`
	TravelTime string   `json:"travelTime" validate:"required,travel_time"`
}

type UnlockAllRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// CancelSeatRequest is built from path parameters, not a JSON body.
type CancelSeatRequest struct {
	PlaneID string `validate:"required"`
	SeatID  string `validate:"required"`
	UserID  string `validate:"required"`
}
