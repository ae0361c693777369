package dto

// UpdateOpenStatusRequest sets stcourse.open_status. A blank status clears it.
type UpdateOpenStatusRequest struct {
	OpenStatus string `json:"open_status" validate:"open_status"`
}

// UpdateGradingOptionRequest sets stcourse.grading_option.
type UpdateGradingOptionRequest struct {
	GradingOption string `json:"grading_option" validate:"required,grading_option"`
}

// UpdatePaceOrderRequest sets stcourse.pace_order. A null order clears it.
type UpdatePaceOrderRequest struct {
	PaceOrder *int `json:"pace_order" validate:"omitempty,min=1,max=5"`
}

// RegistrationKeyParams identifies the registration addressed by a request path.
type RegistrationKeyParams struct {
	Term      string `validate:"required,len=4|len=6"`
	StudentID string `validate:"required,max=9"`
	Course    string `validate:"required,max=10"`
	Section   string `validate:"required,max=4"`
}
