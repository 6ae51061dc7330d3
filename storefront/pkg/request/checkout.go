package request

type Checkout struct {
	Phone         string `validate:"required"        json:"phone"`
	Address       string `validate:"required"        json:"address"`
	Name          string `validate:"omitempty"       json:"name"`
	Email         string `validate:"omitempty,email" json:"email"`
	PaymentMethod string `validate:"required"        json:"payment_method"`
	ApprovalRef   string `validate:"omitempty"       json:"approval_ref"`
}
