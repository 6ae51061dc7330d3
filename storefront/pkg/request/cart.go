package request

type AddItem struct {
	ProductID string `validate:"required"       json:"product_id"`
	Quantity  int32  `validate:"omitempty,gte=1" json:"quantity"`
}

type UpdateQuantity struct {
	Quantity int32 `json:"quantity"`
}
