package http

type OrderItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	FullName    string             `json:"fullName" binding:"required,max=100"`
	PhoneNumber string             `json:"phoneNumber" binding:"required,e164"`
	Email       string             `json:"email" binding:"omitempty,email"`
	Address     string             `json:"address" binding:"required,max=500"`
	Notes       string             `json:"notes" binding:"omitempty,max=1000"`
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type RejectOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}
