package handlers

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

type updateShopStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending preparing ready delivered cancelled"`
}

type advanceDeliveryRequest struct {
	Status string `json:"status" validate:"required,oneof=picked_up on_the_way reached"`
}

type verifyCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}
