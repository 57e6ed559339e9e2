package validation

// SelectMethodRequest is the payload for PUT .../method
type SelectMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=cash credit_card qr_code"`
}

// SelectShippingRequest is the payload for PUT .../shipping
type SelectShippingRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}

// CardRequest is the payload for PUT .../card. Fields may be partial
// while the customer is still typing; semantic card validation happens
// in the card package and is reported per-field in the response.
type CardRequest struct {
	Number string `json:"number" validate:"max=32"`
	Name   string `json:"name" validate:"max=128"`
	Expiry string `json:"expiry" validate:"max=5"`
	CVC    string `json:"cvc" validate:"max=4"`
}

// NoteRequest is the payload for PUT .../note
type NoteRequest struct {
	Note string `json:"note" validate:"max=500"`
}
