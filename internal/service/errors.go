package service

import "errors"

var (
	ErrInvalidOrderID        = errors.New("order id is required")
	ErrInvalidSessionID      = errors.New("session id is required")
	ErrSessionOwnership      = errors.New("session belongs to another customer")
	ErrOrderUnavailable      = errors.New("order could not be loaded")
	ErrInvalidPaymentMethod  = errors.New("unknown payment method")
	ErrInvalidShippingOption = errors.New("unknown shipping option")
	ErrNoMethodSelected      = errors.New("no payment method selected")
	ErrCardInvalid           = errors.New("card details are not valid")
	ErrSubmissionInFlight    = errors.New("a submission is already in flight")
	ErrInvalidTransition     = errors.New("action not allowed in the current step")
	ErrStaleSession          = errors.New("session changed while the request was in flight")
	ErrQRCodeUnavailable     = errors.New("qr code could not be generated for this payment")
	ErrSlipNotImage          = errors.New("slip must be an image file")
	ErrSlipTooLarge          = errors.New("slip image exceeds the size limit")
	ErrNoPayment             = errors.New("no payment exists for this session")
)
