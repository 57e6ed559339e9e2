package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"checkout/internal/card"
	"checkout/internal/domain"
	"checkout/internal/middleware"
	"checkout/internal/service"
	"checkout/internal/validation"
)

// CheckoutHandler handles HTTP requests for checkout sessions.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	countdowns      *service.CountdownRegistry
	validate        *validatorv10.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutService *service.CheckoutService, countdowns *service.CountdownRegistry) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		countdowns:      countdowns,
		validate:        validation.New(),
	}
}

// Open handles POST /v1/checkout/:orderId
func (h *CheckoutHandler) Open(c *gin.Context) {
	session, err := h.checkoutService.Open(c.Request.Context(),
		middleware.Token(c), middleware.CustomerID(c), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toSessionResponse(session, h.countdowns))
}

// Get handles GET /v1/checkout/sessions/:id
func (h *CheckoutHandler) Get(c *gin.Context) {
	session, err := h.checkoutService.Get(c.Request.Context(),
		middleware.CustomerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}

// SelectMethod handles PUT /v1/checkout/sessions/:id/method
func (h *CheckoutHandler) SelectMethod(c *gin.Context) {
	var req validation.SelectMethodRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	session, err := h.checkoutService.SelectMethod(c.Request.Context(),
		middleware.CustomerID(c), c.Param("id"), domain.PaymentMethod(req.Method))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}

// SelectShipping handles PUT /v1/checkout/sessions/:id/shipping
func (h *CheckoutHandler) SelectShipping(c *gin.Context) {
	var req validation.SelectShippingRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	session, err := h.checkoutService.SelectShipping(c.Request.Context(),
		middleware.CustomerID(c), c.Param("id"), req.OptionID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}

// CardResponse carries the session snapshot plus the per-field
// validation outcome and the display-formatted number for the card form.
type CardResponse struct {
	Session         SessionResponse   `json:"session"`
	Valid           bool              `json:"valid"`
	Errors          map[string]string `json:"errors"`
	FormattedNumber string            `json:"formatted_number"`
}

// SetCard handles PUT /v1/checkout/sessions/:id/card
func (h *CheckoutHandler) SetCard(c *gin.Context) {
	var req validation.CardRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	session, result, err := h.checkoutService.SetCard(c.Request.Context(),
		middleware.CustomerID(c), c.Param("id"), card.Input{
			Number: req.Number,
			Name:   req.Name,
			Expiry: req.Expiry,
			CVC:    req.CVC,
		})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CardResponse{
		Session:         toSessionResponse(session, h.countdowns),
		Valid:           result.Valid,
		Errors:          result.Errors,
		FormattedNumber: card.FormatNumber(req.Number),
	})
}

// SetNote handles PUT /v1/checkout/sessions/:id/note
func (h *CheckoutHandler) SetNote(c *gin.Context) {
	var req validation.NoteRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	session, err := h.checkoutService.SetNote(c.Request.Context(),
		middleware.CustomerID(c), c.Param("id"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}

// Submit handles POST /v1/checkout/sessions/:id/submit
func (h *CheckoutHandler) Submit(c *gin.Context) {
	session, err := h.checkoutService.Submit(c.Request.Context(),
		middleware.Token(c), middleware.CustomerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}

// Back handles POST /v1/checkout/sessions/:id/back
func (h *CheckoutHandler) Back(c *gin.Context) {
	session, err := h.checkoutService.Back(c.Request.Context(),
		middleware.CustomerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}

// Retry handles POST /v1/checkout/sessions/:id/retry
func (h *CheckoutHandler) Retry(c *gin.Context) {
	session, err := h.checkoutService.Retry(c.Request.Context(),
		middleware.CustomerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}

// Close handles DELETE /v1/checkout/sessions/:id
func (h *CheckoutHandler) Close(c *gin.Context) {
	if err := h.checkoutService.Close(c.Request.Context(),
		middleware.CustomerID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
