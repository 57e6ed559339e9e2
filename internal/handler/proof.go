package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"checkout/internal/middleware"
	"checkout/internal/service"
)

// ProofHandler handles HTTP requests for the QR proof-of-payment flow.
type ProofHandler struct {
	proofService *service.ProofService
	countdowns   *service.CountdownRegistry
	maxSlipBytes int64
}

// NewProofHandler creates a new ProofHandler.
func NewProofHandler(proofService *service.ProofService, countdowns *service.CountdownRegistry, maxSlipBytes int64) *ProofHandler {
	return &ProofHandler{
		proofService: proofService,
		countdowns:   countdowns,
		maxSlipBytes: maxSlipBytes,
	}
}

// UploadSlip handles POST /v1/checkout/sessions/:id/slip
func (h *ProofHandler) UploadSlip(c *gin.Context) {
	file, header, err := c.Request.FormFile("slip")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "slip file is required"})
		return
	}
	defer file.Close()

	// Read one byte past the limit so oversized files are rejected
	// without buffering the whole thing.
	data, err := io.ReadAll(io.LimitReader(file, h.maxSlipBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "could not read slip file"})
		return
	}

	session, err := h.proofService.SubmitSlip(c.Request.Context(),
		middleware.Token(c), middleware.CustomerID(c), c.Param("id"),
		service.Slip{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}

// Refresh handles POST /v1/checkout/sessions/:id/refresh
func (h *ProofHandler) Refresh(c *gin.Context) {
	session, err := h.proofService.Refresh(c.Request.Context(),
		middleware.Token(c), middleware.CustomerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSessionResponse(session, h.countdowns))
}
