package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"checkout/internal/domain"
)

// Client is the HTTP implementation of Storefront.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

var _ Storefront = (*Client)(nil)

// NewClient creates a storefront API client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Wire types. The backend returns amounts as plain numbers and times in
// RFC 3339.
type orderPayload struct {
	ID             string           `json:"id"`
	Items          []lineItem       `json:"items"`
	DiscountAmount float64          `json:"discount_amount"`
	DiscountCode   string           `json:"discount_code"`
	CartTotal      float64          `json:"cart_total"`
	Payments       []paymentPayload `json:"payments"`
}

type lineItem struct {
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

type paymentPayload struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	Method         string    `json:"method"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status"`
	TransactionRef string    `json:"transaction_ref"`
	QRPayload      string    `json:"qr_payload,omitempty"`
	SlipURL        string    `json:"slip_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type createPaymentPayload struct {
	OrderID          string  `json:"order_id"`
	Method           string  `json:"method"`
	Amount           float64 `json:"amount"`
	ShippingFee      float64 `json:"shipping_fee"`
	ShippingOptionID string  `json:"shipping_option_id"`
	Note             string  `json:"note,omitempty"`
	CardLastFour     string  `json:"card_last_four,omitempty"`
	CardExpiry       string  `json:"card_expiry,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// GetOrder fetches an order with its line items, discount and existing
// payments.
func (c *Client) GetOrder(ctx context.Context, token, orderID string) (*domain.Order, error) {
	var payload orderPayload
	if err := c.do(ctx, token, http.MethodGet, "/orders/"+orderID, nil, &payload); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:             payload.ID,
		DiscountAmount: payload.DiscountAmount,
		DiscountCode:   payload.DiscountCode,
		CartTotal:      payload.CartTotal,
	}
	for _, it := range payload.Items {
		order.Items = append(order.Items, domain.LineItem{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	for _, p := range payload.Payments {
		order.Payments = append(order.Payments, toDomainPayment(p))
	}
	return order, nil
}

// CreatePayment opens a payment for an order.
func (c *Client) CreatePayment(ctx context.Context, token string, req CreatePaymentRequest) (*domain.Payment, error) {
	body := createPaymentPayload{
		OrderID:          req.OrderID,
		Method:           string(req.Method),
		Amount:           req.Amount,
		ShippingFee:      req.ShippingFee,
		ShippingOptionID: req.ShippingOptionID,
		Note:             req.Note,
		CardLastFour:     req.CardLastFour,
		CardExpiry:       req.CardExpiry,
	}

	var payload paymentPayload
	if err := c.do(ctx, token, http.MethodPost, "/payments", body, &payload); err != nil {
		return nil, err
	}
	payment := toDomainPayment(payload)
	return &payment, nil
}

// UploadSlip attaches a proof-of-payment image to a payment and returns
// the backend's updated copy.
func (c *Client) UploadSlip(ctx context.Context, token, paymentID, filename, contentType string, data []byte) (*domain.Payment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="slip"; filename=%q`, filename)}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments/"+paymentID+"/slip", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	var payload paymentPayload
	if err := c.send(req, &payload); err != nil {
		return nil, err
	}
	payment := toDomainPayment(payload)
	return &payment, nil
}

// GetPayment fetches the current state of a payment, used for manual
// status refresh.
func (c *Client) GetPayment(ctx context.Context, token, paymentID string) (*domain.Payment, error) {
	var payload paymentPayload
	if err := c.do(ctx, token, http.MethodGet, "/payments/"+paymentID, nil, &payload); err != nil {
		return nil, err
	}
	payment := toDomainPayment(payload)
	return &payment, nil
}

func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			"method", req.Method, "path", req.URL.Path, "err", err)
		return fmt.Errorf("storefront request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", req.Method, "path", req.URL.Path,
		"status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	be := &BackendError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(data) > 0 {
		var payload errorPayload
		if json.Unmarshal(data, &payload) == nil {
			if payload.Message != "" {
				be.Message = payload.Message
			} else {
				be.Message = payload.Error
			}
		}
	}
	return be
}

func toDomainPayment(p paymentPayload) domain.Payment {
	return domain.Payment{
		ID:             p.ID,
		OrderID:        p.OrderID,
		Method:         domain.PaymentMethod(p.Method),
		Amount:         p.Amount,
		Status:         domain.PaymentStatus(p.Status),
		TransactionRef: p.TransactionRef,
		QRPayload:      p.QRPayload,
		SlipURL:        p.SlipURL,
		CreatedAt:      p.CreatedAt,
	}
}
