package domain

// LineItem is a single ordered product with its chosen variant.
type LineItem struct {
	ProductID string
	VariantID string
	UnitPrice float64
	Quantity  int
}

// Order is the backend's view of an order, read-only to the checkout core.
// CartTotal already has the discount applied server-side.
type Order struct {
	ID             string
	Items          []LineItem
	DiscountAmount float64
	DiscountCode   string
	CartTotal      float64
	Payments       []Payment
}

// PendingQRPayment returns the order's outstanding QR payment, if any.
// The backend permits at most one pending QR payment per order; the
// checkout session resumes it instead of creating a duplicate intent.
func (o *Order) PendingQRPayment() *Payment {
	for i := range o.Payments {
		p := &o.Payments[i]
		if p.Status == PaymentStatusPending && p.Method == PaymentMethodQRCode {
			return p
		}
	}
	return nil
}
