package domain

// ShippingOption is one of the storefront's fixed delivery choices.
type ShippingOption struct {
	ID       string
	Name     string
	Fee      float64
	Estimate string
}

// The storefront offers a fixed set of shipping options. Selecting one is
// mutually exclusive.
var shippingOptions = []ShippingOption{
	{ID: "standard", Name: "Standard Delivery", Fee: 0, Estimate: "3-5 business days"},
	{ID: "express", Name: "Express Delivery", Fee: 50, Estimate: "1-2 business days"},
}

// ShippingOptions returns the available shipping options.
func ShippingOptions() []ShippingOption {
	out := make([]ShippingOption, len(shippingOptions))
	copy(out, shippingOptions)
	return out
}

// ShippingOptionByID looks up a shipping option by its identifier.
func ShippingOptionByID(id string) (ShippingOption, bool) {
	for _, opt := range shippingOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return ShippingOption{}, false
}
