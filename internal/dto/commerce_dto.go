package dto

// AddCartItemRequest captures a product being added to the cart.
type AddCartItemRequest struct {
	ItemType string `json:"itemType" validate:"required,oneof=artwork event"`
	ItemID   uint   `json:"itemId" validate:"required,gt=0"`
	Quantity int    `json:"quantity" validate:"omitempty,gte=1,lte=20"`
}

// UpdateCartItemRequest changes the quantity of a line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=20"`
}

// CartLineResponse is a cart line resolved against its product.
type CartLineResponse struct {
	ID        uint   `json:"id"`
	ItemType  string `json:"itemType"`
	ItemID    uint   `json:"itemId"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
	Available bool   `json:"available"`
}

// CartResponse is the buyer's cart with totals.
type CartResponse struct {
	Items    []CartLineResponse `json:"items"`
	Count    int                `json:"count"`
	Total    int64              `json:"total"`
	Currency string             `json:"currency"`
}

// CheckoutResponse carries the hosted checkout redirect.
type CheckoutResponse struct {
	OrderID uint   `json:"orderId"`
	URL     string `json:"url"`
}

// OrderListQuery captures order listing filters.
type OrderListQuery struct {
	Status string
	Page   int
	Limit  int
}
