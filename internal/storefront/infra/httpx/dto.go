package httpx

type MenuItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type ZoneResponse struct {
	Name string `json:"name"`
	Fee  string `json:"fee"`
}

type CartLineResponse struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type CartResponse struct {
	SessionID string             `json:"session_id"`
	Lines     []CartLineResponse `json:"lines"`
	ItemCount int                `json:"item_count"`
	Amount    string             `json:"amount"`
	HasItems  bool               `json:"has_items"`
}

type CartCountResponse struct {
	Count    int  `json:"count"`
	HasItems bool `json:"has_items"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type PromotionResponse struct {
	Code    string `json:"code"`
	Applied bool   `json:"applied"`
	Effect  string `json:"effect,omitempty"`
	Label   string `json:"label"`
}

type SummaryResponse struct {
	Lines              []CartLineResponse `json:"lines"`
	ItemCount          int                `json:"item_count"`
	Subtotal           string             `json:"subtotal"`
	Zone               string             `json:"zone"`
	NominalDeliveryFee string             `json:"nominal_delivery_fee"`
	DeliveryFee        string             `json:"delivery_fee"`
	DeliveryWaived     bool               `json:"delivery_waived"`
	Discount           string             `json:"discount"`
	GrandTotal         string             `json:"grand_total"`
	Promotion          PromotionResponse  `json:"promotion"`
}

type PlaceOrderRequest struct {
	Zone          string `json:"zone"`
	PromoCode     string `json:"promo_code"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

type DeliveryResponse struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

type OrderLineResponse struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type OrderResponse struct {
	ID                string              `json:"id"`
	Number            string              `json:"number"`
	Status            string              `json:"status"`
	Lines             []OrderLineResponse `json:"lines"`
	ItemCount         int                 `json:"item_count"`
	Zone              string              `json:"zone"`
	PromoCode         string              `json:"promo_code,omitempty"`
	Subtotal          string              `json:"subtotal"`
	DeliveryFee       string              `json:"delivery_fee"`
	Discount          string              `json:"discount"`
	Total             string              `json:"total"`
	PaymentMethod     string              `json:"payment_method"`
	Delivery          DeliveryResponse    `json:"delivery"`
	EstimatedDelivery string              `json:"estimated_delivery,omitempty"`
	CreatedAt         string              `json:"created_at"`
	UpdatedAt         string              `json:"updated_at"`
}

type PlacementLogResponse struct {
	Status     string   `json:"status"`
	Step       string   `json:"step,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	TraceID    string   `json:"trace_id,omitempty"`
	SpanID     string   `json:"span_id,omitempty"`
	RecordedAt string   `json:"recorded_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
