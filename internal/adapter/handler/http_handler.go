package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/domain"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/core/service"
	"github.com/Danzskrtt/Sebucha-Order-Management-System/internal/port"
)

type HTTPHandler struct {
	orders    *service.OrderService
	status    *service.StatusService
	inventory *service.InventoryService
	metrics   *service.MetricsService
	log       zerolog.Logger
}

func NewHTTPHandler(orders *service.OrderService, status *service.StatusService, inventory *service.InventoryService, metrics *service.MetricsService, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		orders:    orders,
		status:    status,
		inventory: inventory,
		metrics:   metrics,
		log:       log,
	}
}

func (h *HTTPHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	r.HandleFunc("/api/orders", h.PlaceOrder).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", h.ListOrders).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}", h.GetOrder).Methods(http.MethodGet)
	r.HandleFunc("/api/orders/{id}/status", h.ChangeStatus).Methods(http.MethodPost)

	r.HandleFunc("/api/products", h.CreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/api/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", h.GetProduct).Methods(http.MethodGet)
	r.HandleFunc("/api/products/{id}", h.UpdateProduct).Methods(http.MethodPut)

	r.HandleFunc("/api/metrics/summary", h.MetricsSummary).Methods(http.MethodGet)
}

type cartLineRequest struct {
	ProductID     int     `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	TotalPrice    float64 `json:"total_price"`
	Customization string  `json:"customization,omitempty"`
	Category      string  `json:"category,omitempty"`
	AddOnName     string  `json:"addon_name,omitempty"`
	AddOnQuantity int     `json:"addon_quantity,omitempty"`
}

type placeOrderRequest struct {
	RequestID     string            `json:"request_id"`
	CustomerName  string            `json:"customer_name"`
	OrderType     string            `json:"order_type"`
	PaymentMethod string            `json:"payment_method"`
	Cart          []cartLineRequest `json:"cart"`
}

type placeOrderResponse struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
	QRCode      string  `json:"qr_code,omitempty"`
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart := make([]service.CartLine, 0, len(req.Cart))
	for _, line := range req.Cart {
		cart = append(cart, service.CartLine{
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			TotalPrice:    line.TotalPrice,
			Customization: line.Customization,
			Category:      line.Category,
			AddOnName:     line.AddOnName,
			AddOnQuantity: line.AddOnQuantity,
		})
	}

	result, err := h.orders.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		RequestID:     req.RequestID,
		CustomerName:  req.CustomerName,
		OrderType:     req.OrderType,
		PaymentMethod: req.PaymentMethod,
		Cart:          cart,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := placeOrderResponse{
		OrderID:     result.OrderID,
		TotalAmount: result.TotalAmount,
		Status:      string(result.Status),
	}
	if len(result.QRCode) > 0 {
		resp.QRCode = base64.StdEncoding.EncodeToString(result.QRCode)
	}
	writeJSON(w, http.StatusCreated, resp)
}

type changeStatusRequest struct {
	RequestedStatus string `json:"requested_status"`
}

type changeStatusResponse struct {
	OK        bool   `json:"ok"`
	OrderID   string `json:"order_id"`
	NewStatus string `json:"new_status"`
}

func (h *HTTPHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.status.ChangeStatus(r.Context(), orderID, domain.OrderStatus(req.RequestedStatus))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changeStatusResponse{
		OK:        true,
		OrderID:   result.OrderID,
		NewStatus: string(result.NewStatus),
	})
}

type orderLineResponse struct {
	ProductID     int     `json:"product_id"`
	ProductName   string  `json:"product_name"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	TotalPrice    float64 `json:"total_price"`
	Customization string  `json:"customization,omitempty"`
	Category      string  `json:"category,omitempty"`
	AddOnName     string  `json:"addon_name,omitempty"`
	AddOnQuantity int     `json:"addon_quantity,omitempty"`
}

type orderResponse struct {
	OrderID       string              `json:"order_id"`
	CustomerName  string              `json:"customer_name"`
	OrderType     string              `json:"order_type"`
	PaymentMethod string              `json:"payment_method"`
	Status        string              `json:"status"`
	TotalAmount   float64             `json:"total_amount"`
	PlacedAt      string              `json:"placed_at"`
	Lines         []orderLineResponse `json:"lines,omitempty"`
}

func toOrderResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		OrderType:     string(order.OrderType),
		PaymentMethod: order.PaymentMethod,
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount,
		PlacedAt:      order.PlacedAt.Format("2006-01-02 15:04:05"),
	}
	for _, line := range order.Lines {
		lr := orderLineResponse{
			ProductID:     line.ProductID,
			ProductName:   line.ProductName,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			TotalPrice:    line.TotalPrice,
			Customization: line.Customization,
			Category:      line.Category,
		}
		if line.AddOn != nil {
			lr.AddOnName = line.AddOn.Name
			lr.AddOnQuantity = line.AddOn.Quantity
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.status.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.status.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderResponse(order))
	}
	writeJSON(w, http.StatusOK, resp)
}

type productRequest struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Status    string  `json:"status,omitempty"`
	ImagePath string  `json:"image_path,omitempty"`
}

type productResponse struct {
	ID        int     `json:"id"`
	DisplayID string  `json:"display_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
	Status    string  `json:"status"`
	ImagePath string  `json:"image_path,omitempty"`
}

func toProductResponse(product domain.Product) productResponse {
	return productResponse{
		ID:        product.ID,
		DisplayID: service.DisplayID(product),
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		Stock:     product.Stock,
		Status:    string(product.Status),
		ImagePath: product.ImagePath,
	}
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.inventory.CreateProduct(r.Context(), service.ProductInput{
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Stock:     req.Stock,
		ImagePath: req.ImagePath,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(*product))
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	product, err := h.inventory.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*product))
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.inventory.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := make([]productResponse, 0, len(products))
	for _, product := range products {
		resp = append(resp, toProductResponse(product))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.inventory.UpdateProduct(r.Context(), domain.Product{
		ID:        id,
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Stock:     req.Stock,
		Status:    domain.ProductStatus(req.Status),
		ImagePath: req.ImagePath,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(*product))
}

func (h *HTTPHandler) MetricsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.metrics.Summary(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidLine),
		errors.Is(err, service.ErrInvalidOrderType),
		errors.Is(err, service.ErrMissingPayment),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidProduct):
		h.writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateRequest):
		h.writeErrorMessage(w, http.StatusConflict, "duplicate request")
	case errors.Is(err, port.ErrInsufficientStock):
		h.writeErrorMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, port.ErrOrderCancelled):
		h.writeErrorMessage(w, http.StatusConflict, "order already cancelled")
	case errors.Is(err, port.ErrOrderNotFound), errors.Is(err, port.ErrProductNotFound):
		h.writeErrorMessage(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("request failed")
		h.writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *HTTPHandler) writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
