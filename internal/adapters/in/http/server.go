package http

import (
	"errors"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Server exposes the order lifecycle over HTTP. It translates requests into
// commands and queries, and maps application errors onto status codes.
type Server struct {
	// Command handlers
	createOrderHandler  commands.CreateOrderCommandHandler
	payOrderHandler     commands.PayOrderCommandHandler
	shipOrderHandler    commands.ShipOrderCommandHandler
	deliverOrderHandler commands.DeliverOrderCommandHandler
	cancelOrderHandler  commands.CancelOrderCommandHandler

	// Query handlers
	getOrderHandler            queries.GetOrderQueryHandler
	getIncompleteOrdersHandler queries.GetIncompleteOrdersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	payOrderHandler commands.PayOrderCommandHandler,
	shipOrderHandler commands.ShipOrderCommandHandler,
	deliverOrderHandler commands.DeliverOrderCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getIncompleteOrdersHandler queries.GetIncompleteOrdersQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:         createOrderHandler,
		payOrderHandler:            payOrderHandler,
		shipOrderHandler:           shipOrderHandler,
		deliverOrderHandler:        deliverOrderHandler,
		cancelOrderHandler:         cancelOrderHandler,
		getOrderHandler:            getOrderHandler,
		getIncompleteOrdersHandler: getIncompleteOrdersHandler,
	}
}

// RegisterRoutes attaches all order endpoints under /api/v1.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.POST("/orders/:id/pay", s.PayOrder)
	api.POST("/orders/:id/ship", s.ShipOrder)
	api.POST("/orders/:id/deliver", s.DeliverOrder)
	api.POST("/orders/:id/cancel", s.CancelOrder)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders", s.GetOrders)
}

// CreateOrder handles POST /api/v1/orders - places a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var request NewOrder
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	customerID, err := kernel.UUIDFromString(request.CustomerID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid customer id: " + request.CustomerID,
		})
	}

	lines := make([]commands.LineInput, len(request.Lines))
	for i, line := range request.Lines {
		lines[i] = commands.LineInput{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitPriceAmount: line.UnitPriceAmount,
			Currency:        line.Currency,
		}
	}

	orderID := kernel.NewUUID()

	cmd, err := commands.NewCreateOrderCommand(orderID, customerID, lines, correlationID(ctx))
	if err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Error{
			Code:    http.StatusUnprocessableEntity,
			Message: "Invalid order data: " + err.Error(),
		})
	}

	if handleErr := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return errorResponse(ctx, handleErr, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, OrderCreated{ID: orderID.String()})
}

// PayOrder handles POST /api/v1/orders/:id/pay - records payment for the order.
func (s *Server) PayOrder(ctx echo.Context) error {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return nil
	}

	cmd, err := commands.NewPayOrderCommand(orderID, correlationID(ctx))
	if err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Error{
			Code:    http.StatusUnprocessableEntity,
			Message: "Invalid payment request: " + err.Error(),
		})
	}

	if handleErr := s.payOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return errorResponse(ctx, handleErr, "Failed to pay order")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ShipOrder handles POST /api/v1/orders/:id/ship - marks the order as shipped.
func (s *Server) ShipOrder(ctx echo.Context) error {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return nil
	}

	cmd, err := commands.NewShipOrderCommand(orderID, correlationID(ctx))
	if err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Error{
			Code:    http.StatusUnprocessableEntity,
			Message: "Invalid shipment request: " + err.Error(),
		})
	}

	if handleErr := s.shipOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return errorResponse(ctx, handleErr, "Failed to ship order")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// DeliverOrder handles POST /api/v1/orders/:id/deliver - marks the order as delivered.
func (s *Server) DeliverOrder(ctx echo.Context) error {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return nil
	}

	cmd, err := commands.NewDeliverOrderCommand(orderID, correlationID(ctx))
	if err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Error{
			Code:    http.StatusUnprocessableEntity,
			Message: "Invalid delivery request: " + err.Error(),
		})
	}

	if handleErr := s.deliverOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return errorResponse(ctx, handleErr, "Failed to deliver order")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - cancels the order.
// The request body is optional and may carry a cancellation reason.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return nil
	}

	var request CancelOrder
	if ctx.Request().ContentLength > 0 {
		if err := ctx.Bind(&request); err != nil {
			return ctx.JSON(http.StatusBadRequest, Error{
				Code:    http.StatusBadRequest,
				Message: "Invalid request body",
			})
		}
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, request.Reason, correlationID(ctx))
	if err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Error{
			Code:    http.StatusUnprocessableEntity,
			Message: "Invalid cancellation request: " + err.Error(),
		})
	}

	if handleErr := s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return errorResponse(ctx, handleErr, "Failed to cancel order")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetOrder handles GET /api/v1/orders/:id - retrieves one order.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return nil
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, Error{
			Code:    http.StatusUnprocessableEntity,
			Message: "Invalid order query: " + err.Error(),
		})
	}

	result, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorResponse(ctx, err, "Failed to retrieve order")
	}

	return ctx.JSON(http.StatusOK, toOrderResponse(result))
}

// GetOrders handles GET /api/v1/orders - retrieves all in-flight orders.
func (s *Server) GetOrders(ctx echo.Context) error {
	query := queries.NewGetIncompleteOrdersQuery()

	orders, err := s.getIncompleteOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return errorResponse(ctx, err, "Failed to retrieve orders")
	}

	response := make([]OrderSummary, len(orders))
	for i, item := range orders {
		response[i] = OrderSummary{
			ID:         item.ID.String(),
			CustomerID: item.CustomerID.String(),
			Status:     item.Status,
			CreatedAt:  item.CreatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// orderIDParam parses the :id path parameter. On failure it writes a 400
// response and reports false.
func orderIDParam(ctx echo.Context) (kernel.UUID, bool) {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		_ = ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id: " + ctx.Param("id"),
		})
		return kernel.UUID{}, false
	}
	return orderID, true
}

// correlationID reads the request correlation id from the X-Request-ID
// header, generating a fresh one when the caller did not supply it.
func correlationID(ctx echo.Context) string {
	if id := ctx.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

// errorResponse maps application errors onto HTTP status codes.
func errorResponse(ctx echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: message + ": " + err.Error(),
		})
	case errors.Is(err, order.ErrInvalidStateTransition),
		errors.Is(err, errs.ErrConcurrencyConflict):
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: message + ": " + err.Error(),
		})
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return ctx.JSON(http.StatusUnprocessableEntity, Error{
			Code:    http.StatusUnprocessableEntity,
			Message: message + ": " + err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: message,
		})
	}
}

func toOrderResponse(result queries.GetOrderQueryResponse) Order {
	lines := make([]OrderLine, len(result.Lines))
	for i, line := range result.Lines {
		lines[i] = OrderLine{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitPriceAmount: line.UnitPriceAmount,
			Currency:        line.Currency,
		}
	}

	return Order{
		ID:          result.ID.String(),
		CustomerID:  result.CustomerID.String(),
		Status:      result.Status,
		Lines:       lines,
		TotalAmount: result.TotalAmount,
		Currency:    result.Currency,
		CreatedAt:   result.CreatedAt,
		PaidAt:      result.PaidAt,
		ShippedAt:   result.ShippedAt,
		DeliveredAt: result.DeliveredAt,
		CancelledAt: result.CancelledAt,
		Version:     result.Version,
	}
}
