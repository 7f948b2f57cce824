package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fieldserve/orders-api/internal/logging"
	"github.com/fieldserve/orders-api/internal/models"
	"github.com/fieldserve/orders-api/internal/service"
	"github.com/fieldserve/orders-api/internal/transport"
	"github.com/fieldserve/orders-api/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func orderID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id is not a uuid")
	}
	return id, nil
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	status := models.OrderStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		l.Warn("list_orders_error", "status", 400, "reason", "unknown status value")
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status value")
	}

	q := service.ListQuery{
		Page:       util.ParseIntDefault(c.QueryParam("page"), 1),
		PageSize:   util.ParseIntDefault(c.QueryParam("pageSize"), util.DefaultPageSize),
		Area:       c.QueryParam("area"),
		Technician: c.QueryParam("technician"),
		Status:     status,
	}

	result, err := h.Svc.ListOrders(ctx, q)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	l.Info("list_orders_success", "total", result.TotalCount)
	return c.JSON(http.StatusOK, result)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := orderID(c)
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id is not a uuid")
		return err
	}

	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_order_error", "status", 404, "order_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		l.Error("get_order_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get order")
	}

	return c.JSON(http.StatusOK, transport.ToOrderResponse(order))
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.CreateOrder(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_order_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("create_order_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create order")
	}

	l.Info("create_order_success", "order_id", order.ID)
	c.Response().Header().Set(echo.HeaderLocation, "/api/orders/"+order.ID.String())
	return c.JSON(http.StatusCreated, transport.CreatedResponse{ID: order.ID})
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, err := orderID(c)
	if err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "id is not a uuid")
		return err
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdateOrder(ctx, id, req); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("update_order_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_order_error", "status", 404, "order_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		default:
			l.Error("update_order_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update order")
		}
	}

	l.Info("update_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := orderID(c)
	if err != nil {
		l.Warn("delete_order_error", "status", 400, "reason", "id is not a uuid")
		return err
	}

	if err := h.Svc.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_order_error", "status", 404, "order_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		l.Error("delete_order_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete order")
	}

	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.search_orders")

	q := c.QueryParam("q")
	if q == "" {
		l.Warn("search_orders_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("pageSize"), util.DefaultPageSize)

	total, docs, err := h.Svc.SearchOrders(ctx, q, page, size)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("search_orders_error", "status", 404, "reason", "search disabled")
			return echo.NewHTTPError(http.StatusNotFound, "search is not enabled")
		}
		l.Error("search_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search orders")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "items": docs})
}
