package webhookhttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tvbridge/internal/alert"
	"tvbridge/internal/bridge"
	"tvbridge/internal/logger"
	"tvbridge/internal/pkg/text"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	maxBodyBytes   = 64 << 10
	bodyPreviewLen = 256
)

// Router translates HTTP requests into bridge commands.
type Router struct {
	exec    Executor
	secret  SecretFunc
	broker  BrokerInfo
	limiter *rate.Limiter
	now     func() time.Time
}

func NewRouter(exec Executor, secret SecretFunc, info BrokerInfo, limiter *rate.Limiter) *Router {
	if secret == nil {
		secret = func() string { return "" }
	}
	return &Router{exec: exec, secret: secret, broker: info, limiter: limiter, now: time.Now}
}

func (r *Router) Register(router gin.IRoutes) {
	router.GET("/health", r.handleHealth)
	router.POST("/webhook", rateLimit(r.limiter), r.handleWebhook)
	router.POST("/connect", r.handleConnect)
	router.POST("/disconnect", r.handleDisconnect)
	router.GET("/status", r.handleStatus)
	router.GET("/orders", r.handleOrders)
}

func (r *Router) handleHealth(c *gin.Context) {
	connected, err := r.exec.IsConnected(c.Request.Context())
	if err != nil {
		logger.Warnf("health: connection probe failed: %v", err)
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		IBConnected: connected,
		Timestamp:   r.now().Format(time.RFC3339Nano),
	})
}

func (r *Router) handleStatus(c *gin.Context) {
	connected, err := r.exec.IsConnected(c.Request.Context())
	if err != nil {
		logger.Warnf("status: connection probe failed: %v", err)
	}
	c.JSON(http.StatusOK, StatusResponse{
		Connected: connected,
		Host:      r.broker.Host,
		Port:      r.broker.Port,
		ClientID:  r.broker.ClientID,
	})
}

func (r *Router) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("reading request body failed: %v", err), ErrorKind: "InvalidPayload"})
		return
	}
	payload, parseErr := alert.ParsePayload(body)

	if expected := r.secret(); expected != "" {
		provided := strings.TrimSpace(c.GetHeader(headerSecret))
		if provided == "" && parseErr == nil {
			provided = payload.Secret
		}
		if !secretMatches(expected, provided) {
			logger.Warnf("webhook: rejected alert with bad secret ip=%s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid webhook secret", ErrorKind: "AuthError"})
			return
		}
	}
	if parseErr != nil {
		logger.Warnf("webhook: unparseable alert: %v body=%s", parseErr, r.preview(body))
		writeNormalizationError(c, parseErr)
		return
	}

	intent, err := alert.Normalize(payload.Fields)
	if err != nil {
		logger.Warnf("webhook: rejected alert: %v body=%s", err, r.preview(body))
		writeNormalizationError(c, err)
		return
	}
	logger.Infof("Received TradingView alert: %s", intent)

	outcome, err := r.exec.PlaceOrder(c.Request.Context(), intent)
	if err != nil {
		writeBridgeError(c, err)
		return
	}
	if !outcome.Success {
		c.JSON(http.StatusInternalServerError, outcome)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (r *Router) handleConnect(c *gin.Context) {
	_, err := r.exec.Connect(c.Request.Context())
	if err != nil {
		if isBridgeUnavailable(err) {
			writeBridgeError(c, err)
			return
		}
		c.JSON(http.StatusInternalServerError, MessageResponse{
			Success: false,
			Error:   fmt.Sprintf("Failed to connect to broker: %v", err),
		})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: fmt.Sprintf("Connected to broker at %s:%d", r.broker.Host, r.broker.Port),
	})
}

func (r *Router) handleDisconnect(c *gin.Context) {
	if _, err := r.exec.Disconnect(c.Request.Context()); err != nil {
		logger.Warnf("disconnect: %v", err)
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Disconnected from broker"})
}

func (r *Router) handleOrders(c *gin.Context) {
	orders, err := r.exec.ListOpenOrders(c.Request.Context())
	if err != nil {
		if isBridgeUnavailable(err) {
			writeBridgeError(c, err)
			return
		}
		logger.Errorf("orders: %v", err)
		c.JSON(http.StatusOK, OrdersResponse{Success: false, Orders: []bridge.OrderSummary{}, Error: err.Error()})
		return
	}
	if orders == nil {
		orders = []bridge.OrderSummary{}
	}
	c.JSON(http.StatusOK, OrdersResponse{Success: true, Orders: orders, Count: len(orders)})
}

func writeNormalizationError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error(), ErrorKind: "NormalizationError"}
	var nerr *alert.NormalizationError
	if errors.As(err, &nerr) {
		resp.ErrorKind = nerr.KindName()
		resp.Field = nerr.Field
	}
	c.JSON(http.StatusBadRequest, resp)
}

// isBridgeUnavailable reports errors raised before the worker ran the command.
func isBridgeUnavailable(err error) bool {
	return errors.Is(err, bridge.ErrQueueFull) ||
		errors.Is(err, bridge.ErrStopped) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func writeBridgeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, bridge.ErrQueueFull), errors.Is(err, bridge.ErrStopped):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	logger.Errorf("HTTP %s %s: bridge unavailable: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(status, ErrorResponse{Error: err.Error(), ErrorKind: string(bridge.KindInternal)})
}

// preview renders body for a log line with the configured secret masked.
func (r *Router) preview(body []byte) string {
	s := string(body)
	if secret := r.secret(); secret != "" {
		s = strings.ReplaceAll(s, secret, "******")
	}
	return text.Preview(s, bodyPreviewLen)
}
