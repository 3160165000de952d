package bridge

import "tvbridge/internal/logger"

// HandlerRegistry maps command kinds to their handlers.
type HandlerRegistry struct {
	handlers map[CommandKind]CommandHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[CommandKind]CommandHandler),
	}
}

// Register adds h, replacing any handler already bound to its kind.
func (r *HandlerRegistry) Register(h CommandHandler) {
	if h == nil {
		return
	}
	r.handlers[h.Kind()] = h
}

func (r *HandlerRegistry) Get(kind CommandKind) (CommandHandler, bool) {
	h, ok := r.handlers[kind]
	return h, ok
}

func (r *HandlerRegistry) RegisterDefaultHandlers() {
	r.Register(&ConnectHandler{})
	r.Register(&DisconnectHandler{})
	r.Register(&IsConnectedHandler{})
	r.Register(&PlaceOrderHandler{})
	r.Register(&ListOpenOrdersHandler{})
	logger.Debugf("Bridge: registered %d command handlers", len(r.handlers))
}
