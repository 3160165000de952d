package bridge

type ConnectHandler struct{}

func (h *ConnectHandler) Kind() CommandKind { return CmdConnect }

func (h *ConnectHandler) Handle(ctx *HandlerContext, cmd Command) Result {
	if err := ctx.connect(true); err != nil {
		return Result{Err: err}
	}
	return Result{Connected: true, Message: "broker session connected"}
}

type DisconnectHandler struct{}

func (h *DisconnectHandler) Kind() CommandKind { return CmdDisconnect }

func (h *DisconnectHandler) Handle(ctx *HandlerContext, cmd Command) Result {
	ctx.disconnect()
	return Result{Message: "broker session disconnected"}
}

type IsConnectedHandler struct{}

func (h *IsConnectedHandler) Kind() CommandKind { return CmdIsConnected }

func (h *IsConnectedHandler) Handle(ctx *HandlerContext, cmd Command) Result {
	return Result{Connected: ctx.connected()}
}

type PlaceOrderHandler struct{}

func (h *PlaceOrderHandler) Kind() CommandKind { return CmdPlaceOrder }

func (h *PlaceOrderHandler) Handle(ctx *HandlerContext, cmd Command) Result {
	outcome := ctx.executeOrder(cmd.Intent)
	return Result{Connected: ctx.state == StateConnected, Outcome: &outcome}
}

type ListOpenOrdersHandler struct{}

func (h *ListOpenOrdersHandler) Kind() CommandKind { return CmdListOpenOrders }

func (h *ListOpenOrdersHandler) Handle(ctx *HandlerContext, cmd Command) Result {
	orders, err := ctx.openOrders()
	if err != nil {
		return Result{Orders: []OrderSummary{}, Err: err}
	}
	return Result{Connected: ctx.state == StateConnected, Orders: orders}
}
