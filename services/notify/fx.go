package notify

import (
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("notify.module",
	fx.Provide(NewLogMailer, NewHandler),
	fx.Invoke(registerHandlers),
)

func registerHandlers(mux *asynq.ServeMux, h *Handler) {
	mux.HandleFunc(TypeEmail, h.HandleEmail)
	mux.HandleFunc(TypePurchasePending, h.HandlePurchasePending)
}
