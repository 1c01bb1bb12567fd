package notification_handler

import (
	"go.uber.org/fx"

	"github.com/fatflowers/sagepay/internal/app/service/card"
	notificationlog "github.com/fatflowers/sagepay/internal/app/service/notification_log"
)

var Module = fx.Options(
	fx.Provide(func(s *card.Service) TokenSaver { return s }),
	fx.Provide(func(s *notificationlog.Service) Recorder { return s }),
	fx.Provide(NewNotificationHandler),
)
