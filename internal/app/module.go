package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/sagepay/internal/app/api/server"
	"github.com/fatflowers/sagepay/internal/app/service/card"
	"github.com/fatflowers/sagepay/internal/app/service/checkout"
	"github.com/fatflowers/sagepay/internal/app/service/finalizer"
	"github.com/fatflowers/sagepay/internal/app/service/ledger"
	notificationhandler "github.com/fatflowers/sagepay/internal/app/service/notification_handler"
	notificationlog "github.com/fatflowers/sagepay/internal/app/service/notification_log"
	"github.com/fatflowers/sagepay/internal/app/service/statistics"
	"github.com/fatflowers/sagepay/internal/platform/db"
	"github.com/fatflowers/sagepay/internal/platform/sagepay"
	"github.com/fatflowers/sagepay/pkg/config"
	"github.com/fatflowers/sagepay/pkg/logger"
	"github.com/fatflowers/sagepay/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	metrics.Module,
	db.Module,
	sagepay.Module,
	ledger.Module,
	card.Module,
	finalizer.Module,
	notificationlog.Module,
	notificationhandler.Module,
	checkout.Module,
	statistics.Module,
	server.Module,
)
