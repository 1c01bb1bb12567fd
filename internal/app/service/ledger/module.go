package ledger

import "go.uber.org/fx"

var Module = fx.Options(
	fx.Provide(NewGormLedger),
	fx.Provide(func(l *GormLedger) TransactionLedger { return l }),
)
