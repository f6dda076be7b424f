package casino

import "expvar"

var (
	metricCommandsTotal   = expvar.NewInt("commands_total")
	metricRejectionsTotal = expvar.NewInt("command_rejections_total")
	metricErrorsTotal     = expvar.NewInt("command_errors_total")

	metricStakedTotal = expvar.NewInt("coins_staked_total")
	metricPaidTotal   = expvar.NewInt("coins_paid_total")

	metricBlackjackExpiredTotal = expvar.NewInt("blackjack_expired_total")
	metricRacesTotal            = expvar.NewInt("races_total")
	metricLotteryDrawsTotal     = expvar.NewInt("lottery_draws_total")
)
