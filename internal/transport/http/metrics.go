package httptransport

import "expvar"

var (
	metricAdminGrantTotal = expvar.NewInt("admin_grant_total")
	metricAdminDrawTotal  = expvar.NewInt("admin_draw_total")
)
