// Package monitoring provides Prometheus metrics for the launcher.
//
// Metrics:
//   - launcher_commands_total{kind,status}: commands processed by the controller
//   - launcher_command_duration_seconds{kind}: per-command processing time
//   - launcher_managed_apps: registry size
//   - launcher_observers{category}: registered handles
//   - launcher_notifications_total{category,outcome}: delivered/failed/skipped/timeout
//   - launcher_spawns_total{outcome}: process launcher results
//   - launcher_persist_failures_total: config store failures
//   - launcher_http_* and launcher_ws_*: outer surfaces
//
// Every Metrics value owns a private registry, served by Handler():
//
//	metrics := monitoring.NewMetrics()
//	router.GET("/metrics", gin.WrapH(metrics.Handler()))
package monitoring
