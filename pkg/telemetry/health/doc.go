// Package health provides liveness and readiness endpoints.
//
// Liveness only says the process runs. Readiness runs every registered check
// concurrently under a per-check timeout; formgate registers one for the
// loaded form set and one for the diagnostics store.
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("forms", manager.Ready)
//	checker.RegisterCheck("diagnostics", store.Ping)
//	checker.Mount(router, cfg.Telemetry.Health, health.VersionInfo{Version: version})
package health
