// Package server provides the formgate HTTP API.
//
// It serves the loaded forms, live field validation and complete submission
// validation, together with the health and metrics endpoints:
//
//	GET  /forms                  registered forms and the set version
//	GET  /forms/{id}             a form's fields
//	POST /forms/{id}/validate    {"fields": [...], "data": {...}}, partial validation
//	POST /forms/{id}/submit      submission object, complete validation (422 when invalid)
//	GET  /healthz, /readyz       liveness and readiness
//	GET  /metrics                Prometheus metrics
//
// Requests pass through recovery, request id, access logging and, when enabled,
// tracing middleware.
//
// # Basic Usage
//
//	srv := server.NewServer(cfg, server.Options{
//	    Forms:   formManager,
//	    Health:  checker,
//	    Metrics: collector,
//	    Tracer:  tracer,
//	    Logger:  logger,
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
package server
