// Package logging builds the process *slog.Logger from configuration.
//
// Loggers write JSON or text and pick up request, form and trace identifiers
// from the context passed to the *Context logging methods. When PII redaction
// is enabled a slog ReplaceAttr hook masks e-mail addresses, card numbers,
// SSNs, phone numbers and IPv4 addresses, plus any configured patterns, and
// drops the values of sensitive keys such as "value" and "answer" outright.
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	ctx = logging.WithRequestID(ctx, reqID)
//	logger.InfoContext(ctx, "submission evaluated", "errors", 2)
package logging
