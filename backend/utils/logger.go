package utils

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LoggerConfig configures the application logger
type LoggerConfig struct {
	// Log format (text/json)
	Format string
	// Output stream (os.Stdout, a file, etc.)
	Output *os.File
	// Enable colored console output
	EnableColors bool
}

// InitLogger builds and returns the logger
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[ESG Frame] "

	var logger *log.Logger
	if cfg.Format == "json" {
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC)
	} else {
		if cfg.EnableColors {
			prefix = "\033[36m" + prefix + "\033[0m"
		}
		logger = log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
	}

	return logger
}

// LoggingMiddleware returns a middleware that logs each request
func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()
		latency := time.Since(start)
		ip := c.IP()
		userAgent := c.Get("User-Agent")

		var statusColor, methodColor, resetColor string
		if logger.Flags()&log.Lmsgprefix == 0 {
			statusColor, methodColor, resetColor = getStatusColor(status), getMethodColor(method), "\033[0m"
		}

		logger.Printf("%s %s %s%s%s %s%d%s %s %s %s",
			ip,
			methodColor, method, resetColor,
			path,
			statusColor, status, resetColor,
			latency,
			userAgent,
			err,
		)

		return err
	}
}

func getStatusColor(status int) string {
	switch {
	case status >= 500:
		return "\033[31m"
	case status >= 400:
		return "\033[33m"
	case status >= 300:
		return "\033[36m"
	case status >= 200:
		return "\033[32m"
	default:
		return "\033[37m"
	}
}

func getMethodColor(method string) string {
	switch method {
	case "GET":
		return "\033[34m"
	case "POST":
		return "\033[33m"
	case "PUT":
		return "\033[36m"
	case "DELETE":
		return "\033[31m"
	case "PATCH":
		return "\033[32m"
	default:
		return "\033[37m"
	}
}
