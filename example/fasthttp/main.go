// FILE: example/fasthttp/main.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/lixenwraith/ringlog"
	"github.com/lixenwraith/ringlog/compat"
	"github.com/valyala/fasthttp"
)

func main() {
	// Create and configure logger
	logger, err := log.NewBuilder().
		Directory("/var/log/fasthttp").
		Name("fasthttp").
		Level(log.LevelInfo).
		Rotation("hourly").
		BufferSize(2048).
		Compression("gzip").
		Build()
	if err != nil {
		panic(err)
	}
	defer logger.Finalize()

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		logger,
		compat.WithDefaultLevel(log.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	// Start server
	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) (int64, bool) {
	// Specific fasthttp message patterns first
	if strings.Contains(msg, "connection cannot be served") {
		return log.LevelWarn, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return log.LevelError, true
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
