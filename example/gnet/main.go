// FILE: example/gnet/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/ringlog"
	"github.com/lixenwraith/ringlog/compat"
	"github.com/panjf2000/gnet/v2"
)

const addr = "tcp://127.0.0.1:9000"

// echoServer logs connection events through the same logger gnet uses
type echoServer struct {
	gnet.BuiltinEventEngine
	logger *log.Logger
}

func (es *echoServer) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	es.logger.Debugf("open %s", c.RemoteAddr())
	return nil, gnet.None
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	es.logger.Debugf("echo %d bytes to %s", len(buf), c.RemoteAddr())
	c.Write(buf)
	return gnet.None
}

func (es *echoServer) OnClose(c gnet.Conn, err error) gnet.Action {
	if err != nil {
		es.logger.Warnf("close %s: %v", c.RemoteAddr(), err)
	}
	return gnet.None
}

func main() {
	// Hourly windows, each closed window compressed with zstd and checksummed
	builder := compat.NewBuilder().WithConfigFile("gnet.toml", os.Args[1:])
	gnetAdapter, err := builder.BuildGnet(compat.WithFatalHandler(func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}))
	if err != nil {
		panic(err)
	}
	logger, _ := builder.GetLogger()
	if err := logger.ApplyConfigString(
		"directory=./logs",
		"name=gnet",
		"level=debug",
		"rotation=hourly",
		"compression=zstd",
		"checksum=true",
	); err != nil {
		panic(err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = gnet.Stop(ctx, addr)
	}()

	err = gnet.Run(
		&echoServer{logger: logger},
		addr,
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)

	// Everything logged so far is on disk before the closing window is archived
	if flushErr := logger.Flush(time.Second); flushErr != nil {
		fmt.Fprintf(os.Stderr, "flush: %v\n", flushErr)
	}
	if closeErr := builder.Close(5 * time.Second); closeErr != nil {
		fmt.Fprintf(os.Stderr, "finalize: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "gnet: %v\n", err)
		os.Exit(1)
	}
}
