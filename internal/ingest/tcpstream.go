package ingest

import (
	"context"
	"errors"
	"log/slog"
	"net"

	"deauthguard/internal/config"
	"deauthguard/internal/model"
)

// StartTCPStream accepts raw line-delimited event feeds, one event per line.
func StartTCPStream(ctx context.Context, cfg *config.Manager, parser *Parser, out chan<- model.DeauthEvent, logger *slog.Logger) {
	current := cfg.Get().Ingest.TCPStream
	if !current.Enabled {
		if logger != nil {
			logger.Info("tcp stream ingest disabled")
		}
		return
	}
	if logger != nil {
		logger.Info("tcp stream ingest enabled", "addr", current.Addr)
	}
	ln, err := net.Listen("tcp", current.Addr)
	if err != nil {
		if logger != nil {
			logger.Error("tcp stream listen error", "err", err)
		}
		return
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				if logger != nil {
					logger.Warn("tcp stream accept error", "err", err)
				}
				continue
			}
			go handleLineConn(ctx, conn, cfg, parser, out, logger, "tcp_stream")
		}
	}()
}
