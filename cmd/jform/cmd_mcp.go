package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calumari/jform/internal/fileio"
	"github.com/calumari/jform/internal/mcptools"
	"github.com/calumari/jform/internal/session"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mcpHTTP string

// mcpCmd serves a document to MCP clients
var mcpCmd = &cobra.Command{
	Use:   "mcp FILE",
	Short: "Serve a file to MCP clients over stdio or streamable HTTP",
	Long: `Serve the document in FILE as a set of MCP tools: list_objects,
get_object, set_field, add_object, delete_object, add_property,
delete_property, sort and save.

Edits stay in memory until a client calls save.`,
	Args: cobra.ExactArgs(1),
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	doc, err := fileio.Load(args[0])
	if err != nil {
		return err
	}
	sess := session.New(doc, args[0], session.WithLogger(logger))
	saver := &fileio.Saver{DownloadsDir: cfg.DownloadsDir, Logger: logger}
	s := mcptools.New(sess, saver, logger).NewServer()

	if mcpHTTP == "" {
		logger.Info("serving MCP over stdio", zap.String("file", args[0]))
		return server.ServeStdio(s)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := server.NewStreamableHTTPServer(s)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over HTTP", zap.String("addr", mcpHTTP), zap.String("file", args[0]))
		errCh <- httpServer.Start(mcpHTTP)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
