package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/WebNaresh/expense-management/internal/channels"
	"github.com/WebNaresh/expense-management/internal/reminder"
)

var gatewayPort int

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Start the spendit gateway: channels, webhook server and reminders",
	RunE:  runGateway,
}

func init() {
	gatewayCmd.Flags().IntVarP(&gatewayPort, "port", "p", 0, "Gateway port (default from config)")
}

func runGateway(_ *cobra.Command, _ []string) error {
	cfg, container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close(context.Background())

	loop, err := container.Loop()
	if err != nil {
		return err
	}
	channelMgr, err := container.Channels()
	if err != nil {
		return err
	}

	var rem *reminder.Service
	if cfg.Reminders.Enabled {
		if rem, err = container.Reminder(); err != nil {
			return err
		}
	}

	port := cfg.Gateway.Port
	if gatewayPort != 0 {
		port = gatewayPort
	}
	addr := net.JoinHostPort(cfg.Gateway.Host, strconv.Itoa(port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(channelMgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("%s Starting spendit gateway on %s...\n", logo, addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if enabled := channelMgr.EnabledChannels(); len(enabled) > 0 {
		fmt.Printf("✓ Channels enabled: %s\n", strings.Join(enabled, ", "))
	} else {
		fmt.Println("Warning: no channels enabled")
	}

	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return channelMgr.StartAll(gctx) })
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if rem != nil {
		g.Go(func() error { return rem.Start(gctx) })
		fmt.Printf("✓ Reminders scheduled: %s\n", cfg.Reminders.Cron)
	}

	fmt.Printf("%s Gateway running. Press Ctrl+C to stop.\n", logo)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "gateway error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}

// newRouter serves the health check and, when enabled, the WhatsApp Cloud webhook.
func newRouter(mgr *channels.Manager) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	if cloud := mgr.WhatsAppCloud(); cloud != nil {
		cloud.RegisterRoutes(r)
		slog.Info("gateway: whatsapp webhook mounted", "path", cloud.WebhookPath())
	}
	return r
}
