package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/WebNaresh/expense-management/internal/channels"
	"github.com/WebNaresh/expense-management/internal/shared/cmdutils"
)

var (
	chatMessage string
	chatSender  string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant from the terminal",
	Long: "Send messages through the same pipeline WhatsApp messages take.\n" +
		"The sender is registered as an owner on first use.",
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().StringVarP(&chatSender, "sender", "s", "cli", "Sender key (owner) the messages come from")
}

func runChat(_ *cobra.Command, _ []string) error {
	_, container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close(context.Background())

	store, err := container.Store()
	if err != nil {
		return err
	}
	if _, err := store.AddOwner(context.Background(), chatSender, ""); err != nil {
		return fmt.Errorf("register sender: %w", err)
	}

	loop, err := container.Loop()
	if err != nil {
		return err
	}

	if chatMessage != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		cmdutils.PrintResponse(os.Stdout, loop.ProcessDirect(ctx, chatMessage, chatSender))
		return nil
	}

	msgBus, err := container.MessageBus()
	if err != nil {
		return err
	}
	cli := channels.NewCLIChannel(msgBus, chatSender, os.Stdin, os.Stdout)
	mgr := channels.NewEmptyManager(msgBus)
	mgr.Register(cli)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return loop.Run(gctx) })
	g.Go(func() error { return mgr.Dispatch(gctx) })

	// The REPL returns on exit; tear the rest down with it.
	replErr := cli.Start(runCtx)
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if replErr != nil && !errors.Is(replErr, context.Canceled) {
		return replErr
	}
	return nil
}
