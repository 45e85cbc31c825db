package channels

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/shared/cmdutils"
)

var cliExitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

const cliChatID = "direct"

// CLIChannel wires a terminal into the bus: each line typed is an inbound
// message from senderKey, and the reply is printed before the next prompt.
type CLIChannel struct {
	Base
	in        io.Reader
	out       io.Writer
	senderKey string
	replies   chan string
}

// NewCLIChannel creates a CLIChannel reading from in and printing to out.
func NewCLIChannel(b bus.Bus, senderKey string, in io.Reader, out io.Writer) *CLIChannel {
	return &CLIChannel{
		Base:      NewBase(bus.ChannelCLI, b, nil),
		in:        in,
		out:       out,
		senderKey: senderKey,
		replies:   make(chan string, 1),
	}
}

func (c *CLIChannel) Name() bus.ChannelType { return bus.ChannelCLI }

// Start runs the REPL. Blocks until ctx is cancelled, input ends or the
// user types an exit command.
func (c *CLIChannel) Start(ctx context.Context) error {
	fmt.Fprintf(c.out, "Chatting as %s. Type 'exit' or press Ctrl+C to quit.\n\n", c.senderKey)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(c.out, "You: ")

		var line string
		select {
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out, "\nGoodbye!")
				return nil
			}
			line = strings.TrimSpace(l)
		case <-ctx.Done():
			return ctx.Err()
		}

		if line == "" {
			continue
		}
		if cliExitCommands[strings.ToLower(line)] {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}

		c.HandleMessage(c.senderKey, cliChatID, line, nil)

		select {
		case reply := <-c.replies:
			cmdutils.PrintResponse(c.out, reply)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Send hands a reply to the REPL, which prints it.
func (c *CLIChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	select {
	case c.replies <- msg.Content():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
