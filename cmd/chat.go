package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abdulehsan/Jarvis/internal/agent"
	"github.com/abdulehsan/Jarvis/internal/memory"
	"github.com/abdulehsan/Jarvis/internal/server"
)

const (
	chatBanner  = "Jarvis is ready for multi-account local testing. Ask anything (or type 'exit' to quit)."
	chatPrompt  = "> "
	chatGoodbye = "Goodbye!"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant in the terminal",
		Long: `Start an interactive conversation with the assistant.

The conversation is remembered until the program exits. Type 'exit' to quit.
Logs are written to stderr so they do not interleave with replies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runChat(in io.Reader, out io.Writer) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	llm, closeLLM, err := newLLM(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLLM() }()

	store := memory.NewInMemoryStore(a.cfg.Memory.MaxMessages)
	defer store.Close()

	assistant, err := a.newAgent(llm, store, agent.SurfaceChat)
	if err != nil {
		return err
	}

	a.warnIfNoAccounts(out)
	return runREPL(ctx, in, out, assistant, uuid.NewString())
}

// runREPL reads one message per line until exit, EOF or cancellation.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, responder server.Responder, session string) error {
	fmt.Fprintf(out, "\n%s\n", chatBanner)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprintf(out, "\n%s", chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "exit") {
			fmt.Fprintln(out, chatGoodbye)
			return nil
		}
		if input == "" {
			continue
		}

		reply := responder.Respond(ctx, session, input)
		fmt.Fprintf(out, "Jarvis: %s\n", reply)

		if ctx.Err() != nil {
			return nil
		}
	}
}
