package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/instrumentation"
	"github.com/abdulehsan/Jarvis/internal/logging"
	"github.com/abdulehsan/Jarvis/internal/memory"
	"github.com/abdulehsan/Jarvis/internal/tools/common"
)

// Fixed replies and observations.
const (
	ParseErrorObservation = "Check your output and make sure it conforms!"
	IterationLimitReply   = "Agent stopped due to iteration limit or time limit."
	ErrorReply            = "Sorry, I seem to have encountered an error. Please try that again."
)

// DefaultMaxIterations bounds tool rounds per turn when Options leaves it
// unset.
const DefaultMaxIterations = 10

// ErrIterationLimit is returned when a turn needs more rounds than allowed.
var ErrIterationLimit = errors.New("agent stopped due to iteration limit")

// Surfaces label turns in logs and metrics.
const (
	SurfaceChat    = "chat"
	SurfaceWebhook = "webhook"
)

// Options configures an Agent.
type Options struct {
	AssistantName string
	MaxIterations int

	// Surface is recorded with every turn.
	Surface string

	// Aliases lists the accounts the model may choose from. It is called
	// once per turn so enrolments made while running are picked up.
	Aliases func() ([]string, error)

	// Location is the timezone of "today" in the prompt.
	Location *time.Location

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics

	// Now replaces time.Now in tests.
	Now func() time.Time
}

// Agent answers user messages, calling tools as the model requests.
type Agent struct {
	llm   LLM
	tools *Registry
	store memory.Store
	opts  Options

	logger *slog.Logger
}

// Result describes a finished turn.
type Result struct {
	Reply string

	// Outcome is one of the instrumentation.Turn* values.
	Outcome string

	// Rounds is the number of tool rounds used.
	Rounds int
}

// New creates an agent. store may be nil for a stateless agent.
func New(llm LLM, tools *Registry, store memory.Store, opts Options) (*Agent, error) {
	if llm == nil {
		return nil, fmt.Errorf("language model is required")
	}
	if tools == nil {
		tools = NewRegistry()
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.Surface == "" {
		opts.Surface = SurfaceChat
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Agent{
		llm:    llm,
		tools:  tools,
		store:  store,
		opts:   opts,
		logger: logging.WithComponent(logger, "agent"),
	}, nil
}

// Respond runs one turn and returns the reply. It never fails: errors are
// logged and replaced by a fixed apology.
func (a *Agent) Respond(ctx context.Context, session, input string) string {
	res, err := a.Run(ctx, session, input)
	if err != nil {
		a.logger.Error("turn failed", logging.Session(logging.Anonymize(session)), logging.Err(err))
	}
	return res.Reply
}

// Run runs one turn: load history, let the model call tools until it
// answers, then save the exchange. The returned Result always carries a
// reply that can be shown to the user, even when err is non-nil.
func (a *Agent) Run(ctx context.Context, session, input string) (res Result, err error) {
	start := time.Now()
	ctx, span := instrumentation.StartTurnSpan(ctx, a.opts.Surface)
	defer func() {
		instrumentation.EndTurnSpan(span, res.Outcome, res.Rounds, err)
		a.opts.Metrics.RecordAgentTurn(ctx, a.opts.Surface, res.Outcome, res.Rounds, time.Since(start))
		a.logger.Info("turn finished",
			logging.Session(logging.Anonymize(session)),
			logging.Status(res.Outcome),
			logging.Round(res.Rounds),
			"duration", time.Since(start))
	}()

	history := a.loadHistory(ctx, session)
	res, err = a.turn(ctx, history, input)
	if res.Outcome != instrumentation.TurnFailed {
		a.saveHistory(ctx, session, input, res.Reply)
	}
	return res, err
}

func (a *Agent) turn(ctx context.Context, history []memory.Message, input string) (Result, error) {
	aliases, err := a.aliases()
	if err != nil {
		return a.failed(0, fmt.Errorf("failed to list accounts: %w", err))
	}

	system, err := BuildSystemPrompt(PromptData{
		AssistantName: a.opts.AssistantName,
		Aliases:       aliases,
		Today:         a.opts.Now().In(a.opts.Location).Format("2006-01-02"),
		Tools:         a.tools.Tools(),
	})
	if err != nil {
		return a.failed(0, err)
	}

	messages := make([]Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, Message{Role: memory.RoleUser, Content: input})

	rounds := 0
	for {
		text, err := a.complete(ctx, system, messages)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return Result{Reply: IterationLimitReply, Outcome: instrumentation.TurnIterationLimit, Rounds: rounds}, err
			}
			return a.failed(rounds, err)
		}

		call, parseErr := parseToolCall(text)
		if call == nil && parseErr == nil {
			return Result{Reply: strings.TrimSpace(text), Outcome: instrumentation.TurnAnswered, Rounds: rounds}, nil
		}

		if rounds >= a.opts.MaxIterations {
			return Result{Reply: IterationLimitReply, Outcome: instrumentation.TurnIterationLimit, Rounds: rounds}, ErrIterationLimit
		}
		rounds++

		var observation string
		switch {
		case parseErr != nil:
			a.logger.Debug("malformed tool call", logging.Round(rounds), logging.Err(parseErr))
			observation = ParseErrorObservation
		case !a.tools.Has(call.Tool):
			a.logger.Debug("unknown tool requested", logging.Tool(call.Tool), logging.Round(rounds))
			observation = ParseErrorObservation
		default:
			if a.tools.NeedsAlias(call.Tool) {
				alias := common.AliasFromArgs(call.Input)
				if alias == "" {
					switch len(aliases) {
					case 1:
						call.Input[common.AliasParam] = aliases[0]
					case 0:
					default:
						return Result{Reply: ClarifyAccount(aliases), Outcome: instrumentation.TurnClarified, Rounds: rounds - 1}, nil
					}
				}
			}
			observation = a.invoke(ctx, call, rounds)
		}

		messages = append(messages,
			Message{Role: memory.RoleAssistant, Content: text},
			Message{Role: memory.RoleUser, Content: "Observation: " + observation},
		)
	}
}

// ClarifyAccount is the question asked when a request does not say which
// account to use.
func ClarifyAccount(aliases []string) string {
	return fmt.Sprintf("Which account should I use for that (%s)?", strings.Join(aliases, ", "))
}

func (a *Agent) invoke(ctx context.Context, call *ToolCall, round int) string {
	a.logger.Debug("calling tool",
		logging.Tool(call.Tool),
		logging.Round(round),
		logging.Alias(common.AliasFromArgs(call.Input)))

	out, err := a.tools.Call(ctx, call.Tool, call.Input)
	if err != nil {
		a.logger.Warn("tool call failed", logging.Tool(call.Tool), logging.Err(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}

func (a *Agent) complete(ctx context.Context, system string, messages []Message) (string, error) {
	ctx, span := instrumentation.StartLLMSpan(ctx, a.llm.Provider(), a.llm.Model())
	defer span.End()

	text, err := a.llm.Complete(ctx, system, messages)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		a.opts.Metrics.RecordLLMCall(ctx, a.llm.Provider(), instrumentation.StatusError)
		return "", fmt.Errorf("%s completion failed: %w", a.llm.Provider(), err)
	}
	instrumentation.SetSpanSuccess(span)
	a.opts.Metrics.RecordLLMCall(ctx, a.llm.Provider(), instrumentation.StatusSuccess)
	return text, nil
}

func (a *Agent) failed(rounds int, err error) (Result, error) {
	return Result{Reply: ErrorReply, Outcome: instrumentation.TurnFailed, Rounds: rounds}, err
}

func (a *Agent) aliases() ([]string, error) {
	if a.opts.Aliases == nil {
		return nil, nil
	}
	aliases, err := a.opts.Aliases()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if alias = google.NormalizeAlias(alias); alias != "" {
			out = append(out, alias)
		}
	}
	return out, nil
}

func (a *Agent) loadHistory(ctx context.Context, session string) []memory.Message {
	if a.store == nil {
		return nil
	}
	history, err := a.store.Load(ctx, session)
	if err != nil {
		a.logger.Warn("failed to load history, continuing without it",
			logging.Session(logging.Anonymize(session)), logging.Err(err))
		return nil
	}
	return history
}

func (a *Agent) saveHistory(ctx context.Context, session, input, reply string) {
	if a.store == nil {
		return
	}
	err := a.store.Append(ctx, session,
		memory.Message{Role: memory.RoleUser, Content: input},
		memory.Message{Role: memory.RoleAssistant, Content: reply},
	)
	if err != nil {
		a.logger.Warn("failed to save history", logging.Session(logging.Anonymize(session)), logging.Err(err))
	}
}
