// Command cascade sends one prompt to a chat model and renders the streamed
// answer as prose and fenced code blocks.
//
//	cascade -provider gemini "explain iter.Seq"
//	cascade -tools -root ./notes "summarize every file here"
//	cascade -agent planner -agents .cascade/agents.yaml "plan the refactor"
//
// Provider settings come from the environment (and a .env file):
// CLAUDE_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY, OPENROUTER_API_KEY, plus
// the matching _MODEL, _BASE_URL, _TEMPERATURE and _MAX_TOKENS variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/leofalp/cascade/core/agent"
	"github.com/leofalp/cascade/core/cost"
	"github.com/leofalp/cascade/core/segment"
	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/ai"
	"github.com/leofalp/cascade/providers/observability"
	"github.com/leofalp/cascade/providers/observability/otelobs"
	"github.com/leofalp/cascade/providers/observability/slogobs"
)

type options struct {
	provider   string
	agentName  string
	agentsFile string
	system     string
	root       string
	rounds     int
	tools      bool
	noStream   bool
	listAgents bool
	otel       bool
	pricing    string
	prompt     string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "cascade:", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("cascade", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.provider, "provider", envOr("CASCADE_PROVIDER", "claude"), "default provider: "+strings.Join(providerNames, ", "))
	fs.StringVar(&opts.agentName, "agent", "", "named agent from the agents file")
	fs.StringVar(&opts.agentsFile, "agents", ".cascade/agents.yaml", "agents YAML file")
	fs.StringVar(&opts.system, "system", "", "base system prompt")
	fs.StringVar(&opts.root, "root", ".", "directory the file tools operate in")
	fs.IntVar(&opts.rounds, "rounds", ai.DefaultMaxRounds, "maximum tool-calling rounds")
	fs.BoolVar(&opts.tools, "tools", false, "offer the builtin tools to the model")
	fs.BoolVar(&opts.noStream, "no-stream", false, "wait for the full answer instead of streaming")
	fs.BoolVar(&opts.listAgents, "list-agents", false, "list the agents and exit")
	fs.BoolVar(&opts.otel, "otel", false, "record OpenTelemetry spans for each call")
	fs.StringVar(&opts.pricing, "pricing", os.Getenv("CASCADE_PRICING"), "USD per million tokens, e.g. gpt-4o-mini=0.15:0.6;claude-sonnet=3:15")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.prompt = strings.TrimSpace(strings.Join(fs.Args(), " "))
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	observer, shutdown := newObserver(opts.otel, stderr)
	defer shutdown()
	ctx = observability.ContextWithObserver(ctx, observer)

	agents, err := loadAgents(opts.agentsFile)
	if err != nil {
		return err
	}
	if opts.listAgents {
		for _, a := range agents {
			fmt.Fprintln(stdout, a.Summary())
		}
		return nil
	}

	def, err := selectAgent(agents, opts)
	if err != nil {
		return err
	}
	pricing, err := cost.ParsePricing(opts.pricing)
	if err != nil {
		return err
	}

	if opts.prompt == "" || opts.prompt == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("reading prompt: %w", err)
		}
		opts.prompt = strings.TrimSpace(string(data))
	}
	if opts.prompt == "" {
		return errors.New("empty prompt")
	}

	providers, err := buildProviders(ctx, ai.NewRegistry(), opts.provider)
	if err != nil {
		return err
	}
	runner := agent.NewRunner(providers, opts.provider,
		agent.WithTools(builtinTools(opts.root)),
		agent.WithBasePrompt(opts.system),
		agent.WithMaxRounds(opts.rounds),
	)
	provider, err := runner.Resolve(def)
	if err != nil {
		return err
	}
	model := utils.FirstNonEmpty(def.Model, provider.Config().Model)

	sink := newTerminalSink(stdout)
	timer := utils.NewTimer()

	if opts.noStream || usesTools(def) {
		text, err := runner.Run(ctx, def, opts.prompt, "")
		if err != nil {
			return err
		}
		for _, event := range segment.Split(text) {
			sink.Emit(event)
		}
	} else {
		fragments, err := runner.Stream(ctx, def, opts.prompt, "")
		if err != nil {
			return err
		}
		segment.Render(fragments, sink)
	}
	if sink.err != nil {
		return fmt.Errorf("writing output: %w", sink.err)
	}

	elapsed := timer.Stop()
	if usage, ok := provider.LastUsage(); ok {
		fmt.Fprintln(stderr, "\n"+usageLine(usage, elapsed, pricing, model))
	}
	observer.Info(ctx, "call finished",
		observability.String(observability.AttrLLMProvider, provider.Name()),
		observability.Duration(observability.AttrDuration, elapsed),
	)
	return provider.LastError()
}

// usageLine renders "~1.2k in / ~30 out | 1.24s", plus the estimated
// cost when the model has a price.
func usageLine(usage ai.Usage, elapsed time.Duration, pricing cost.Pricing, model string) string {
	line := usage.Format() + " | " + elapsed.Round(10*time.Millisecond).String()
	if mc, ok := pricing.Lookup(model); ok {
		line += " | " + cost.FormatUSD(mc.Estimate(usage))
	}
	return line
}

// newObserver returns the slog observer, wrapped in an OpenTelemetry
// observer when withOtel is set.
func newObserver(withOtel bool, stderr io.Writer) (observability.Provider, func()) {
	base := slogobs.New(slogobs.WithOutput(stderr), slogobs.WithColors(isTerminal(stderr)))
	if !withOtel {
		return base, func() {}
	}

	tp := sdktrace.NewTracerProvider()
	return otelobs.New(tp, base), func() {
		_ = tp.Shutdown(context.Background())
	}
}

func loadAgents(path string) ([]agent.AgentDef, error) {
	agents, err := agent.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return agents, err
}

// selectAgent returns the named agent, or an ad-hoc one shaped by the flags.
func selectAgent(agents []agent.AgentDef, opts options) (agent.AgentDef, error) {
	if opts.agentName != "" {
		def, ok := agent.Find(agents, opts.agentName)
		if !ok {
			return agent.AgentDef{}, fmt.Errorf("unknown agent %q", opts.agentName)
		}
		return def, nil
	}

	def := agent.AgentDef{Name: "default", AllowedTools: []string{}}
	if opts.tools {
		def.AllowedTools = nil
	}
	return def, nil
}

func usesTools(def agent.AgentDef) bool {
	return !def.Restricted() || len(def.AllowedTools) > 0
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
