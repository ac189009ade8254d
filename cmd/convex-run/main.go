package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/get-convex/convex-mobile/backend"
	"github.com/get-convex/convex-mobile/bridge"
	"github.com/get-convex/convex-mobile/logging"
	"github.com/get-convex/convex-mobile/values"
)

func main() {
	var (
		url         = flag.String("url", "local://demo", "Deployment URL (local:// runs the in-process demo backend)")
		clientID    = flag.String("client-id", "convex-run/dev", "Client identifier sent to the backend")
		funcName    = flag.String("func", "", "Function to call")
		argsStr     = flag.String("args", "", `Arguments as a JSON object, e.g. '{"body":"hi","limit":5}'`)
		mutation    = flag.Bool("mutation", false, "Run -func as a mutation")
		action      = flag.Bool("action", false, "Run -func as an action")
		watch       = flag.Bool("watch", false, "Subscribe to -func and stream updates until interrupted")
		tick        = flag.Bool("tick", false, "Drive the demo counter from a background ticker")
		auth        = flag.String("auth", "", "Static auth token to install before the call")
		list        = flag.Bool("list", false, "List demo functions and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logging.Initialize()
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*url, *clientID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*url, *clientID, *funcName, *argsStr, *auth, *mutation, *action, *watch, *tick, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(url, clientID, funcName, argsStr, auth string, mutation, action, watch, tick, listOnly bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be := demoBackend()
	defer be.Close()

	if listOnly {
		fmt.Println("Demo functions:")
		for _, fn := range demoFunctions() {
			fmt.Printf("  %-22s %s\n", fn.name, fn.kind)
		}
		return nil
	}

	b := bridge.New(url, clientID, bridge.WithConnector(be.Connector()))
	defer b.Close()

	if auth != "" {
		if err := b.SetAuth(ctx, auth); err != nil {
			return fmt.Errorf("set auth: %w", err)
		}
	}

	if funcName == "" {
		flag.Usage()
		return fmt.Errorf("no function specified; use -func or -list")
	}

	args, err := parseArgs(argsStr)
	if err != nil {
		return fmt.Errorf("parse args: %w", err)
	}

	if tick {
		go func() {
			t := time.NewTicker(500 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					_, _ = b.Mutation(ctx, "counter:increment", nil)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	if watch {
		return watchQuery(ctx, b, funcName, args)
	}

	var result string
	switch {
	case mutation:
		result, err = b.Mutation(ctx, funcName, args)
	case action:
		result, err = b.Action(ctx, funcName, args)
	default:
		result, err = b.Query(ctx, funcName, args)
	}
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}

func watchQuery(ctx context.Context, b *bridge.Bridge, funcName string, args map[string]string) error {
	updates := make(chan string, 16)
	errs := make(chan string, 16)
	handle, err := b.Subscribe(ctx, funcName, args, &printSubscriber{updates: updates, errs: errs})
	if err != nil {
		return err
	}
	defer handle.Cancel()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", funcName)
	for {
		select {
		case v := <-updates:
			fmt.Println(v)
		case msg := <-errs:
			fmt.Fprintf(os.Stderr, "subscription error: %s\n", msg)
		case <-ctx.Done():
			return nil
		}
	}
}

type printSubscriber struct {
	updates chan<- string
	errs    chan<- string
}

func (s *printSubscriber) OnUpdate(value string) { s.updates <- value }

func (s *printSubscriber) OnError(message string, errorData string) {
	if errorData != "" {
		message = message + " " + errorData
	}
	s.errs <- message
}

// parseArgs converts a JSON object literal into the name -> JSON-string map
// the bridge takes across the boundary.
func parseArgs(argsStr string) (map[string]string, error) {
	if argsStr == "" {
		return nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(argsStr), &raw); err != nil {
		return nil, err
	}
	args := make(map[string]string, len(raw))
	for name, value := range raw {
		args[name] = string(value)
	}
	return args, nil
}

type demoFunction struct {
	name string
	kind string
}

func demoFunctions() []demoFunction {
	fns := []demoFunction{
		{name: "counter:get", kind: "query"},
		{name: "counter:increment", kind: "mutation"},
		{name: "messages:list", kind: "query"},
		{name: "messages:send", kind: "mutation"},
		{name: "echo:args", kind: "query"},
		{name: "time:now", kind: "action"},
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].name < fns[j].name })
	return fns
}

// demoBackend wires an in-process deployment with a handful of functions so
// the full bridge path runs without a network.
func demoBackend() *backend.LocalBackend {
	be := backend.NewLocalBackend()

	counter := 0
	be.RegisterQuery("counter:get", func(args values.Args) backend.FunctionResult {
		return backend.ValueResult(values.Float64(float64(counter)))
	})
	be.RegisterMutation("counter:increment", func(args values.Args) backend.FunctionResult {
		counter++
		be.Publish("counter:get")
		return backend.ValueResult(values.Float64(float64(counter)))
	})

	var messages []values.Value
	be.RegisterQuery("messages:list", func(args values.Args) backend.FunctionResult {
		return backend.ValueResult(values.Array(messages...))
	})
	be.RegisterMutation("messages:send", func(args values.Args) backend.FunctionResult {
		body, ok := args.Get("body")
		if !ok {
			return backend.ConvexErrorResult("missing body argument", values.Object(map[string]values.Value{
				"expected": values.String("body"),
			}))
		}
		messages = append(messages, body)
		be.Publish("messages:list")
		return backend.ValueResult(values.Null())
	})

	be.RegisterQuery("echo:args", func(args values.Args) backend.FunctionResult {
		fields := make(map[string]values.Value, args.Len())
		for _, f := range args.Fields() {
			fields[f.Name] = f.Value
		}
		return backend.ValueResult(values.Object(fields))
	})

	be.RegisterAction("time:now", func(args values.Args) backend.FunctionResult {
		return backend.ValueResult(values.String(time.Now().UTC().Format(time.RFC3339)))
	})

	return be
}
