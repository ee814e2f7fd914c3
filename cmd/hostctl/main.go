package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"github.com/GriffinCanCode/hostagent/internal/client"
	"github.com/GriffinCanCode/hostagent/internal/infrastructure/logging"
)

// usageError is a malformed command line; it exits with status 2
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }
func (e *usageError) ExitCode() int { return 2 }

func usagef(format string, args ...interface{}) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// environment holds settings read from the process environment
type environment struct {
	URL string `envconfig:"HOSTAGENT_URL"`
}

// command is one hostctl subcommand
type command struct {
	usage string
	args  int
	run   func(ctx context.Context, c *client.Client, args []string, out io.Writer) error
}

var commands = map[string]command{
	"health": {"health", 0, func(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
		return printer{out}.json(c.Health(ctx))
	}},
	"mem": {"mem", 0, func(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
		return printer{out}.json(c.MemoryReport(ctx))
	}},
	"used": {"used", 0, func(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
		return printer{out}.json(c.MemoryUsed(ctx))
	}},
	"load": {"load", 0, func(ctx context.Context, c *client.Client, _ []string, out io.Writer) error {
		return printer{out}.json(c.LoadAverage(ctx))
	}},
	"ps": {"ps [name-glob]", -1, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		if len(args) > 1 {
			return usagef("ps takes at most one name pattern")
		}
		pattern := ""
		if len(args) == 1 {
			pattern = args[0]
		}
		return printer{out}.json(c.Processes(ctx, pattern))
	}},
	"stat": {"stat <path>", 1, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		return printer{out}.json(c.Metadata(ctx, args[0]))
	}},
	"cat": {"cat <path>", 1, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		contents, err := c.Contents(ctx, args[0])
		if err != nil {
			return err
		}
		data, err := contents.Bytes()
		if err != nil {
			return fmt.Errorf("failed to decode contents: %w", err)
		}
		_, err = out.Write(data)
		return err
	}},
	"lines": {"lines <path>", 1, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		body, err := c.ContentsByLine(ctx, args[0])
		if err != nil {
			return err
		}
		defer body.Close()
		_, err = io.Copy(out, body)
		return err
	}},
	"du": {"du <path>", 1, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		return printer{out}.json(c.Size(ctx, args[0]))
	}},
	"create": {"create <path>", 1, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		return printer{out}.json(c.Create(ctx, args[0]))
	}},
	"mkdir": {"mkdir <path>", 1, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		return printer{out}.json(c.Mkdir(ctx, args[0]))
	}},
	"delete": {"delete <path>", 1, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		return printer{out}.json(c.Delete(ctx, args[0]))
	}},
	"copy": {"copy <src> <dest>", 2, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		return printer{out}.json(c.Copy(ctx, args[0], args[1]))
	}},
	"move": {"move <src> <dest>", 2, func(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
		return printer{out}.json(c.Move(ctx, args[0], args[1]))
	}},
}

// printer writes command results as indented JSON
type printer struct {
	out io.Writer
}

func (p printer) json(v interface{}, err error) error {
	if err != nil {
		return err
	}
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintf(p.out, "%s\n", data)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hostctl: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return err
	}

	cfg := client.DefaultConfig()
	if env.URL != "" {
		cfg.BaseURL = env.URL
	}

	fs := pflag.NewFlagSet("hostctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVarP(&cfg.BaseURL, "agent", "a", cfg.BaseURL, "agent base URL (env HOSTAGENT_URL)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	fs.IntVar(&cfg.RetryMax, "retries", cfg.RetryMax, "retries for unavailable agents")
	verbose := fs.BoolP("verbose", "v", false, "log requests and retries to stderr")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &usageError{msg: err.Error()}
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr, fs)
		return usagef("missing command")
	}
	name, cmdArgs := rest[0], rest[1:]
	cmd, ok := commands[name]
	if !ok {
		return usagef("unknown command %q", name)
	}
	if cmd.args >= 0 && len(cmdArgs) != cmd.args {
		return usagef("usage: hostctl %s", cmd.usage)
	}

	if *verbose {
		logger, err := logging.New(logging.Config{Level: "debug", Development: true})
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()
		cfg.Logger = logger
	}

	c, err := client.New(cfg)
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	return cmd.run(ctx, c, cmdArgs, stdout)
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Usage: hostctl [flags] <command> [args]\n\nCommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", commands[name].usage)
	}
	b.WriteString("\nFlags:\n")
	b.WriteString(fs.FlagUsages())
	fmt.Fprint(w, b.String())
}
