// Command curactl talks to the CuraLink facade from a terminal. It uses the
// host bridge when the host is running and the local emulation otherwise.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"curalink/internal/config"
	"curalink/internal/errors"
	"curalink/internal/facade"

	"github.com/sirupsen/logrus"
)

var (
	configPath = flag.String("config", "", "Path to an optional JSON configuration file")
	verbose    = flag.Bool("verbose", false, "Log connection details to stderr")
)

const usage = `usage: curactl [flags] <command> [args]

commands:
  mode                              print "remote" or "local"
  contacts [term]                   list or search contacts
  templates                         list templates
  upcoming [days]                   events in the next days (default 1)
  reminders                         events tomorrow that still need a reminder
  history [contact-id]              message history, optionally for one contact
  settings                          all settings
  set <key> <value>                 write a setting
  invoke <channel> <action> [json]  raw facade call
`

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	client, err := facade.Connect(ctx, cfg.Bridge, !cfg.SkipSampleData, logger)
	if err != nil {
		logger.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	if err := run(ctx, client, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client facade.Client, args []string, out io.Writer) error {
	svc := facade.NewService(client)
	command, rest := args[0], args[1:]

	switch command {
	case "mode":
		_, err := fmt.Fprintln(out, svc.Mode())
		return err
	case "contacts":
		if len(rest) > 0 {
			v, err := svc.SearchContacts(ctx, rest[0], "")
			return emit(out, v, err)
		}
		v, err := svc.GetContacts(ctx)
		return emit(out, v, err)
	case "templates":
		v, err := svc.GetTemplates(ctx)
		return emit(out, v, err)
	case "upcoming":
		days := 1
		if len(rest) > 0 {
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				return errors.NewValidationError("days", rest[0], "days must be a number")
			}
			days = n
		}
		v, err := svc.GetUpcomingEvents(ctx, days)
		return emit(out, v, err)
	case "reminders":
		v, err := svc.GetEventsNeedingReminders(ctx)
		return emit(out, v, err)
	case "history":
		if len(rest) > 0 {
			v, err := svc.GetHistoryByContact(ctx, rest[0])
			return emit(out, v, err)
		}
		v, err := svc.GetHistory(ctx)
		return emit(out, v, err)
	case "settings":
		v, err := svc.GetSettings(ctx)
		return emit(out, v, err)
	case "set":
		if len(rest) != 2 {
			return errors.New(errors.ErrCodeInvalidInput, "set needs a key and a value")
		}
		v, err := svc.SetSetting(ctx, rest[0], rest[1])
		return emit(out, v, err)
	case "invoke":
		if len(rest) < 2 {
			return errors.New(errors.ErrCodeInvalidInput, "invoke needs a channel and an action")
		}
		var payload json.RawMessage
		if len(rest) > 2 {
			payload = json.RawMessage(rest[2])
		}
		result, err := client.Invoke(ctx, rest[0], rest[1], payload)
		if err != nil {
			return err
		}
		return writeJSON(out, result)
	default:
		return errors.New(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown command %q", command))
	}
}

// emit writes a facade result as JSON unless the call failed
func emit(out io.Writer, v any, err error) error {
	if err != nil {
		return err
	}
	return writeJSON(out, v)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
