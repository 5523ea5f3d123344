package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ecuevas97/PartyPal/internal/client"
	"github.com/ecuevas97/PartyPal/internal/logger"
	"github.com/ecuevas97/PartyPal/internal/model"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env необязателен
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "partypal",
		Usage: "Manage PartyPal events from the command line.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: client.DefaultBaseURL, EnvVars: []string{"PARTYPAL_API_URL"}, Usage: "backend base URL"},
			&cli.DurationFlag{Name: "timeout", Value: client.DefaultTimeout, Usage: "timeout of a single request"},
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}, Usage: "debug, info, warn or error"},
		},
		Commands: []*cli.Command{
			listCommand(),
			getCommand(),
			addCommand(),
			updateCommand(),
			deleteCommand(),
			watchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		var te *client.TransportError
		if errors.As(err, &te) {
			fmt.Fprintf(os.Stderr, "request: %s %s\nstatus: %d\n", te.Method, te.URL, te.StatusCode)
			if te.Message != "" {
				fmt.Fprintf(os.Stderr, "server: %s\n", te.Message)
			}
		}
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *client.Client {
	slog.SetDefault(logger.New(c.String("log-level")))
	return client.NewClient(c.String("api"), client.WithTimeout(c.Duration("timeout")))
}

// eventFlags флаги полей события, общие для add и update
func eventFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "event title (required)"},
		&cli.StringFlag{Name: "date", Usage: "event date, YYYY-MM-DD (required)"},
		&cli.StringFlag{Name: "location", Usage: "event location"},
		&cli.StringFlag{Name: "description", Usage: "event description"},
		&cli.StringFlag{Name: "image", Usage: "image URL"},
		&cli.BoolFlag{Name: "attending", Usage: "mark as attending"},
	}
}

// applyFlags переносит заданные флаги в событие, незаданные поля не трогаются
func applyFlags(c *cli.Context, e *model.Event) {
	fields := map[string]*string{
		"title":       &e.Title,
		"date":        &e.Date,
		"location":    &e.Location,
		"description": &e.Description,
		"image":       &e.Image,
	}
	for name, dst := range fields {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet("attending") {
		e.IsAttending = c.Bool("attending")
	}
}

// requireFields отказывает до сетевого вызова, если title или date пусты
func requireFields(e model.Event) error {
	if missing := e.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("required: %s", strings.Join(missing, ", "))
	}
	return nil
}

func idArg(c *cli.Context) (string, error) {
	id := c.Args().First()
	if id == "" {
		return "", fmt.Errorf("event id is required")
	}
	return id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all events.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print raw JSON"},
		},
		Action: func(c *cli.Context) error {
			list, err := newClient(c).List(c.Context)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(list)
			}
			if len(list) == 0 {
				fmt.Println("No events yet. Add one!")
				return nil
			}
			for _, e := range list {
				attending := ""
				if e.IsAttending {
					attending = " [attending]"
				}
				line := e.Date + "  " + e.Title
				if e.Location != "" {
					line += " • " + e.Location
				}
				fmt.Printf("%s  %s%s\n", e.ID, line, attending)
			}
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one event.",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			event, err := newClient(c).Get(c.Context, id)
			if err != nil {
				return err
			}
			return printJSON(event)
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create an event.",
		Flags: eventFlags(),
		Action: func(c *cli.Context) error {
			var draft model.Event
			applyFlags(c, &draft)
			if err := requireFields(draft); err != nil {
				return err
			}

			created, err := newClient(c).Create(c.Context, draft)
			if err != nil {
				return err
			}
			return printJSON(created)
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Replace an event. Unset flags keep the current values.",
		ArgsUsage: "<id>",
		Flags:     eventFlags(),
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}

			api := newClient(c)
			event, err := api.Get(c.Context, id)
			if err != nil {
				return err
			}
			applyFlags(c, &event)
			if err := requireFields(event); err != nil {
				return err
			}

			updated, err := api.Update(c.Context, id, event)
			if err != nil {
				return err
			}
			return printJSON(updated)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an event.",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			if err := newClient(c).Delete(c.Context, id); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", id)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create events from an iCalendar (.ics) file.",
		ArgsUsage: "<file.ics>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("calendar file is required")
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			result, err := newClient(c).ImportCalendar(c.Context, f)
			for _, e := range result.Created {
				fmt.Printf("created %s  %s  %s\n", e.ID, e.Date, e.Title)
			}
			if err != nil {
				return err
			}
			fmt.Printf("imported %d, skipped %d\n", len(result.Created), result.Skipped)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Print event changes as they happen.",
		Action: func(c *cli.Context) error {
			return newClient(c).Watch(c.Context, func(change model.Change) error {
				fmt.Printf("%s  %-7s  %s  %s\n", change.At.Format(time.RFC3339), change.Type, change.Event.ID, change.Event.Title)
				return nil
			})
		},
	}
}
