package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-bond/lazyobj"
	"github.com/urfave/cli/v2"
)

var _FlagURL = &cli.StringFlag{
	Name:     "url",
	Usage:    "sets inspect url",
	Required: true,
}

var _FlagHeaders = &cli.StringSliceFlag{
	Name:     "headers",
	Usage:    "sets http headers",
	Value:    cli.NewStringSlice(),
	Required: false,
}

var _FlagFormat = &cli.StringFlag{
	Name:     "format",
	Usage:    "sets output format (json, text)",
	Value:    "json",
	Required: false,
}

var _FlagObject = &cli.StringFlag{
	Name:     "object",
	Usage:    "sets object id",
	Required: true,
}

var _FlagProperties = &cli.StringSliceFlag{
	Name:     "properties",
	Usage:    "sets properties to materialize, all lazy properties when empty",
	Required: false,
}

var _FlagDeadline = &cli.DurationFlag{
	Name:     "deadline",
	Usage:    "sets materialize deadline",
	Value:    15 * time.Second,
	Required: false,
}

func NewInspectCLI(init func(path string) (Inspect, error)) *cli.App {
	var (
		inspect Inspect
		err     error
	)

	return &cli.App{
		Name: "lazy-cli",
		Usage: "The cli for inspecting lazy objects.\n\n" +
			"lazy-cli --url http://localhost:7777/lazy objects\n" +
			"lazy-cli --url http://localhost:7777/lazy properties --object <id>\n" +
			"lazy-cli --url http://localhost:7777/lazy --format text status --object <id>\n" +
			"lazy-cli --url http://localhost:7777/lazy materialize --object <id> --properties Date",
		Flags: []cli.Flag{
			_FlagURL,
			_FlagHeaders,
			_FlagFormat,
		},
		Before: func(ctx *cli.Context) error {
			url := ctx.String(_FlagURL.Name)
			if strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://") {
				headersStr := ctx.StringSlice(_FlagHeaders.Name)

				headers := make(map[string]string)
				for _, s := range headersStr {
					header := strings.SplitN(s, "=", 2)
					if len(header) != 2 {
						return fmt.Errorf("invalid header: %s", s)
					}

					headers[header[0]] = header[1]
				}

				inspect = NewInspectRemote(url, headers)
			} else {
				if init == nil {
					return fmt.Errorf("this CLI only supports http & https urls")
				}

				inspect, err = init(url)
				if err != nil {
					return fmt.Errorf("failed to initialize Inspect - %w", err)
				}
			}

			switch format := ctx.String(_FlagFormat.Name); format {
			case "json", "text":
			default:
				return fmt.Errorf("unknown format: %s", format)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "objects",
				Usage: "lists inspected objects",
				Action: func(ctx *cli.Context) error {
					objects, err := inspect.Objects()
					if err != nil {
						return err
					}

					if ctx.String(_FlagFormat.Name) == "text" {
						return writeObjectsText(ctx.App.Writer, objects)
					}
					return writeJSON(ctx.App.Writer, objects)
				},
			},
			{
				Name:  "properties",
				Usage: "lists properties and their types for given object",
				Flags: []cli.Flag{
					_FlagObject,
				},
				Action: func(ctx *cli.Context) error {
					properties, err := inspect.Properties(ctx.String(_FlagObject.Name))
					if err != nil {
						return err
					}
					return writeJSON(ctx.App.Writer, properties)
				},
			},
			{
				Name:  "status",
				Usage: "shows lazy state of every property of given object",
				Flags: []cli.Flag{
					_FlagObject,
				},
				Action: func(ctx *cli.Context) error {
					status, err := inspect.Status(ctx.String(_FlagObject.Name))
					if err != nil {
						return err
					}

					if ctx.String(_FlagFormat.Name) == "text" {
						return writeStatusText(ctx.App.Writer, status, time.Now())
					}
					return writeJSON(ctx.App.Writer, status)
				},
			},
			{
				Name:  "materialize",
				Usage: "evaluates lazy properties of given object",
				Flags: []cli.Flag{
					_FlagObject,
					_FlagProperties,
					_FlagDeadline,
				},
				Action: func(ctx *cli.Context) error {
					materializeCtx, cancel := context.WithDeadline(
						context.Background(), time.Now().Add(ctx.Duration(_FlagDeadline.Name)))
					defer cancel()

					status, err := inspect.Materialize(
						materializeCtx,
						ctx.String(_FlagObject.Name),
						ctx.StringSlice(_FlagProperties.Name),
					)
					if err != nil {
						return err
					}

					if ctx.String(_FlagFormat.Name) == "text" {
						return writeStatusText(ctx.App.Writer, status, time.Now())
					}
					return writeJSON(ctx.App.Writer, status)
				},
			},
		},
		HideHelp:        true,
		HideHelpCommand: true,
	}
}

func writeJSON(w io.Writer, v any) error {
	resultJson, err := json.Marshal(v)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(resultJson))
	return err
}

func writeObjectsText(w io.Writer, objects []ObjectEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME")
	for _, object := range objects {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", object.ID, object.Name)
	}
	return tw.Flush()
}

func writeStatusText(w io.Writer, status []lazyobj.PropertyStatus, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PROPERTY\tTYPE\tSTATE\tEVALUATIONS\tLAST EVALUATED\tDURATION\tVALUE")
	for _, s := range status {
		lastEvaluated := "-"
		duration := "-"
		if !s.LastEvaluatedAt.IsZero() {
			lastEvaluated = humanize.RelTime(s.LastEvaluatedAt, now, "ago", "from now")
			duration = s.LastDuration.String()
		}

		value := s.Value
		if s.LastError != "" {
			value = "error: " + s.LastError
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Name,
			s.Type,
			s.State,
			humanize.Comma(int64(s.Evaluations)),
			lastEvaluated,
			duration,
			value,
		)
	}
	return tw.Flush()
}
