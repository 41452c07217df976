package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/itchyny/gojq"
	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v2"

	"github.com/ogahub/ogalib"
)

// outputFlags are understood by printValue.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "compact", Aliases: []string{"c"}, Usage: "print on a single line"},
		&cli.BoolFlag{Name: "color", Usage: "colorize output for a terminal"},
	}
}

func fmtCommand() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "pretty print a JSON document",
		ArgsUsage: "[file]",
		Flags:     outputFlags(),
		Action: func(c *cli.Context) error {
			doc, err := readDocument(c.Args().First())
			if err != nil {
				return err
			}
			return printValue(c, doc)
		},
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "select values with a gjson path or a jq filter",
		ArgsUsage: "<path> [file]",
		Flags: append(outputFlags(),
			&cli.BoolFlag{Name: "jq", Usage: "interpret the path as a jq filter"},
		),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("query: missing path")
			}
			doc, err := readDocument(c.Args().Get(1))
			if err != nil {
				return err
			}
			if c.Bool("jq") {
				return runJQ(c, c.Args().First(), doc)
			}
			v, ok := doc.Query(c.Args().First())
			if !ok {
				return fmt.Errorf("query: %q matched nothing", c.Args().First())
			}
			return printValue(c, v)
		},
	}
}

func runJQ(c *cli.Context, filter string, doc *ogalib.Value) error {
	q, err := gojq.Parse(filter)
	if err != nil {
		return fmt.Errorf("jq: %w", err)
	}
	iter := q.RunWithContext(c.Context, doc.Interface())
	for {
		out, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := out.(error); ok {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				return nil
			}
			return fmt.Errorf("jq: %w", err)
		}
		if err := printValue(c, ogalib.New(out)); err != nil {
			return err
		}
	}
}

// readDocument parses path, or stdin when path is empty or "-".
func readDocument(path string) (*ogalib.Value, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var doc ogalib.Value
	if !doc.ParseReader(r) {
		return nil, doc.Err()
	}
	return &doc, nil
}

func printValue(c *cli.Context, v *ogalib.Value) error {
	out := v.Bytes()
	if c.Bool("compact") {
		out = v.Compact()
	}
	if c.Bool("color") {
		out = pretty.Color(out, pretty.TerminalStyle)
	}
	out = append(out, '\n')
	_, err := c.App.Writer.Write(out)
	return err
}
