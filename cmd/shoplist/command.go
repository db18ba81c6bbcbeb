package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Command is one shoplist subcommand.
type Command struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Run         func(ctx context.Context, args []string) error
}

// NewFlagSet creates a flag set that reports errors instead of exiting.
func (c *Command) NewFlagSet(out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(c.Name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		c.PrintUsage(out)
		fmt.Fprintln(out, "\nFLAGS:")
		fs.PrintDefaults()
	}
	return fs
}

// PrintUsage prints the description, usage line and examples.
func (c *Command) PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n", c.Usage)
	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nEXAMPLES:\n")
		for _, example := range c.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
	}
}

// CommandRegistry dispatches arguments to registered commands.
type CommandRegistry struct {
	commands map[string]*Command
	order    []string
	out      io.Writer
}

// NewCommandRegistry creates an empty registry that prints help to out.
func NewCommandRegistry(out io.Writer) *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]*Command),
		out:      out,
	}
}

// Register adds a command. Help lists commands in registration order.
func (r *CommandRegistry) Register(cmd *Command) {
	if _, exists := r.commands[cmd.Name]; !exists {
		r.order = append(r.order, cmd.Name)
	}
	r.commands[cmd.Name] = cmd
}

// Execute runs the command named by args[0].
func (r *CommandRegistry) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		r.PrintHelp(r.out)
		return errors.New("no command specified")
	}

	switch args[0] {
	case "help", "-h", "--help":
		if len(args) > 1 {
			if cmd, ok := r.commands[args[1]]; ok {
				cmd.PrintUsage(r.out)
				return nil
			}
		}
		r.PrintHelp(r.out)
		return nil
	}

	cmd, ok := r.commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s (run 'shoplist help')", args[0])
	}

	err := cmd.Run(ctx, args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// PrintHelp prints the overall CLI help.
func (r *CommandRegistry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "shoplist - shopping lists from the terminal")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    shoplist <command> [flags]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")
	for _, name := range r.order {
		fmt.Fprintf(w, "    %-12s %s\n", name, r.commands[name].Description)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'shoplist help <command>' for more information on a command.")
}

// TableWriter renders rows as a bordered table.
type TableWriter struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTableWriter creates a table with the given column headers.
func NewTableWriter(headers []string) *TableWriter {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &TableWriter{headers: headers, widths: widths}
}

// AddRow appends a row. Cells beyond the header count are ignored.
func (t *TableWriter) AddRow(row ...string) {
	t.rows = append(t.rows, row)
	for i, cell := range row {
		if i < len(t.widths) && len([]rune(cell)) > t.widths[i] {
			t.widths[i] = len([]rune(cell))
		}
	}
}

// Print writes the table to w.
func (t *TableWriter) Print(w io.Writer) {
	t.printSeparator(w, "┌", "┬", "┐")
	t.printRow(w, t.headers)
	t.printSeparator(w, "├", "┼", "┤")
	for _, row := range t.rows {
		t.printRow(w, row)
	}
	t.printSeparator(w, "└", "┴", "┘")
}

func (t *TableWriter) printSeparator(w io.Writer, left, mid, right string) {
	fmt.Fprint(w, left)
	for i, width := range t.widths {
		fmt.Fprint(w, strings.Repeat("─", width+2))
		if i < len(t.widths)-1 {
			fmt.Fprint(w, mid)
		}
	}
	fmt.Fprintln(w, right)
}

func (t *TableWriter) printRow(w io.Writer, row []string) {
	fmt.Fprint(w, "│")
	for i := range t.widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		fmt.Fprintf(w, " %s%s │", cell, strings.Repeat(" ", t.widths[i]-len([]rune(cell))))
	}
	fmt.Fprintln(w)
}
