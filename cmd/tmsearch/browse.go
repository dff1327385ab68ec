// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/tmsearch/internal/controller"
	"github.com/pdiddy/tmsearch/internal/navigation"
	"github.com/pdiddy/tmsearch/internal/querystate"
)

var browseCmd = &cobra.Command{
	Use:   "browse [query-string]",
	Short: "Browse search results interactively",
	Long: `Browse starts at the given query string (or the default search) and reads
commands from standard input. Every change updates the address, so back and
forward step through earlier searches. Type "help" for the command list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().String("format", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(browseCmd)
}

const browseHelp = `Commands:
  q <text>          new search (clears filters)
  page <n>          go to page n
  next, prev        move one page
  status <s>        toggle a status (Registered, Pending, Abandoned, Others, All)
  owner <name>      toggle an owner filter
  attorney <name>   toggle an attorney filter
  firm <name>       toggle a law firm filter
  class <code>      toggle a class filter
  desc <term>       toggle a description term
  states <a,b>      set the state filter ("none" clears it)
  counties <a,b>    set the county filter ("none" clears it)
  exact on|off      exact match on the query text
  country <cc>      search another country
  clear             remove all filters
  back, forward     step through history
  retry             run the current search again
  url               print the current address
  help              show this list
  quit              leave
`

func runBrowse(cmd *cobra.Command, args []string) error {
	raw := ""
	if len(args) == 1 {
		raw = args[0]
	}
	format, _ := cmd.Flags().GetString("format")

	cfg := loadConfig()
	log := newLogger(cfg.LogLevel)

	// Canonicalize the starting address the way a page load would.
	hist := navigation.NewHistory(querystate.Encode(querystate.Decode(raw)))
	b := &browser{
		ctrl:   newController(cfg, hist, log),
		hist:   hist,
		out:    cmd.OutOrStdout(),
		format: format,
	}
	return b.run(cmd.Context(), cmd.InOrStdin())
}

// browser drives a controller from line commands.
type browser struct {
	ctrl   *controller.Controller
	hist   *navigation.History
	out    io.Writer
	format string
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	b.ctrl.Start(ctx)
	b.show()

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(b.out)
			return sc.Err()
		}
		quit, changed := b.exec(ctx, sc.Text())
		if quit {
			return nil
		}
		if changed {
			b.show()
		}
	}
}

// exec runs one command line. changed reports whether a new state should be
// shown.
func (b *browser) exec(ctx context.Context, line string) (quit, changed bool) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "":
		return false, false
	case "quit", "exit":
		return true, false
	case "help", "?":
		fmt.Fprint(b.out, browseHelp)
		return false, false
	case "url":
		fmt.Fprintln(b.out, b.hist.URL())
		return false, false
	case "q":
		if arg == "" {
			return false, b.usage("q <text>")
		}
		return false, b.ctrl.OnQuerySubmit(ctx, arg)
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, b.usage("page <n>")
		}
		if !b.ctrl.GoToPage(ctx, n) {
			return false, b.note("no such page")
		}
		return false, true
	case "next":
		if !b.ctrl.NextPage(ctx) {
			return false, b.note("already on the last page")
		}
		return false, true
	case "prev":
		if !b.ctrl.PrevPage(ctx) {
			return false, b.note("already on the first page")
		}
		return false, true
	case "status":
		return false, b.edit(ctx, arg, "status <s>", func(v string) controller.Edit {
			return controller.ToggleStatus(querystate.CanonicalStatus(v))
		})
	case "owner":
		return false, b.edit(ctx, arg, "owner <name>", controller.ToggleOwner)
	case "attorney":
		return false, b.edit(ctx, arg, "attorney <name>", controller.ToggleAttorney)
	case "firm":
		return false, b.edit(ctx, arg, "firm <name>", controller.ToggleLawFirm)
	case "class":
		return false, b.edit(ctx, arg, "class <code>", controller.ToggleClass)
	case "desc":
		return false, b.edit(ctx, arg, "desc <term>", controller.ToggleDescriptionTerm)
	case "states":
		return false, b.edit(ctx, arg, "states <a,b>", func(v string) controller.Edit {
			return controller.SetStates(listArg(v)...)
		})
	case "counties":
		return false, b.edit(ctx, arg, "counties <a,b>", func(v string) controller.Edit {
			return controller.SetCounties(listArg(v)...)
		})
	case "country":
		return false, b.edit(ctx, arg, "country <cc>", controller.SetCountry)
	case "exact":
		switch strings.ToLower(arg) {
		case "on":
			return false, b.ctrl.OnUserEdit(ctx, controller.SetExactMatch(true))
		case "off":
			return false, b.ctrl.OnUserEdit(ctx, controller.SetExactMatch(false))
		}
		return false, b.usage("exact on|off")
	case "clear":
		return false, b.ctrl.OnUserEdit(ctx, controller.ClearFilters())
	case "back":
		q, ok := b.hist.Back()
		if !ok {
			return false, b.note("no earlier search")
		}
		return false, b.ctrl.OnURLChange(ctx, q)
	case "forward":
		q, ok := b.hist.Forward()
		if !ok {
			return false, b.note("no later search")
		}
		return false, b.ctrl.OnURLChange(ctx, q)
	case "retry":
		b.ctrl.Retry(ctx)
		return false, true
	default:
		fmt.Fprintf(b.out, "unknown command %q, type help\n", name)
		return false, false
	}
}

func (b *browser) edit(ctx context.Context, arg, usage string, mk func(string) controller.Edit) bool {
	if arg == "" {
		return b.usage(usage)
	}
	return b.ctrl.OnUserEdit(ctx, mk(arg))
}

// listArg splits a comma-separated command argument; "none" is empty.
func listArg(arg string) []string {
	if strings.EqualFold(arg, "none") {
		return nil
	}
	return strings.Split(arg, ",")
}

func (b *browser) usage(u string) bool {
	fmt.Fprintf(b.out, "usage: %s\n", u)
	return false
}

func (b *browser) note(msg string) bool {
	fmt.Fprintln(b.out, msg)
	return false
}

// show waits for the current fetch and prints the settled state.
func (b *browser) show() {
	b.ctrl.Wait()
	printState(b.out, b.format, b.ctrl.State())
	fmt.Fprintln(b.out, b.hist.URL())
}
