// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/tmsearch/internal/controller"
	"github.com/pdiddy/tmsearch/internal/navigation"
	"github.com/pdiddy/tmsearch/internal/querystate"
	"github.com/pdiddy/tmsearch/internal/render"
	"github.com/pdiddy/tmsearch/internal/search"
	"github.com/pdiddy/tmsearch/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query-string]",
	Short: "Run one trademark search and print the results",
	Long: `Search runs a single trademark search. The optional argument is a query
string or search-page URL ("q=nike&status=Registered" or
"https://example.com/search/trademarks?q=nike"). Flags are applied on top
of it.

Output is a readable listing by default; use --format json or --format yaml
for machine-readable output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	addSearchFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("q", "", "free-text query (default \"nike\")")
	f.String("country", "", "country code (default \"us\")")
	f.Int("page", 0, "page number, starting at 1")
	f.StringSlice("status", nil, "status filter: Registered, Pending, Abandoned, Others (repeatable)")
	f.StringArray("owner", nil, "owner filter (repeatable)")
	f.StringArray("attorney", nil, "attorney filter (repeatable)")
	f.StringArray("law-firm", nil, "law firm filter (repeatable)")
	f.StringArray("description", nil, "description term filter (repeatable)")
	f.StringSlice("class", nil, "class code filter (repeatable)")
	f.StringSlice("state", nil, "state filter (repeatable)")
	f.StringSlice("county", nil, "county filter (repeatable)")
	f.Bool("exact", false, "exact match on the query text")
	f.String("format", "table", "output format: table, json or yaml")
}

func runSearch(cmd *cobra.Command, args []string) error {
	raw := ""
	if len(args) == 1 {
		raw = args[0]
	}
	params := querystate.Decode(raw)
	if err := applySearchFlags(cmd, &params); err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")

	cfg := loadConfig()
	log := newLogger(cfg.LogLevel)

	nav := navigation.NewHistory(querystate.Encode(params))
	ctrl := newController(cfg, nav, log)
	ctrl.Start(cmd.Context())
	ctrl.Wait()

	st := ctrl.State()
	if err := render.Write(cmd.OutOrStdout(), format, st); err != nil {
		return err
	}
	if st.Status == controller.Failed {
		return fmt.Errorf("search failed: %w", st.Err)
	}
	return nil
}

// applySearchFlags overlays the flags the user set onto p, through the same
// edits the interactive browser uses.
func applySearchFlags(cmd *cobra.Command, p *types.SearchParameters) error {
	f := cmd.Flags()
	var edits []controller.Edit
	if f.Changed("q") {
		v, _ := f.GetString("q")
		edits = append(edits, controller.SetQuery(v))
	}
	if f.Changed("country") {
		v, _ := f.GetString("country")
		edits = append(edits, controller.SetCountry(v))
	}
	if f.Changed("page") {
		v, _ := f.GetInt("page")
		edits = append(edits, controller.SetPage(v))
	}
	if f.Changed("status") {
		statuses, _ := f.GetStringSlice("status")
		for i, s := range statuses {
			statuses[i] = querystate.CanonicalStatus(s)
		}
		edits = append(edits, controller.SetStatus(statuses...))
	}
	lists := []struct {
		flag  string
		set   func(...string) controller.Edit
		slice bool
	}{
		{"owner", controller.SetOwners, false},
		{"attorney", controller.SetAttorneys, false},
		{"law-firm", controller.SetLawFirms, false},
		{"description", controller.SetDescriptionTerms, false},
		{"class", controller.SetClasses, true},
		{"state", controller.SetStates, true},
		{"county", controller.SetCounties, true},
	}
	for _, l := range lists {
		if !f.Changed(l.flag) {
			continue
		}
		var (
			vs  []string
			err error
		)
		if l.slice {
			vs, err = f.GetStringSlice(l.flag)
		} else {
			vs, err = f.GetStringArray(l.flag)
		}
		if err != nil {
			return fmt.Errorf("reading --%s: %w", l.flag, err)
		}
		edits = append(edits, l.set(vs...))
	}
	if f.Changed("exact") {
		v, _ := f.GetBool("exact")
		edits = append(edits, controller.SetExactMatch(v))
	}
	for _, e := range edits {
		e(p)
	}
	*p = querystate.Normalize(*p)
	return nil
}

// newController wires a search client and controller from cfg.
func newController(cfg types.Config, nav controller.Navigator, log zerolog.Logger) *controller.Controller {
	client := search.NewClient(cfg.Search, log.With().Str("component", "search").Logger())
	return controller.New(nav, client, controller.Options{
		Config: cfg.Controller,
		Rows:   client.Config.Rows,
		Log:    log.With().Str("component", "controller").Logger(),
	})
}

// printState renders st, reporting render errors on w.
func printState(w io.Writer, format string, st controller.State) {
	if err := render.Write(w, format, st); err != nil {
		fmt.Fprintf(w, "render: %v\n", err)
	}
}
