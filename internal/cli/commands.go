package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/shoplist/internal/model"
	"github.com/idilsaglam/shoplist/internal/shoplist"
	"github.com/idilsaglam/shoplist/internal/ui"
)

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, usagef("not an item id: %s", arg)
	}
	return id, nil
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: shoplist %s", usage)
		}
		return nil
	}
}

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive list (default)",
		Args:  exactArgs(0, "ui"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runUI(cmd.Context())
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items for the current mode and store",
		Args:    exactArgs(0, "ls [--search text]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := a.mgr.View(cmd.Context(), search)
			lines := ui.ViewLines(v)
			t := ui.Current()
			lines = append(lines, "", ui.C(t.Muted, "Tip: `shoplist toggle <id>` checks an item, `shoplist mode` switches modes"))
			ui.Panel(lines)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show items whose description contains text")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of an item, last purchase date included",
		Args:  exactArgs(1, "show <id>"),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			it, err := a.mgr.Item(id)
			if err != nil {
				return err
			}
			ui.Panel(ui.ItemLines(it))
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var d shoplist.Draft
	cmd := &cobra.Command{
		Use:   "add <description...>",
		Short: "Add a needed item",
		Example: `  shoplist add Milk --category Dairy --aisle Acme=4
  shoplist add "AA batteries" --auto-delete`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Description = strings.Join(args, " ")
			if strings.TrimSpace(d.Description) == "" {
				return usagef("usage: shoplist add <description...>")
			}
			it, err := a.mgr.Add(cmd.Context(), d)
			if err != nil {
				return fmt.Errorf("add: %w", err)
			}
			ui.OK(fmt.Sprintf("added %q [%d]", it.Description, it.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&d.Category, "category", "c", "", "category")
	cmd.Flags().StringToStringVarP(&d.StoreAisles, "aisle", "a", nil, "store=aisle pairs, repeatable; an empty aisle is filled in")
	cmd.Flags().BoolVar(&d.AutoDelete, "auto-delete", false, "delete instead of keeping when cleared from the cart")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		desc, category string
		aisles         map[string]string
		noStores       bool
		autoDelete     bool
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's fields",
		Example: `  shoplist edit 3 --category Bakery
  shoplist edit 3 --aisle Acme=7 --aisle Corner=B
  shoplist edit 3 --no-stores`,
		Args: exactArgs(1, "edit <id> [flags]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			it, err := a.mgr.Item(id)
			if err != nil {
				return err
			}
			d := shoplist.DraftOf(it)
			f := cmd.Flags()
			if f.Changed("description") {
				d.Description = desc
			}
			if f.Changed("category") {
				d.Category = category
			}
			if f.Changed("auto-delete") {
				d.AutoDelete = autoDelete
			}
			if noStores {
				d.StoreAisles = map[string]string{}
			}
			for store, aisle := range aisles {
				if aisle == "" {
					delete(d.StoreAisles, store)
					continue
				}
				d.StoreAisles[store] = aisle
			}
			it, err = a.mgr.Edit(cmd.Context(), id, d)
			if err != nil {
				return fmt.Errorf("edit: %w", err)
			}
			ui.OK(fmt.Sprintf("updated %q [%d]", it.Description, it.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&desc, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category")
	cmd.Flags().StringToStringVarP(&aisles, "aisle", "a", nil, "store=aisle pairs to set; an empty aisle removes the store")
	cmd.Flags().BoolVar(&noStores, "no-stores", false, "remove every store before applying --aisle")
	cmd.Flags().BoolVar(&autoDelete, "auto-delete", false, "delete instead of keeping when cleared from the cart")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    exactArgs(1, "rm <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.mgr.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("rm: %w", err)
			}
			ui.OK("removed")
			return nil
		},
	}
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip an item's checkbox in the current mode",
		Long: `In planning mode the checkbox means "needed"; in shopping mode it means
"in the cart". Items already in the cart can't be changed from planning mode.`,
		Args: exactArgs(1, "toggle <id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			it, err := a.mgr.Toggle(cmd.Context(), id)
			if errors.Is(err, model.ErrToggleDisabled) {
				ui.Hint("Hint: switch modes with `shoplist mode`")
			}
			if err != nil {
				return fmt.Errorf("toggle: %w", err)
			}
			ui.OK(fmt.Sprintf("%s is now %s", it.Description, stateLabel(it.State)))
			return nil
		},
	}
}

func stateLabel(s model.ItemState) string {
	switch s {
	case model.Need:
		return "needed"
	case model.InShoppingCart:
		return "in the cart"
	}
	return "not needed"
}

func newClearCmd(a *app) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart (shopping mode)",
		Long: `Every listed item in the cart is either deleted (auto-delete items) or
marked not needed with today's purchase date.`,
		Args: exactArgs(0, "clear [--search text]"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.mgr.ClearChecked(cmd.Context(), search)
			if errors.Is(err, shoplist.ErrWrongMode) {
				ui.Hint("Hint: run `shoplist mode shopping` first")
			}
			if err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("cleared %d item(s), deleted %d", res.Reset+res.Deleted, res.Deleted))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only clear items whose description contains text")
	return cmd
}

func newModeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "mode [planning|shopping|toggle]",
		Short:     "Show or change the display mode",
		ValidArgs: []string{"planning", "shopping", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch len(args) {
			case 0:
				fmt.Fprintln(cmd.OutOrStdout(), a.mgr.Mode().Label())
				return nil
			case 1:
			default:
				return usagef("usage: shoplist mode [planning|shopping|toggle]")
			}
			var (
				mode model.DisplayMode
				err  error
			)
			if strings.EqualFold(args[0], "toggle") {
				mode, err = a.mgr.ToggleDisplayMode(ctx)
			} else {
				mode, err = model.ParseDisplayMode(strings.ToLower(args[0]))
				if err != nil {
					return usagef("unknown mode %q (valid: planning, shopping, toggle)", args[0])
				}
				err = a.mgr.SetDisplayMode(ctx, mode)
			}
			if err != nil {
				return err
			}
			ui.OK(mode.Label() + " mode")
			return nil
		},
	}
}

func newStoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "store [all|missing|<name>]",
		Short: "Show the store choices or select one",
		Long: `Without an argument, lists the stores you can filter by and marks the
current one. "all" shows every store, "missing" only items without a store.
Use store:<name> for a store literally called "all" or "missing".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v := a.mgr.View(ctx, "")
			switch len(args) {
			case 0:
				out := cmd.OutOrStdout()
				for _, c := range v.Choices {
					mark := " "
					if c == v.Filter {
						mark = "*"
					}
					fmt.Fprintf(out, "%s %s\n", mark, c.Label())
				}
				return nil
			case 1:
			default:
				return usagef("usage: shoplist store [all|missing|<name>]")
			}
			f := model.ParseStoreFilter(args[0])
			if !slices.Contains(v.Choices, f) {
				return usagef("no listed item is sold at %q", f.Label())
			}
			if err := a.mgr.SetStoreFilter(ctx, f); err != nil {
				return err
			}
			ui.OK("showing " + f.Label())
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the whole list with the items in a tab-separated file",
		Long: `Each line is: description, category, state, auto-delete, then store and
aisle pairs, separated by tabs. Every imported item starts as not needed.
The default file comes from transfer.import_path in the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usagef("usage: shoplist import [file]")
			}
			path := a.cfg.Transfer.ImportPath
			if len(args) == 1 {
				path = args[0]
			}
			f, err := os.Open(path)
			if errors.Is(err, os.ErrNotExist) {
				return usagef("import file not found: %s", path)
			}
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := a.mgr.Import(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import stopped after %d item(s): %w", res.Imported, err)
			}
			msg := fmt.Sprintf("imported %d item(s)", res.Imported)
			if res.Skipped > 0 {
				msg += fmt.Sprintf(", skipped %d", res.Skipped)
			}
			ui.OK(msg)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file|-]",
		Short: "Write every item to a tab-separated file (planning mode)",
		Long: `The format is the one import reads. "-" writes to standard output.
The default file comes from transfer.export_path in the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usagef("usage: shoplist export [file|-]")
			}
			if a.mgr.Mode() != model.Planning {
				ui.Hint("Hint: run `shoplist mode planning` first")
				return fmt.Errorf("export: %w", shoplist.ErrWrongMode)
			}
			path := a.cfg.Transfer.ExportPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				_, err := a.mgr.Export(cmd.Context(), cmd.OutOrStdout())
				return err
			}
			n, err := exportFile(cmd, a.mgr, path)
			if err != nil {
				return err
			}
			ui.OK(fmt.Sprintf("exported %d item(s) to %s", n, path))
			return nil
		},
	}
}

func exportFile(cmd *cobra.Command, mgr *shoplist.Manager, path string) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return mgr.Export(cmd.Context(), f)
}

func newIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "index categories|aisles|stores",
		Short:     "List the known categories, aisles or stores",
		ValidArgs: []string{"categories", "aisles", "stores"},
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)(cmd, args); err != nil {
				return usageError{msg: err.Error()}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var values []string
			switch args[0] {
			case "categories":
				values = a.mgr.Categories()
			case "aisles":
				values = a.mgr.Aisles()
			case "stores":
				values = a.mgr.Stores()
			}
			return printValues(cmd.OutOrStdout(), values)
		},
	}
}

func printValues(w io.Writer, values []string) error {
	for _, v := range values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}
