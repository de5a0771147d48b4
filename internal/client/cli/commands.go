package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/coffeelog/internal/buildinfo"
	"github.com/dmitrijs2005/coffeelog/internal/client/models"
	"github.com/dmitrijs2005/coffeelog/internal/client/services"
)

const viewList = "list"

// SetupCommands builds the command tree bound to a.
func SetupCommands(a *App) *cobra.Command {
	// root command
	rootCmd := &cobra.Command{
		Use:           "coffeelog",
		Short:         "Offline-first coffee brewing log",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(a.out)

	// record a new brew
	var addForm entryForm
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a brew",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := addForm.draft(cmd, a, models.Draft{})
			if err != nil {
				return err
			}
			e, err := a.entries.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			a.printf("Created %s (%s)\n", e.ID, e.CoffeeName)
			return a.reportSaved(cmd.Context())
		},
	}
	addForm.bind(addCmd)

	// change an existing brew; unset flags keep the stored values
	var editForm entryForm
	editCmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a brew",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			existing, err := a.entries.Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			if existing == nil {
				a.println(msgNotFound)
				return nil
			}
			d, err := editForm.draft(cmd, a, draftFromEntry(existing))
			if err != nil {
				return err
			}
			e, err := a.entries.Edit(ctx, existing.ID, d)
			if err != nil {
				return err
			}
			a.printf("Updated %s (%s)\n", e.ID, e.CoffeeName)
			return a.reportSaved(ctx)
		},
	}
	editForm.bind(editCmd)

	var noSync bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List brews, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a.view = viewList
			defer func() { a.view = "" }()

			if err := a.renderList(ctx); err != nil {
				return err
			}
			if noSync || !a.monitor.Online() {
				return nil
			}
			return a.runSync(ctx)
		},
	}
	listCmd.Flags().BoolVar(&noSync, "no-sync", false, "do not sync after listing")

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one brew",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.entries.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if e == nil {
				a.println(msgNotFound)
				return nil
			}
			a.renderEntry(e)
			return nil
		},
	}

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a brew",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !yes {
				if !stdinIsTerminal() {
					return errors.New("refusing to delete without --yes when stdin is not a terminal")
				}
				ok, err := Confirm(a.in, fmt.Sprintf("Delete entry %s?", id), a.out)
				if err != nil {
					return err
				}
				if !ok {
					a.println("Cancelled.")
					return nil
				}
			}

			remote, err := a.entries.Delete(cmd.Context(), id)
			if err != nil {
				if remote {
					a.println("Server unavailable. Entry kept.")
				}
				return err
			}
			if remote {
				a.println(msgDeleted)
			} else {
				a.println(msgDeletedLocally)
			}
			return nil
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Push local changes and pull the server's entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSync(cmd.Context())
		},
	}

	var resetKey bool
	whoamiCmd := &cobra.Command{
		Use:     "whoami",
		Aliases: []string{"settings"},
		Short:   "Show the identity token and local settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if resetKey {
				if err := a.identity.Reset(ctx); err != nil {
					return err
				}
				a.log.Info(ctx, "user key reset")
			}

			key, err := a.identity.UserKey(ctx)
			if err != nil {
				return err
			}
			namespaces, err := a.repos.Cache.Namespaces(ctx)
			if err != nil {
				return err
			}

			a.printf("User key:  %s\n", key)
			a.printf("Mode:      %s\n", a.Mode())
			a.printf("Server:    %s\n", a.config.ServerURL)
			a.printf("Database:  %s\n", a.config.DatabasePath)
			a.printf("Cache:     %s\n", a.transport.Active())
			if len(namespaces) > 0 {
				a.printf("Stored:    %s\n", strings.Join(namespaces, ", "))
			}
			return nil
		},
	}
	whoamiCmd.Flags().BoolVar(&resetKey, "reset-key", false, "generate a new identity token")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(a.out)
			a.printf("App version: %s\n", a.config.AppVersion)
		},
	}

	// add commands
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(serveCommand(a))
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// reportSaved prints the outcome of a create or edit: synced right away
// when online, saved locally otherwise.
func (a *App) reportSaved(ctx context.Context) error {
	if !a.monitor.Online() {
		a.println(msgSavedLocally)
		return nil
	}
	return a.runSync(ctx)
}

func (a *App) runSync(ctx context.Context) error {
	res, err := a.sync.Sync(ctx)
	if err != nil {
		return err
	}
	a.println(res.Status.Message())
	if res.Status == services.StatusFailed {
		a.log.Debug(ctx, "sync failed", "error", res.Err)
	}
	return nil
}

func (a *App) renderList(ctx context.Context) error {
	list, err := a.entries.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No entries yet.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBREW DATE\tCOFFEE\tMETHOD\tOVERALL\tSTATUS")
	for _, e := range list {
		status := ""
		if !e.Synced {
			status = "not synced"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.BrewDate, e.CoffeeName, deref(e.BrewMethod), rating(e.Overall), status)
	}
	return w.Flush()
}

func (a *App) renderEntry(e *models.Entry) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(w, "%s:\t%s\n", k, v)
		}
	}

	row("ID", e.ID)
	row("Coffee", e.CoffeeName)
	row("Brew date", e.BrewDate)
	row("Created", e.CreatedAt)
	row("Roastery", deref(e.Roastery))
	row("Origin", deref(e.Origin))
	row("Process", deref(e.Process))
	row("Method", deref(e.BrewMethod))
	row("Grind", deref(e.GrindSize))
	row("Water temp", number(e.WaterTemp))
	row("Dose", number(e.Dose))
	row("Yield", number(e.Yield))
	row("Brew time", deref(e.BrewTime))
	row("Aroma", strings.Join(e.Aroma, ", "))
	row("Flavor", strings.Join(e.Flavor, ", "))
	row("Aftertaste", strings.Join(e.Aftertaste, ", "))
	row("Defects", strings.Join(e.Defects, ", "))

	ratings := []*int{e.Acidity, e.Sweetness, e.Bitterness, e.Body, e.Balance, e.Overall}
	for i, name := range ratingNames {
		row(strings.ToUpper(name[:1])+name[1:], rating(ratings[i]))
	}
	row("Notes", deref(e.Notes))
	if len(e.Photos) > 0 {
		row("Photos", strconv.Itoa(len(e.Photos)))
	}
	if e.Synced {
		row("Status", "synced")
	} else {
		row("Status", "not synced")
	}
	_ = w.Flush()
}

func rating(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", *v, models.MaxRating)
}

func number(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
