package cmd

import (
	"errors"

	"github.com/jrsteele09/admissions-portal/navigation"
	"github.com/jrsteele09/admissions-portal/session"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show the sidebar menu of the signed-in role",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _, _, err := newProvider()
		if err != nil {
			return err
		}
		snap, err := provider.Hydrate(cmd.Context())
		if err != nil {
			return err
		}
		if snap.State != session.StateAuthenticated {
			return errors.New("not logged in")
		}

		role := snap.Session.Role
		pterm.DefaultSection.Printf("%s  %s\n", navigation.Initial(role), navigation.Label(role))

		rows := pterm.TableData{{"Раздел", "Путь"}}
		for _, item := range navigation.Unique(navigation.ForRole(role)) {
			rows = append(rows, []string{item.Label, item.Path})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}
