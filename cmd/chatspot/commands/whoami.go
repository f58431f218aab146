package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatspot/internal/domain"
)

func whoamiCmd() *cobra.Command {
	var set string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show or set the locally chosen user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if set != "" {
				id := domain.UserID(set)
				if !id.Valid() {
					return fmt.Errorf("invalid user id %q", set)
				}
				p, _, err := wire.Profile.LoadProfile()
				if err != nil {
					return err
				}
				p.UserID = id
				if err := wire.Profile.SaveProfile(p); err != nil {
					return err
				}
				fmt.Println(id)
				return nil
			}

			p, err := wire.EnsureProfile()
			if err != nil {
				return err
			}
			fmt.Println(p.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "store this user id instead of showing the current one")
	return cmd
}
