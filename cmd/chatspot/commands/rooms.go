package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"chatspot/internal/crypto"
)

func roomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List rooms with stored keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := wire.Keyring.ListRoomKeys()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println("no rooms yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ROOM\tSUITE\tFINGERPRINT\tCREATED")
			for _, info := range infos {
				fp := "(sealed)"
				if _, raw, ok, err := wire.Keyring.LoadRoomKey(info.Room); err == nil && ok {
					fp = crypto.Fingerprint(raw)
					memguard.WipeBytes(raw)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					info.Room, info.Suite, fp, info.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}
