package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatspot/internal/domain"
)

// join <room>: ensure the room has a key without connecting anywhere.
func joinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <room>",
		Short: "Ensure a room key exists and print its fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := domain.RoomID(args[0])
			key, created, err := wire.Codec.LoadOrCreateKey(room)
			if err != nil {
				return err
			}
			fp, err := key.Fingerprint()
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("Created key for %s.\n", room)
			}
			fmt.Printf("Suite:       %s\n", key.Suite())
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
}
