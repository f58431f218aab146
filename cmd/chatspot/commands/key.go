package commands

import (
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/spf13/cobra"

	"chatspot/internal/crypto"
	"chatspot/internal/domain"
)

// key groups the out-of-band sharing operations. The system never
// distributes keys over the network: a token printed here and carried over
// a channel the operators trust is the whole exchange protocol.
func keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Export, import or show a room key",
	}
	cmd.AddCommand(keyExportCmd(), keyImportCmd(), keyShowCmd())
	return cmd
}

func keyExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <room>",
		Short: "Print the room key as a sharing token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := domain.RoomID(args[0])
			suite, raw, ok, err := wire.Keyring.LoadRoomKey(room)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no key for room %q; run join first", room)
			}
			defer memguard.WipeBytes(raw)
			fmt.Println(crypto.FormatToken(suite, raw))
			return nil
		},
	}
}

func keyImportCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import <room> <token>",
		Short: "Install a key received out-of-band",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := domain.RoomID(args[0])
			if !room.Valid() {
				return fmt.Errorf("invalid room id %q", args[0])
			}
			suite, raw, err := crypto.ParseToken(args[1])
			if err != nil {
				return err
			}
			defer memguard.WipeBytes(raw)

			_, _, exists, err := wire.Keyring.LoadRoomKey(room)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("room %q already has a key; use --force to replace it", room)
			}
			if exists {
				if err := wire.Keyring.ReplaceRoomKey(room, suite, raw); err != nil {
					return err
				}
			} else if err := wire.Keyring.SaveRoomKey(room, suite, raw); err != nil {
				return err
			}
			fmt.Printf("Imported key for %s (%s, fingerprint %s).\n", room, suite, crypto.Fingerprint(raw))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing key")
	return cmd
}

func keyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <room>",
		Short: "Print the room key fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := domain.RoomID(args[0])
			suite, raw, ok, err := wire.Keyring.LoadRoomKey(room)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no key for room %q", room)
			}
			defer memguard.WipeBytes(raw)
			fmt.Printf("Suite:       %s\n", suite)
			fmt.Printf("Fingerprint: %s\n", crypto.Fingerprint(raw))
			return nil
		},
	}
}
