package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chatspot/internal/app"
	"chatspot/internal/domain"
)

const defaultHubURL = "ws://127.0.0.1:8080/ws"

var (
	home       string
	hubURL     string
	passphrase string
	suite      string
	verbose    bool

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "chatspot",
		Short:         "Encrypted room chat over a relay hub",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".chatspot")
			}
			if hubURL == "" {
				hubURL = os.Getenv("CHATSPOT_HUB")
			}
			if hubURL == "" {
				hubURL = defaultHubURL
			}
			s := domain.Suite(suite)
			if !s.Valid() {
				return fmt.Errorf("unknown suite %q (want %s or %s)", suite, domain.SuiteAESGCM, domain.SuiteSecretbox)
			}

			var err error
			wire, err = app.NewWire(app.Config{
				Home:       home,
				HubURL:     hubURL,
				Passphrase: passphrase,
				Suite:      s,
				Verbose:    verbose,
			})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire != nil {
				return wire.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.chatspot)")
	root.PersistentFlags().StringVar(&hubURL, "hub", "", "hub WebSocket URL (default $CHATSPOT_HUB or "+defaultHubURL+")")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing room keys at rest")
	root.PersistentFlags().StringVar(&suite, "suite", string(domain.SuiteAESGCM), "cipher suite for new room keys")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(whoamiCmd(), joinCmd(), roomsCmd(), keyCmd(), sendCmd(), chatCmd())
	return root.Execute()
}
