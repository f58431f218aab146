package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chatspot/internal/domain"
	"chatspot/internal/protocol"
	"chatspot/internal/session"
)

// chat <room>: interactive session. History and live messages stream to
// stdout; stdin lines are sent; /quit leaves. Status goes to stderr so a
// piped stdout stays clean message text.
func chatCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "chat <room>",
		Short: "Chat interactively in a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := domain.RoomID(args[0])

			profile, err := wire.EnsureProfile()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			s := session.New(wire.Dial, wire.Codec, profile.UserID, wire.HubURL, wire.Log)
			if err := s.Connect(ctx); err != nil {
				return err
			}
			defer s.Close()

			if err := s.Join(room); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "joined %s as %s (/quit to leave)\n", room, profile.UserID)

			done := make(chan struct{})
			go func() {
				defer close(done)
				for ev := range s.Events() {
					switch e := ev.(type) {
					case session.IdentifiedEvent:
						fmt.Fprintf(os.Stderr, "hub acknowledged %s\n", e.UserID)
					case session.MessageEvent:
						printMessage(e.Message)
					case session.DisconnectedEvent:
						if e.Err != nil {
							fmt.Fprintf(os.Stderr, "disconnected: %v\n", e.Err)
						}
					}
				}
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "/quit" {
					break
				}
				if _, err := s.Send(line); err != nil {
					if errors.Is(err, session.ErrNotJoined) || errors.Is(err, session.ErrNotConnected) {
						fmt.Fprintf(os.Stderr, "not connected: %v\n", err)
						break
					}
					fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
				}
			}

			s.Close()
			<-done
			return scanner.Err()
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connect timeout")
	return cmd
}

func printMessage(m domain.Message) {
	stamp := m.SentAt.Format("15:04:05")
	if m.SentAt.IsZero() {
		stamp = "--:--:--"
	}
	prefix := ""
	if m.Replayed {
		prefix = "(history) "
	}
	switch {
	case m.Undecryptable:
		fmt.Printf("%s[%s] <%s> [undecryptable: %s]\n", prefix, stamp, m.Sender, m.Ciphertext)
	case m.Kind == protocol.KindFile:
		name := m.Meta["filename"]
		fmt.Printf("%s[%s] <%s> [file %s] %s\n", prefix, stamp, m.Sender, name, m.Text)
	default:
		fmt.Printf("%s[%s] <%s> %s\n", prefix, stamp, m.Sender, m.Text)
	}
}
