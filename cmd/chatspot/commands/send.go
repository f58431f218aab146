package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chatspot/internal/domain"
	"chatspot/internal/session"
)

// send <room> <text>: one-shot connect, join, send, exit.
func sendCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "send <room> <text>",
		Short: "Send one encrypted message to a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, text := domain.RoomID(args[0]), args[1]
			if text == "" {
				return fmt.Errorf("refusing to send an empty message")
			}

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

			// Drain events so a long history replay never stalls the reader.
			go func() {
				for range s.Events() {
				}
			}()

			if err := s.Join(room); err != nil {
				return err
			}
			env, err := s.Send(text)
			if err != nil {
				return err
			}
			fmt.Printf("sent %s\n", env.ID)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connect timeout")
	return cmd
}
