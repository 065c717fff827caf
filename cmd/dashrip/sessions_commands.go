package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dashrip/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage recorded rip sessions",
	}

	sessionsCmd.AddCommand(newSessionsListCommand(ctx))
	sessionsCmd.AddCommand(newSessionsShowCommand(ctx))
	sessionsCmd.AddCommand(newSessionsClearCommand(ctx))

	return sessionsCmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				sessions, err := store.ListSessions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded")
					return nil
				}
				rows := make([][]string, 0, len(sessions))
				for _, sess := range sessions {
					exported, err := store.CountTracksWithStatus(cmd.Context(), sess.ID, session.TrackSucceeded)
					if err != nil {
						return err
					}
					rows = append(rows, []string{
						sess.ID,
						sess.StartedAt.Local().Format("2006-01-02 15:04"),
						sess.Language,
						fmt.Sprintf("%d/%d", exported, sess.TrackTotal),
						string(sess.Outcome),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Started", "Language", "Exported", "Outcome"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to list (0 for all)")
	return cmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show [sessionID]",
		Short: "Show per-track results for a session (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				var (
					sess *session.Session
					err  error
				)
				if len(args) == 1 {
					sess, err = store.GetSession(cmd.Context(), args[0])
				} else {
					sess, err = store.LatestSession(cmd.Context())
				}
				if err != nil {
					return err
				}
				if sess == nil {
					return errors.New("no matching session found")
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session %s (%s)\n", sess.ID, sess.Outcome)
				if sess.ErrorMessage != "" {
					fmt.Fprintf(out, "Error: %s\n", sess.ErrorMessage)
				}

				tracks, err := store.ListTracks(cmd.Context(), sess.ID)
				if err != nil {
					return err
				}
				if len(tracks) == 0 {
					fmt.Fprintln(out, "No tracks recorded")
					return nil
				}
				rows := make([][]string, 0, len(tracks))
				for _, track := range tracks {
					detail := track.OutputPath
					if track.ErrorMessage != "" {
						detail = track.ErrorMessage
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d-%d", track.AlbumNumber, track.TrackNumber),
						track.Title,
						track.Artist,
						string(track.Status),
						detail,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Track", "Title", "Artist", "Status", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
				return nil
			})
		},
	}
}

func newSessionsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every recorded session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d sessions\n", removed)
				return nil
			})
		},
	}
}
