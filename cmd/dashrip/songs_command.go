package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dashrip/internal/catalog"
	"dashrip/internal/logging"
	"dashrip/internal/services/assetstudio"
	"dashrip/internal/songs"
)

func newSongsCommand(ctx *commandContext) *cobra.Command {
	var (
		languageFlag string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "songs",
		Short: "List the songs the game installation contains",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(languageFlag) != "" {
				cfg.Export.Language = languageFlag
			}
			lang, err := songs.ParseLanguage(cfg.Export.Language)
			if err != nil {
				return err
			}
			if err := catalog.ValidateGameDir(cfg.Paths.GameDir); err != nil {
				return err
			}
			index, err := catalog.Load(cfg.Paths.GameDir)
			if err != nil {
				return err
			}
			bundles, err := assetstudio.New(cfg.AssetStudioBinary(), logging.NewNop())
			if err != nil {
				return err
			}

			parser := songs.NewParser(index, bundles, logging.NewNop())
			list, err := parser.Parse(cmd.Context(), lang, nil)
			if err != nil {
				return err
			}
			songs.ApplyCorrections(list)

			if asJSON {
				return writeJSON(cmd, list)
			}

			rows := make([][]string, 0, len(list))
			albums := make(map[int]struct{})
			for _, song := range list {
				albums[song.AlbumNumber] = struct{}{}
				rows = append(rows, []string{
					strconv.Itoa(song.TrackNumber),
					song.Title,
					song.Artist,
					song.AlbumName,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Track", "Title", "Artist", "Album"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			fmt.Fprintf(out, "%d songs in %d albums\n", len(list), len(albums))
			return nil
		},
	}

	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Config overlay language")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the song list as JSON")
	return cmd
}
