package songs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"title",
	"artist",
	"album_number",
	"album_name",
	"track_number",
	"track_total",
	"music_asset_key",
	"cover_asset_key",
}

// WriteCSV writes the track list as UTF-8 CSV. A byte order mark leads
// the output so Excel detects the encoding, and the genre column is
// omitted because it holds the same constant for every track.
func WriteCSV(w io.Writer, list []Song) error {
	if _, err := io.WriteString(w, "﻿"); err != nil {
		return fmt.Errorf("write byte order mark: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range list {
		row := []string{
			s.Title,
			s.Artist,
			strconv.Itoa(s.AlbumNumber),
			s.AlbumName,
			strconv.Itoa(s.TrackNumber),
			strconv.Itoa(s.TrackTotal),
			s.MusicAssetKey,
			s.CoverAssetKey,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
