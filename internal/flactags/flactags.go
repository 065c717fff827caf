package flactags

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// Tags holds the vorbis comment fields written to an exported track.
type Tags struct {
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	TrackTotal  int
	Genre       string
}

// Picture is the front-cover image embedded alongside the tags. Width,
// Height, and Depth land in the picture block header exactly as given.
type Picture struct {
	PNG    []byte
	Width  int
	Height int
	Depth  int
}

// Write replaces the vorbis comment block of the FLAC file at path and
// embeds the picture as the only PICTURE block. Any comment or picture
// blocks already present are dropped so repeated runs never stack tags.
func Write(path string, t Tags, pic Picture) error {
	if len(pic.PNG) == 0 {
		return errors.New("cover image required")
	}

	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse flac: %w", err)
	}

	cmts := flacvorbis.New()
	addTag := func(key, value string) error {
		if value != "" {
			return cmts.Add(key, value)
		}
		return nil
	}
	if err := addTag("TITLE", t.Title); err != nil {
		return fmt.Errorf("add title: %w", err)
	}
	if err := addTag("ARTIST", t.Artist); err != nil {
		return fmt.Errorf("add artist: %w", err)
	}
	if err := addTag("ALBUM", t.Album); err != nil {
		return fmt.Errorf("add album: %w", err)
	}
	if t.TrackNumber > 0 {
		if err := cmts.Add("TRACKNUMBER", strconv.Itoa(t.TrackNumber)); err != nil {
			return fmt.Errorf("add track number: %w", err)
		}
	}
	if t.TrackTotal > 0 {
		if err := cmts.Add("TRACKTOTAL", strconv.Itoa(t.TrackTotal)); err != nil {
			return fmt.Errorf("add track total: %w", err)
		}
	}
	if err := addTag("GENRE", t.Genre); err != nil {
		return fmt.Errorf("add genre: %w", err)
	}
	cmtBlock := cmts.Marshal()

	kept := make([]*flac.MetaDataBlock, 0, len(f.Meta)+2)
	for _, meta := range f.Meta {
		if meta.Type == flac.VorbisComment || meta.Type == flac.Picture {
			continue
		}
		kept = append(kept, meta)
	}
	kept = append(kept, &cmtBlock)

	cover, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Front Cover", pic.PNG, "image/png")
	if err != nil {
		return fmt.Errorf("create picture block: %w", err)
	}
	cover.Width = uint32(pic.Width)
	cover.Height = uint32(pic.Height)
	cover.ColorDepth = uint32(pic.Depth)
	coverBlock := cover.Marshal()
	kept = append(kept, &coverBlock)

	f.Meta = kept
	if err := f.Save(path); err != nil {
		return fmt.Errorf("save flac: %w", err)
	}
	return nil
}
