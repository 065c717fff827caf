package songs

import "strings"

// coverKeyFixes remaps cover asset keys that are wrong in the shipped
// config data. Keys are matched after the general "_music" strip below,
// so new entries should use the stripped form.
var coverKeyFixes = map[string]string{
	// chaos_glitch's bundle and object names use the plain chaos key.
	"chaos_glitch": "chaos",
	// fm_17314_sugar_radio ships with qu_jianhai_de_rizi's cover art.
	"fm_17314_sugar_radio": "qu_jianhai_de_rizi",
}

// displayFixes corrects misspellings in human-facing strings.
var displayFixes = map[string]string{
	// "Cute Is Everyting" in the ALBUM10 manifest.
	"Everyting": "Everything",
}

const (
	albumNamePrefix = "Muse Dash - "
	defaultGenre    = "Video Games"
)

// ApplyCorrections rewrites the known-bad records in place. It must run
// before any bundle resolution so the corrected keys drive extraction.
func ApplyCorrections(list []Song) {
	for i := range list {
		s := &list[i]
		// Cover keys sometimes carry a stray "_music" segment.
		key := strings.ReplaceAll(s.CoverAssetKey, "_music", "")
		if fixed, ok := coverKeyFixes[key]; ok {
			key = fixed
		}
		s.CoverAssetKey = key

		for bad, good := range displayFixes {
			s.AlbumName = strings.ReplaceAll(s.AlbumName, bad, good)
		}
	}
}

// Normalize applies the cosmetic pass: the product prefix on album names
// and the constant genre. Running it more than once changes nothing.
func Normalize(list []Song) {
	for i := range list {
		s := &list[i]
		if !strings.HasPrefix(s.AlbumName, albumNamePrefix) {
			s.AlbumName = albumNamePrefix + s.AlbumName
		}
		s.Genre = defaultGenre
	}
}
