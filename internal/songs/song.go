package songs

// Song is one exportable track assembled from the base and localized
// config manifests. Asset keys are the internal identifiers left after
// stripping the fixed suffixes from the raw music and cover fields; the
// bundle prefixes and object names used during extraction derive from
// them.
type Song struct {
	Title         string
	Artist        string
	AlbumNumber   int
	AlbumName     string
	TrackNumber   int
	TrackTotal    int
	MusicAssetKey string
	CoverAssetKey string
	Genre         string
}

// MusicObjectName returns the audio object name inside the music bundle.
func (s Song) MusicObjectName() string {
	return s.MusicAssetKey + "_music"
}

// CoverObjectName returns the texture object name inside the cover bundle.
func (s Song) CoverObjectName() string {
	return s.CoverAssetKey + "_cover"
}

// MusicBundlePrefix returns the catalog prefix of the bundle holding the
// track's audio object.
func (s Song) MusicBundlePrefix() string {
	return "music_" + s.MusicAssetKey + "_assets_all"
}

// CoverBundlePrefix returns the catalog prefix of the bundle holding the
// track's cover texture.
func (s Song) CoverBundlePrefix() string {
	return "song_" + s.CoverAssetKey + "_assets_all_"
}
