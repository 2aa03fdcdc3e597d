package musicbrainz

// MusicBrainz ws/2 response types, trimmed to the fields the verifier uses.

// artistSearchResponse is the top-level response from the artist search endpoint.
type artistSearchResponse struct {
	Count   int        `json:"count"`
	Offset  int        `json:"offset"`
	Artists []mbArtist `json:"artists"`
}

// mbArtist represents a MusicBrainz artist entity.
type mbArtist struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SortName       string    `json:"sort-name"`
	Type           string    `json:"type"`
	Disambiguation string    `json:"disambiguation"`
	Country        string    `json:"country"`
	Score          int       `json:"score"`
	LifeSpan       mbSpan    `json:"life-span"`
	Tags           []mbTag   `json:"tags"`
	Genres         []mbGenre `json:"genres"`
}

// recordingSearchResponse is the top-level response from the recording search endpoint.
type recordingSearchResponse struct {
	Count      int           `json:"count"`
	Offset     int           `json:"offset"`
	Recordings []mbRecording `json:"recordings"`
}

// mbRecording represents a MusicBrainz recording entity.
type mbRecording struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Score            int              `json:"score"`
	FirstReleaseDate string           `json:"first-release-date"`
	ArtistCredit     []mbArtistCredit `json:"artist-credit"`
	Releases         []mbRelease      `json:"releases"`
	Tags             []mbTag          `json:"tags"`
}

// mbArtistCredit links a recording to its credited artists.
type mbArtistCredit struct {
	Name   string    `json:"name"`
	Artist *mbArtist `json:"artist,omitempty"`
}

// mbRelease is a release a recording appears on.
type mbRelease struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// mbSpan represents the begin/end dates of an artist.
type mbSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Ended bool   `json:"ended"`
}

// mbTag represents a user-submitted tag.
type mbTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// mbGenre represents a genre classification.
type mbGenre struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
