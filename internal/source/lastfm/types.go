package lastfm

// Last.fm API response types. Numeric fields arrive as strings.

// artistSearchResponse is the JSON response from artist.search.
type artistSearchResponse struct {
	Results *artistResults `json:"results"`
	Error   int            `json:"error"`
	Message string         `json:"message"`
}

type artistResults struct {
	TotalResults  string        `json:"opensearch:totalResults"`
	ArtistMatches artistMatches `json:"artistmatches"`
}

type artistMatches struct {
	Artist []artistEntry `json:"artist"`
}

type artistEntry struct {
	Name      string `json:"name"`
	MBID      string `json:"mbid"`
	URL       string `json:"url"`
	Listeners string `json:"listeners"`
}

// trackSearchResponse is the JSON response from track.search.
type trackSearchResponse struct {
	Results *trackResults `json:"results"`
	Error   int           `json:"error"`
	Message string        `json:"message"`
}

type trackResults struct {
	TotalResults string       `json:"opensearch:totalResults"`
	TrackMatches trackMatches `json:"trackmatches"`
}

type trackMatches struct {
	Track []trackEntry `json:"track"`
}

type trackEntry struct {
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	URL       string `json:"url"`
	Listeners string `json:"listeners"`
}
