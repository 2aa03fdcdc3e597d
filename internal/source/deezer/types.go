package deezer

// searchArtistResponse is the JSON response from the Deezer artist search endpoint.
type searchArtistResponse struct {
	Data  []artistResult `json:"data"`
	Total int            `json:"total"`
	Next  string         `json:"next,omitempty"`
}

// artistResult is a single artist entry from a Deezer search.
type artistResult struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Link    string `json:"link"`
	NbAlbum int    `json:"nb_album"`
	NbFan   int    `json:"nb_fan"`
	Type    string `json:"type"`
}

// searchTrackResponse is the JSON response from the Deezer track search endpoint.
type searchTrackResponse struct {
	Data  []trackResult `json:"data"`
	Total int           `json:"total"`
	Next  string        `json:"next,omitempty"`
}

// trackResult is a single track entry from a Deezer search.
type trackResult struct {
	ID     int          `json:"id"`
	Title  string       `json:"title"`
	Link   string       `json:"link"`
	Rank   int          `json:"rank"`
	Artist artistResult `json:"artist"`
	Album  albumResult  `json:"album"`
}

// albumResult is the album block nested in a track result.
type albumResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}
