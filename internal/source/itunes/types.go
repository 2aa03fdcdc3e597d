package itunes

// searchResponse is the JSON envelope returned by the iTunes Search API.
type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []searchResult `json:"results"`
}

// searchResult covers both musicArtist and song wrapper types; the fields
// that do not apply to a given wrapper type are simply empty.
type searchResult struct {
	WrapperType      string  `json:"wrapperType"`
	ArtistID         int     `json:"artistId"`
	ArtistName       string  `json:"artistName"`
	ArtistLinkURL    string  `json:"artistLinkUrl"`
	TrackID          int     `json:"trackId"`
	TrackName        string  `json:"trackName"`
	TrackViewURL     string  `json:"trackViewUrl"`
	CollectionName   string  `json:"collectionName"`
	PrimaryGenreName string  `json:"primaryGenreName"`
	ReleaseDate      string  `json:"releaseDate"`
	TrackPrice       float64 `json:"trackPrice"`
}
