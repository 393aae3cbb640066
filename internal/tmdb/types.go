package tmdb

import "strings"

// Genre is a catalog genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Video is one entry from the embedded video list of a movie.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// URL returns a watchable locator for the video, or "" for unknown sites.
func (v Video) URL() string {
	key := strings.TrimSpace(v.Key)
	if key == "" {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(v.Site)) {
	case "youtube":
		return "https://www.youtube.com/watch?v=" + key
	case "vimeo":
		return "https://vimeo.com/" + key
	default:
		return ""
	}
}

// MovieDetails is the movie detail payload with videos appended.
type MovieDetails struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      int     `json:"runtime"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int64   `json:"vote_count"`
	IMDBID       string  `json:"imdb_id"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Genres       []Genre `json:"genres"`
	Videos       struct {
		Results []Video `json:"results"`
	} `json:"videos"`
}

// Trailer returns the first video hosted on site whose type is "Trailer".
func (m *MovieDetails) Trailer(site string) (Video, bool) {
	if m == nil {
		return Video{}, false
	}
	for _, video := range m.Videos.Results {
		if strings.EqualFold(video.Site, site) && strings.EqualFold(video.Type, "Trailer") {
			return video, true
		}
	}
	return Video{}, false
}

// GenreNames flattens the genre list.
func (m *MovieDetails) GenreNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// CastMember is a cast credit.
type CastMember struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Character          string  `json:"character"`
	Order              int     `json:"order"`
	Gender             int     `json:"gender"`
	Popularity         float64 `json:"popularity"`
	ProfilePath        string  `json:"profile_path"`
	KnownForDepartment string  `json:"known_for_department"`
}

// CrewMember is a crew credit.
type CrewMember struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Job                string  `json:"job"`
	Department         string  `json:"department"`
	Gender             int     `json:"gender"`
	Popularity         float64 `json:"popularity"`
	ProfilePath        string  `json:"profile_path"`
	KnownForDepartment string  `json:"known_for_department"`
}

// Credits is the movie credits payload.
type Credits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}
