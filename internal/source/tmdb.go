// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/staranto/marquee/internal/cache"
	"github.com/staranto/marquee/internal/store"
)

// DefaultTMDBURL is the TMDB v3 API root.
const DefaultTMDBURL = "https://api.themoviedb.org/3"

// ErrNoAPIKey is returned when a source needs a key nobody configured.
var ErrNoAPIKey = errors.New("no API key configured")

// Movie lists, as returned by /movie/popular and friends.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path,omitempty"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count,omitempty"`
	Popularity       float64 `json:"popularity,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
}

type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Cast struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
}

type Crew struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	ProfilePath string `json:"profile_path,omitempty"`
}

type Credits struct {
	Cast []Cast `json:"cast"`
	Crew []Crew `json:"crew"`
}

type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type Videos struct {
	Results []Video `json:"results"`
}

// MovieDetails is /movie/{id} with credits and videos appended.
type MovieDetails struct {
	Movie
	IMDbID   string  `json:"imdb_id,omitempty"`
	Tagline  string  `json:"tagline,omitempty"`
	Status   string  `json:"status,omitempty"`
	Runtime  int     `json:"runtime,omitempty"`
	Budget   int64   `json:"budget"`
	Revenue  int64   `json:"revenue"`
	Homepage string  `json:"homepage,omitempty"`
	Genres   []Genre `json:"genres"`
	Credits  Credits `json:"credits"`
	Videos   Videos  `json:"videos"`
}

// Financials is the money side of a movie. TMDB reports in USD.
type Financials struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Budget      int64  `json:"budget"`
	Revenue     int64  `json:"revenue"`
	Currency    string `json:"currency"`
	ReleaseDate string `json:"releaseDate"`
}

// SearchResult is a movie or a TV show normalized to a single shape.
type SearchResult struct {
	Type        string  `json:"type"`
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview"`
}

type multiItem struct {
	MediaType    string  `json:"media_type"`
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
}

// Credit is one movie or TV role of a person.
type Credit struct {
	MediaType   string  `json:"media_type"`
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Character   string  `json:"character"`
	Date        string  `json:"date"`
	VoteAverage float64 `json:"vote_average"`
	PosterPath  string  `json:"poster_path,omitempty"`
}

// Person is /person/{id} with the movie and TV credits flattened.
type Person struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name"`
	Biography          string   `json:"biography"`
	ProfilePath        string   `json:"profile_path,omitempty"`
	Birthday           string   `json:"birthday,omitempty"`
	Deathday           string   `json:"deathday,omitempty"`
	PlaceOfBirth       string   `json:"place_of_birth,omitempty"`
	KnownForDepartment string   `json:"known_for_department"`
	Filmography        []Credit `json:"filmography"`
	TVCredits          []Credit `json:"tv_credits"`
}

type rawCredit struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Character    string  `json:"character"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	PosterPath   string  `json:"poster_path"`
}

type rawPerson struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Biography          string `json:"biography"`
	ProfilePath        string `json:"profile_path"`
	Birthday           string `json:"birthday"`
	Deathday           string `json:"deathday"`
	PlaceOfBirth       string `json:"place_of_birth"`
	KnownForDepartment string `json:"known_for_department"`
	MovieCredits       struct {
		Cast []rawCredit `json:"cast"`
	} `json:"movie_credits"`
	TVCredits struct {
		Cast []rawCredit `json:"cast"`
	} `json:"tv_credits"`
}

type TVShow struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	OriginalName     string   `json:"original_name,omitempty"`
	Overview         string   `json:"overview"`
	PosterPath       string   `json:"poster_path,omitempty"`
	FirstAirDate     string   `json:"first_air_date"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int      `json:"vote_count,omitempty"`
	Popularity       float64  `json:"popularity,omitempty"`
	OriginalLanguage string   `json:"original_language,omitempty"`
	OriginCountry    []string `json:"origin_country,omitempty"`
}

type TVPage struct {
	Page         int      `json:"page"`
	Results      []TVShow `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

type Network struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Episode struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	EpisodeNumber int     `json:"episode_number"`
	SeasonNumber  int     `json:"season_number"`
	Runtime       int     `json:"runtime,omitempty"`
	VoteAverage   float64 `json:"vote_average"`
}

type Season struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	AirDate      string    `json:"air_date"`
	SeasonNumber int       `json:"season_number"`
	EpisodeCount int       `json:"episode_count,omitempty"`
	Episodes     []Episode `json:"episodes,omitempty"`
}

// TVDetails is /tv/{id} with credits, videos and similar shows appended.
type TVDetails struct {
	TVShow
	Tagline          string    `json:"tagline,omitempty"`
	Status           string    `json:"status,omitempty"`
	NumberOfSeasons  int       `json:"number_of_seasons"`
	NumberOfEpisodes int       `json:"number_of_episodes"`
	LastAirDate      string    `json:"last_air_date,omitempty"`
	Genres           []Genre   `json:"genres"`
	Networks         []Network `json:"networks"`
	Seasons          []Season  `json:"seasons"`
	Credits          Credits   `json:"credits"`
	Videos           Videos    `json:"videos"`
	Similar          TVPage    `json:"similar"`
}

// MovieList names one of the TMDB movie lists.
type MovieList string

const (
	Popular    MovieList = "popular"
	Upcoming   MovieList = "upcoming"
	TopRated   MovieList = "top_rated"
	NowPlaying MovieList = "now_playing"
)

// MovieLists lists every supported movie list.
var MovieLists = []MovieList{Popular, Upcoming, TopRated, NowPlaying}

// ParseMovieList accepts "top-rated" as well as "top_rated".
func ParseMovieList(s string) (MovieList, error) {
	s = strings.ReplaceAll(strings.ToLower(s), "-", "_")
	for _, l := range MovieLists {
		if s == string(l) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown movie list %q", s)
}

type pageParams struct {
	Language string `url:"language,omitempty"`
	Page     int    `url:"page,omitempty"`
}

type searchParams struct {
	Query    string `url:"query"`
	Language string `url:"language,omitempty"`
	Page     int    `url:"page,omitempty"`
}

type appendParams struct {
	Language string `url:"language,omitempty"`
	Append   string `url:"append_to_response,omitempty"`
}

type tmdbAuth struct {
	APIKey string `url:"api_key"`
}

// TMDBOptions configures NewTMDB.
type TMDBOptions struct {
	BaseURL  string
	APIKey   string
	Language string
}

// TMDB is a cached client for the subset of the TMDB API marquee reads.
type TMDB struct {
	getter   *Getter
	base     string
	apiKey   string
	language string

	movies     *cache.Cache[MoviePage]
	search     *cache.Cache[[]SearchResult]
	details    *cache.Cache[MovieDetails]
	financials *cache.Cache[Financials]
	people     *cache.Cache[Person]
	shows      *cache.Cache[TVPage]
	show       *cache.Cache[TVDetails]
	seasons    *cache.Cache[Season]
	episodes   *cache.Cache[Episode]
}

// NewTMDB returns a TMDB client whose responses are cached in s for ttl.
func NewTMDB(g *Getter, o TMDBOptions, s store.Store, ttl time.Duration, opts ...cache.Option) *TMDB {
	if o.BaseURL == "" {
		o.BaseURL = DefaultTMDBURL
	}
	if o.Language == "" {
		o.Language = "en-US"
	}
	return &TMDB{
		getter:     g,
		base:       strings.TrimRight(o.BaseURL, "/"),
		apiKey:     o.APIKey,
		language:   o.Language,
		movies:     cache.New[MoviePage](s, ttl, opts...),
		search:     cache.New[[]SearchResult](s, ttl, opts...),
		details:    cache.New[MovieDetails](s, ttl, opts...),
		financials: cache.New[Financials](s, ttl, opts...),
		people:     cache.New[Person](s, ttl, opts...),
		shows:      cache.New[TVPage](s, ttl, opts...),
		show:       cache.New[TVDetails](s, ttl, opts...),
		seasons:    cache.New[Season](s, ttl, opts...),
		episodes:   cache.New[Episode](s, ttl, opts...),
	}
}

// tmdbGet builds the fetch for path. The key check happens inside the fetch so
// a missing key still lets an expired entry be served.
func tmdbGet[T any](t *TMDB, path string, params any) cache.FetchFunc[T] {
	return func(ctx context.Context) (T, error) {
		var v T
		if t.apiKey == "" {
			return v, fmt.Errorf("tmdb: %w", ErrNoAPIKey)
		}
		if err := t.getter.GetJSON(ctx, t.base+"/"+path, nil, &v, params, tmdbAuth{APIKey: t.apiKey}); err != nil {
			return v, fmt.Errorf("tmdb %s: %w", path, err)
		}
		return v, nil
	}
}

func tmdbFetch[T any](ctx context.Context, t *TMDB, c *cache.Cache[T], path string, params any) (cache.Result[T], error) {
	return c.Fetch(ctx, Key("tmdb", path, params), tmdbGet[T](t, path, params))
}

// Movies returns a page of one of the movie lists.
func (t *TMDB) Movies(ctx context.Context, list MovieList, page int) (cache.Result[MoviePage], error) {
	return tmdbFetch(ctx, t, t.movies, "movie/"+string(list), pageParams{Language: t.language, Page: page})
}

// SearchMovies searches movie titles.
func (t *TMDB) SearchMovies(ctx context.Context, q string, page int) (cache.Result[MoviePage], error) {
	return tmdbFetch(ctx, t, t.movies, "search/movie", searchParams{Query: q, Language: t.language, Page: page})
}

// SearchMulti searches movies and TV together. People are dropped.
func (t *TMDB) SearchMulti(ctx context.Context, q string) (cache.Result[[]SearchResult], error) {
	params := searchParams{Query: q}
	raw := tmdbGet[struct {
		Results []multiItem `json:"results"`
	}](t, "search/multi", params)

	return t.search.Fetch(ctx, Key("tmdb", "search/multi", params), func(ctx context.Context) ([]SearchResult, error) {
		page, err := raw(ctx)
		if err != nil {
			return nil, err
		}
		return normalizeMulti(page.Results), nil
	})
}

func normalizeMulti(items []multiItem) []SearchResult {
	out := make([]SearchResult, 0, len(items))
	for _, it := range items {
		r := SearchResult{
			Type:        it.MediaType,
			ID:          it.ID,
			PosterPath:  it.PosterPath,
			VoteAverage: it.VoteAverage,
			Overview:    it.Overview,
		}
		switch it.MediaType {
		case "movie":
			r.Title, r.ReleaseDate = it.Title, it.ReleaseDate
		case "tv":
			r.Title, r.ReleaseDate = it.Name, it.FirstAirDate
		default:
			continue
		}
		out = append(out, r)
	}
	return out
}

// Movie returns a movie with its credits and videos.
func (t *TMDB) Movie(ctx context.Context, id int) (cache.Result[MovieDetails], error) {
	return tmdbFetch(ctx, t, t.details, fmt.Sprintf("movie/%d", id),
		appendParams{Language: t.language, Append: "credits,videos"})
}

// Similar returns movies similar to id.
func (t *TMDB) Similar(ctx context.Context, id, page int) (cache.Result[MoviePage], error) {
	return tmdbFetch(ctx, t, t.movies, fmt.Sprintf("movie/%d/similar", id), pageParams{Language: t.language, Page: page})
}

// Financials returns budget and revenue for id.
func (t *TMDB) Financials(ctx context.Context, id int) (cache.Result[Financials], error) {
	path := fmt.Sprintf("movie/%d", id)
	params := appendParams{Append: "release_dates"}
	raw := tmdbGet[MovieDetails](t, path, params)

	return t.financials.Fetch(ctx, Key("tmdb:financials", path, params), func(ctx context.Context) (Financials, error) {
		d, err := raw(ctx)
		if err != nil {
			return Financials{}, err
		}
		return Financials{
			ID:          d.ID,
			Title:       d.Title,
			Budget:      d.Budget,
			Revenue:     d.Revenue,
			Currency:    "USD",
			ReleaseDate: d.ReleaseDate,
		}, nil
	})
}

// Person returns a person with their movie and TV credits.
func (t *TMDB) Person(ctx context.Context, id int) (cache.Result[Person], error) {
	path := fmt.Sprintf("person/%d", id)
	params := appendParams{Append: "movie_credits,tv_credits,images"}
	raw := tmdbGet[rawPerson](t, path, params)

	return t.people.Fetch(ctx, Key("tmdb", path, params), func(ctx context.Context) (Person, error) {
		p, err := raw(ctx)
		if err != nil {
			return Person{}, err
		}
		return normalizePerson(p), nil
	})
}

func normalizePerson(p rawPerson) Person {
	out := Person{
		ID:                 p.ID,
		Name:               p.Name,
		Biography:          p.Biography,
		ProfilePath:        p.ProfilePath,
		Birthday:           p.Birthday,
		Deathday:           p.Deathday,
		PlaceOfBirth:       p.PlaceOfBirth,
		KnownForDepartment: p.KnownForDepartment,
		Filmography:        make([]Credit, 0, len(p.MovieCredits.Cast)),
		TVCredits:          make([]Credit, 0, len(p.TVCredits.Cast)),
	}
	if out.Biography == "" {
		out.Biography = "No biography available"
	}
	if out.KnownForDepartment == "" {
		out.KnownForDepartment = "Acting"
	}
	for _, c := range p.MovieCredits.Cast {
		out.Filmography = append(out.Filmography, Credit{
			MediaType: "movie", ID: c.ID, Title: c.Title, Character: c.Character,
			Date: c.ReleaseDate, VoteAverage: c.VoteAverage, PosterPath: c.PosterPath,
		})
	}
	for _, c := range p.TVCredits.Cast {
		out.TVCredits = append(out.TVCredits, Credit{
			MediaType: "tv", ID: c.ID, Title: c.Name, Character: c.Character,
			Date: c.FirstAirDate, VoteAverage: c.VoteAverage, PosterPath: c.PosterPath,
		})
	}
	return out
}

// PopularTV returns a page of popular shows.
func (t *TMDB) PopularTV(ctx context.Context, page int) (cache.Result[TVPage], error) {
	return tmdbFetch(ctx, t, t.shows, "tv/popular", pageParams{Page: page})
}

// TV returns a show with credits, videos and similar shows.
func (t *TMDB) TV(ctx context.Context, id int) (cache.Result[TVDetails], error) {
	return tmdbFetch(ctx, t, t.show, fmt.Sprintf("tv/%d", id), appendParams{Append: "credits,videos,similar"})
}

// Season returns one season of a show, episodes included.
func (t *TMDB) Season(ctx context.Context, id, season int) (cache.Result[Season], error) {
	return tmdbFetch(ctx, t, t.seasons, fmt.Sprintf("tv/%d/season/%d", id, season), nil)
}

// Episode returns a single episode.
func (t *TMDB) Episode(ctx context.Context, id, season, episode int) (cache.Result[Episode], error) {
	return tmdbFetch(ctx, t, t.episodes, fmt.Sprintf("tv/%d/season/%d/episode/%d", id, season, episode), nil)
}
