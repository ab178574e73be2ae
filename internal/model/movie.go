package model

import "time"

// Genres is the closed set of accepted movie genres. The list is fixed;
// anything outside it is rejected at validation time.
var Genres = []string{
	"Action", "Adventure", "Comedy", "Drama", "Fantasy",
	"Horror", "Mystery", "Romance", "Science Fiction",
	"Thriller", "Animation", "Documentary", "Other",
}

// ValidGenre reports whether g is one of the accepted genres.
func ValidGenre(g string) bool {
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

// Movie mirrors the `movies` table joined with the creator's username.
// Plot and PosterURL are optional and stored as NULL when absent, hence
// the pointer types.
type Movie struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Director        string    `json:"director"`
	Year            int       `json:"year"`
	Genre           string    `json:"genre"`
	Plot            *string   `json:"plot"`
	PosterURL       *string   `json:"poster_url"`
	Rating          float64   `json:"rating"`
	UserID          uint64    `json:"user_id"`
	CreatorUsername string    `json:"creator_username"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
