package handler

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"time"
	"unicode"

	"github.com/moviehub/movie-api/internal/model"
)

// fieldError is one entry of the 400 validation response body.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

const minMovieYear = 1888 // year of the first known motion picture

// validateSignup checks the signup payload after sanitization. Password
// policy: at least 8 characters with an upper, a lower, a digit and a
// symbol.
func validateSignup(username, email, password string) []fieldError {
	var errs []fieldError
	switch {
	case username == "":
		errs = append(errs, fieldError{"username", "username is required"})
	case len(username) < 3 || len(username) > 50:
		errs = append(errs, fieldError{"username", "username must be between 3 and 50 characters"})
	case !usernameRe.MatchString(username):
		errs = append(errs, fieldError{"username", "username may only contain letters, numbers and underscores"})
	}

	if email == "" {
		errs = append(errs, fieldError{"email", "email is required"})
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, fieldError{"email", "invalid email"})
	}

	if password == "" {
		errs = append(errs, fieldError{"password", "password is required"})
	} else if !strongPassword(password) {
		errs = append(errs, fieldError{"password",
			"password must be at least 8 characters and include an uppercase letter, a lowercase letter, a number and a symbol"})
	}
	return errs
}

func strongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// validateMovie checks a sanitized movie payload against the documented
// constraints: required title/director within 100 chars, year in
// [1888, current+5], genre in the closed set, plot up to 1000 chars,
// poster an http(s) URL up to 255 chars, rating in [0,10].
func validateMovie(in movieInput) []fieldError {
	var errs []fieldError
	switch {
	case in.Title == "":
		errs = append(errs, fieldError{"title", "title is required"})
	case len(in.Title) > 100:
		errs = append(errs, fieldError{"title", "title cannot exceed 100 characters"})
	}
	switch {
	case in.Director == "":
		errs = append(errs, fieldError{"director", "director is required"})
	case len(in.Director) > 100:
		errs = append(errs, fieldError{"director", "director cannot exceed 100 characters"})
	}

	maxYear := time.Now().Year() + 5
	if in.Year < minMovieYear || in.Year > maxYear {
		errs = append(errs, fieldError{"year",
			fmt.Sprintf("year must be between %d and %d", minMovieYear, maxYear)})
	}

	if in.Genre == "" {
		errs = append(errs, fieldError{"genre", "genre is required"})
	} else if !model.ValidGenre(in.Genre) {
		errs = append(errs, fieldError{"genre", "invalid genre"})
	}

	if len(in.Plot) > 1000 {
		errs = append(errs, fieldError{"plot", "plot cannot exceed 1000 characters"})
	}

	if in.PosterURL != "" {
		if len(in.PosterURL) > 255 {
			errs = append(errs, fieldError{"poster_url", "poster URL cannot exceed 255 characters"})
		} else if !validHTTPURL(in.PosterURL) {
			errs = append(errs, fieldError{"poster_url", "invalid poster URL"})
		}
	}

	if in.Rating < 0 || in.Rating > 10 {
		errs = append(errs, fieldError{"rating", "rating must be between 0 and 10"})
	}
	return errs
}

func validHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
