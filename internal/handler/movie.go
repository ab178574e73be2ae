package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-api/internal/errs"
	"github.com/moviehub/movie-api/internal/middleware"
	"github.com/moviehub/movie-api/internal/model"
	"github.com/moviehub/movie-api/internal/queue"
	"github.com/moviehub/movie-api/internal/repository"
	"github.com/moviehub/movie-api/internal/utils"
)

// MovieStore is the slice of the movie repository the handler needs.
type MovieStore interface {
	Search(ctx context.Context, q repository.MovieSearchQuery) ([]model.Movie, int64, error)
	GetByID(ctx context.Context, id uint64) (model.Movie, error)
	Create(ctx context.Context, m *model.Movie) (uint64, error)
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64) error
}

// PublishFunc sends a movie change event to the broker. Nil disables
// publishing; errors are discarded because events are best-effort.
type PublishFunc func(ctx context.Context, ev queue.MovieEvent) error

// MovieHandler bundles dependencies for the movie CRUD endpoints.
type MovieHandler struct {
	Movies  MovieStore
	Publish PublishFunc
}

func NewMovieHandler(m MovieStore, publish PublishFunc) *MovieHandler {
	return &MovieHandler{Movies: m, Publish: publish}
}

// movieInput is the request body for create and update. Free-text fields
// are sanitized before validation.
type movieInput struct {
	Title     string  `json:"title"`
	Director  string  `json:"director"`
	Year      int     `json:"year"`
	Genre     string  `json:"genre"`
	Plot      string  `json:"plot"`
	PosterURL string  `json:"poster_url"`
	Rating    float64 `json:"rating"`
}

func (in *movieInput) sanitize() {
	in.Title = utils.StripHTML(in.Title)
	in.Director = utils.StripHTML(in.Director)
	in.Genre = utils.StripHTML(in.Genre)
	in.Plot = utils.StripHTML(in.Plot)
	in.PosterURL = utils.StripHTML(in.PosterURL)
}

// List handles GET /api/movies with optional filters, sort and pagination.
func (h *MovieHandler) List(c echo.Context) error {
	q := repository.MovieSearchQuery{
		Title:    utils.StripHTML(c.QueryParam("title")),
		Director: utils.StripHTML(c.QueryParam("director")),
		Genre:    utils.StripHTML(c.QueryParam("genre")),
		Sort:     c.QueryParam("sort"),
		Page:     1,
		Limit:    10,
	}

	var verrs []fieldError
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			verrs = append(verrs, fieldError{"page", "page must be a positive integer"})
		} else {
			q.Page = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			verrs = append(verrs, fieldError{"limit", "limit must be between 1 and 100"})
		} else {
			q.Limit = n
		}
	}
	if v := c.QueryParam("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minMovieYear || n > time.Now().Year()+5 {
			verrs = append(verrs, fieldError{"year", "invalid year filter"})
		} else {
			q.Year = n
		}
	}
	if q.Genre != "" && !model.ValidGenre(q.Genre) {
		verrs = append(verrs, fieldError{"genre", "invalid genre"})
	}
	if !repository.ValidSortField(q.Sort) {
		verrs = append(verrs, fieldError{"sort", "invalid sort field"})
	}
	if len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "errors": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, total, err := h.Movies.Search(ctx, q)
	if err != nil {
		return errs.New(http.StatusInternalServerError, "could not list movies")
	}

	totalPages := total / int64(q.Limit)
	if total%int64(q.Limit) != 0 {
		totalPages++
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"results": len(movies),
		"pagination": echo.Map{
			"page":         q.Page,
			"limit":        q.Limit,
			"totalResults": total,
			"totalPages":   totalPages,
		},
		"data": echo.Map{"movies": movies},
	})
}

// Get handles GET /api/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return errs.New(http.StatusBadRequest, "invalid movie ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(http.StatusNotFound, "no movie found with the provided ID")
		}
		return errs.New(http.StatusInternalServerError, "could not load movie")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"movie": m}})
}

// Create handles POST /api/movies. The new record is owned by the
// authenticated user and returned joined with the creator's username.
func (h *MovieHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return errs.New(http.StatusUnauthorized, "unauthorized")
	}

	var in movieInput
	if err := c.Bind(&in); err != nil {
		return errs.New(http.StatusBadRequest, "invalid request body")
	}
	in.sanitize()
	if verrs := validateMovie(in); len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "errors": verrs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m := in.toModel()
	m.UserID = u.ID
	id, err := h.Movies.Create(ctx, &m)
	if err != nil {
		return errs.New(http.StatusInternalServerError, "could not create movie")
	}

	created, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return errs.New(http.StatusInternalServerError, "could not load movie")
	}

	h.publishEvent(queue.ActionCreated, created, u)
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": echo.Map{"movie": created}})
}

// Update handles PUT /api/movies/:id. Only the owner or an admin may
// update a record; the full set of mutable fields is rewritten.
func (h *MovieHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return errs.New(http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return errs.New(http.StatusBadRequest, "invalid movie ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(http.StatusNotFound, "no movie found with the provided ID")
		}
		return errs.New(http.StatusInternalServerError, "could not load movie")
	}
	if !canMutate(u, existing) {
		return errs.New(http.StatusForbidden, "you do not have permission to update this movie")
	}

	var in movieInput
	if err := c.Bind(&in); err != nil {
		return errs.New(http.StatusBadRequest, "invalid request body")
	}
	in.sanitize()
	if verrs := validateMovie(in); len(verrs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "errors": verrs})
	}

	m := in.toModel()
	m.ID = id
	if err := h.Movies.Update(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(http.StatusNotFound, "no movie found with the provided ID")
		}
		return errs.New(http.StatusInternalServerError, "could not update movie")
	}

	updated, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return errs.New(http.StatusInternalServerError, "could not load movie")
	}

	h.publishEvent(queue.ActionUpdated, updated, u)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": echo.Map{"movie": updated}})
}

// Delete handles DELETE /api/movies/:id. Owner or admin only; hard delete.
func (h *MovieHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return errs.New(http.StatusUnauthorized, "unauthorized")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return errs.New(http.StatusBadRequest, "invalid movie ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	existing, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(http.StatusNotFound, "no movie found with the provided ID")
		}
		return errs.New(http.StatusInternalServerError, "could not load movie")
	}
	if !canMutate(u, existing) {
		return errs.New(http.StatusForbidden, "you do not have permission to delete this movie")
	}

	if err := h.Movies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errs.New(http.StatusNotFound, "no movie found with the provided ID")
		}
		return errs.New(http.StatusInternalServerError, "could not delete movie")
	}

	h.publishEvent(queue.ActionDeleted, existing, u)
	return c.NoContent(http.StatusNoContent)
}

// canMutate implements the ownership check: only the creator or an admin
// may update or delete a movie.
func canMutate(u model.User, m model.Movie) bool {
	return m.UserID == u.ID || u.Role == model.RoleAdmin
}

func (in movieInput) toModel() model.Movie {
	m := model.Movie{
		Title:    in.Title,
		Director: in.Director,
		Year:     in.Year,
		Genre:    in.Genre,
		Rating:   in.Rating,
	}
	if in.Plot != "" {
		plot := in.Plot
		m.Plot = &plot
	}
	if in.PosterURL != "" {
		poster := in.PosterURL
		m.PosterURL = &poster
	}
	return m
}

// publishEvent fires a best-effort movie event. The request never fails
// because the broker is down; errors are already logged by the publisher.
func (h *MovieHandler) publishEvent(action string, m model.Movie, u model.User) {
	if h.Publish == nil {
		return
	}
	ev := queue.MovieEvent{
		Action:     action,
		MovieID:    m.ID,
		Title:      m.Title,
		Genre:      m.Genre,
		Rating:     m.Rating,
		UserID:     u.ID,
		Username:   u.Username,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := h.Publish(ctx, ev); err != nil {
		log.Printf("movie event publish failed: %v", err)
	}
}
