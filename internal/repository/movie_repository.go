package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/moviehub/movie-api/internal/model"
)

// MovieSearchQuery defines filters, sort and pagination for listing movies.
// Title and Director are substring matches, Year and Genre exact. Sort is
// one of the allow-listed column names, optionally prefixed with '-' for
// descending order.
type MovieSearchQuery struct {
	Title    string
	Director string
	Year     int
	Genre    string
	Sort     string
	Page     int
	Limit    int
}

// sortColumns is the allow-list of sortable fields. The sort column is
// interpolated into the ORDER BY clause, so anything outside this map is
// refused before it reaches SQL.
var sortColumns = map[string]string{
	"title":      "m.title",
	"director":   "m.director",
	"year":       "m.year",
	"rating":     "m.rating",
	"created_at": "m.created_at",
}

// ValidSortField reports whether the given sort expression (with optional
// leading '-') names an allow-listed column.
func ValidSortField(sort string) bool {
	_, ok := sortColumns[strings.TrimPrefix(sort, "-")]
	return sort == "" || ok
}

// MovieRepo persists movie records and resolves their owning user.
type MovieRepo struct{ DB *sql.DB }

func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{DB: db} }

const movieColumns = `m.id, m.title, m.director, m.year, m.genre, m.plot, m.poster_url,
		m.rating, m.user_id, u.username AS creator_username, m.created_at, m.updated_at`

// buildSearch turns a MovieSearchQuery into a WHERE condition with
// parameterized args and a validated ORDER BY clause. Kept separate from
// Search so the SQL assembly can be tested without a database.
func buildSearch(q MovieSearchQuery) (cond string, args []any, order string) {
	where := []string{}
	if q.Title != "" {
		where = append(where, "m.title LIKE ?")
		args = append(args, "%"+q.Title+"%")
	}
	if q.Director != "" {
		where = append(where, "m.director LIKE ?")
		args = append(args, "%"+q.Director+"%")
	}
	if q.Year != 0 {
		where = append(where, "m.year = ?")
		args = append(args, q.Year)
	}
	if q.Genre != "" {
		where = append(where, "m.genre = ?")
		args = append(args, q.Genre)
	}
	cond = "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	order = "m.created_at DESC"
	if q.Sort != "" {
		dir := "ASC"
		field := q.Sort
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		if col, ok := sortColumns[field]; ok {
			order = col + " " + dir
		}
	}
	return cond, args, order
}

// Search returns one page of movies matching the query plus the total
// match count across all pages.
func (r *MovieRepo) Search(ctx context.Context, q MovieSearchQuery) ([]model.Movie, int64, error) {
	cond, args, order := buildSearch(q)

	var total int64
	countSQL := "SELECT COUNT(*) FROM movies m WHERE " + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	offset := (q.Page - 1) * q.Limit

	dataSQL := `SELECT ` + movieColumns + `
		FROM movies m
		JOIN users u ON u.id = m.user_id
		WHERE ` + cond + `
		ORDER BY ` + order + `
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0, limit)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID fetches a single movie joined with its creator's username.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (model.Movie, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+movieColumns+`
		FROM movies m
		JOIN users u ON u.id = m.user_id
		WHERE m.id = ?`, id)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Movie{}, ErrNotFound
	}
	return m, err
}

// Create inserts a movie owned by m.UserID and returns the new ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO movies (title, director, year, genre, plot, poster_url, rating, user_id)
		 VALUES (?,?,?,?,?,?,?,?)`,
		m.Title, m.Director, m.Year, m.Genre, nullable(m.Plot), nullable(m.PosterURL), m.Rating, m.UserID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update rewrites every mutable column and touches updated_at. Ownership
// is checked by the handler before this is called.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE movies
		 SET title=?, director=?, year=?, genre=?, plot=?, poster_url=?, rating=?, updated_at=NOW()
		 WHERE id=?`,
		m.Title, m.Director, m.Year, m.Genre, nullable(m.Plot), nullable(m.PosterURL), m.Rating, m.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero affected rows may also mean an identical rewrite; re-check
		// existence so a concurrent delete still surfaces as 404.
		if _, err := r.GetByID(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the movie row. Hard delete, no tombstone.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM movies WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanMovie(row rowScanner) (model.Movie, error) {
	var (
		m      model.Movie
		plot   sql.NullString
		poster sql.NullString
	)
	err := row.Scan(&m.ID, &m.Title, &m.Director, &m.Year, &m.Genre, &plot, &poster,
		&m.Rating, &m.UserID, &m.CreatorUsername, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return model.Movie{}, err
	}
	if plot.Valid {
		m.Plot = &plot.String
	}
	if poster.Valid {
		m.PosterURL = &poster.String
	}
	return m, nil
}

func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
