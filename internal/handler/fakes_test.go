package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/moviehub/movie-api/internal/model"
	"github.com/moviehub/movie-api/internal/repository"
)

// In-memory stand-ins for the repository types. They implement both the
// handler store interfaces and the middleware source interfaces so one
// set of fakes drives the full request path.

type memUsers struct {
	seq  uint64
	byID map[uint64]model.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (m *memUsers) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	for _, u := range m.byID {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Create(_ context.Context, username, email, passwordHash string) (uint64, error) {
	for _, u := range m.byID {
		if u.Email == email || u.Username == username {
			return 0, repository.ErrDuplicateEntry
		}
	}
	m.seq++
	m.byID[m.seq] = model.User{
		ID: m.seq, Username: username, Email: email,
		PasswordHash: passwordHash, Role: model.RoleUser,
	}
	return m.seq, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// add inserts a user directly, bypassing signup. Used to seed admins.
func (m *memUsers) add(u model.User) model.User {
	m.seq++
	u.ID = m.seq
	m.byID[u.ID] = u
	return u
}

type memSessions struct {
	seq     int
	live    map[uint64]bool
	created int
}

func newMemSessions() *memSessions { return &memSessions{live: map[uint64]bool{}} }

func (m *memSessions) Create(_ context.Context, s *model.Session) error {
	m.seq++
	m.created++
	s.ID = fmt.Sprintf("sess-%d", m.seq)
	s.IsValid = true
	m.live[s.UserID] = true
	return nil
}

func (m *memSessions) InvalidateByUserAndIP(_ context.Context, userID uint64, _ string) error {
	m.live[userID] = false
	return nil
}

func (m *memSessions) HasLive(_ context.Context, userID uint64) (bool, error) {
	return m.live[userID], nil
}

type attempt struct {
	ip, email string
	success   bool
}

type memAttempts struct{ records []attempt }

func (m *memAttempts) Record(_ context.Context, ip, email string, success bool) error {
	m.records = append(m.records, attempt{ip, email, success})
	return nil
}

type memMovies struct {
	seq  uint64
	byID map[uint64]model.Movie
}

func newMemMovies() *memMovies { return &memMovies{byID: map[uint64]model.Movie{}} }

func (m *memMovies) Search(_ context.Context, q repository.MovieSearchQuery) ([]model.Movie, int64, error) {
	var all []model.Movie
	for _, mv := range m.byID {
		if q.Genre != "" && mv.Genre != q.Genre {
			continue
		}
		if q.Title != "" && !strings.Contains(mv.Title, q.Title) {
			continue
		}
		if q.Director != "" && !strings.Contains(mv.Director, q.Director) {
			continue
		}
		if q.Year != 0 && mv.Year != q.Year {
			continue
		}
		all = append(all, mv)
	}
	switch q.Sort {
	case "year":
		sort.Slice(all, func(i, j int) bool { return all[i].Year < all[j].Year })
	case "-year":
		sort.Slice(all, func(i, j int) bool { return all[i].Year > all[j].Year })
	default:
		sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	}
	total := int64(len(all))
	offset := (q.Page - 1) * q.Limit
	if offset >= len(all) {
		return []model.Movie{}, total, nil
	}
	end := offset + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *memMovies) GetByID(_ context.Context, id uint64) (model.Movie, error) {
	mv, ok := m.byID[id]
	if !ok {
		return model.Movie{}, repository.ErrNotFound
	}
	return mv, nil
}

func (m *memMovies) Create(_ context.Context, mv *model.Movie) (uint64, error) {
	m.seq++
	mv.ID = m.seq
	m.byID[m.seq] = *mv
	return m.seq, nil
}

func (m *memMovies) Update(_ context.Context, mv *model.Movie) error {
	existing, ok := m.byID[mv.ID]
	if !ok {
		return repository.ErrNotFound
	}
	mv.UserID = existing.UserID
	mv.CreatorUsername = existing.CreatorUsername
	m.byID[mv.ID] = *mv
	return nil
}

func (m *memMovies) Delete(_ context.Context, id uint64) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}
