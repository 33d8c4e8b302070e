package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-cafe/jobby/internal/job"
	"github.com/golang-cafe/jobby/internal/user"
)

// memJobStore keeps jobs in insertion order, like the postgres store.
type memJobStore struct {
	mu       sync.Mutex
	jobs     []job.Job
	seq      int
	failWith error
	typeHits int
}

func (s *memJobStore) JobsByQuery(ctx context.Context, p job.Params) ([]job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []job.Job{}
	for _, j := range s.jobs {
		if len(p.EmploymentTypes) > 0 && !job.EmploymentTypeIn(p.EmploymentTypes)(j) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (s *memJobStore) JobByID(ctx context.Context, id string) (job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return job.Job{}, s.failWith
	}
	for _, j := range s.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return job.Job{}, job.ErrNotFound
}

func (s *memJobStore) JobsByEmploymentType(ctx context.Context, employmentType string, limit int) ([]job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typeHits++
	out := []job.Job{}
	for _, j := range s.jobs {
		if len(out) == limit {
			break
		}
		if j.EmploymentType == employmentType {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *memJobStore) SaveJob(ctx context.Context, j *job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.seq++
	now := time.Now().UTC()
	j.ID = fmt.Sprintf("job-%d", s.seq)
	j.CreatedAt = now
	j.UpdatedAt = now
	if j.Skills == nil {
		j.Skills = job.Skills{}
	}
	s.jobs = append(s.jobs, *j)
	return nil
}

func (s *memJobStore) UpdateJob(ctx context.Context, j *job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == j.ID {
			j.UpdatedAt = time.Now().UTC()
			s.jobs[i] = *j
			return nil
		}
	}
	return job.ErrNotFound
}

func (s *memJobStore) DeleteJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			return nil
		}
	}
	return job.ErrNotFound
}

func (s *memJobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

type memUser struct {
	user.User
	password string
}

// memUserStore compares plain text passwords; hashing is covered by the
// postgres store.
type memUserStore struct {
	mu    sync.Mutex
	users []memUser
}

func (s *memUserStore) SaveUser(ctx context.Context, name, email, password string, role user.Role) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = user.NormaliseEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}
	u := user.User{
		ID:              fmt.Sprintf("user-%d", len(s.users)+1),
		Name:            name,
		Email:           email,
		Role:            role,
		ShortBio:        user.DefaultShortBio,
		ProfileImageURL: user.DefaultProfileImageURL,
		CreatedAt:       time.Now().UTC(),
	}
	s.users = append(s.users, memUser{User: u, password: password})
	return u, nil
}

func (s *memUserStore) VerifyCredentials(ctx context.Context, email, password string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.NormaliseEmail(email) && u.password == password {
			return u.User, nil
		}
	}
	return user.User{}, user.ErrInvalidCredentials
}

func (s *memUserStore) UserByID(ctx context.Context, id string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u.User, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
