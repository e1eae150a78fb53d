package mock

import (
	"strconv"
	"sync"

	"munidenuncia/internal/models"
)

type account struct {
	user     models.User
	password string
}

// Store is the in-memory backing state of the mock adapter. Build one per
// process (or per test) and hand it to New.
type Store struct {
	mu         sync.Mutex
	accounts   map[string]account // by email
	reports    []*models.Report   // insertion order
	blobs      map[string]models.Photo
	reportSeq  int
	messageSeq int
}

func NewStore() *Store {
	s := &Store{
		accounts: map[string]account{},
		blobs:    map[string]models.Photo{},
	}
	s.AddAccount(models.User{
		ID:    "1",
		Email: "usuario@ejemplo.cl",
		Name:  "María González Morales",
		Role:  models.RoleCitizen,
	}, "password123")
	s.AddAccount(models.User{
		ID:    "agent-1",
		Email: "agente@municipalidad.cl",
		Name:  "Carlos Mendoza",
		Role:  models.RoleAgent,
	}, "password123")
	return s
}

// AddAccount registers a user that can log in with password.
func (s *Store) AddAccount(u models.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[u.Email] = account{user: u, password: password}
}

// caller holds mu
func (s *Store) nextReportID() string {
	s.reportSeq++
	return strconv.Itoa(s.reportSeq)
}

// caller holds mu
func (s *Store) nextMessageID() string {
	s.messageSeq++
	return strconv.Itoa(s.messageSeq)
}

// caller holds mu
func (s *Store) find(id string) *models.Report {
	for _, r := range s.reports {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func cloneReport(r *models.Report) *models.Report {
	c := *r
	c.Messages = append([]models.Message(nil), r.Messages...)
	return &c
}
