package main

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"
)

// Account is the demo server's resource.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type accountStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	nextID   int
}

func newAccountStore() *accountStore {
	now := time.Now()
	return &accountStore{
		accounts: map[string]*Account{
			"1": {ID: "1", Name: "Alice", Email: "alice@example.com", CreatedAt: now},
			"2": {ID: "2", Name: "Bob", Email: "bob@example.com", CreatedAt: now},
		},
		nextID: 3,
	}
}

func (s *accountStore) list(offset, limit int) ([]Account, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		x, _ := strconv.Atoi(a)
		y, _ := strconv.Atoi(b)
		return x - y
	})

	out := []Account{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, *s.accounts[ids[i]])
	}
	return out, len(ids)
}

func (s *accountStore) get(id string) (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	cp := *a
	return &cp, true
}

func (s *accountStore) create(name, email string) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &Account{
		ID:        strconv.Itoa(s.nextID),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.accounts[a.ID] = a
	cp := *a
	return &cp
}

func (s *accountStore) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return false
	}
	delete(s.accounts, id)
	return true
}

// newDemoHandler serves the endpoints the sample client calls.
func newDemoHandler(store *accountStore) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /accounts-list", func(w http.ResponseWriter, r *http.Request) {
		var req listAccountsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Message: err.Error()})
			return
		}
		if req.Limit <= 0 {
			req.Limit = 10
		}
		items, total := store.list(req.Offset, req.Limit)
		writeJSON(w, http.StatusOK, listAccountsResponse{
			Data:   items,
			Limit:  req.Limit,
			Offset: req.Offset,
			Total:  total,
		})
	})

	mux.HandleFunc("GET /accounts/{id}", func(w http.ResponseWriter, r *http.Request) {
		a, ok := store.get(r.PathValue("id"))
		if !ok {
			writeJSON(w, http.StatusNotFound, apiError{Message: "not found"})
			return
		}
		writeJSON(w, http.StatusOK, a)
	})

	mux.HandleFunc("POST /accounts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, apiError{Message: "missing token"})
			return
		}
		var req createAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusCreated, store.create(req.Name, req.Email))
	})

	mux.HandleFunc("DELETE /accounts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !store.delete(r.PathValue("id")) {
			writeJSON(w, http.StatusNotFound, apiError{Message: "not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
