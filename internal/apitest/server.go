// Package apitest runs an in-memory stand-in for the cycle-tracking service.
// It issues real HS256 tokens, keeps records per user, records every request
// and lets tests force any route to fail.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	"github.com/saadjs/cycle-cli/internal/model"
)

const secret = "apitest-secret"

type ctxUser struct{}

// Request is one recorded call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

// Failure replaces a route's response. A zero Status with Drop set closes
// the connection without answering.
type Failure struct {
	Status int
	Body   string
	Drop   bool
}

type account struct {
	user     model.User
	password string
}

type Server struct {
	*httptest.Server

	mu                sync.Mutex
	nextID            int64
	accounts          map[string]*account
	revoked           map[string]bool
	periods           map[string][]model.PeriodRecord
	ovulations        map[string][]model.OvulationRecord
	periodForecast    model.Forecast
	ovulationForecast model.Forecast
	stats             model.CycleStatistics
	failures          map[string]Failure
	requests          []Request
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts:   map[string]*account{},
		revoked:    map[string]bool{},
		periods:    map[string][]model.PeriodRecord{},
		ovulations: map[string][]model.OvulationRecord{},
		failures:   map[string]Failure{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := httprouter.New()

	r.POST("/api/register", s.record(s.register))
	r.POST("/api/login", s.record(s.login))

	r.GET("/api/profile", s.record(s.protected(s.profile)))
	r.GET("/periods", s.record(s.protected(s.listPeriods)))
	r.POST("/periods", s.record(s.protected(s.createPeriod)))
	r.GET("/ovulation", s.record(s.protected(s.listOvulations)))
	r.POST("/ovulation", s.record(s.protected(s.createOvulation)))
	r.GET("/predict/period", s.record(s.protected(s.predictPeriod)))
	r.GET("/predict/ovulation", s.record(s.protected(s.predictOvulation)))
	r.GET("/cycle-stats", s.record(s.protected(s.cycleStats)))

	return r
}

// record logs the request and applies any injected failure before h runs.
func (s *Server) record(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		failure, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if failing {
			if failure.Drop {
				if hj, ok := w.(http.Hijacker); ok {
					if conn, _, err := hj.Hijack(); err == nil {
						_ = conn.Close()
						return
					}
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(failure.Status)
			_, _ = io.WriteString(w, failure.Body)
			return
		}
		h(w, r, p)
	}
}

// protected mirrors the service's JWT layer: a missing header is 401, a
// token that does not verify is 422, a revoked one 401.
func (s *Server) protected(h func(w http.ResponseWriter, r *http.Request, username string)) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		a := r.Header.Get("Authorization")
		if !strings.HasPrefix(a, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing Authorization Header"})
			return
		}
		tokenStr := strings.TrimPrefix(a, "Bearer ")
		t, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !t.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
				return
			}
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"msg": "Signature verification failed"})
			return
		}
		s.mu.Lock()
		revoked := s.revoked[tokenStr]
		s.mu.Unlock()
		if revoked {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has been revoked"})
			return
		}
		sub, _ := t.Claims.GetSubject()
		h(w, r, sub)
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	s.mu.Lock()
	if _, exists := s.accounts[in.Username]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	}
	acct := s.addAccountLocked(in.Username, in.Email, in.Password)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, model.AuthResponse{AccessToken: s.IssueToken(in.Username), User: acct.user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[in.Username]
	s.mu.Unlock()
	if !ok || acct.password != in.Password {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	writeJSON(w, http.StatusOK, model.AuthResponse{AccessToken: s.IssueToken(in.Username), User: acct.user})
}

func (s *Server) profile(w http.ResponseWriter, _ *http.Request, username string) {
	s.mu.Lock()
	acct, ok := s.accounts[username]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Server) listPeriods(w http.ResponseWriter, _ *http.Request, username string) {
	s.mu.Lock()
	out := append([]model.PeriodRecord{}, s.periods[username]...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listOvulations(w http.ResponseWriter, _ *http.Request, username string) {
	s.mu.Lock()
	out := append([]model.OvulationRecord{}, s.ovulations[username]...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].OvulationDate.After(out[j].OvulationDate) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createPeriod(w http.ResponseWriter, r *http.Request, username string) {
	var in struct {
		StartDate     string  `json:"start_date"`
		EndDate       *string `json:"end_date"`
		FlowIntensity *string `json:"flow_intensity"`
		Symptoms      *string `json:"symptoms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	start, err := model.ParseDate(in.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date is required")
		return
	}
	rec := model.PeriodRecord{StartDate: start, FlowIntensity: in.FlowIntensity, Symptoms: in.Symptoms}
	if in.EndDate != nil {
		end, err := model.ParseDate(*in.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date")
			return
		}
		rec.EndDate = &end
	}
	s.mu.Lock()
	s.nextID++
	rec.ID = s.nextID
	s.periods[username] = append(s.periods[username], rec)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) createOvulation(w http.ResponseWriter, r *http.Request, username string) {
	var in struct {
		OvulationDate        string   `json:"ovulation_date"`
		BasalBodyTemperature *float64 `json:"basal_body_temperature"`
		CervicalMucus        *string  `json:"cervical_mucus"`
		Symptoms             *string  `json:"symptoms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	date, err := model.ParseDate(in.OvulationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ovulation_date is required")
		return
	}
	rec := model.OvulationRecord{
		OvulationDate:        date,
		BasalBodyTemperature: in.BasalBodyTemperature,
		CervicalMucus:        in.CervicalMucus,
		Symptoms:             in.Symptoms,
	}
	s.mu.Lock()
	s.nextID++
	rec.ID = s.nextID
	s.ovulations[username] = append(s.ovulations[username], rec)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) predictPeriod(w http.ResponseWriter, _ *http.Request, _ string) {
	s.mu.Lock()
	f := s.periodForecast
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) predictOvulation(w http.ResponseWriter, _ *http.Request, _ string) {
	s.mu.Lock()
	f := s.ovulationForecast
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) cycleStats(w http.ResponseWriter, _ *http.Request, _ string) {
	s.mu.Lock()
	st := s.stats
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) addAccountLocked(username, email, password string) *account {
	s.nextID++
	acct := &account{user: model.User{ID: s.nextID, Username: username, Email: email}, password: password}
	s.accounts[username] = acct
	return acct
}

// AddUser creates an account directly.
func (s *Server) AddUser(username, email, password string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccountLocked(username, email, password).user
}

// DeleteUser removes the account; its tokens still verify but the profile
// endpoint answers 404.
func (s *Server) DeleteUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, username)
}

// IssueToken signs a token for username valid for one hour.
func (s *Server) IssueToken(username string) string {
	return s.signToken(username, time.Now().Add(time.Hour))
}

// ExpiredToken signs a token that expired a minute ago.
func (s *Server) ExpiredToken(username string) string {
	return s.signToken(username, time.Now().Add(-time.Minute))
}

func (s *Server) signToken(username string, exp time.Time) string {
	claims := jwt.MapClaims{
		"sub": username,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		panic(fmt.Sprintf("apitest: sign token: %v", err))
	}
	return signed
}

func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = true
}

func (s *Server) SeedPeriods(username string, records ...model.PeriodRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.nextID++
		rec.ID = s.nextID
		s.periods[username] = append(s.periods[username], rec)
	}
}

func (s *Server) SeedOvulations(username string, records ...model.OvulationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.nextID++
		rec.ID = s.nextID
		s.ovulations[username] = append(s.ovulations[username], rec)
	}
}

func (s *Server) SetPeriodForecast(f model.Forecast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.periodForecast = f
}

func (s *Server) SetOvulationForecast(f model.Forecast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ovulationForecast = f
}

func (s *Server) SetStats(st model.CycleStatistics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = st
}

// Fail makes method+path answer status with body until Recover is called.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = Failure{Status: status, Body: body}
}

// Drop makes method+path close the connection without a response.
func (s *Server) Drop(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = Failure{Drop: true}
}

func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestsTo filters Requests by method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) Periods(username string) []model.PeriodRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PeriodRecord(nil), s.periods[username]...)
}

func (s *Server) Ovulations(username string) []model.OvulationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OvulationRecord(nil), s.ovulations[username]...)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
