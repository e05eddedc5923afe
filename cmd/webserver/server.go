package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"readingquiz"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName     = "quiz-session"
	maxStoredQuiz   = 256
	generateTimeout = 2 * time.Minute
)

// newSessionStore builds the cookie store. Without a configured secret the
// key is random, so sessions end with the process.
func newSessionStore(cfg readingquiz.ServerConfig) *sessions.CookieStore {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(secret)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = cfg.SecureCookies
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

type Server struct {
	cfg       readingquiz.Config
	generator *readingquiz.QuizGenerator
	pool      *readingquiz.QuizPool
	quizzes   *quizStore
	store     sessions.Store
	db        *readingquiz.DB
	templates map[string]*template.Template
	filling   atomic.Bool
}

func NewServer(cfg readingquiz.Config, generator *readingquiz.QuizGenerator, store sessions.Store, db *readingquiz.DB) *Server {
	funcMap := template.FuncMap{
		"add":      func(a, b int) int { return a + b },
		"markdown": markdownHTML,
		"percent":  func(s *readingquiz.Score) string { return fmt.Sprintf("%.0f%%", s.Percent()) },
	}

	templates := make(map[string]*template.Template)
	for _, name := range []string{"home", "quiz"} {
		templates[name] = template.Must(template.New(name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html"))
	}

	return &Server{
		cfg:       cfg,
		generator: generator,
		pool:      readingquiz.NewQuizPool(),
		quizzes:   newQuizStore(maxStoredQuiz),
		store:     store,
		db:        db,
		templates: templates,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Post("/quiz", s.handleGenerate)
	r.Get("/quiz", s.handleQuiz)
	r.Post("/quiz/check", s.handleCheck)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/api/generations", s.handleGenerations)
	r.Get("/api/generations/{id}", s.handleGeneration)

	return r
}

// refill tops up the prefetch pool in the background; at most one fill runs at a time
func (s *Server) refill(ctx context.Context) {
	if s.cfg.Server.PrefetchSize == 0 || !s.filling.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.filling.Store(false)
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()
		if err := s.pool.Fill(ctx, s.generator, s.cfg.Quiz, s.cfg.Server.PrefetchSize); err != nil {
			log.Printf("Failed to prefetch quiz: %v", err)
		}
	}()
}

func (s *Server) render(w http.ResponseWriter, name string, status int, data map[string]interface{}) {
	var buf strings.Builder
	if err := s.templates[name].ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, buf.String())
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionName)
	_, hasQuiz := session.Values["quiz_id"].(string)

	s.render(w, "home", http.StatusOK, map[string]interface{}{
		"Request": s.cfg.Quiz,
		"HasQuiz": hasQuiz,
		"Ready":   !s.pool.IsEmpty(),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	quiz := s.pool.Get()
	if quiz == nil {
		ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
		defer cancel()

		var err error
		quiz, err = s.generator.GenerateQuiz(ctx, s.cfg.Quiz)
		if err != nil {
			log.Printf("Failed to generate quiz: %v", err)
			message := "The quiz could not be generated. Please try again."
			if errors.Is(err, readingquiz.ErrNoQuestions) {
				message = "No questions were found in the generated quiz. Please try again."
			}
			s.render(w, "home", http.StatusBadGateway, map[string]interface{}{
				"Request": s.cfg.Quiz,
				"Error":   message,
			})
			return
		}
	} else {
		readingquiz.VerboseLog("Serving prefetched quiz %s", quiz.ID)
	}
	s.refill(r.Context())

	s.quizzes.Put(quiz)

	session, _ := s.store.Get(r, sessionName)
	session.Values["quiz_id"] = quiz.ID
	delete(session.Values, "answers")
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}

	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

// sessionQuiz loads the quiz referenced by the session, redirecting home when there is none
func (s *Server) sessionQuiz(w http.ResponseWriter, r *http.Request) (*sessions.Session, *readingquiz.Quiz, bool) {
	session, _ := s.store.Get(r, sessionName)
	quizID, _ := session.Values["quiz_id"].(string)
	quiz := s.quizzes.Get(quizID)
	if quiz == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return nil, nil, false
	}
	return session, quiz, true
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	session, quiz, ok := s.sessionQuiz(w, r)
	if !ok {
		return
	}

	data := map[string]interface{}{
		"Request":   quiz.Request,
		"Questions": readingquiz.FormatQuiz(quiz.Parsed),
	}
	if answers, ok := session.Values["answers"].([]string); ok {
		data["Answers"] = answers
		data["Score"] = readingquiz.Grade(quiz.Parsed, answers)
	}
	s.render(w, "quiz", http.StatusOK, data)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	session, quiz, ok := s.sessionQuiz(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	answers := make([]string, len(quiz.Parsed.Questions))
	for i := range answers {
		answers[i] = readingquiz.NormalizeLabel(r.FormValue(fmt.Sprintf("answer_%d", i)))
	}

	session.Values["answers"] = answers
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}

	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleGenerations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.db == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "generation audit is disabled"})
		return
	}

	var (
		generations []readingquiz.DBGeneration
		err         error
	)
	if r.URL.Query().Get("mismatched") == "true" {
		generations, err = s.db.MismatchedGenerations(50)
	} else {
		generations, err = s.db.GetGenerations(50)
	}
	if err != nil {
		log.Printf("Failed to get generations: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to get generations"})
		return
	}
	if generations == nil {
		generations = []readingquiz.DBGeneration{}
	}
	json.NewEncoder(w).Encode(generations)
}

func (s *Server) handleGeneration(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.db == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "generation audit is disabled"})
		return
	}

	generation, err := s.db.GetGeneration(chi.URLParam(r, "id"))
	if errors.Is(err, readingquiz.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "generation not found"})
		return
	}
	if err != nil {
		log.Printf("Failed to get generation: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to get generation"})
		return
	}
	json.NewEncoder(w).Encode(generation)
}

// markdownHTML renders the formatter's output: text is escaped, "**" spans
// become <strong> and "- " lines become list items.
func markdownHTML(formatted string) template.HTML {
	var sb strings.Builder
	inList := false
	for _, line := range strings.Split(formatted, "\n") {
		item, isItem := strings.CutPrefix(line, "- ")
		if isItem && !inList {
			sb.WriteString("<ul>")
			inList = true
		}
		if !isItem && inList {
			sb.WriteString("</ul>")
			inList = false
		}
		if isItem {
			sb.WriteString("<li>" + emphasize(item) + "</li>")
			continue
		}
		sb.WriteString("<p>" + emphasize(line) + "</p>")
	}
	if inList {
		sb.WriteString("</ul>")
	}
	return template.HTML(sb.String())
}

func emphasize(text string) string {
	parts := strings.Split(text, "**")
	var sb strings.Builder
	for i, part := range parts {
		escaped := template.HTMLEscapeString(part)
		switch {
		case i%2 == 1 && i < len(parts)-1:
			sb.WriteString("<strong>" + escaped + "</strong>")
		case i%2 == 1:
			sb.WriteString("**" + escaped)
		default:
			sb.WriteString(escaped)
		}
	}
	return sb.String()
}

// quizStore keeps recently served quizzes so sessions only carry an ID
type quizStore struct {
	mu      sync.RWMutex
	limit   int
	quizzes map[string]*readingquiz.Quiz
	order   []string
}

func newQuizStore(limit int) *quizStore {
	return &quizStore{
		limit:   limit,
		quizzes: make(map[string]*readingquiz.Quiz),
	}
}

func (qs *quizStore) Put(quiz *readingquiz.Quiz) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if _, exists := qs.quizzes[quiz.ID]; !exists {
		qs.order = append(qs.order, quiz.ID)
	}
	qs.quizzes[quiz.ID] = quiz

	for len(qs.order) > qs.limit {
		delete(qs.quizzes, qs.order[0])
		qs.order = qs.order[1:]
	}
}

func (qs *quizStore) Get(id string) *readingquiz.Quiz {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.quizzes[id]
}
