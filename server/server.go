package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/jrsteele09/admissions-portal/forms"
	"github.com/jrsteele09/admissions-portal/internal/config"
	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/server/browsersession"
	"github.com/rs/zerolog/log"
)

type Server struct {
	ctx       context.Context // lifetime of background pollers
	env       string          // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	handler   http.Handler
	routes    []string
	config    config.Config
	browsers  browsersession.Repo
	messages  *portalapi.Messages
	validator *forms.Validator
	outbound  *http.Client

	layout       *template.Template
	publicLayout *template.Template
	errorPage    *template.Template
	loadingPage  *template.Template
}

// New builds the portal. Background work started on behalf of browsers ends
// when ctx is cancelled.
func New(ctx context.Context, config config.Config, browsers browsersession.Repo) (*Server, error) {
	messages := portalapi.NewMessages()

	layout, err := ParseTemplate("layout.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse layout: %w", err)
	}
	publicLayout, err := ParseTemplate("public_layout.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse public layout: %w", err)
	}
	errorPage, err := ParseTemplate("error.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse error page: %w", err)
	}
	loadingPage, err := ParseTemplate("loading.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse loading page: %w", err)
	}

	s := &Server{
		ctx:          ctx,
		mux:          http.NewServeMux(),
		config:       config,
		browsers:     browsers,
		messages:     messages,
		validator:    forms.NewValidator(messages.Translator()),
		outbound:     &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		layout:       layout,
		publicLayout: publicLayout,
		errorPage:    errorPage,
		loadingPage:  loadingPage,
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	protect := csrf.Protect(config.GetCSRFKey(),
		csrf.Secure(config.GetSecureCookies()),
		csrf.Path("/"),
		csrf.FieldName(csrfFieldName),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailureHandler)),
	)
	s.handler = protect(s.mux)

	go s.sweepIdleBrowsers(ctx)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// sweepIdleBrowsers forgets browser contexts not seen for longer than the
// session max age.
func (s *Server) sweepIdleBrowsers(ctx context.Context) {
	maxAge := s.config.GetSessionMaxAge()
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	ticker := time.NewTicker(maxAge / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.browsers.DeleteIdleSince(now.Add(-maxAge)); n > 0 {
				log.Debug().Int("count", n).Msg("Removed idle browser sessions")
			}
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
