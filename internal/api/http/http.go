package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/analytics"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/auth/jwt"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/dependency"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/ratelimit"
)

// Config is the configuration for the http server
type Config struct {
	Port           string        `mapstructure:"port"`
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// SendLimit caps opportunity mail-outs per caller per hour, zero disables the cap.
	SendLimit int `mapstructure:"send_limit_per_hour"`
}

// Server is the http server
type Server struct {
	hs      *http.Server
	c       *Config
	done    chan struct{}
	repo    dependency.Dashboard
	engine  *analytics.Engine
	mailer  dependency.Mailer
	syncer  dependency.Syncer
	jwtAuth *jwtauth.JWTAuth
	sendLim *ratelimit.Limiter
}

// New creates a new server. syncer may be nil when background sync is disabled.
func New(
	config *Config,
	repo dependency.Dashboard,
	engine *analytics.Engine,
	mailer dependency.Mailer,
	syncer dependency.Syncer,
) *Server {
	var lim *ratelimit.Limiter
	if config.SendLimit > 0 {
		lim = ratelimit.NewLimiter(time.Hour, config.SendLimit)
	}
	return &Server{
		sendLim: lim,
		c:       config,
		done:    make(chan struct{}),
		repo:    repo,
		engine:  engine,
		mailer:  mailer,
		syncer:  syncer,
		jwtAuth: jwt.New(config.JWTSecret),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if s.c.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.c.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return isOriginAllowed(origin, s.c.AllowedOrigins)
		},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(jwt.Protect(s.jwtAuth))

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/total-commission-by-month", s.totalCommission)
			r.Get("/avg-commission-by-month", s.avgCommission)
			r.Get("/lesson-hours-by-month", s.lessonHours)
			r.Get("/unique-students-by-month", s.uniqueStudents)
			r.Get("/by-month", s.appointmentSummary)
			r.Get("/commission-by-job", s.commissionByJob)
			r.Get("/complete-commission-by-month", s.completeCommission)
		})
		r.Get("/adhoc/adhoc-revenue-by-month", s.adHocRevenue)
		r.Route("/clients", func(r chi.Router) {
			r.Get("/enquiries-by-month", s.enquiries)
			r.Get("/enquiry-conversion-by-month", s.enquiryConversion)
		})
		r.Route("/recipients", func(r chi.Router) {
			r.Get("/starts-by-month", s.studentStarts)
			r.Get("/finishes-by-month", s.studentFinishes)
		})
		r.Get("/income/total-income-by-month", s.totalIncome)

		r.Get("/last-synced", s.lastSynced)
		r.Post("/sync", s.triggerSync)
		r.Get("/sync/status", s.syncStatus)

		r.Get("/opportunities", s.opportunities)
		r.With(rateLimited(s.sendLim)).Post("/opportunities/send", s.sendOpportunities)
	})

	return r
}

// Start starts the server and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.sendLim != nil {
		go s.sendLim.Run(ctx, time.Minute)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.hs.Shutdown(shutdownCtx); err != nil {
			slog.Default().ErrorContext(shutdownCtx, "http server shutdown failed", slog.String("err", err.Error()))
		}
	}()

	go func() {
		slog.Default().InfoContext(ctx, "tutorcruncher-dashboard listening", slog.String("addr", "http://"+listenerAddr))
		err := s.hs.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error", slog.String("err", err.Error()))
		}
		close(s.done)
	}()

	return nil
}

func isOriginAllowed(origin string, allowedOrigins []string) bool {
	// Always allow localhost origins
	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "https://localhost:") {
		return true
	}
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || origin == allowedOrigin {
			return true
		}
	}
	return false
}
