// Package httpserver exposes the shop security API over HTTP.
package httpserver

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/and161185/shopguard/internal/metrics"
	"github.com/and161185/shopguard/internal/model"
	"github.com/and161185/shopguard/internal/service"
)

// ChallengeLister lists challenge flags for the scoreboard.
type ChallengeLister interface {
	List(ctx context.Context) ([]model.Challenge, error)
}

// Server wires services into HTTP handlers.
type Server struct {
	auth       service.AuthService
	users      service.UserService
	web3       service.Web3Service
	challenges ChallengeLister
	m          *metrics.Metrics
	log        *zap.Logger
	dev        bool

	trustedProxies []netip.Prefix
}

// Option configures Server.
type Option func(*Server)

// WithMetrics enables request metrics and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Server) { s.m = m } }

// WithDevRoutes mounts the chain event injection endpoint.
func WithDevRoutes(enabled bool) Option { return func(s *Server) { s.dev = enabled } }

// WithTrustedProxies lets peers inside these prefixes name the client through
// X-Forwarded-For or X-Real-IP. The login limiter keys on that address.
func WithTrustedProxies(p []netip.Prefix) Option {
	return func(s *Server) { s.trustedProxies = p }
}

// New constructs a Server with injected services.
func New(auth service.AuthService, users service.UserService, web3 service.Web3Service, challenges ChallengeLister, log *zap.Logger, opts ...Option) *Server {
	s := &Server{auth: auth, users: users, web3: web3, challenges: challenges, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer, s.requestLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.m != nil {
		r.Handle("/metrics", s.m.Handler())
	}

	r.Post("/api/Users", s.handleRegister)
	r.Get("/api/Challenges", s.handleListChallenges)
	r.Post("/rest/user/login", s.handleLogin)
	r.With(s.authMiddleware).Get("/rest/user/logout", s.handleLogout)
	r.With(s.authMiddleware).Get("/rest/user/authentication-details", s.handleListUsers)

	r.Route("/rest/web3", func(r chi.Router) {
		r.Post("/submitKey", s.handleSubmitKey)
		r.Get("/nftUnlocked", s.handleNFTUnlocked)
		r.Get("/nftMintListen", s.handleNFTMintListen)
		r.Post("/walletNFTVerify", s.handleWalletNFTVerify)
		r.Post("/walletExploitAddress", s.handleWalletExploitAddress)
	})

	if s.dev {
		r.Post("/dev/chain/events", s.handlePublishEvent)
	}
	return r
}
