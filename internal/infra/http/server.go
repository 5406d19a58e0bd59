package http

import (
	"context"
	"net/http"
	"time"

	"attestd/internal/config"
	"attestd/internal/domain"
	"attestd/internal/infra/db"
	"attestd/internal/infra/embed"
	"attestd/internal/infra/keys/soft"
	"attestd/internal/infra/policyopa"
	"attestd/internal/infra/ratelimit"
	"attestd/internal/infra/replay"
	"attestd/internal/usecase"
	"attestd/pkg/attest"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AttestationReader interface {
	ListByAssetHash(ctx context.Context, assetSHA256 string) ([]domain.AttestationRecord, error)
}

type Server struct {
	cfg config.Config
	r   *gin.Engine

	signUC  *usecase.SignPhoto
	records AttestationReader

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool

	initErr error
}

func NewServer(cfg config.Config, conn *gorm.DB) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, r: r}
	s.initDeps(conn)
	s.routes()
	return s
}

type ServerDeps struct {
	Sign        *usecase.SignPhoto
	Records     AttestationReader
	RateLimiter domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:     cfg,
		r:       r,
		signUC:  deps.Sign,
		records: deps.Records,
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps(conn *gorm.DB) {
	signer, err := loadSigner(s.cfg)
	if err != nil {
		s.initErr = err
		return
	}

	uc := &usecase.SignPhoto{
		Pipeline: &attest.Pipeline{Embedder: embed.New()},
		Signer:   signer,
		NonceTTL: s.cfg.NonceTTL(),
	}

	if s.cfg.PolicyBundlePath != "" {
		engine, err := policyopa.NewEngineFromBundlePath(context.Background(), s.cfg.PolicyBundlePath, s.cfg.PolicyBundleID)
		if err != nil {
			s.initErr = err
			return
		}
		uc.Policy = engine
	}

	if s.cfg.RedisAddr != "" {
		if guard, err := replay.NewRedisGuard(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB); err == nil {
			uc.Replay = guard
		}
	}
	if uc.Replay == nil {
		uc.Replay = replay.NewMemoryGuard(nil)
	}

	if conn != nil {
		repo := db.NewAttestationRepository(conn)
		uc.Records = repo
		s.records = repo
	}

	s.signUC = uc
	s.initRateLimit(nil)
}

func loadSigner(cfg config.Config) (domain.HardwareSigner, error) {
	if cfg.SigningKeyPath != "" && cfg.SigningCertPath != "" {
		return soft.LoadFromFiles(cfg.SigningKeyPath, cfg.SigningCertPath)
	}
	return soft.NewGenerated(cfg.SignerCommonName)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && s.cfg.RateLimitRequests > 0 {
		if s.cfg.RedisAddr != "" {
			if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, nil); err == nil {
				s.rateLimiter = limiter
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: s.cfg.RateLimitMaxKeys,
			})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitWindow = s.cfg.RateLimitWindow()
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		mode := "no-db"
		if s.records != nil {
			mode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": mode})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/photos/sign", s.handleSignPhoto)
		v1.POST("/photos/hash", s.handleHashPhoto)
		v1.GET("/attestations/:asset_sha256", s.handleListAttestations)
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Run() error {
	if s.initErr != nil {
		return s.initErr
	}
	return s.r.Run(s.cfg.HTTPAddr)
}
