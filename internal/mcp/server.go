package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/protectwatch/internal/alert"
	"github.com/ppiankov/protectwatch/internal/catalog"
	"github.com/ppiankov/protectwatch/internal/credential"
)

// Version is reported to MCP clients during initialization.
const Version = "0.1.0"

// Config holds MCP server configuration.
type Config struct {
	CatalogPath string
	// Watch reloads the catalog when its file changes.
	Watch         bool
	Registry      credential.Registry
	LookupTimeout time.Duration
	Logger        *zap.Logger
}

// Server wraps the MCP SDK server with the protectwatch scoring engines.
type Server struct {
	mcpServer     *mcpsdk.Server
	holder        *catalog.Holder
	watcher       *catalog.Watcher
	registry      credential.Registry
	lookupTimeout time.Duration
	logger        *zap.Logger
	now           func() time.Time

	mu             sync.Mutex
	dispatcher     *alert.Dispatcher
	dispatcherHash string
}

// New creates an MCP server with the loaded catalog and tools.
func New(cfg Config) (*Server, error) {
	holder, err := catalog.NewHolder(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return newServer(cfg, holder)
}

// NewWithCatalog creates an MCP server over a fixed catalog.
func NewWithCatalog(cfg Config, cat *catalog.Catalog) (*Server, error) {
	return newServer(cfg, catalog.StaticHolder(cat))
}

func newServer(cfg Config, holder *catalog.Holder) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		holder:        holder,
		registry:      cfg.Registry,
		lookupTimeout: cfg.LookupTimeout,
		logger:        logger,
		now:           time.Now,
	}

	if cfg.Watch {
		w, err := catalog.NewWatcher(holder, logger)
		if err != nil {
			return nil, err
		}
		s.watcher = w
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "protectwatch",
			Version: Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled
// or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if s.watcher != nil {
		g.Go(func() error { return s.watcher.Run(ctx) })
	}
	g.Go(func() error {
		defer cancel()
		return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
	})
	return g.Wait()
}

// currentDispatcher returns a dispatcher for the catalog in force, rebuilding
// it after a reload.
func (s *Server) currentDispatcher() (*alert.Dispatcher, string) {
	hash := s.holder.Hash()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dispatcher == nil || s.dispatcherHash != hash {
		s.dispatcher = alert.NewDispatcher(s.holder.Catalog().Alerts, s.logger)
		s.dispatcherHash = hash
	}
	return s.dispatcher, hash
}

func (s *Server) dispatchAlert(event alert.AlertEvent) {
	d, hash := s.currentDispatcher()
	if d == nil {
		return
	}
	event.Timestamp = s.now().UTC().Format("2006-01-02T15:04:05.000Z")
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CatalogHash = hash
	d.Dispatch(event)
}

func (s *Server) credentialEngine(cat *catalog.Catalog) *credential.Engine {
	opts := []credential.Option{
		credential.WithClock(s.now),
		credential.WithLogger(s.logger),
	}
	if s.registry != nil {
		opts = append(opts, credential.WithRegistry(s.registry))
	}
	if s.lookupTimeout > 0 {
		opts = append(opts, credential.WithLookupTimeout(s.lookupTimeout))
	}
	return credential.New(cat, opts...)
}

// objectSchema is used for tools whose payloads carry decimal amounts, which
// marshal as JSON strings and cannot be inferred from the Go types.
var objectSchema = map[string]any{"type": "object"}

// registerTools adds all protectwatch tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "protectwatch_catalog",
		Description: "Describe the active scoring catalog: risk bands, factors and questionnaire.",
	}, s.handleCatalog)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "protectwatch_risk",
		Description: "Score a principal on the 5x5 probability x impact matrix from questionnaire answers, risk factors or an explicit cell.",
	}, s.handleRisk)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "protectwatch_verify_license",
		Description: "Verify an SIA licence number: format, register record, expiry and status.",
	}, s.handleVerifyLicense)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:         "protectwatch_officer",
		Description:  "Check one officer against a protection tier: requirements, fitness score and insurance.",
		InputSchema:  objectSchema,
		OutputSchema: objectSchema,
	}, s.handleOfficer)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:         "protectwatch_team",
		Description:  "Aggregate compliance for a team of officers against a protection tier.",
		InputSchema:  objectSchema,
		OutputSchema: objectSchema,
	}, s.handleTeam)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:         "protectwatch_venue",
		Description:  "Martyn's Law assessment for a venue: tier, duties, terrorism risk, action plan and report.",
		InputSchema:  objectSchema,
		OutputSchema: objectSchema,
	}, s.handleVenue)
}
