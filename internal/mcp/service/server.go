// Package service hosts the governance MCP server: the operator surface
// for inspecting slots, checking compliance, and driving publishes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/plumehq/plume/internal/governance"
	"github.com/plumehq/plume/internal/governance/compliance"
	"github.com/plumehq/plume/internal/governance/compliance/luapack"
	"github.com/plumehq/plume/internal/governance/storage"
	governancesqlite "github.com/plumehq/plume/internal/governance/storage/sqlite"
	"github.com/plumehq/plume/internal/mcp/domain"
	"github.com/plumehq/plume/internal/telemetry"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Plume Governance MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
)

// Config configures the MCP server.
type Config struct {
	DBPath       string
	RulePackPath string
	Transport    TransportKind
	// Locale selects the catalog for user-facing tool error messages.
	Locale string
}

// Server hosts the MCP server over a governance store it owns.
type Server struct {
	mcpServer *mcp.Server
	store     *governancesqlite.Store
}

// New opens the governance store, builds the orchestrator, and registers
// every governance tool and resource.
func New(cfg Config) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	domain.SetLocale(cfg.Locale)

	dbPath := cfg.DBPath
	if strings.TrimSpace(dbPath) == "" {
		dbPath = "data/governance.db"
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create governance storage dir: %w", err)
		}
	}
	store, err := governancesqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open governance store at %s: %w", dbPath, err)
	}

	ruleSet := compliance.MedicalRuleSet()
	if strings.TrimSpace(cfg.RulePackPath) != "" {
		ruleSet, err = luapack.LoadRulePack(cfg.RulePackPath)
		if err != nil {
			if closeErr := store.Close(); closeErr != nil {
				return nil, fmt.Errorf("load rule pack: %v; close governance store: %w", err, closeErr)
			}
			return nil, fmt.Errorf("load rule pack: %w", err)
		}
	}
	filter := compliance.NewFilter(ruleSet)

	orchestrator := governance.New(store, filter,
		governance.WithEmitter(telemetry.NewEmitter(store)),
	)

	server := &Server{mcpServer: mcpServer, store: store}
	registerGovernanceTools(mcpServer, orchestrator, filter, store)
	registerGovernanceResources(mcpServer, store)
	return server, nil
}

func registerGovernanceTools(mcpServer *mcp.Server, orchestrator *governance.Orchestrator, filter *compliance.Filter, store storage.Store) {
	mcp.AddTool(mcpServer, domain.SlotCreateTool(), domain.SlotCreateHandler(store))
	mcp.AddTool(mcpServer, domain.SlotResetTool(), domain.SlotResetHandler(orchestrator))
	mcp.AddTool(mcpServer, domain.NextTopicTool(), domain.NextTopicHandler(orchestrator))
	mcp.AddTool(mcpServer, domain.TrustStatusTool(), domain.TrustStatusHandler(orchestrator))
	mcp.AddTool(mcpServer, domain.SyncUpgradeTool(), domain.SyncUpgradeHandler(orchestrator))
	mcp.AddTool(mcpServer, domain.CommitPublishTool(), domain.CommitPublishHandler(orchestrator))
	mcp.AddTool(mcpServer, domain.RequestEditTool(), domain.RequestEditHandler(orchestrator))
	mcp.AddTool(mcpServer, domain.RecordEditSuccessTool(), domain.RecordEditSuccessHandler(orchestrator))
	mcp.AddTool(mcpServer, domain.ComplianceCheckTool(), domain.ComplianceCheckHandler(filter))
	mcp.AddTool(mcpServer, domain.RuleSetInfoTool(), domain.RuleSetInfoHandler(filter))
	mcp.AddTool(mcpServer, domain.RuleSetSwapTool(), domain.RuleSetSwapHandler(filter))
}

// registerGovernanceResources registers readable governance MCP resources.
func registerGovernanceResources(mcpServer *mcp.Server, store storage.Store) {
	mcpServer.AddResource(domain.SlotListResource(), domain.SlotListResourceHandler(store))
}

// Run creates and serves the MCP server until the context ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		server, err := New(cfg)
		if err != nil {
			return err
		}
		log.Printf("governance MCP server started transport=stdio db=%s", cfg.DBPath)
		return server.serveWithTransport(ctx, &mcp.StdioTransport{})
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the governance store held by the server.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return err
	}
	s.store = nil
	return nil
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close governance store: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close governance store: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
