package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewAuditMCPServer creates an MCP server with all 5 audit tools registered.
func NewAuditMCPServer(svc *AuditService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tribunal-audit",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_audit",
		Description: "Run a full audit of a repository and its written report. Collectors gather forensic evidence in parallel, three judge personas score every rubric criterion, and the synthesis engine produces one verdict per criterion. The run is archived.",
	}, svc.RunAudit)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_report",
		Description: "Fetch an archived audit run by run ID, optionally rendered as a markdown report.",
	}, svc.GetReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List archived audit runs with their overall scores, most recent first.",
	}, svc.ListRuns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_evidence",
		Description: "Return archived forensic evidence for one rubric criterion across all runs.",
	}, svc.QueryEvidence)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "score_history",
		Description: "Chart how one criterion's final score evolved across archived runs of the repository.",
	}, svc.ScoreHistory)

	return server
}

// RunMCPServer starts an HTTP server exposing the audit MCP tools.
func RunMCPServer(ctx context.Context, svc *AuditService, addr string) error {
	server := NewAuditMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
