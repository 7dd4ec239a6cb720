package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewPlanweaveMCPServer creates an MCP server with all 4 planning tools registered.
func NewPlanweaveMCPServer(svc *PlanService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "planweave",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_chain",
		Description: "Convert an ordered annotated reasoning chain into a DAG of data dependencies. Runs placeholder, parameter-typing, semantic, and sequential inference in priority order and stores the resulting plan.",
	}, svc.ConvertChain)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "augment_plan",
		Description: "Generate structural variants of a stored plan. Applies up to ten transformation strategies (node insertion/removal, tool substitution, reordering, splitting, and more), each re-validated before it is kept.",
	}, svc.AugmentPlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_plan",
		Description: "Fetch a stored plan with its variants. Optionally renders the DAG as a Mermaid diagram with edges labeled by inference layer.",
	}, svc.GetPlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "corpus_metrics",
		Description: "Compute diversity and quality statistics over the stored corpus: structural diversity of canonical signatures, mean orphan rate, and per-strategy variant counts.",
	}, svc.CorpusMetrics)

	return server
}

// RunMCPServer starts an HTTP server exposing the planning MCP tools.
func RunMCPServer(ctx context.Context, svc *PlanService, addr string) error {
	server := NewPlanweaveMCPServer(svc)

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
