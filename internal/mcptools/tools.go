package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"alfredoptarigan/resume-analyzer/internal/services"
)

type ResumeAnalyzeQuery struct {
	RawData  []byte `json:"raw_data"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type,omitempty"`
}

type ResumeAnalyzeResponse struct {
	Text     string `json:"text"`
	Analysis string `json:"analysis"`
	Model    string `json:"model,omitempty"`
}

type ResumeImproveQuery struct {
	OriginalResume string `json:"original_resume"`
	Suggestions    string `json:"suggestions"`
}

type ResumeImproveResponse struct {
	ImprovedResume string `json:"improved_resume"`
	Model          string `json:"model,omitempty"`
}

func ResumeAnalyzeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ResumeAnalyzeQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "resume-analyze",
		Description: "Extract the text of a PDF or DOCX résumé and return an ATS-oriented critique with five sections: weaknesses, what to improve, ATS adjustments, suggested structure and tech-specific suggestions.",
		InputSchema: inputschema,
	}
}

func ResumeImproveTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ResumeImproveQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "resume-improve",
		Description: "Rewrite a résumé applying a previous analysis. Keeps all original information and returns a complete ATS-friendly résumé.",
		InputSchema: inputschema,
	}
}

func ResumeAnalyzeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ResumeAnalyzeQuery, storage services.StorageService, pipeline services.AnalysisPipeline) (*mcp.CallToolResult, *ResumeAnalyzeResponse, error) {
	if len(query.RawData) == 0 {
		return nil, nil, errors.New("raw_data is required")
	}
	if query.FileName == "" {
		return nil, nil, errors.New("file_name is required")
	}

	doc, err := storage.SaveBytes(query.FileName, query.MimeType, query.RawData)
	if err != nil {
		return nil, nil, err
	}

	result, err := pipeline.Analyze(ctx, doc)
	if err != nil {
		return nil, nil, toolError(err)
	}

	return nil, &ResumeAnalyzeResponse{
		Text:     result.ExtractedText,
		Analysis: result.Analysis,
		Model:    result.Model,
	}, nil
}

func ResumeImproveToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ResumeImproveQuery, pipeline services.AnalysisPipeline) (*mcp.CallToolResult, *ResumeImproveResponse, error) {
	result, err := pipeline.Improve(ctx, query.OriginalResume, query.Suggestions)
	if err != nil {
		return nil, nil, toolError(err)
	}

	return nil, &ResumeImproveResponse{
		ImprovedResume: result.ImprovedResume,
		Model:          result.Model,
	}, nil
}

// toolError keeps the client-safe message of pipeline errors.
func toolError(err error) error {
	var pe *services.PipelineError
	if errors.As(err, &pe) {
		return fmt.Errorf("%s: %s", pe.Kind, pe.Message)
	}
	return err
}

// CreateServer registers the résumé tools on a new MCP server.
func CreateServer(storage services.StorageService, pipeline services.AnalysisPipeline) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "resume-analyzer", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, ResumeAnalyzeTool(), func(ctx context.Context, req *mcp.CallToolRequest, query ResumeAnalyzeQuery) (*mcp.CallToolResult, *ResumeAnalyzeResponse, error) {
		return ResumeAnalyzeToolHandler(ctx, req, query, storage, pipeline)
	})

	mcp.AddTool(server, ResumeImproveTool(), func(ctx context.Context, req *mcp.CallToolRequest, query ResumeImproveQuery) (*mcp.CallToolResult, *ResumeImproveResponse, error) {
		return ResumeImproveToolHandler(ctx, req, query, pipeline)
	})

	return server
}
