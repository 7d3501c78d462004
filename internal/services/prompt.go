package services

import (
	"fmt"
	"strings"
)

// AnalysisSections are the headings the analysis prompt asks the model for,
// in order.
var AnalysisSections = []string{
	"Weaknesses",
	"What to improve",
	"ATS adjustments",
	"Suggested structure",
	"Tech-specific suggestions",
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt asks for a five-section critique of the résumé text.
// The caller guarantees resumeText is not empty.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText string) string {
	var sections strings.Builder
	for _, s := range AnalysisSections {
		sections.WriteString("- ")
		sections.WriteString(s)
		sections.WriteString("\n")
	}

	return fmt.Sprintf(`You are an expert in technology résumés and in ATS (applicant tracking systems).
Analyze the résumé below and answer in topics, using exactly these section headings:

%s
Text extracted from the résumé:
%s
`, sections.String(), resumeText)
}

// BuildRewritePrompt asks for a complete rewritten résumé that applies the
// earlier analysis. Neither argument may be empty.
func (pb *PromptBuilder) BuildRewritePrompt(originalResume, analysis string) string {
	return fmt.Sprintf(`You are an expert in technology résumés.

Based on the original résumé and the improvement suggestions below, write a COMPLETE and IMPROVED version of the résumé.

IMPORTANT:
- Keep ALL the information from the original résumé
- Apply ALL the suggested improvements
- Produce the complete, finished résumé, ready to use
- Keep a professional, ATS-friendly format
- Do not remove important information
- Only improve and optimize what was suggested

ORIGINAL RÉSUMÉ:
%s

IMPROVEMENT SUGGESTIONS:
%s

Now write the complete improved résumé:`, originalResume, analysis)
}
