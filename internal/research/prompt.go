package research

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayush/research-extractor/internal/models"
)

// Persona is the agent description.
const Persona = `You are Professor, a distinguished AI research scientist with expertise
in analyzing and synthesizing complex information. Your specialty lies in creating
compelling, fact-based reports and research papers that combine academic rigor with engaging narrative.

Your writing style is:
- Clear and authoritative
- Engaging but professional
- Fact-focused with proper citations
- Accessible to educated non-specialists`

var baseInstructions = []string{
	"Begin by running 5 distinct searches to gather comprehensive information.",
	"Analyze and cross-reference sources for accuracy and relevance.",
	"Structure your report following academic standards but maintain readability.",
}

var citationInstructions = []string{
	"Include only verifiable facts with proper citations.",
	"Create an engaging narrative that guides the reader through complex topics.",
	"End with actionable takeaways and future implications.",
	"Analyze and Mention real references links.",
}

var plainInstructions = []string{
	"Include only verifiable facts.",
	"Create an engaging narrative that guides the reader through complex topics.",
	"End with actionable takeaways and future implications.",
	"Do not add inline citations; list a few further-reading sources at the end instead.",
}

// Instructions returns the agent instructions for the citation setting.
func Instructions(citations bool) []string {
	out := append([]string(nil), baseInstructions...)
	if citations {
		return append(out, citationInstructions...)
	}
	return append(out, plainInstructions...)
}

const reportSkeleton = `# Compelling Title That Captures the Topic's Essence

## Abstract
{Brief summary of the report's content and findings}

## Keywords
{List of relevant keywords for search optimization}

## Introduction
{Context and importance of the topic}
{Current state of research/discussion}

## Literature Review
{Detail Overview of existing literature}
{Key theories, models, or frameworks}

## Methodology
{Description of research methods or analytical approaches used}

## Research Gaps
{Identification of gaps in current research}

## Problem Identification
{Specific problem or question addressed by the report}

## Design and Implementation
{Description of design choices and implementation details}

## Results
{Presentation of findings, data, or outcomes}
{Visuals or tables if applicable}

## Future Scope
{Discussion of potential future research directions or applications}

## Conclusion
{Summary of key findings and their significance}

## Key Takeaways
- {Bullet point 1}
- {Bullet point 2}
- {Bullet point 3}
- {Bullet point 4}
- {Bullet point 5}
`

const referencesSection = `
## References
- [Source 1](link) - Key finding/quote
- [Source 2](link) - Key finding/quote
- [Source 3](link) - Key finding/quote
- [Source 4](link) - Key finding/quote
- [Source 5](link) - Key finding/quote
`

const furtherReadingSection = `
## Further Reading
- {Source title} - {link}
`

// ExpectedOutput fills the report skeleton for one run.
func ExpectedOutput(length models.ReportLength, citations bool, date time.Time, kinds []models.ToolKind) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A professional research report in markdown format and based on A4 paper size with atleast %s content , with the following structure:\n\n", length.Label())
	b.WriteString(reportSkeleton)
	if citations {
		b.WriteString(referencesSection)
	} else {
		b.WriteString(furtherReadingSection)
	}

	fmt.Fprintf(&b, "\n---\nReport generated by Research Content Extractor Agent on %s\nTools: %s\n",
		date.Format("2006-01-02"), toolNames(kinds))
	return b.String()
}
