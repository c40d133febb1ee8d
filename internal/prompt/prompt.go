package prompt

import "strings"

// Placeholder marks where the paper text goes in Template.
const Placeholder = "{text}"

// Template asks for a plain-language breakdown of a research paper in three
// sections.
const Template = `
You are an expert research paper analyst with deep knowledge across multiple scientific domains.
Analyze the provided research paper and create an accessible breakdown for a general audience.

Please provide your analysis in the following structure:

1. SUMMARY:
   - Provide a clear, concise summary of the paper in simple language (2-3 paragraphs)
   - Include the main research question, methodology, and findings

2. KEY TAKEAWAYS:
   - List 4-6 bullet points of the most important findings or contributions
   - Explain why these findings are significant
   - Highlight any novel techniques or approaches introduced

3. FUTURE WORK IDEAS:
   - Suggest 3-5 potential research directions that could build upon this paper
   - Identify gaps or limitations in the current research that future work could address
   - Propose practical applications of the research findings

Research Paper:
{text}
`

// Preamble is everything in Template before the placeholder.
var Preamble = Template[:strings.Index(Template, Placeholder)]

// Build fills the template with text. The text is inserted verbatim.
func Build(text string) string {
	return strings.Replace(Template, Placeholder, text, 1)
}
