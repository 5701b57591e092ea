package usecase

import (
	"bytes"
	"fmt"
	"text/template"
)

var (
	summaryPrompt = template.Must(template.New("summary").Parse(`Please provide a concise summary of the following text:

{{.Text}}

Summary:`))

	synthesisPrompt = template.Must(template.New("synthesis").Parse(`You are an expert content analyst. Your task is to synthesize the provided research content about "{{.Topic}}" into a coherent and engaging narrative.
Focus on the core themes, key data points, and a logical flow that would be suitable for a video script and a web article.

Research Content:
{{.Research}}

Please provide the narrative in Markdown format, outlining the story's core themes, acts, and key data points.`))

	scriptPrompt = template.Must(template.New("script").Parse(`You are a professional video scriptwriter. Using the narrative below about "{{.Topic}}", write an engaging video script.
Structure it with an introduction, clearly labelled acts and a conclusion. Include narration text and short scene directions in brackets.

Narrative:
{{.Narrative}}

Return the script in Markdown format.`))

	articlePrompt = template.Must(template.New("article").Parse(`You are an experienced web journalist. Using the narrative below about "{{.Topic}}", write a well-structured web article.
Use a compelling headline, an introduction, descriptive subheadings and a conclusion. Keep the tone informative and accessible.

Narrative:
{{.Narrative}}

Return the article in Markdown format.`))

	visualPrompt = template.Must(template.New("visual").Parse(`You are a video producer preparing a shot list for the script below about "{{.Topic}}".
For every section of the script suggest stock footage, b-roll, graphics or illustrations that would support it.

Script:
{{.Script}}

Respond with a single JSON object only. Use the script section names (for example "introduction", "act_1", "conclusion") as keys and an array of short visual suggestions as each value.`))
)

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
