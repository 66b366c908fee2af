package grading

import (
	"bytes"
	"text/template"
)

const feedbackSystemPrompt = `You are a patient math tutor checking a learner's answer to an exam task.

Instructions:
- When an answer key is given, the verdict in "Key says" is final. Do not contradict it.
- Without an answer key, solve the task yourself and decide whether the answer is correct.
- Address the learner directly in one or two short sentences.
- For a wrong answer, point at the first mistake without giving away the full solution.`

var feedbackUserTemplate = template.Must(template.New("feedback").Parse(`Task #{{.TaskNumber}}:
{{.Text}}
{{if .Key}}Answer key: {{.Key}}
Key says: {{if .Correct}}correct{{else}}incorrect{{end}}
{{end}}Learner's answer: {{.Answer}}`))

type feedbackPrompt struct {
	TaskNumber int
	Text       string
	Key        string
	Correct    bool
	Answer     string
}

func buildFeedbackMessage(p feedbackPrompt) (string, error) {
	var buf bytes.Buffer
	if err := feedbackUserTemplate.Execute(&buf, p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
