package grading

import "github.com/abhisek/examprep/internal/llm"

// FeedbackSchema defines the JSON schema for LLM grading responses.
var FeedbackSchema = &llm.Schema{
	Name:        "answer-feedback",
	Description: "Verdict and short feedback on a learner's answer to a math task",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{
				"type":        "boolean",
				"description": "Whether the learner's answer is correct",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences addressed to the learner",
			},
		},
		"required":             []any{"correct", "feedback"},
		"additionalProperties": false,
	},
}

type feedbackOutput struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}
