package types

// GenerateTextRequest is the payload of POST /api/generate-text.
type GenerateTextRequest struct {
	// Name of an active model config.
	// example: gpt-4o
	ModelName string `json:"modelName" example:"gpt-4o"`
	// Prompt sent verbatim as a single user message.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
}

// GenerateTextResponse is returned by POST /api/generate-text on success.
type GenerateTextResponse struct {
	// example: Waves fold into foam...
	Completion string `json:"completion" example:"Waves fold into foam..."`
}

// GenerateRequest is the payload of POST /api/generate (fan-out).
type GenerateRequest struct {
	// Prompt sent to every selected model.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Names of the selected models.
	// example: ["gpt-4o","gemini-1.5-pro"]
	Models []string `json:"models" example:"gpt-4o,gemini-1.5-pro"`
	// Content type of the run; only text can be generated.
	// example: text
	ContentType ContentType `json:"contentType,omitempty" example:"text"`
}

// GenerateResponse is returned by POST /api/generate.
type GenerateResponse struct {
	// Identifier of the stored result batch.
	// example: 4f2c1a8e-6f7b-4c0e-9d57-2b1f0e9d3c11
	ID string `json:"id" example:"4f2c1a8e-6f7b-4c0e-9d57-2b1f0e9d3c11"`
	// One entry per requested model, in request order.
	Results []ModelResult `json:"results"`
	// True when the prompt was cut to the configured maximum length.
	Truncated bool `json:"truncated,omitempty"`
}

// CreatedResponse is returned when a record is created.
type CreatedResponse struct {
	// example: Model added successfully
	Message string `json:"message" example:"Model added successfully"`
	// example: 665f1c2e9b1d4a0012345678
	ID string `json:"id" example:"665f1c2e9b1d4a0012345678"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	// example: Model updated successfully
	Message string `json:"message" example:"Model updated successfully"`
}

// ResultsResponse wraps stored result batches.
type ResultsResponse struct {
	Results []ResultBatch `json:"results"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
