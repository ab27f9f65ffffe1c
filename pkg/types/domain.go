package types

import "time"

// ContentType is the kind of content a model produces.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
	ContentAudio ContentType = "audio"
	Content3D    ContentType = "3d"
)

// ContentTypes lists every accepted content type in display order.
var ContentTypes = []ContentType{ContentText, ContentImage, ContentVideo, ContentAudio, Content3D}

// Valid reports whether c is one of ContentTypes.
func (c ContentType) Valid() bool {
	for _, v := range ContentTypes {
		if c == v {
			return true
		}
	}
	return false
}

// ModelConfig is a stored configuration used to reach one provider.
type ModelConfig struct {
	// Opaque public identifier assigned by the registry.
	// example: 665f1c2e9b1d4a0012345678
	ID string `json:"id" example:"665f1c2e9b1d4a0012345678"`
	// Unique name among active configs; also the model id sent upstream.
	// example: gpt-4o
	Name string `json:"name" validate:"required" example:"gpt-4o"`
	// Provider tag, matched case-insensitively.
	// example: openai
	Provider string `json:"provider" validate:"required" example:"openai"`
	// Secret credential for the provider.
	// example: sk-...
	APIKey string `json:"apiKey" validate:"required" example:"sk-..."`
	// Content type produced by the model.
	// example: text
	ContentType ContentType `json:"contentType" validate:"required" example:"text"`
	// Optional free-form description.
	Description string `json:"description,omitempty"`
	// Inactive configs are never dispatched to.
	// example: true
	Active bool `json:"active" example:"true"`
}

// ModelPatch carries a partial update. Nil fields are left untouched and
// there is deliberately no ID field.
type ModelPatch struct {
	Name        *string      `json:"name,omitempty"`
	Provider    *string      `json:"provider,omitempty"`
	APIKey      *string      `json:"apiKey,omitempty"`
	ContentType *ContentType `json:"contentType,omitempty"`
	Description *string      `json:"description,omitempty"`
	Active      *bool        `json:"active,omitempty"`
}

// Apply returns a copy of m with the patch fields applied.
func (p ModelPatch) Apply(m ModelConfig) ModelConfig {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Provider != nil {
		m.Provider = *p.Provider
	}
	if p.APIKey != nil {
		m.APIKey = *p.APIKey
	}
	if p.ContentType != nil {
		m.ContentType = *p.ContentType
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Active != nil {
		m.Active = *p.Active
	}
	return m
}

// Empty reports whether the patch changes nothing.
func (p ModelPatch) Empty() bool {
	return p.Name == nil && p.Provider == nil && p.APIKey == nil &&
		p.ContentType == nil && p.Description == nil && p.Active == nil
}

// ModelResult is the outcome of one model within a fan-out batch.
type ModelResult struct {
	ModelName  string `json:"modelName" bson:"modelName"`
	Completion string `json:"completion,omitempty" bson:"completion,omitempty"`
	Error      string `json:"error,omitempty" bson:"error,omitempty"`
	Kind       string `json:"kind,omitempty" bson:"kind,omitempty"`
}

// ResultBatch is one persisted fan-out run.
type ResultBatch struct {
	ID          string        `json:"id" bson:"_id"`
	Prompt      string        `json:"prompt" bson:"prompt"`
	ContentType ContentType   `json:"contentType" bson:"contentType"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	Results     []ModelResult `json:"results" bson:"results"`
}

// Theme is the UI theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Profile is the locally stored user profile.
type Profile struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Settings groups the user profile and theme preference.
type Settings struct {
	Profile *Profile `json:"profile,omitempty"`
	Theme   Theme    `json:"theme" validate:"oneof=light dark system"`
}
