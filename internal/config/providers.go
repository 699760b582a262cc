package config

type ProviderInfo struct {
	ID           string
	Name         string
	NeedsAPIKey  bool
	BaseURL      string
	SignupURL    string
	DefaultModel string
}

var Providers = []ProviderInfo{
	{
		ID:           "groq",
		Name:         "Groq",
		NeedsAPIKey:  true,
		BaseURL:      "https://api.groq.com/openai/v1",
		SignupURL:    "https://console.groq.com",
		DefaultModel: "llama-3.1-8b-instant",
	},
	{
		ID:          "custom",
		Name:        "OpenAI-compatible",
		NeedsAPIKey: false,
	},
}

func GetProvider(id string) *ProviderInfo {
	for _, p := range Providers {
		if p.ID == id {
			return &p
		}
	}
	return nil
}

type ModelInfo struct {
	ID     string
	Name   string
	Vision bool
}

var Models = []ModelInfo{
	{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B Instant"},
	{ID: "llama-3.3-70b-versatile", Name: "Llama 3.3 70B Versatile"},
	{ID: "meta-llama/llama-4-scout-17b-16e-instruct", Name: "Llama 4 Scout", Vision: true},
	{ID: "meta-llama/llama-4-maverick-17b-128e-instruct", Name: "Llama 4 Maverick", Vision: true},
}

func GetModel(id string) *ModelInfo {
	for _, m := range Models {
		if m.ID == id {
			return &m
		}
	}
	return nil
}

// SupportsVision reports whether image parts can be sent to the model.
// Unknown model ids are assumed to accept them.
func SupportsVision(id string) bool {
	m := GetModel(id)
	if m == nil {
		return true
	}
	return m.Vision
}

// DisplayName returns a friendly label for the model in use.
func DisplayName(id string) string {
	if m := GetModel(id); m != nil {
		return m.Name
	}
	return id
}
