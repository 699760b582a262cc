package llm

const groqBaseURL = "https://api.groq.com/openai/v1"

type GroqProvider struct {
	*OpenAIProvider
}

func NewGroqProvider(opts Options) *GroqProvider {
	if opts.Model == "" {
		opts.Model = "llama-3.1-8b-instant"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = groqBaseURL
	}
	return &GroqProvider{OpenAIProvider: NewOpenAIProvider(opts)}
}

func (g *GroqProvider) Name() string {
	return "groq"
}
