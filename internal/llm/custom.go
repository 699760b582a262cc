package llm

type CustomProvider struct {
	*OpenAIProvider
}

func NewCustomProvider(opts Options) *CustomProvider {
	return &CustomProvider{OpenAIProvider: NewOpenAIProvider(opts)}
}

func (c *CustomProvider) Name() string {
	return "custom"
}
