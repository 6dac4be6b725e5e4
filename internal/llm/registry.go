package llm

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Provider describes one chat completions endpoint and where its API key lives.
type Provider struct {
	Name    string
	BaseURL string
	EnvKey  string
	// StripPrefix removes the routing prefix from the model name before it is
	// sent on the wire (e.g. "ollama/llama3" -> "llama3").
	StripPrefix string
}

type entry struct {
	prefix   string
	provider Provider
}

// Registry maps model-name prefixes to providers. Resolution is a
// deterministic longest-prefix match, so "gpt-5-mini" beats "gpt-" when both
// are registered.
type Registry struct {
	entries []entry
}

// NewRegistry returns a registry preloaded with the supported providers.
func NewRegistry() *Registry {
	r := &Registry{}
	openai := Provider{Name: "openai", BaseURL: "https://api.openai.com/v1", EnvKey: "OPENAI_API_KEY"}
	r.Register("gpt-", openai)
	r.Register("o", openai)
	r.Register("claude-", Provider{Name: "anthropic", BaseURL: "https://api.anthropic.com/v1", EnvKey: "ANTHROPIC_API_KEY"})
	r.Register("gemini-", Provider{Name: "gemini", BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai", EnvKey: "GOOGLE_API_KEY"})
	r.Register("grok-", Provider{Name: "grok", BaseURL: "https://api.x.ai/v1", EnvKey: "GROK_API_KEY"})
	r.Register("deepseek-", Provider{Name: "deepseek", BaseURL: "https://api.deepseek.com/v1", EnvKey: "DEEPSEEK_API_KEY"})
	r.Register("openai/", Provider{Name: "groq", BaseURL: "https://api.groq.com/openai/v1", EnvKey: "GROQ_API_KEY"})
	r.Register("openrouter/", Provider{Name: "openrouter", BaseURL: "https://openrouter.ai/api/v1", EnvKey: "OPENROUTER_API_KEY", StripPrefix: "openrouter/"})
	r.Register("ollama/", Provider{Name: "ollama", BaseURL: "http://localhost:11434/v1", EnvKey: "", StripPrefix: "ollama/"})
	return r
}

// Register adds a prefix -> provider mapping, replacing any existing entry
// for the same prefix.
func (r *Registry) Register(prefix string, p Provider) {
	for i := range r.entries {
		if r.entries[i].prefix == prefix {
			r.entries[i].provider = p
			return
		}
	}
	r.entries = append(r.entries, entry{prefix: prefix, provider: p})
}

// Resolve returns the provider whose registered prefix is the longest prefix
// of modelName.
func (r *Registry) Resolve(modelName string) (Provider, bool) {
	best := -1
	var found Provider
	for _, e := range r.entries {
		if strings.HasPrefix(modelName, e.prefix) && len(e.prefix) > best {
			best = len(e.prefix)
			found = e.provider
		}
	}
	return found, best >= 0
}

// Prefixes returns the registered prefixes in sorted order.
func (r *Registry) Prefixes() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.prefix)
	}
	sort.Strings(out)
	return out
}

// Open resolves modelName to a provider, reads its API key from the
// environment, and returns a ready-to-use Model.
func (r *Registry) Open(modelName string, temperature float64) (*Model, error) {
	p, ok := r.Resolve(modelName)
	if !ok {
		return nil, fmt.Errorf("llm: unknown model name: %s", modelName)
	}
	apiKey := ""
	if p.EnvKey != "" {
		apiKey = strings.TrimSpace(os.Getenv(p.EnvKey))
		if apiKey == "" {
			return nil, fmt.Errorf("llm: %s is required for model %s", p.EnvKey, modelName)
		}
	}
	wireName := modelName
	if p.StripPrefix != "" {
		wireName = strings.TrimPrefix(modelName, p.StripPrefix)
	}
	return NewModel(NewClient(apiKey, p.BaseURL), modelName, wireName, temperature), nil
}
