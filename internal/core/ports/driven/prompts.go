package driven

// PromptStore loads prompt templates by name. The file-backed store lets
// operators override the embedded defaults from ~/.urbanbot/prompts.
type PromptStore interface {
	// Load returns the template called name, or an error when neither an
	// override nor an embedded default exists.
	Load(name string) (string, error)

	// Reload forgets cached templates; the next Load reads from disk.
	Reload()
}

// Prompt names.
const (
	// PromptGrounding precedes the user question; one %s receives it.
	PromptGrounding = "grounding"

	// PromptSystem is the persona sent as the system message. No placeholders.
	PromptSystem = "system"
)

// PromptStoreAware is implemented by services whose prompts can be
// overridden. Without a store they fall back to built-in text.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
