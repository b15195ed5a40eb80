package driven

// PromptStore provides access to user-editable prompt text.
type PromptStore interface {
	// Load returns the prompt for the given name, falling back to the
	// built-in default when no override exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// PromptAnswerSystem is the system instruction sent with every question.
// It has no format placeholders.
const PromptAnswerSystem = "answer_system"

// DefaultAnswerSystemPrompt is the built-in answer system instruction.
const DefaultAnswerSystemPrompt = "You are a precise, citation-heavy company intelligence assistant. " +
	"Only use the provided context. Cite sources as [1], [2], ... and list URLs under 'Sources:'."
