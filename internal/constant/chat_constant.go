package constant

const (
	DefaultChatTitle  = "New Chat"
	ChatTitleMaxChars = 30

	// Replies returned when the model or the store fails during a chat turn.
	FallbackReplyModelError    = "Sorry, there was an error getting a response. Please try again."
	FallbackReplyInternalError = "Sorry, there was an internal error processing your request."

	GenerationTemperature        = 0.7
	AnonymousMaxOutputTokens     = 256
	AuthenticatedMaxOutputTokens = 768
)
