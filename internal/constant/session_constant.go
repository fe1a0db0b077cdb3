package constant

const (
	ReplyNoActiveFile    = "Please upload a file so I can answer."
	ReplyNoQueryError    = "Error: the server did not receive a query."
	ReplyConnectionError = "Error: could not connect to the server. Please try again."
)

const (
	NotifyChatCleared          = "Started a new chat."
	NotifyChatClearedLocalOnly = "Chat cleared, but the server could not reset its memory: %s"
)
