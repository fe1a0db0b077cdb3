package constant

// In-band control tokens of the streaming protocol. They are a wire contract
// with the backend; answer text must never equal either value.
const (
	StreamEndSentinel     = "<<END>>"
	StreamNoQuerySentinel = "<<E:NO_QUERY>>"

	// Error payload of a tagged error frame that maps to the no-query path.
	StreamNoQueryCode = "NO_QUERY"
)

const (
	StreamProtocolSentinel = "sentinel"
	StreamProtocolTagged   = "tagged"
)
