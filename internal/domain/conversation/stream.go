package conversation

import "context"

// ChatRequest is the full model-call input: the character's system prompt,
// the bounded history window, and the in-flight user message supplied
// separately. The window never contains the in-flight message; including it
// there as well would duplicate it in the model context.
type ChatRequest struct {
	Model        string
	SystemPrompt string
	History      []Turn
	Message      string
	Temperature  float32
	MaxTokens    int
}

// TokenStream is a lazily-produced, finite sequence of text fragments.
// Recv returns io.EOF on natural end of stream; any other error means the
// stream failed mid-sequence.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// StreamSource opens a token stream against the model backend. A
// construction error (no fragments ever produced) is reported here;
// mid-sequence failures surface from TokenStream.Recv.
type StreamSource interface {
	Open(ctx context.Context, req ChatRequest) (TokenStream, error)
}
