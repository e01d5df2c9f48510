package conversation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cyrene-ai/cyrene-server/internal/domain/character"
	"github.com/cyrene-ai/cyrene-server/internal/domain/moderation"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// StreamErrorSentinel is the single diagnostic chunk emitted to the client
// when a stream fails after tokens have already been forwarded.
const StreamErrorSentinel = "\n\n[system error: generation interrupted, please retry]"

// ErrStreamInterrupted reports a failure after streaming began. By then the
// response status is already on the wire, so the handler ends the stream
// instead of writing an error payload; the rollback has already happened.
var ErrStreamInterrupted = errors.New("stream interrupted")

// TurnOptions carries the model-call parameters applied to every turn.
type TurnOptions struct {
	DefaultModel string
	Temperature  float32
	MaxTokens    int
}

// SendMessageInput is one inbound chat turn.
type SendMessageInput struct {
	UserID         uint
	ConversationID uint
	Content        string
	Model          string
	Regenerate     bool
}

// TurnService drives one conversation turn: policy check, history window
// capture, user-message persistence, model streaming, and the final
// assistant-message commit, keeping the persisted log consistent on every
// exit path.
type TurnService struct {
	history    *HistoryService
	characters *character.Service
	filter     *moderation.Filter
	source     StreamSource
	opts       TurnOptions
	logger     zerolog.Logger

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewTurnService creates a turn orchestrator.
func NewTurnService(
	history *HistoryService,
	characters *character.Service,
	filter *moderation.Filter,
	source StreamSource,
	opts TurnOptions,
	logger zerolog.Logger,
) *TurnService {
	return &TurnService{
		history:    history,
		characters: characters,
		filter:     filter,
		source:     source,
		opts:       opts,
		logger:     logger,
		locks:      make(map[uint]*sync.Mutex),
	}
}

// SendMessage runs one turn, forwarding each produced token through emit as
// it arrives. Errors returned before the first emit call carry an HTTP
// mapping; ErrStreamInterrupted means tokens were already on the wire and
// the rollback is done.
//
// The persisted log is consistent on every exit: the user message is
// appended before the model call, and any failure from that point on removes
// it again via the remove-last-turn rollback. The assistant reply is
// committed only once the stream has ended naturally, so a partial stream
// never leaves a partial assistant row.
func (s *TurnService) SendMessage(ctx context.Context, input SendMessageInput, emit func(token string) error) error {
	conv, err := s.history.GetOwned(ctx, input.ConversationID, input.UserID)
	if err != nil {
		return err
	}

	matched, err := s.filter.Check(ctx, input.Content)
	if err != nil {
		return err
	}
	if matched != "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("message contains a banned word: %s", matched), nil)
	}

	char, err := s.characters.GetByName(ctx, conv.CharacterName())
	if err != nil {
		return err
	}

	// Turns on the same conversation interleave their append/rollback
	// sequences otherwise; the lock is held until the turn fully settles.
	lock := s.conversationLock(conv.ID)
	lock.Lock()
	defer lock.Unlock()

	if input.Regenerate {
		if err := s.history.RemoveLastTurn(ctx, conv.ID); err != nil {
			return err
		}
	}

	// The window is captured before the append so it excludes the in-flight
	// message, which is supplied separately as the current turn.
	window, err := s.history.RecentWindow(ctx, conv.ID, WindowLimit)
	if err != nil {
		return err
	}

	if err := s.history.Append(ctx, conv.ID, RoleUser, input.Content); err != nil {
		return err
	}

	model := input.Model
	if model == "" {
		model = s.opts.DefaultModel
	}
	stream, err := s.source.Open(ctx, ChatRequest{
		Model:        model,
		SystemPrompt: char.SystemPrompt,
		History:      window,
		Message:      input.Content,
		Temperature:  s.opts.Temperature,
		MaxTokens:    s.opts.MaxTokens,
	})
	if err != nil {
		s.rollback(ctx, conv.ID)
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUpstream, "model backend unavailable", err)
	}
	defer stream.Close()

	var full []byte
	for {
		token, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn().Err(err).Uint("conversation_id", conv.ID).Msg("model stream failed mid-sequence")
			// Best effort; the client may already be gone.
			_ = emit(StreamErrorSentinel)
			s.rollback(ctx, conv.ID)
			return ErrStreamInterrupted
		}
		if token == "" {
			continue
		}
		full = append(full, token...)
		if err := emit(token); err != nil {
			s.logger.Warn().Err(err).Uint("conversation_id", conv.ID).Msg("client went away mid-stream")
			s.rollback(ctx, conv.ID)
			return ErrStreamInterrupted
		}
	}

	if err := s.history.Append(ctx, conv.ID, RoleAssistant, string(full)); err != nil {
		// The reply was streamed but cannot be committed; drop the user
		// message as well so the log never holds an unanswered turn.
		s.rollback(ctx, conv.ID)
		return ErrStreamInterrupted
	}
	return nil
}

// rollback discards the user message appended earlier in this turn. Only
// that one row is removed; the preceding completed turn must survive.
func (s *TurnService) rollback(ctx context.Context, conversationID uint) {
	if err := s.history.RemoveNewestMessage(ctx, conversationID); err != nil {
		s.logger.Error().Err(err).Uint("conversation_id", conversationID).Msg("turn rollback failed")
	}
}

func (s *TurnService) conversationLock(id uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
