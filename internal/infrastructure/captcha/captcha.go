package captcha

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/mojocn/base64Captcha"

	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/cache"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

const (
	imageHeight = 60
	imageWidth  = 160
	codeLength  = 4
	codeSource  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Challenge is a generated captcha: the ID the client echoes back and the
// rendered PNG image.
type Challenge struct {
	ID    string
	Image io.WriterTo
}

// Manager generates image captchas and verifies submitted answers against a
// challenge store. Every challenge is single use.
type Manager struct {
	driver *base64Captcha.DriverString
	store  cache.ChallengeStore
	ttl    time.Duration
}

func NewManager(store cache.ChallengeStore, ttl time.Duration) *Manager {
	driver := base64Captcha.NewDriverString(
		imageHeight, imageWidth,
		0, base64Captcha.OptionShowHollowLine,
		codeLength, codeSource,
		nil, nil, nil,
	)
	return &Manager{driver: driver, store: store, ttl: ttl}
}

// Generate creates a new challenge and stores its answer for the configured
// TTL.
func (m *Manager) Generate(ctx context.Context) (*Challenge, error) {
	id, content, answer := m.driver.GenerateIdQuestionAnswer()
	item, err := m.driver.DrawCaptcha(content)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal, "failed to render captcha", err)
	}
	if err := m.store.Put(ctx, storeKey(id), strings.ToUpper(answer), m.ttl); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "failed to store captcha answer", err)
	}
	return &Challenge{ID: id, Image: item}, nil
}

// Verify checks a submitted code against the stored answer. The comparison is
// case insensitive. A correct answer consumes the challenge; a wrong answer
// leaves it in place so the user may retry until the TTL runs out.
func (m *Manager) Verify(ctx context.Context, id, code string) (bool, error) {
	if id == "" || len(code) != codeLength {
		return false, nil
	}
	ok, err := m.store.TakeIfEquals(ctx, storeKey(id), strings.ToUpper(code))
	if err != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExternal, "failed to verify captcha", err)
	}
	return ok, nil
}

func storeKey(id string) string {
	return "captcha:" + id
}
