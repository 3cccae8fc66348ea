package usecase

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"
)

// EncodeCursor packs a keyset position into an opaque page token.
// The token is base64("<unix nanos>:<message id>"); clients must treat it as
// opaque and hand it back unchanged.
func EncodeCursor(c repository.MessageCursor) string {
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + ":" + strconv.FormatInt(c.ID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a page token. An empty token means "from the top".
func DecodeCursor(token string) (*repository.MessageCursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", messaging.ErrValidation)
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: malformed cursor", messaging.ErrValidation)
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", messaging.ErrValidation)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", messaging.ErrValidation)
	}

	return &repository.MessageCursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, nil
}
