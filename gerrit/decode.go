package gerrit

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goliatone/go-reactive/internal/hydrate"
)

// xssiPrefix guards every JSON response body of the review server.
const xssiPrefix = ")]}'"

// ErrEmptyBody is returned when a response carries no JSON after the prefix.
var ErrEmptyBody = errors.New("gerrit: empty response body")

// StripXSSI removes the anti-XSSI prefix from a response body.
func StripXSSI(raw []byte) []byte {
	body := bytes.TrimLeft(raw, " \t\r\n")
	if bytes.HasPrefix(body, []byte(xssiPrefix)) {
		body = body[len(xssiPrefix):]
	}
	return bytes.TrimSpace(body)
}

// Decode parses a response body for endpoint into T.
func Decode[T any](endpoint string, raw []byte) (T, error) {
	var zero T
	body := StripXSSI(raw)
	if len(body) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrEmptyBody, endpoint)
	}
	value, err := hydrate.NewDecoder[T]().DecodeJSON(hydrate.Context{Endpoint: endpoint}, body)
	if err != nil {
		return zero, fmt.Errorf("gerrit: %w", err)
	}
	return value, nil
}

// DecodeRelatedChanges parses a /related response.
func DecodeRelatedChanges(raw []byte) (*RelatedChangesInfo, error) {
	info, err := Decode[RelatedChangesInfo]("related", raw)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DecodeSubmittedTogether parses a /submitted_together response.
func DecodeSubmittedTogether(raw []byte) (*SubmittedTogetherInfo, error) {
	info, err := Decode[SubmittedTogetherInfo]("submitted_together", raw)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DecodeChanges parses a change query response.
func DecodeChanges(raw []byte) ([]ChangeInfo, error) {
	return Decode[[]ChangeInfo]("changes", raw)
}

// DecodeServerInfo hydrates the server configuration from an already parsed
// payload. Older servers send submit_whole_topic as a string.
func DecodeServerInfo(payload map[string]any) (*ServerInfo, error) {
	decoder := hydrate.NewDecoder[ServerInfo](
		hydrate.WithPreHook[ServerInfo](normalizeWholeTopic),
	)
	info, err := decoder.Decode(hydrate.Context{Endpoint: "config/server/info"}, payload)
	if err != nil {
		return nil, fmt.Errorf("gerrit: %w", err)
	}
	return &info, nil
}

func normalizeWholeTopic(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	section, ok := payload["change"].(map[string]any)
	if !ok {
		return payload, nil
	}
	raw, ok := section["submit_whole_topic"].(string)
	if !ok {
		return payload, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("submit_whole_topic: %w", err)
	}
	section["submit_whole_topic"] = value
	return payload, nil
}
