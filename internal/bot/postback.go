package bot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPostback is returned for data without the "module:action" shape.
var ErrInvalidPostback = errors.New("invalid postback format")

// PostbackData represents structured postback payload.
// Format: "module:action$param1$param2".
type PostbackData struct {
	Module string   // Module identifier (e.g., "xien", "cang", "ketqua")
	Action string   // Action identifier (e.g., "3", "4d", "latest")
	Params []string // Positional parameters after the action
}

// ParsePostback parses postback data string into structured PostbackData.
// Data without a ":" is a bare module name, e.g. "menu" or "help".
func ParsePostback(data string) (*PostbackData, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidPostback)
	}

	module, remainder, hasAction := strings.Cut(data, ":")
	if module == "" {
		return nil, fmt.Errorf("%w: missing module in %q", ErrInvalidPostback, data)
	}
	if !hasAction {
		return &PostbackData{Module: module}, nil
	}

	parts := strings.Split(remainder, PostbackSplitChar)
	if parts[0] == "" {
		return nil, fmt.Errorf("%w: missing action in %q", ErrInvalidPostback, data)
	}

	return &PostbackData{
		Module: module,
		Action: parts[0],
		Params: parts[1:],
	}, nil
}

// Param returns the i-th parameter or "".
func (p *PostbackData) Param(i int) string {
	if i < 0 || i >= len(p.Params) {
		return ""
	}
	return p.Params[i]
}

// String encodes the payload back into postback data.
func (p *PostbackData) String() string {
	if p.Action == "" {
		return p.Module
	}
	parts := append([]string{p.Action}, p.Params...)
	return p.Module + ":" + strings.Join(parts, PostbackSplitChar)
}
