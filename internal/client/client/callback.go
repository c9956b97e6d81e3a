package client

import (
	"fmt"
	"net/url"
	"strings"
)

type callbackParams struct {
	values url.Values
}

// parseCallbackURL collects parameters from both the query and the fragment.
// Fragment values win when a key appears in both.
func parseCallbackURL(rawURL string) (callbackParams, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return callbackParams{}, fmt.Errorf("invalid callback url: %w", err)
	}

	values := url.Values{}
	for k, v := range u.Query() {
		values[k] = v
	}
	if frag := u.EscapedFragment(); frag != "" {
		// ParseQuery keeps every well-formed pair even when it reports an error.
		fragValues, _ := url.ParseQuery(frag)
		for k, v := range fragValues {
			values[k] = v
		}
	}
	return callbackParams{values: values}, nil
}

func (p callbackParams) get(key string) string {
	return strings.TrimSpace(p.values.Get(key))
}

// errorDescription returns the human-readable error carried by the link.
func (p callbackParams) errorDescription() string {
	return strings.ReplaceAll(p.get("error_description"), "+", " ")
}

func (p callbackParams) isRecovery() bool {
	return strings.EqualFold(p.get("type"), "recovery")
}
