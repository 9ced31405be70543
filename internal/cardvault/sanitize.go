package cardvault

import (
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Card text may come straight from an AI generation step or a browser form,
// so it is stripped down to plain text before it is stored.
var cardTextPolicy = bluemonday.StrictPolicy()

func sanitizeCardText(input string) (string, error) {
	sanitized := strings.TrimSpace(cardTextPolicy.Sanitize(input))
	if sanitized == "" {
		return "", errors.New("text is empty or unsafe")
	}
	return sanitized, nil
}
