// Package render substitutes per-contact merge tags into broadcast and
// reminder content before it is handed to a provider.
package render

import (
	"strings"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

// Merge replaces the known merge tags with the contact's values. An empty
// contact field renders as an empty string; a tag the renderer does not
// know is left in the text untouched so it stays visible in the message.
func Merge(content string, c *model.Contact) string {
	if content == "" || c == nil {
		return content
	}
	r := strings.NewReplacer(
		"{{name}}", c.Name,
		"{{email}}", c.Email,
		"{{phone}}", c.Phone,
		"{{company}}", c.Company,
	)
	return r.Replace(content)
}
