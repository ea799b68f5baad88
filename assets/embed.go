package assets

import (
	"embed"
)

//go:embed words.json
var FS embed.FS

// WordsJSON returns the built-in grade → words table.
func WordsJSON() ([]byte, error) {
	return FS.ReadFile("words.json")
}
