package assets

import (
	"embed"
	"io/fs"
)

//go:embed cues/*.cue
var FS embed.FS

// Cues returns the cue directory as its own filesystem root.
func Cues() fs.FS {
	sub, err := fs.Sub(FS, "cues")
	if err != nil {
		panic(err)
	}
	return sub
}
