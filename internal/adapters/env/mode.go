package env

import (
	"os"

	"github.com/spf13/cast"
)

type Mode int

const (
	ModeProd Mode = iota
	ModeDev
)

func (m Mode) String() string {
	if m == ModeDev {
		return "dev"
	}
	return "prod"
}

// DetectMode reads STUDIO_DEV. Any truthy value turns on dev mode.
func DetectMode() Mode {
	if cast.ToBool(os.Getenv("STUDIO_DEV")) {
		return ModeDev
	}
	return ModeProd
}

func IsDev() bool {
	return DetectMode() == ModeDev
}
