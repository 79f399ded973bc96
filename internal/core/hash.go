package core

import (
	"fmt"
	"hash/fnv"
)

// RenderKey identifies a render by its source and serialized properties.
func RenderKey(source string, props []byte) string {
	h := fnv.New64a()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write(props)
	return fmt.Sprintf("%x", h.Sum64())
}

func HashContent(content []byte) string {
	h := fnv.New32a()
	h.Write(content)
	return fmt.Sprintf("%08x", h.Sum32())
}
