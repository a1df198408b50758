package monitor

import (
	"fmt"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/simhost"
)

// DefaultPrefix is the DEF name prefix of the boxes in the arena world.
const DefaultPrefix = "CAIXA"

// ObjectName builds the DEF name of the index-th object (1-based).
func ObjectName(prefix string, index int) string {
	return fmt.Sprintf("%s%02d", prefix, index)
}

// Discover resolves <prefix>01, <prefix>02, ... until the first missing
// index. Gaps end discovery.
func Discover(sup simhost.Supervisor, prefix string) []TrackedObject {
	var objects []TrackedObject
	for i := 1; ; i++ {
		name := ObjectName(prefix, i)
		node, ok := sup.FromDef(name)
		if !ok || node == nil {
			return objects
		}
		objects = append(objects, TrackedObject{Name: name, Node: node})
	}
}
