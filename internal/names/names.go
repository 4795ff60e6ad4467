// internal/names/names.go
//
// Named-color list used for the target hint ("looks like teal").
//
// Responsibilities:
//   - Load "name #rrggbb" lines from COLOR_NAMES_FILE or fall back to the embedded default.
//   - Closest: nearest named color by CIE Lab distance (go-colorful).
//   - Stats: number of loaded names for the debug endpoint.
//
// Initialization is run once (sync.Once). Blank lines and "#" comments are skipped;
// malformed lines are dropped rather than failing the whole list.

package names

import (
	"bufio"
	_ "embed"
	"errors"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/robalobadob/colorguess/internal/color"
)

//go:embed default_names.txt
var embeddedNames string

// Named is one entry of the list.
type Named struct {
	Name  string
	Color color.Color
}

var (
	initOnce   sync.Once
	list       []Named
	initialErr error
)

// Init loads the list exactly once. path may be empty to use the embedded list.
// Returns an error if the resulting list is empty.
func Init(path string) error {
	initOnce.Do(func() {
		var err error
		if path != "" {
			list, err = readFile(path)
		} else {
			list, err = Parse(strings.NewReader(embeddedNames))
		}
		if err != nil {
			initialErr = err
			return
		}
		if len(list) == 0 {
			initialErr = errors.New("names: color list is empty")
		}
	})
	return initialErr
}

func readFile(path string) ([]Named, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads "name #rrggbb" lines.
func Parse(r io.Reader) ([]Named, error) {
	var out []Named
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		c, err := color.Parse(fields[1])
		if err != nil {
			continue
		}
		out = append(out, Named{Name: strings.ToLower(fields[0]), Color: c})
	}
	return out, sc.Err()
}

// Closest returns the nearest entry of entries to c. ok is false when entries is empty.
func Closest(entries []Named, c color.Color) (Named, bool) {
	best, bestD := Named{}, math.Inf(1)
	in := c.Colorful()
	for _, n := range entries {
		if d := in.DistanceLab(n.Color.Colorful()); d < bestD {
			best, bestD = n, d
		}
	}
	return best, len(entries) > 0
}

// Name returns the closest loaded name for c, or "" before Init.
func Name(c color.Color) string {
	n, ok := Closest(list, c)
	if !ok {
		return ""
	}
	return n.Name
}

// Stats returns the number of loaded names.
func Stats() int { return len(list) }
