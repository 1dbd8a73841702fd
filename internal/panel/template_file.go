package panel

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"xrd-template/pkg/geometry"
)

// ReadTemplate parses a two-column whitespace-separated template file into a
// flat vertex list. Rows whose values parse as NaN act as sub-loop break
// markers and are preserved as sentinel vertices. Lines starting with '#'
// and blank lines are skipped.
func ReadTemplate(r io.Reader) ([]geometry.Point2D, error) {
	var pts []geometry.Point2D
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("template line %d: need 2 columns, got %d", lineNo, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("template line %d: %w", lineNo, err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("template line %d: %w", lineNo, err)
		}
		pts = append(pts, geometry.Point2D{X: x, Y: y})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return pts, nil
}

// LoadTemplate reads a template file from disk.
func LoadTemplate(path string) ([]geometry.Point2D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()
	return ReadTemplate(f)
}
