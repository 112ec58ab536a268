package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a 2-D coordinate.
type Point struct {
	X, Y float64
}

// ParsePoints parses a matrix literal such as "[10, 20; 30, 40]" into
// points. Rows are separated by ';' and coordinates by ','. An empty
// literal yields no points.
func ParsePoints(s string) ([]Point, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var pts []Point
	for _, row := range strings.Split(s, ";") {
		fields := strings.Split(row, ",")
		if len(fields) != 2 {
			return nil, fmt.Errorf("point %q: want 2 coordinates, got %d", strings.TrimSpace(row), len(fields))
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", strings.TrimSpace(row), err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %w", strings.TrimSpace(row), err)
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts, nil
}

// Points parses the line's Points property.
func (l *Line) Points() ([]Point, error) {
	return ParsePoints(l.Properties.Value("Points"))
}
