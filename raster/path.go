package raster

import (
	"fmt"
	"strconv"
	"strings"
)

// pathOp is one absolute path command. The chart layouts only emit
// M/L/C/Z, which is all this parser accepts.
type pathOp struct {
	cmd  byte
	args []float64
}

var pathArgCounts = map[byte]int{'M': 2, 'L': 2, 'C': 6, 'Z': 0}

// parsePath splits SVG path data into absolute commands.
func parsePath(d string) ([]pathOp, error) {
	var ops []pathOp
	var cur *pathOp

	flush := func() error {
		if cur == nil {
			return nil
		}
		if len(cur.args) != pathArgCounts[cur.cmd] {
			return fmt.Errorf("path command %c wants %d arguments, got %d",
				cur.cmd, pathArgCounts[cur.cmd], len(cur.args))
		}
		ops = append(ops, *cur)
		cur = nil
		return nil
	}

	for _, field := range strings.FieldsFunc(d, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	}) {
		for len(field) > 0 {
			c := field[0]
			if _, ok := pathArgCounts[c]; ok {
				if err := flush(); err != nil {
					return nil, err
				}
				cur = &pathOp{cmd: c}
				field = field[1:]
				continue
			}
			if cur == nil {
				return nil, fmt.Errorf("path data %q starts without a command", d)
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("bad path number %q: %w", field, err)
			}
			cur.args = append(cur.args, v)
			break
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return ops, nil
}
