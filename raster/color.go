package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black": {0x00, 0x00, 0x00, 0xff},
	"white": {0xff, 0xff, 0xff, 0xff},
	"red":   {0xff, 0x00, 0x00, 0xff},
	"green": {0x00, 0x80, 0x00, 0xff},
	"blue":  {0x00, 0x00, 0xff, 0xff},
	"grey":  {0x80, 0x80, 0x80, 0xff},
	"gray":  {0x80, 0x80, 0x80, 0xff},
}

// parseColor resolves the paint attribute values the chart emits:
// #rgb, #rrggbb, rgb(r,g,b) and a few named colors. The second return
// is false for "none" or an empty value.
func parseColor(s string) (color.NRGBA, bool, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "" || s == "none":
		return color.NRGBA{}, false, nil
	case strings.HasPrefix(s, "#"):
		c, err := parseHexColor(s[1:])
		return c, err == nil, err
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return color.NRGBA{}, false, fmt.Errorf("invalid rgb() color %q", s)
		}
		var v [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return color.NRGBA{}, false, fmt.Errorf("invalid rgb() color %q", s)
			}
			v[i] = uint8(n)
		}
		return color.NRGBA{v[0], v[1], v[2], 0xff}, true, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, true, nil
	}
	return color.NRGBA{}, false, fmt.Errorf("unsupported color %q", s)
}

func parseHexColor(hex string) (color.NRGBA, error) {
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color #%s", hex)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color #%s", hex)
	}
	return color.NRGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 0xff}, nil
}
