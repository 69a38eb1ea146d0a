package respond

import (
	"strconv"
	"strings"
)

type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Malformed or out of
// range q values fall back to 1.0; a bare type is read as type/*.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		params := strings.Split(part, ";")
		mr := mediaRange{q: 1.0}

		mediaType := strings.ToLower(strings.TrimSpace(params[0]))
		if typ, sub, ok := strings.Cut(mediaType, "/"); ok {
			mr.typ, mr.subtype = typ, sub
		} else {
			mr.typ, mr.subtype = mediaType, "*"
		}

		for _, p := range params[1:] {
			key, val, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.ToLower(strings.TrimSpace(key)) != "q" {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// quality returns the q value of the most specific range matching
// application/<format>, or -1 when nothing matches.
func quality(ranges []mediaRange, format string) float64 {
	best, bestSpecificity := -1.0, -1
	for _, mr := range ranges {
		specificity := -1
		switch {
		case mr.typ == "application" && mr.subtype == format:
			specificity = 3
		case mr.typ == "application" && mr.subtype == "*+"+format:
			specificity = 2
		case mr.typ == "application" && mr.subtype == "*":
			specificity = 1
		case mr.typ == "*" && mr.subtype == "*":
			specificity = 0
		}
		if specificity > bestSpecificity {
			best, bestSpecificity = mr.q, specificity
		}
	}
	return best
}

// selectFormat reports whether CBOR should be used for the given Accept
// header. JSON wins ties and is the default.
func selectFormat(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}
	ranges := parseAccept(accept)
	qCBOR := quality(ranges, "cbor")
	qJSON := quality(ranges, "json")
	return qCBOR > 0 && qCBOR > qJSON
}
