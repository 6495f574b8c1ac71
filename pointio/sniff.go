package pointio

import "github.com/tidwall/gjson"

// DocKind identifies the document format of a JSON payload.
type DocKind int

const (
	// DocUnknown marks payloads that are not a recognized document.
	DocUnknown DocKind = iota
	// DocPointSet is a point-set document.
	DocPointSet
	// DocOccurrences is a single pattern occurrences document.
	DocOccurrences
	// DocOccurrencesList is a list of pattern occurrences documents.
	DocOccurrencesList
	// DocPatternSet is a pattern-set document keyed by piece name.
	DocPatternSet
)

func (k DocKind) String() string {
	switch k {
	case DocPointSet:
		return "point-set"
	case DocOccurrences:
		return "pattern occurrences"
	case DocOccurrencesList:
		return "pattern occurrences list"
	case DocPatternSet:
		return "pattern set"
	default:
		return "unknown"
	}
}

// Sniff inspects a JSON payload and reports which document format it
// holds, without decoding the point data.
func Sniff(data []byte) DocKind {
	if !gjson.ValidBytes(data) {
		return DocUnknown
	}
	v := gjson.ParseBytes(data)

	if v.IsArray() {
		elems := v.Array()
		if len(elems) > 0 && isOccurrences(elems[0]) {
			return DocOccurrencesList
		}
		return DocUnknown
	}
	if !v.IsObject() {
		return DocUnknown
	}
	if isOccurrences(v) {
		return DocOccurrences
	}
	if v.Get("representation").Str == RepresentationPointSet && v.Get("piece_name").Exists() {
		return DocPointSet
	}

	kind := DocUnknown
	v.ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("point-set").Exists() {
			kind = DocPatternSet
		}
		return false
	})
	return kind
}

func isOccurrences(v gjson.Result) bool {
	return v.Get("pattern").Exists() && v.Get("piece").Exists()
}
