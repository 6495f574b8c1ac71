package pointio

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/otsob/musii-kit/patterns"
	"github.com/otsob/musii-kit/pointset"
)

// ReadDir builds a pattern set from the files under dir. CSV files
// become pieces named after the file, JSON files contribute pattern
// occurrences or whole pattern sets; occurrences are associated with
// pieces by the piece name they record. Pieces with no patterns are
// left out of the result.
func ReadDir(dir string, optFns ...func(o *Options)) (*patterns.Set, error) {
	opts := applyOptions(optFns)
	pieces := make(map[string]*pointset.Piece)
	pats := make(map[string][]*patterns.Occurrences)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		base := TrimCompressionExt(d.Name())
		switch strings.ToLower(filepath.Ext(base)) {
		case ".csv":
			ps, err := ReadCSV(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			name := strings.TrimSuffix(base, filepath.Ext(base))
			pieces[name] = pointset.NewPiece(name, ps)
		case ".json":
			if err := readJSONEntry(path, opts, pieces, pats); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	set := patterns.NewSet()
	for _, name := range sortedPieceNames(pieces) {
		occs, ok := pats[name]
		if !ok {
			if opts.Logger != nil {
				opts.Logger.Debug("piece has no patterns, excluded", slog.String("piece", name))
			}
			continue
		}
		if err := set.Add(pieces[name], occs...); err != nil {
			return nil, err
		}
		delete(pats, name)
	}
	if opts.Logger != nil {
		for name := range pats {
			opts.Logger.Warn("patterns reference a missing piece", slog.String("piece", name))
		}
	}
	return set, nil
}

// WriteDir writes the pattern set under dir as one pattern-set JSON
// document per piece, named after the piece. Files written this way
// read back with ReadDir. Path separators in piece names are replaced
// to keep every piece in dir itself.
func WriteDir(dir string, set *patterns.Set, optFns ...func(o *Options)) error {
	for item := range set.All() {
		single := patterns.NewSet()
		if err := single.Add(item.Piece, item.Patterns...); err != nil {
			return err
		}
		path := filepath.Join(dir, pieceFileName(item.Piece.Name)+".json")
		if err := WritePatternSet(path, single, optFns...); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func pieceFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
	if mapped == "" {
		return "piece"
	}
	return mapped
}

// readJSONEntry dispatches one JSON file by its sniffed document kind.
func readJSONEntry(path string, opts Options, pieces map[string]*pointset.Piece, pats map[string][]*patterns.Occurrences) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rc, err := WrapReader(f, CompressionForPath(path))
	if err != nil {
		return err
	}
	data, err := io.ReadAll(rc)
	if cerr := rc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	switch kind := Sniff(data); kind {
	case DocOccurrences, DocOccurrencesList:
		var docs OccurrencesList
		if err := opts.Codec.Unmarshal(data, &docs); err != nil {
			return err
		}
		for _, doc := range docs {
			occ, err := doc.Occurrences()
			if err != nil {
				return err
			}
			pats[occ.Piece] = append(pats[occ.Piece], occ)
		}
	case DocPointSet:
		var doc PointSetDocument
		if err := opts.Codec.Unmarshal(data, &doc); err != nil {
			return err
		}
		piece, err := doc.Piece()
		if err != nil {
			return err
		}
		if piece.Name == "" {
			base := TrimCompressionExt(filepath.Base(path))
			piece.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		pieces[piece.Name] = piece
	case DocPatternSet:
		var doc PatternSetDocument
		if err := opts.Codec.Unmarshal(data, &doc); err != nil {
			return err
		}
		nested, err := doc.Set()
		if err != nil {
			return err
		}
		for item := range nested.All() {
			pieces[item.Piece.Name] = item.Piece
			pats[item.Piece.Name] = append(pats[item.Piece.Name], item.Patterns...)
		}
	default:
		if opts.Logger != nil {
			opts.Logger.Warn("skipping unrecognized JSON document", slog.String("path", path))
		}
	}
	return nil
}

func sortedPieceNames(pieces map[string]*pointset.Piece) []string {
	names := make([]string, 0, len(pieces))
	for name := range pieces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
