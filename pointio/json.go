package pointio

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/otsob/musii-kit/patterns"
	"github.com/otsob/musii-kit/pointset"
)

// Options for document I/O.
type Options struct {
	// Codec used for document encoding. Defaults to Default.
	Codec Codec

	// Logger for diagnostics while reading directories. No logging
	// when nil.
	Logger *slog.Logger
}

// DefaultOptions for document I/O.
var DefaultOptions = Options{}

func applyOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = Default
	}
	return opts
}

// decode reads a whole document from r, decompressing by the file
// extension of name.
func decode(r io.Reader, name string, c Codec, v any) error {
	rc, err := WrapReader(r, CompressionForPath(name))
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
	return c.Unmarshal(data, v)
}

// encode writes a document to w, compressing by the file extension of
// name.
func encode(w io.Writer, name string, c Codec, v any) error {
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	wc, err := WrapWriter(w, CompressionForPath(name))
	if err != nil {
		return err
	}
	_, err = wc.Write(data)
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadPieceFrom reads a point-set document from r. The name selects
// the compression by its file extension.
func ReadPieceFrom(r io.Reader, name string, optFns ...func(o *Options)) (*pointset.Piece, error) {
	opts := applyOptions(optFns)
	var doc PointSetDocument
	if err := decode(r, name, opts.Codec, &doc); err != nil {
		return nil, err
	}
	return doc.Piece()
}

// ReadPiece reads a point-set document from the file at path.
func ReadPiece(path string, optFns ...func(o *Options)) (*pointset.Piece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPieceFrom(f, path, optFns...)
}

// WritePieceTo writes a point-set document to w. The name selects the
// compression by its file extension.
func WritePieceTo(w io.Writer, name string, piece *pointset.Piece, optFns ...func(o *Options)) error {
	opts := applyOptions(optFns)
	return encode(w, name, opts.Codec, NewPointSetDocument(piece))
}

// WritePiece writes a point-set document to the file at path.
func WritePiece(path string, piece *pointset.Piece, optFns ...func(o *Options)) error {
	return writeFile(path, func(w io.Writer) error {
		return WritePieceTo(w, path, piece, optFns...)
	})
}

// ReadOccurrencesFrom reads pattern occurrences from r. Both a single
// occurrences document and a list of them are accepted.
func ReadOccurrencesFrom(r io.Reader, name string, optFns ...func(o *Options)) ([]*patterns.Occurrences, error) {
	opts := applyOptions(optFns)
	var docs OccurrencesList
	if err := decode(r, name, opts.Codec, &docs); err != nil {
		return nil, err
	}
	out := make([]*patterns.Occurrences, 0, len(docs))
	for _, doc := range docs {
		occ, err := doc.Occurrences()
		if err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	return out, nil
}

// ReadOccurrences reads pattern occurrences from the file at path.
func ReadOccurrences(path string, optFns ...func(o *Options)) ([]*patterns.Occurrences, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadOccurrencesFrom(f, path, optFns...)
}

// WriteOccurrencesTo writes a single occurrences document to w.
func WriteOccurrencesTo(w io.Writer, name string, occ *patterns.Occurrences, optFns ...func(o *Options)) error {
	opts := applyOptions(optFns)
	return encode(w, name, opts.Codec, NewOccurrencesDocument(occ))
}

// WriteOccurrences writes a single occurrences document to the file at
// path.
func WriteOccurrences(path string, occ *patterns.Occurrences, optFns ...func(o *Options)) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteOccurrencesTo(w, path, occ, optFns...)
	})
}

// WriteOccurrencesListTo writes a list of occurrences documents to w.
func WriteOccurrencesListTo(w io.Writer, name string, occs []*patterns.Occurrences, optFns ...func(o *Options)) error {
	opts := applyOptions(optFns)
	docs := make([]*OccurrencesDocument, 0, len(occs))
	for _, occ := range occs {
		docs = append(docs, NewOccurrencesDocument(occ))
	}
	return encode(w, name, opts.Codec, docs)
}

// WriteOccurrencesList writes a list of occurrences documents to the
// file at path.
func WriteOccurrencesList(path string, occs []*patterns.Occurrences, optFns ...func(o *Options)) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteOccurrencesListTo(w, path, occs, optFns...)
	})
}

// ReadPatternSetFrom reads a pattern-set document from r.
func ReadPatternSetFrom(r io.Reader, name string, optFns ...func(o *Options)) (*patterns.Set, error) {
	opts := applyOptions(optFns)
	var doc PatternSetDocument
	if err := decode(r, name, opts.Codec, &doc); err != nil {
		return nil, err
	}
	return doc.Set()
}

// ReadPatternSet reads a pattern-set document from the file at path.
func ReadPatternSet(path string, optFns ...func(o *Options)) (*patterns.Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPatternSetFrom(f, path, optFns...)
}

// WritePatternSetTo writes a pattern-set document to w.
func WritePatternSetTo(w io.Writer, name string, set *patterns.Set, optFns ...func(o *Options)) error {
	opts := applyOptions(optFns)
	return encode(w, name, opts.Codec, NewPatternSetDocument(set))
}

// WritePatternSet writes a pattern-set document to the file at path.
func WritePatternSet(path string, set *patterns.Set, optFns ...func(o *Options)) error {
	return writeFile(path, func(w io.Writer) error {
		return WritePatternSetTo(w, path, set, optFns...)
	})
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Join(err, os.Remove(path))
	}
	return nil
}
