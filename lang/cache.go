package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parsed documents keyed by source and option hash.
var globalCache sync.Map

// entry is a cached parse result. The parse runs once per key even when
// several goroutines request the same document concurrently.
type entry struct {
	once sync.Once
	doc  *Document
	err  error
}

// hashOptions encodes the options that affect the parse result using gob and
// hashes them with xxh3.
func hashOptions(o *options) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(o.maxDepth)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader reads a complete document from r and parses it.
// The Document is nil only when reading fails, in which case the error wraps
// [ErrReadInput].
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Document, error) {
	// Wrap reader with async read-ahead so reads overlap with buffering.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := applyOptions(opts...)

	o.logger.TraceContext(ctx, "read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
		slog.Bool("cache", o.cache),
	)

	if o.cache {
		return parseCached(ctx, string(data), o)
	}

	return parse(ctx, string(data), o)
}

// parseCached returns the cached parse of source, parsing it on first use.
func parseCached(
	ctx context.Context,
	source string,
	o *options,
) (*Document, error) {
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(o)
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := globalCache.LoadOrStore(key, new(entry))

	cached, ok := value.(*entry)
	if !ok {
		return parse(ctx, source, o)
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit),
	)

	cached.once.Do(func() {
		cached.doc, cached.err = parse(ctx, source, o)
	})

	// A hash collision would return a document for different text.
	if cached.doc.Source != source {
		return parse(ctx, source, o)
	}

	return cached.doc, cached.err
}

// ClearCache removes all cached documents.
func ClearCache() {
	globalCache.Clear()
}
