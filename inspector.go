package imagekit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/gobeaver/imagekit/imageinfo"
	"github.com/gobeaver/imagekit/internal/logger"
)

// compressionMagicSize is the number of leading bytes DetectCompression needs.
const compressionMagicSize = 4

// Inspector identifies the images stored behind a FileReader.
//
// Inspect reads only the header bytes the detectors ask for; a compressed
// source (.gz, .zst) is inflated in memory first. Results are cached by
// file fingerprint when a Cache is configured, and checked against Limits
// on every call.
//
// An Inspector is safe for concurrent use.
type Inspector struct {
	fs   FileReader
	opts Options
	log  logger.Logger
}

// NewInspector creates an Inspector reading from fs.
func NewInspector(fs FileReader, opts ...Option) *Inspector {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logger.Discard()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	return &Inspector{fs: fs, opts: o, log: o.Logger}
}

// NewFromConfig creates the configured driver and an Inspector over it.
// The driver package must be registered, usually by a blank import of
// driver/local or driver/memory. Options override the config.
func NewFromConfig(cfg *Config, opts ...Option) (*Inspector, error) {
	fs, err := CreateDriver(cfg)
	if err != nil {
		return nil, err
	}
	algorithms, err := ParseChecksums(cfg.Checksums)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithLimits(cfg.Limits()),
		WithHeaderCacheSize(cfg.HeaderCacheSize),
		WithMaxFileSize(cfg.MaxFileSize),
		WithConcurrency(cfg.Concurrency),
	}
	if len(algorithms) > 0 {
		base = append(base, WithChecksums(algorithms...))
	}
	if cfg.CacheEnabled {
		base = append(base, WithCache(NewMemoryCache(), cfg.CacheTTL()))
	}
	return NewInspector(fs, append(base, opts...)...), nil
}

// FileReader returns the storage the Inspector reads from.
func (in *Inspector) FileReader() FileReader {
	return in.fs
}

// CacheStats returns the statistics of the result cache, if it keeps any.
func (in *Inspector) CacheStats() (CacheStatistics, bool) {
	s, ok := in.opts.Cache.(interface{ Stats() CacheStatistics })
	if !ok {
		return CacheStatistics{}, false
	}
	return s.Stats(), true
}

// Inspect identifies the file at path.
//
// The returned error wraps ErrUnrecognized when no detector matched and a
// *DimensionError when the image exceeds the configured Limits; the Result
// is still returned in both cases. Any other error comes with a nil Result.
func (in *Inspector) Inspect(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := in.fs.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.IsDir {
		return nil, &PathError{Op: "inspect", Path: path, Err: ErrIsDir}
	}
	return in.inspectFile(ctx, info)
}

// InspectBytes identifies an in-memory image. name is only used for the
// extension hint and as the Result path.
func (in *Inspector) InspectBytes(ctx context.Context, name string, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := ""
	if in.opts.Cache != nil {
		key = ContentFingerprint(data) + ":" + hintFormat(name).String()
	}
	res, err := in.cached(key, func() (Result, error) {
		res := Result{Path: name, FileSize: int64(len(data))}
		if err := in.detect(bytes.NewReader(data), int64(len(data)), &res); err != nil {
			return res, err
		}
		return res, nil
	})
	if err != nil {
		return nil, &PathError{Op: "inspect", Path: name, Err: err}
	}
	res.Path = name
	return in.check(res)
}

func (in *Inspector) inspectFile(ctx context.Context, info *FileInfo) (*Result, error) {
	key := ""
	if in.opts.Cache != nil {
		key = Fingerprint(info.Path, info.Size, info.ModTime)
	}
	res, err := in.cached(key, func() (Result, error) {
		f, err := in.fs.Open(ctx, info.Path)
		if err != nil {
			return Result{}, err
		}
		defer f.Close()

		res := Result{Path: info.Path, FileSize: f.Size(), ModTime: info.ModTime}
		if err := in.detect(f, f.Size(), &res); err != nil {
			return res, err
		}
		return res, nil
	})
	if err != nil {
		var pe *PathError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &PathError{Op: "inspect", Path: info.Path, Err: err}
	}

	in.log.Debug("inspected",
		"path", res.Path,
		"format", res.Format,
		"size", res.Size(),
		"compression", res.Compression,
	)
	return in.check(res)
}

// cached returns the result stored under key, or runs detect and stores its
// result. An empty key bypasses the cache. Failed detections are not stored.
func (in *Inspector) cached(key string, detect func() (Result, error)) (Result, error) {
	if key != "" {
		if res, ok := in.opts.Cache.Get(key); ok {
			return res.clone(), nil
		}
	}
	res, err := detect()
	if err != nil {
		return Result{}, err
	}
	if key != "" {
		in.opts.Cache.Set(key, res.clone(), in.opts.CacheTTL)
	}
	return res, nil
}

// detect classifies the size bytes behind ra into res.
func (in *Inspector) detect(ra io.ReaderAt, size int64, res *Result) error {
	head := make([]byte, min(size, compressionMagicSize))
	if _, err := ra.ReadAt(head, 0); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	var (
		info imageinfo.Info
		err  error
	)
	if c := DetectCompression(head); c != CompressionNone {
		data, ierr := Inflate(io.NewSectionReader(ra, 0, size), c, in.opts.MaxFileSize)
		if ierr != nil {
			return ierr
		}
		res.Compression = c
		info, err = imageinfo.Parse(
			imageinfo.NewBytesReader(data, imageinfo.WithCacheSize(in.opts.HeaderCacheSize)),
			hints(TrimCompressionExt(res.Path))...,
		)
	} else {
		info, err = imageinfo.Parse(
			imageinfo.NewReaderAt(ra, size, imageinfo.WithCacheSize(in.opts.HeaderCacheSize)),
			hints(res.Path)...,
		)
	}
	if err != nil {
		return err
	}
	res.setInfo(info)

	if len(in.opts.Checksums) > 0 {
		sums, err := CalculateChecksums(io.NewSectionReader(ra, 0, size), in.opts.Checksums)
		if err != nil {
			return err
		}
		res.Checksums = sums
	}
	return nil
}

// check applies the recognition and dimension checks to a detected result.
func (in *Inspector) check(res Result) (*Result, error) {
	if !res.Format.Valid() {
		return &res, &PathError{Op: "inspect", Path: res.Path, Err: ErrUnrecognized}
	}
	if err := in.opts.Limits.Check(res.Size()); err != nil {
		res.Error = err.Error()
		return &res, &PathError{Op: "inspect", Path: res.Path, Err: err}
	}
	return &res, nil
}

func hintFormat(name string) imageinfo.Format {
	return imageinfo.FormatFromExtension(path.Base(name))
}

func hints(name string) []imageinfo.ParseOption {
	if f := hintFormat(name); f.Valid() {
		return []imageinfo.ParseOption{imageinfo.WithMostLikely(f)}
	}
	return nil
}

// ============================================================================
// Scanning
// ============================================================================

type resultClass int

const (
	classOK resultClass = iota
	classUnrecognized
	classRejected
	classFailed
)

func classify(err error) resultClass {
	switch {
	case err == nil:
		return classOK
	case errors.Is(err, ErrUnrecognized):
		return classUnrecognized
	case errors.Is(err, ErrTooLarge):
		return classRejected
	default:
		return classFailed
	}
}

// Scan inspects every file under root whose path relative to root matches
// pattern (see Pattern). Files are inspected by a pool of workers; a file
// that fails is recorded in its Result and does not stop the scan. Results
// are sorted by path.
func (in *Inspector) Scan(ctx context.Context, root, pattern string) (*Report, error) {
	start := time.Now()
	files, err := in.list(ctx, root, pattern)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		ID:        uuid.NewString(),
		Root:      root,
		Pattern:   pattern,
		StartedAt: start,
	}
	log := in.log.With("scan_id", rep.ID)
	log.Debug("scan started", "root", root, "pattern", pattern, "files", len(files))

	results := make([]Result, len(files))
	classes := make([]resultClass, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(in.opts.Concurrency, len(files)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := in.inspectFile(ctx, &files[i])
				classes[i] = classify(err)
				if res == nil {
					res = &Result{Path: files[i].Path, FileSize: files[i].Size, ModTime: files[i].ModTime}
					res.Width, res.Height = -1, -1
					res.Error = err.Error()
				}
				if classes[i] == classFailed {
					log.Warn("inspect failed", "path", files[i].Path, "error", err)
				}
				results[i] = *res
			}
		}()
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep.Results = results
	rep.Summary = summarize(results, classes)
	rep.Duration = time.Since(start)
	if stats, ok := in.CacheStats(); ok {
		rep.CacheStats = &stats
	}
	log.Info("scan finished",
		"root", root,
		"total", rep.Summary.Total,
		"recognized", rep.Summary.Recognized,
		"failed", rep.Summary.Failed,
		"duration", rep.Duration,
	)
	return rep, nil
}

// list returns the regular files under root matching pattern, sorted by path.
func (in *Inspector) list(ctx context.Context, root, pattern string) ([]FileInfo, error) {
	p, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	entries, err := in.fs.ListContents(ctx, root, true)
	if err != nil {
		return nil, err
	}

	files := entries[:0]
	for _, e := range entries {
		if !e.IsDir && p.Match(relativeTo(root, e.Path)) {
			files = append(files, e)
		}
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// ============================================================================
// Watching
// ============================================================================

// Watch scans root, hands the report to onReport, and scans again after
// every change to a matching file until ctx is done. Drivers implementing
// CanWatch notify changes natively; other drivers are polled by comparing
// listings every PollInterval. Changes made during a scan trigger another
// scan. onReport is called from one goroutine at a time.
//
// Watch returns nil when ctx is done, or the error that prevented watching.
func (in *Inspector) Watch(ctx context.Context, root, pattern string, onReport func(*Report)) error {
	first, err := in.changeToken(ctx, root, pattern)
	if err != nil {
		return err
	}
	rep, err := in.Scan(ctx, root, pattern)
	if err != nil {
		return err
	}
	onReport(rep)

	errc := make(chan error, 1)
	producer := func() (ChangeToken, error) {
		if first != nil {
			token := first
			first = nil
			return token, nil
		}
		token, err := in.changeToken(ctx, root, pattern)
		if err != nil && ctx.Err() == nil {
			errc <- err
		}
		return token, err
	}

	cancel := OnChange(ctx, producer, func() {
		rep, err := in.Scan(ctx, root, pattern)
		if err != nil {
			if ctx.Err() == nil {
				in.log.Error("rescan failed", "root", root, "error", err)
			}
			return
		}
		in.log.Debug("rescanned after change", "root", root, "scan_id", rep.ID)
		onReport(rep)
	})
	defer cancel()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errc:
		return err
	}
}

func (in *Inspector) changeToken(ctx context.Context, root, pattern string) (ChangeToken, error) {
	if w, ok := in.fs.(CanWatch); ok {
		return w.Watch(ctx, joinPattern(root, pattern))
	}

	before, err := in.snapshot(ctx, root, pattern)
	if err != nil {
		return nil, err
	}
	return NewPollingChangeToken(ctx, PollingConfig{
		Interval: in.opts.PollInterval,
		CheckFunc: func() bool {
			now, err := in.snapshot(ctx, root, pattern)
			return err == nil && now != before
		},
	}), nil
}

// snapshot hashes the listing of matching files.
func (in *Inspector) snapshot(ctx context.Context, root, pattern string) (uint64, error) {
	files, err := in.list(ctx, root, pattern)
	if err != nil {
		return 0, err
	}
	d := xxhash.New()
	for _, f := range files {
		_, _ = d.WriteString(f.Path)
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(strconv.FormatInt(f.Size, 10))
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(strconv.FormatInt(f.ModTime.UnixNano(), 10))
		_, _ = d.WriteString("\n")
	}
	return d.Sum64(), nil
}
