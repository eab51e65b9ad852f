// Package imagekit identifies the images held in a storage backend and reports
// their container format and pixel size without decoding pixel data.
//
// The detection engine lives in [github.com/gobeaver/imagekit/imageinfo]; this
// package puts it to work over a [FileReader]: single files, whole directory
// trees and live watches, with result caching, dimension limits, checksums and
// transparent inflation of gzip and zstd compressed sources.
//
// A stack blur filter for packed pixel buffers is provided by
// [github.com/gobeaver/imagekit/blur].
//
// # Storage Backends
//
//   - Local filesystem (github.com/gobeaver/imagekit/driver/local)
//   - In-memory (github.com/gobeaver/imagekit/driver/memory)
//   - ZIP archives, read-only (github.com/gobeaver/imagekit/driver/zip)
//
// Storage follows the same split as the rest of the toolkit: [FileReader] is
// all an [Inspector] needs, [FileWriter] adds Write and Delete, and
// [FileSystem] combines both.
//
// # Basic Usage
//
//	fs, err := local.New("./photos")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	in := imagekit.NewInspector(fs,
//	    imagekit.WithLimits(imagekit.Limits{MaxPixels: 50_000_000}),
//	    imagekit.WithCache(imagekit.NewMemoryCache(), 5*time.Minute),
//	)
//
//	res, err := in.Inspect(ctx, "2024/beach.jpg")
//	switch {
//	case imagekit.IsUnrecognized(err):
//	    // res.Format is imageinfo.Unknown
//	case errors.Is(err, imagekit.ErrTooLarge):
//	    // res holds the format and size that exceeded the limits
//	case err != nil:
//	    return err
//	}
//	fmt.Println(res.Format, res.Size())
//
// # Scanning
//
// Scan inspects every file under a directory that matches a glob [Pattern]
// and summarizes the outcome:
//
//	rep, err := in.Scan(ctx, "2024", "*.{jpg,png}")
//	imagekit.WriteReport(os.Stdout, rep, imagekit.ReportText)
//
// # Watching
//
// Watch rescans whenever a matching file changes. Drivers that implement
// [CanWatch] deliver change events natively; other drivers are polled.
//
//	err := in.Watch(ctx, "inbox", "*.png", func(rep *imagekit.Report) {
//	    log.Printf("%d images", rep.Summary.Recognized)
//	})
//
// Change notification is built on [ChangeToken]; [OnChange] can be used
// directly to react to changes with custom logic.
//
// # Configuration
//
// [GetConfig] loads a [Config] from BEAVER_IMAGEKIT_* environment variables
// and [NewFromConfig] builds the configured driver and Inspector:
//
//	import _ "github.com/gobeaver/imagekit/driver/local"
//
//	cfg, err := imagekit.GetConfig()
//	in, err := imagekit.NewFromConfig(cfg)
//
// # Error Handling
//
// Errors returned by drivers and the Inspector are [*PathError] values
// wrapping one of the sentinel errors:
//
//	if imagekit.IsNotExist(err) {
//	    // handle missing file
//	}
//
//	var de *imagekit.DimensionError
//	if errors.As(err, &de) {
//	    fmt.Println(de.Size, de.Limits)
//	}
package imagekit
