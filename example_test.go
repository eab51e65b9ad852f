package imagekit_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/driver/memory"
)

func ExampleInspector_Inspect() {
	ctx := context.Background()

	// Using memory for example; use local.New() in production
	fs := memory.New()
	_ = fs.Write(ctx, "photos/beach.png", bytes.NewReader(pngHeader(1920, 1080)))

	in := imagekit.NewInspector(fs)
	res, err := in.Inspect(ctx, "photos/beach.png")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println(res.Format, res.Size(), res.MIME)
	// Output:
	// png 1920x1080 image/png
}

func ExampleInspector_Inspect_limits() {
	ctx := context.Background()
	fs := memory.New()
	_ = fs.Write(ctx, "huge.gif", bytes.NewReader(gifHeader(20000, 100)))

	in := imagekit.NewInspector(fs, imagekit.WithLimits(imagekit.Limits{MaxWidth: 8000}))

	// The result is still returned so callers can report what was found
	res, err := in.Inspect(ctx, "huge.gif")

	var de *imagekit.DimensionError
	if errors.As(err, &de) {
		fmt.Println(res.Format, de)
	}
	fmt.Println(errors.Is(err, imagekit.ErrTooLarge))
	// Output:
	// gif width 20000 exceeds limit 8000
	// true
}

func ExampleInspector_InspectBytes() {
	ctx := context.Background()
	in := imagekit.NewInspector(nil)

	res, err := in.InspectBytes(ctx, "upload", []byte("plain text, not pixels"))
	fmt.Println(imagekit.IsUnrecognized(err), res.Width, res.Height)
	// Output:
	// true -1 -1
}

func ExampleInspector_Scan() {
	ctx := context.Background()
	fs := memory.New()
	_ = fs.Write(ctx, "inbox/a.png", bytes.NewReader(pngHeader(10, 10)))
	_ = fs.Write(ctx, "inbox/2024/b.gif", bytes.NewReader(gifHeader(20, 20)))
	_ = fs.Write(ctx, "inbox/2024/c.png", bytes.NewReader(pngHeader(30, 30)))
	_ = fs.Write(ctx, "inbox/readme.txt", bytes.NewReader([]byte("hello")))

	in := imagekit.NewInspector(fs, imagekit.WithConcurrency(2))

	// Patterns without a slash match the base name at any depth
	rep, err := in.Scan(ctx, "inbox", "*.{png,gif}")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, res := range rep.Results {
		fmt.Println(res.Path, res.Format, res.Size())
	}
	fmt.Println(rep.Summary.Recognized, "recognized")
	// Output:
	// inbox/2024/b.gif gif 20x20
	// inbox/2024/c.png png 30x30
	// inbox/a.png png 10x10
	// 3 recognized
}

func ExampleWithCache() {
	ctx := context.Background()
	fs := memory.New()
	_ = fs.Write(ctx, "a.png", bytes.NewReader(pngHeader(5, 5)))

	in := imagekit.NewInspector(fs, imagekit.WithCache(imagekit.NewMemoryCache(), time.Minute))
	_, _ = in.Inspect(ctx, "a.png")
	_, _ = in.Inspect(ctx, "a.png")

	stats, _ := in.CacheStats()
	fmt.Printf("hits=%d misses=%d\n", stats.Hits, stats.Misses)
	// Output:
	// hits=1 misses=1
}

func ExampleOnChange() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := make(chan *imagekit.CallbackChangeToken, 2)
	changed := make(chan struct{})

	// Each call hands out a fresh single-use token
	producer := func() (imagekit.ChangeToken, error) {
		token := imagekit.NewCallbackChangeToken()
		tokens <- token
		return token, nil
	}

	imagekit.OnChange(ctx, producer, func() {
		changed <- struct{}{}
	})

	(<-tokens).SignalChange()
	<-changed
	fmt.Println("changed")
	// Output:
	// changed
}
