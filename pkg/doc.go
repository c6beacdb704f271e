// Package pkg provides the core libraries for flamesplit.
//
// # Overview
//
// flamesplit rewrites fractal-flame scenes so that every <flame> becomes a
// grid of tiles. Rendered at the original size and placed side by side, the
// tiles reassemble the image at a multiple of its resolution. The pkg
// directory is organized into three areas:
//
//  1. Domain logic: [scene], [flame], [tile]
//  2. Orchestration: [pipeline] (load → split → write) and [server]
//  3. Infrastructure: [cache], [history], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow for one scene:
//
//	scene bytes
//	     ↓
//	[scene] package (parse into a node tree, declaration kept)
//	     ↓
//	[flame] package (read size, center, scale, rotate, zoom of each flame)
//	     ↓
//	[tile] package (format² transforms per flame)
//	     ↓
//	[scene] package (replace flames in place, serialize, normalize)
//	     ↓
//	split scene bytes
//
// # Quick Start
//
//	import "github.com/matzehuels/flamesplit/pkg/pipeline"
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Split(ctx, data, pipeline.Options{Level: 2, Filename: "scene.flame"})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(res.Filename, res.Output, 0o644) // scene_4x4.flame
//
// # Main Packages
//
//   - [scene]: order-preserving XML tree, serialization and output naming
//   - [flame]: attribute extraction with lenient or strict number parsing
//   - [tile]: grid geometry, per-tile center and scale
//   - [pipeline]: options, stages and the cached Runner shared by CLI and server
//   - [server]: upload form and download endpoint
//   - [cache]: file, Redis and null caches for split results
//   - [history]: split log in memory, on disk or in MongoDB
//   - [errors]: coded errors with HTTP status mapping
//   - [observability]: hooks for split, cache and HTTP events
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/scene
// [flame]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/flame
// [tile]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/tile
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/history
// [errors]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flamesplit/pkg/buildinfo
package pkg
