// Package wisp draws procedural smoke for [Ebitengine].
//
// A [Smoke] branches off a parent path at a segment boundary, grows its own
// meandering path from coherent noise, and carries particles that drift
// along it, wobble, and fade in and out. Particles that run off the end of
// the path fade away and are dropped.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and keeps a
// figure smoking:
//
//	trunk := wisp.NewSpiralFigure(wisp.Vec2{X: 320, Y: 460}, -math.Pi/2, 60, 6, 0.01)
//	cfg := wisp.SketchConfig{Smoke: wisp.DefaultSmokeConfig()}
//	sketch, err := wisp.NewSketch(trunk, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	wisp.Run(sketch, wisp.RunConfig{Title: "Smoke", Width: 640, Height: 480})
//
// For full control, drive a Smoke yourself. Sample the clock once per frame
// and pass the reading to [Smoke.Update], then render with [Smoke.Draw]:
//
//	smoke, err := wisp.NewSmoke(trunk, now, wisp.DefaultSmokeConfig())
//	// each frame:
//	smoke.Update(now)
//	smoke.Draw(canvas)
//
// # Canvases
//
// Rendering goes through the small [Canvas] interface. [EbitenCanvas] batches
// shapes into DrawTriangles calls for a live window; [GGCanvas] rasterizes
// with [gg] and backs [ExportPNG] for headless output.
//
// # Determinism
//
// All randomness comes from a [Source]. Pass a seeded [NewSource] in
// [SmokeConfig] to reproduce a smoke exactly.
//
// # Capture scripts
//
// [LoadScript] parses a JSON list of frame actions (wait, spawn, clear,
// screenshot, exit). Attach it with [Sketch.SetScript] to record a run
// without a human at the keyboard.
//
// [Ebitengine]: https://ebitengine.org
// [gg]: https://github.com/fogleman/gg
package wisp
