package renderer

import "time"

// RenderStats contains statistics about a finished render
type RenderStats struct {
	Width            int
	Height           int
	TotalPixels      int           // Pixels in the image
	CompletedPixels  int           // Pixels whose task finished
	SamplesPerPixel  int           // Samples taken per completed pixel
	TotalSamples     int64         // Camera paths traced
	Workers          int           // Worker goroutines
	Producers        int           // Producer goroutines
	TasksDropped     int64         // Tasks discarded by an interrupted render
	TasksPanicked    int64         // Tasks that panicked
	AverageLuminance float64       // Mean pixel luminance
	Elapsed          time.Duration // Wall-clock render time
}

// SamplesPerSecond returns the sampling throughput
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Elapsed.Seconds()
}

// Complete reports whether every pixel was rendered
func (s RenderStats) Complete() bool {
	return s.CompletedPixels == s.TotalPixels
}
