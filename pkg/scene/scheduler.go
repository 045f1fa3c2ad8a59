package scene

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/taigrr/zraster/pkg/render"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stats describes one frame.
type Stats struct {
	Jobs      int
	Rejected  int   // Objects skipped as empty or off screen
	Culled    int64 // Back-facing triangles skipped
	Drawn     int64 // Triangles handed to the rasterizer
	Fragments int64 // Pixels that passed the depth test
	Duration  time.Duration
}

// Span is a half-open range [Start, End) of one object's triangles.
// Object indexes the frame's list of visible objects.
type Span struct {
	Object     int
	Start, End int
}

// Len returns the number of triangles in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// JobSize returns the number of triangles per job: an even split across
// threads when every thread would get at least minChunk triangles,
// otherwise minChunk.
func JobSize(total, threads, minChunk int) int {
	threads = max(threads, 1)
	minChunk = max(minChunk, 1)
	if total/minChunk >= threads {
		return total / threads
	}
	return minChunk
}

// Partition slices objects of the given triangle counts into jobs of size
// triangles. Spans are cut off each object in order until the current job is
// full; a job may hold spans of several objects. The last job may be short.
func Partition(counts []int, size int) [][]Span {
	size = max(size, 1)

	var (
		jobs  [][]Span
		job   []Span
		inJob int
	)
	for obj, n := range counts {
		for start := 0; start < n; {
			end := min(start+size-inJob, n)
			job = append(job, Span{Object: obj, Start: start, End: end})
			inJob += end - start
			start = end

			if inJob >= size {
				jobs = append(jobs, job)
				job, inJob = nil, 0
			}
		}
	}
	if len(job) > 0 {
		jobs = append(jobs, job)
	}
	return jobs
}

// counters are the frame stats shared by workers.
type counters struct {
	culled, drawn, fragments atomic.Int64
}

// dispatch runs one goroutine per job and joins them.
func (s *Scene) dispatch(ctx context.Context, fb *render.Framebuffer, batches []batch) (Stats, error) {
	counts := make([]int, len(batches))
	total := 0
	for i, b := range batches {
		counts[i] = len(b.tris)
		total += counts[i]
	}
	jobs := Partition(counts, JobSize(total, s.Workers, s.MinChunk))

	var c counters
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("job %d: %v: %w", i, r, ErrWorkerPanic)
				}
			}()

			start := time.Now()
			if err := s.runJob(ctx, fb, batches, job, &c); err != nil {
				return err
			}
			s.log.Debug("job done",
				zap.Int("job", i),
				zap.Int("spans", len(job)),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}

	stats := Stats{Jobs: len(jobs), Rejected: len(s.objects) - len(batches)}
	err := g.Wait()
	stats.Culled = c.culled.Load()
	stats.Drawn = c.drawn.Load()
	stats.Fragments = c.fragments.Load()
	return stats, err
}

// runJob culls and rasterizes the triangles of one job.
func (s *Scene) runJob(ctx context.Context, fb *render.Framebuffer, batches []batch, job []Span, c *counters) error {
	r := render.NewRasterizer(fb)
	view := s.Camera.View

	for _, span := range job {
		b := batches[span.Object]
		for _, tri := range b.tris[span.Start:span.End] {
			if err := ctx.Err(); err != nil {
				return err
			}

			n := render.FaceNormal(tri[0].Pos, tri[1].Pos, tri[2].Pos)
			if n.Dot(view) <= 0 {
				c.culled.Add(1)
				continue
			}
			c.drawn.Add(1)
			c.fragments.Add(int64(r.FillTriangle(tri, b.shader)))
		}
	}
	return nil
}
