package runner

import (
	"io"
	"sync"
)

const captureChunkBytes = 4096

// streamCapture drains a subprocess's stdout and stderr pipes concurrently
// into accumulating buffers. The two drain goroutines progress independently
// of each other and of the supervisor's wait for process exit; Wait joins
// both once the pipes close.
type streamCapture struct {
	wg     sync.WaitGroup
	stdout *tailBuffer
	stderr *tailBuffer
}

// captureStreams starts one drain goroutine per pipe. When mirror is non-nil,
// stderr chunks are copied to it as they arrive, before buffering can delay
// them.
func captureStreams(stdout, stderr io.Reader, mirror io.Writer) *streamCapture {
	c := &streamCapture{
		stdout: newTailBuffer(defaultStdoutCapBytes),
		stderr: newTailBuffer(defaultStderrCapBytes),
	}
	c.wg.Add(2)
	go c.drain(stdout, c.stdout, nil)
	go c.drain(stderr, c.stderr, mirror)
	return c
}

// drain reads r until EOF. A read error stops this loop only; the partial
// buffer is kept and nothing propagates to the supervisor.
func (c *streamCapture) drain(r io.Reader, buf *tailBuffer, mirror io.Writer) {
	defer c.wg.Done()
	chunk := make([]byte, captureChunkBytes)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			_, _ = buf.Write(chunk[:n])
			if mirror != nil {
				_, _ = mirror.Write(chunk[:n])
			}
		}
		if err != nil {
			return
		}
	}
}

// Wait blocks until both pipes have closed and returns the accumulated text.
func (c *streamCapture) Wait() (stdout, stderr string) {
	c.wg.Wait()
	return c.stdout.String(), c.stderr.String()
}
