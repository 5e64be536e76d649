package downloader

import "io"

// copyWithProgress copies src to dst and reports the running total after
// every chunk.
func copyWithProgress(dst io.Writer, src io.Reader, progress func(done int64)) (int64, error) {
	if progress == nil {
		return io.Copy(dst, src)
	}

	buf := make([]byte, 32*1024)
	var total int64
	for {
		nr, er := src.Read(buf)
		if nr > 0 {
			nw, ew := dst.Write(buf[:nr])
			if nw > 0 {
				total += int64(nw)
				progress(total)
			}
			if ew != nil {
				return total, ew
			}
			if nr != nw {
				return total, io.ErrShortWrite
			}
		}

		if er == io.EOF {
			return total, nil
		}
		if er != nil {
			return total, er
		}
	}
}
