package format

import "io"

const pairedBufSize = 1024

// ReadPaired jointly consumes size bytes from r0 and r1, invoking fold on
// successive windows of equal length whose lengths sum to size. The k-th
// byte of the a-slice across all fold calls equals the k-th byte read from
// r0, and likewise for r1 against b.
//
// Short reads from either reader are normal and handled by topping up two
// fixed-size buffers independently; a clean zero-byte read from either
// reader before size is exhausted is UnexpectedEOF.
func ReadPaired(size uint64, r0, r1 io.Reader, fold func(a, b []byte) error) error {
	var buf0, buf1 [pairedBufSize]byte
	var p0, p1 int

	for size > 0 {
		avail := pairedBufSize
		if uint64(avail) > size {
			avail = int(size)
		}
		if p0 < avail {
			n, err := r0.Read(buf0[p0:avail])
			if n == 0 && err == nil {
				return io.ErrUnexpectedEOF
			}
			if err != nil && err != io.EOF {
				return err
			}
			if n == 0 && err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			p0 += n
		}
		if p1 < avail {
			n, err := r1.Read(buf1[p1:avail])
			if n == 0 && err == nil {
				return io.ErrUnexpectedEOF
			}
			if err != nil && err != io.EOF {
				return err
			}
			if n == 0 && err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			p1 += n
		}

		pmin := p0
		if p1 < pmin {
			pmin = p1
		}

		if err := fold(buf0[:pmin], buf1[:pmin]); err != nil {
			return err
		}

		copy(buf0[:], buf0[pmin:p0])
		copy(buf1[:], buf1[pmin:p1])
		p0 -= pmin
		p1 -= pmin

		size -= uint64(pmin)
	}

	return nil
}

// ReadInto consumes size bytes from r, invoking f on successive windows of a
// fixed-size buffer as they fill. Used for the extra stream, which has no
// paired counterpart.
func ReadInto(size uint64, r io.Reader, f func(b []byte) error) error {
	var buf [pairedBufSize]byte
	var p int

	for size > 0 {
		avail := pairedBufSize
		if uint64(avail) > size {
			avail = int(size)
		}
		if p < avail {
			n, err := r.Read(buf[p:avail])
			if n == 0 && err == nil {
				return io.ErrUnexpectedEOF
			}
			if err != nil && err != io.EOF {
				return err
			}
			if n == 0 && err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			p += n
		}

		if err := f(buf[:p]); err != nil {
			return err
		}

		size -= uint64(p)
		p = 0
	}

	return nil
}
