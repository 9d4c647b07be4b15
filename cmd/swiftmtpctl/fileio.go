/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Local-disk transport.Sink/Source adapters. Platform file I/O is an
 * external collaborator (spec.md §6) everywhere else in this module;
 * the CLI is the one place that actually needs to touch the
 * filesystem, so it owns the thin concrete implementation.
 */

package main

import "os"

// fileSink adapts an *os.File to transport.Sink.
type fileSink struct {
	f *os.File
}

func (s fileSink) Write(p []byte) (int, error) { return s.f.Write(p) }
func (s fileSink) Close() error                { return s.f.Close() }

// fileSource adapts an *os.File to transport.Source.
type fileSource struct {
	f *os.File
}

func (s fileSource) Read(p []byte) (int, error) { return s.f.Read(p) }
func (s fileSource) Close() error                { return s.f.Close() }

func (s fileSource) FileSize() (int64, error) {
	st, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}
