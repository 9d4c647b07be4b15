/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for the write path and send-object retry matrix integration.
 */

package actor

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/swiftmtp/swiftmtp/quirk"
)

type bufSource struct{ r *bytes.Reader }

func newBufSource(data []byte) *bufSource { return &bufSource{bytes.NewReader(data)} }
func (s *bufSource) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err == io.EOF {
		return n, io.EOF
	}
	return n, err
}
func (s *bufSource) FileSize() (int64, error) { return s.r.Size(), nil }
func (s *bufSource) Close() error             { return nil }

func TestWriteSucceedsOnFirstAttempt(t *testing.T) {
	link := newFakeLink()
	a := New(link, quirk.Policy{Tuning: quirk.DefaultTuning()})
	defer a.Stop()

	handle, err := a.Write(context.Background(), WriteRequest{
		StorageID: 1,
		Parent:    0,
		Name:      "photo.jpg",
		Size:      4,
		Source:    newBufSource([]byte("data")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handle == 0 {
		t.Errorf("expected a nonzero handle")
	}
}

func TestWriteSanitizesNameBeforeSending(t *testing.T) {
	link := newFakeLink()
	a := New(link, quirk.Policy{Tuning: quirk.DefaultTuning()})
	defer a.Stop()

	_, err := a.Write(context.Background(), WriteRequest{
		StorageID: 1,
		Name:      "..",
		Size:      0,
		Source:    newBufSource(nil),
	})
	if err != ErrInvalidName {
		t.Errorf("got %v, want ErrInvalidName", err)
	}
}

func TestWriteRetriesOnInvalidParameter(t *testing.T) {
	link := newFakeLink()
	link.sendErr = errInvalidParam
	a := New(link, quirk.Policy{Tuning: quirk.DefaultTuning()})
	defer a.Stop()

	// sendErr forces every SendObjectInfo attempt to fail with
	// InvalidParameter; the retry matrix still exhausts its rungs and
	// the original refusal is surfaced rather than FallbackAllFailed.
	_, err := a.Write(context.Background(), WriteRequest{
		StorageID: 1,
		Name:      "photo.jpg",
		Size:      4,
		Source:    newBufSource([]byte("data")),
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
}

var errInvalidParam = &alwaysInvalidParam{}

type alwaysInvalidParam struct{}

func (e *alwaysInvalidParam) Error() string { return "forced invalid parameter" }
