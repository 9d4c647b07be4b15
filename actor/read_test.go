/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for the read ladder and resumable download.
 */

package actor

import (
	"bytes"
	"context"
	"testing"

	"github.com/swiftmtp/swiftmtp/ptp"
	"github.com/swiftmtp/swiftmtp/quirk"
)

type bufSink struct{ buf bytes.Buffer }

func (s *bufSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *bufSink) Close() error                { return nil }

func TestReadUsesPartial64WhenSupported(t *testing.T) {
	link := newFakeLink()
	link.partialPayload = []byte("chunk-data")

	a := New(link, quirk.Policy{Flags: quirk.Flags{SupportsGetPartialObject64: true}})
	defer a.Stop()

	sink := &bufSink{}
	n, err := a.Read(context.Background(), 7, 0, 10, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int(n) != len(link.partialPayload) || sink.buf.String() != "chunk-data" {
		t.Errorf("got n=%d buf=%q", n, sink.buf.String())
	}
}

func TestReadFallsBackToWholeObjectWhenNoPartialSupport(t *testing.T) {
	link := newFakeLink()
	link.partialPayload = []byte("whole-object")
	link.failOps = map[ptp.Op]bool{ptp.OpGetPartialObject: true}

	a := New(link, quirk.Policy{})
	defer a.Stop()

	sink := &bufSink{}
	n, err := a.Read(context.Background(), 7, 0, uint32(len(link.partialPayload)), sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int(n) != len(link.partialPayload) {
		t.Errorf("got n=%d", n)
	}
}

func TestResumeDownloadRequestsOnlyRemainder(t *testing.T) {
	link := newFakeLink()
	link.partialPayload = []byte("REST")

	a := New(link, quirk.Policy{Flags: quirk.Flags{SupportsGetPartialObject64: true}})
	defer a.Stop()

	sink := &bufSink{}
	replaced := false
	err := a.ResumeDownload(context.Background(), ResumeState{
		Handle:   7,
		FullSize: 10,
		Written:  6,
		Sink:     sink,
	}, func() error {
		replaced = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !replaced {
		t.Errorf("expected replace to be called")
	}
	if sink.buf.String() != "REST" {
		t.Errorf("got %q", sink.buf.String())
	}
}

func TestResumeDownloadSkipsReadWhenAlreadyComplete(t *testing.T) {
	link := newFakeLink()
	a := New(link, quirk.Policy{})
	defer a.Stop()

	sink := &bufSink{}
	replaced := false
	err := a.ResumeDownload(context.Background(), ResumeState{
		Handle:   7,
		FullSize: 10,
		Written:  10,
		Sink:     sink,
	}, func() error {
		replaced = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !replaced {
		t.Errorf("expected replace to still be called when nothing remains")
	}
	if sink.buf.Len() != 0 {
		t.Errorf("expected no bytes written, got %d", sink.buf.Len())
	}
}
