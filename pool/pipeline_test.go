package pool

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/swiftmtp/swiftmtp/transport"
)

type byteSource struct {
	data []byte
	pos  int
}

func (s *byteSource) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += n
	return n, nil
}
func (s *byteSource) FileSize() (int64, error) { return int64(len(s.data)), nil }
func (s *byteSource) Close() error              { return nil }

type byteSink struct {
	buf bytes.Buffer
}

func (s *byteSink) Write(p []byte) (int, error) { return s.buf.Write(p) }
func (s *byteSink) Close() error                { return nil }

var _ transport.Source = (*byteSource)(nil)
var _ transport.Sink = (*byteSink)(nil)

func TestPipelinedUploadSendsEveryByte(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 10000)
	src := &byteSource{data: payload}
	p := New(1024, 2)
	u := &PipelinedUpload{Pool: p, ChunkSize: 1024}

	var got bytes.Buffer
	metrics, err := u.Run(context.Background(), src, int64(len(payload)), func(ctx context.Context, buf []byte, count int) error {
		got.Write(buf[:count])
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.BytesTransferred != int64(len(payload)) {
		t.Errorf("got %d bytes transferred, want %d", metrics.BytesTransferred, len(payload))
	}
	if metrics.Duration < 0 {
		t.Errorf("got negative duration")
	}
	if !bytes.Equal(got.Bytes(), payload) {
		t.Error("sent bytes did not match source")
	}
}

func TestPipelinedUploadPropagatesSendError(t *testing.T) {
	src := &byteSource{data: bytes.Repeat([]byte("y"), 4096)}
	p := New(1024, 2)
	u := &PipelinedUpload{Pool: p, ChunkSize: 1024}

	boom := errors.New("device refused chunk")
	_, err := u.Run(context.Background(), src, 4096, func(ctx context.Context, buf []byte, count int) error {
		return boom
	}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want %v", err, boom)
	}
}

func TestPipelinedDownloadWritesAndReplaces(t *testing.T) {
	payload := bytes.Repeat([]byte("z"), 10000)
	sink := &byteSink{}
	p := New(1024, 2)
	d := &PipelinedDownload{Pool: p, ChunkSize: 1024}

	var replaced bool
	replace := func(tempPath, finalPath string) error {
		replaced = true
		if tempPath != "tmp" || finalPath != "final" {
			t.Errorf("got replace(%q, %q), want replace(tmp, final)", tempPath, finalPath)
		}
		return nil
	}

	pos := 0
	receive := func(ctx context.Context, buf []byte, max int) (int, error) {
		if pos >= len(payload) {
			return 0, nil
		}
		n := copy(buf, payload[pos:])
		pos += n
		return n, nil
	}

	metrics, err := d.Run(context.Background(), sink, int64(len(payload)), receive, "tmp", "final", replace, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics.BytesTransferred != int64(len(payload)) {
		t.Errorf("got %d bytes, want %d", metrics.BytesTransferred, len(payload))
	}
	if !bytes.Equal(sink.buf.Bytes(), payload) {
		t.Error("received bytes did not match payload")
	}
	if !replaced {
		t.Error("expected atomic replace to run")
	}
}
