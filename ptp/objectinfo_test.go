/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Tests for objectinfo.go
 */

package ptp

import "testing"

func baseDataset() ObjectInfoDataset {
	return ObjectInfoDataset{
		StorageID:        0x00010001,
		Format:           FormatJPEG,
		ProtectionStatus: 0,
		Size:             123456,
		Parent:           0x00000005,
		AssociationType:  0,
		Filename:         "IMG_0001.JPG",
		CaptureDate:      "20260731T120000",
		ModificationDate: "20260731T120000",
	}
}

func TestObjectInfoRoundTrip(t *testing.T) {
	ds := baseDataset()
	buf := EncodeObjectInfo(ds, ObjectInfoEncodeOptions{})

	got, err := DecodeObjectInfo(buf)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got.StorageID != ds.StorageID || got.Format != ds.Format || got.Size != ds.Size ||
		got.Parent != ds.Parent || got.Filename != ds.Filename ||
		got.CaptureDate != ds.CaptureDate || got.ModificationDate != ds.ModificationDate {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, ds)
	}
}

func TestObjectInfoUseUnknownSize(t *testing.T) {
	ds := baseDataset()
	buf := EncodeObjectInfo(ds, ObjectInfoEncodeOptions{UseUnknownSize: true})

	got, err := DecodeObjectInfo(buf)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Size != 0xFFFFFFFF {
		t.Errorf("got size 0x%08x, want 0xFFFFFFFF", got.Size)
	}
}

func TestObjectInfoUseUndefinedFormat(t *testing.T) {
	ds := baseDataset()
	buf := EncodeObjectInfo(ds, ObjectInfoEncodeOptions{UseUndefinedFormat: true})

	got, err := DecodeObjectInfo(buf)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Format != FormatUndefined {
		t.Errorf("got format 0x%04x, want FormatUndefined", got.Format)
	}
}

func TestObjectInfoZeroParentHandle(t *testing.T) {
	ds := baseDataset()
	buf := EncodeObjectInfo(ds, ObjectInfoEncodeOptions{ZeroParentHandle: true})

	got, err := DecodeObjectInfo(buf)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.Parent != 0 {
		t.Errorf("got parent 0x%08x, want 0", got.Parent)
	}
}

func TestObjectInfoUseEmptyDates(t *testing.T) {
	ds := baseDataset()
	buf := EncodeObjectInfo(ds, ObjectInfoEncodeOptions{UseEmptyDates: true})

	got, err := DecodeObjectInfo(buf)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.CaptureDate != "" || got.ModificationDate != "" {
		t.Errorf("got dates %q/%q, want empty", got.CaptureDate, got.ModificationDate)
	}
}

// TestObjectInfoOmitOptionalFieldsIsShorter exercises the send-object
// retry matrix rung that drops the trailing Keywords string and
// blanks the dates to produce the shortest legal serialization a
// picky device will accept.
func TestObjectInfoOmitOptionalFieldsIsShorter(t *testing.T) {
	ds := baseDataset()
	full := EncodeObjectInfo(ds, ObjectInfoEncodeOptions{})
	short := EncodeObjectInfo(ds, ObjectInfoEncodeOptions{OmitOptionalFields: true})

	if len(short) >= len(full) {
		t.Errorf("expected OmitOptionalFields encoding to be shorter: full=%d short=%d", len(full), len(short))
	}

	got, err := DecodeObjectInfo(short)
	if err != nil {
		t.Fatalf("unexpected error decoding short form: %s", err)
	}
	if got.Filename != ds.Filename {
		t.Errorf("got filename %q, want %q", got.Filename, ds.Filename)
	}
	if got.CaptureDate != "" || got.ModificationDate != "" {
		t.Errorf("expected blank dates in omit-optional form")
	}
}

func TestObjectInfoFixedPrefixSizeConstant(t *testing.T) {
	ds := baseDataset()
	ds.Filename = ""
	ds.CaptureDate = ""
	ds.ModificationDate = ""
	buf := EncodeObjectInfo(ds, ObjectInfoEncodeOptions{OmitOptionalFields: true})

	// Three empty PTPStrings each serialize to a single 0x00 byte.
	if len(buf) != ObjectInfoFixedPrefixSize+3 {
		t.Errorf("got %d, want %d", len(buf), ObjectInfoFixedPrefixSize+3)
	}
}
