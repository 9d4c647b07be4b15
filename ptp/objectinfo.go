/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * ObjectInfo dataset encoder, used by SendObjectInfo
 */

package ptp

// ObjectInfoFixedPrefixSize is the size, in bytes, of the ObjectInfo
// dataset's fixed binary prefix (everything before the trailing
// PTPStrings). A full ObjectInfo dataset, including the three
// required strings at their shortest (a single 0x00 byte each),
// comfortably reaches the "80-byte-minimum" size commonly quoted for
// ObjectInfo datasets once a real filename is present; this engine
// does not pad the fixed prefix itself beyond what the standard
// fields require.
const ObjectInfoFixedPrefixSize = 52

// ObjectInfoEncodeOptions tunes how EncodeObjectInfo renders the
// dataset, to accommodate devices whose quirks require a shorter or
// differently-shaped serialization (§4.8 send-object retry matrix).
type ObjectInfoEncodeOptions struct {
	// UseEmptyDates encodes CaptureDate/ModificationDate as empty
	// strings instead of formatted timestamps.
	UseEmptyDates bool

	// UseUndefinedFormat forces ObjectFormatCode to FormatUndefined
	// regardless of the dataset's actual Format field.
	UseUndefinedFormat bool

	// UseUnknownSize forces ObjectCompressedSize to the sentinel
	// 0xFFFFFFFF instead of the dataset's actual Size (chosen per
	// the Open Question in spec.md §9: this engine uses 0xFFFFFFFF,
	// consistent with 0xFFFFFFFF meaning "unknown" elsewhere in PTP).
	UseUnknownSize bool

	// OmitOptionalFields skips the trailing Keywords string
	// (kept empty) and always writes empty capture/modification
	// dates, producing the shortest legal serialization.
	OmitOptionalFields bool

	// ZeroParentHandle forces ParentObject to 0 instead of the
	// dataset's actual Parent.
	ZeroParentHandle bool
}

// ObjectInfoDataset is the logical content of an ObjectInfo dataset,
// independent of how it is ultimately serialized.
type ObjectInfoDataset struct {
	StorageID        uint32
	Format           ObjectFormat
	ProtectionStatus uint16
	Size             uint32
	Parent           uint32
	AssociationType  uint16
	Filename         string
	CaptureDate      string
	ModificationDate string
}

// EncodeObjectInfo renders ds as a wire-format ObjectInfo dataset,
// honoring opts.
func EncodeObjectInfo(ds ObjectInfoDataset, opts ObjectInfoEncodeOptions) []byte {
	format := ds.Format
	if opts.UseUndefinedFormat {
		format = FormatUndefined
	}

	size := ds.Size
	if opts.UseUnknownSize {
		size = 0xFFFFFFFF
	}

	parent := ds.Parent
	if opts.ZeroParentHandle {
		parent = 0
	}

	captureDate := ds.CaptureDate
	modDate := ds.ModificationDate
	if opts.UseEmptyDates || opts.OmitOptionalFields {
		captureDate = ""
		modDate = ""
	}

	w := NewWriter()

	w.PutU32(ds.StorageID)
	w.PutU16(uint16(format))
	w.PutU16(ds.ProtectionStatus)
	w.PutU32(size)
	w.PutU16(0) // ThumbFormat
	w.PutU32(0) // ThumbCompressedSize
	w.PutU32(0) // ThumbPixWidth
	w.PutU32(0) // ThumbPixHeight
	w.PutU32(0) // ImagePixWidth
	w.PutU32(0) // ImagePixHeight
	w.PutU32(0) // ImageBitDepth
	w.PutU32(parent)
	w.PutU16(ds.AssociationType)
	w.PutU32(0) // AssociationDesc
	w.PutU32(0) // SequenceNumber

	w.PutPTPString(ds.Filename)
	w.PutPTPString(captureDate)
	w.PutPTPString(modDate)

	if !opts.OmitOptionalFields {
		w.PutPTPString("") // Keywords
	}

	return w.Bytes()
}

// DecodeObjectInfo parses a wire-format ObjectInfo dataset.
func DecodeObjectInfo(buf []byte) (ObjectInfoDataset, error) {
	r := NewReader(buf)

	var ds ObjectInfoDataset
	var err error

	ds.StorageID, err = r.U32()
	if err != nil {
		return ds, err
	}

	format, err := r.U16()
	if err != nil {
		return ds, err
	}
	ds.Format = ObjectFormat(format)

	ds.ProtectionStatus, err = r.U16()
	if err != nil {
		return ds, err
	}

	ds.Size, err = r.U32()
	if err != nil {
		return ds, err
	}

	// Skip thumb/image metrics (7 u32/u16 fields not modeled here).
	if _, err = r.U16(); err != nil {
		return ds, err
	}
	for i := 0; i < 6; i++ {
		if _, err = r.U32(); err != nil {
			return ds, err
		}
	}

	ds.Parent, err = r.U32()
	if err != nil {
		return ds, err
	}

	ds.AssociationType, err = r.U16()
	if err != nil {
		return ds, err
	}

	if _, err = r.U32(); err != nil { // AssociationDesc
		return ds, err
	}
	if _, err = r.U32(); err != nil { // SequenceNumber
		return ds, err
	}

	ds.Filename, err = r.PTPString()
	if err != nil {
		return ds, err
	}

	ds.CaptureDate, err = r.PTPString()
	if err != nil {
		return ds, err
	}

	ds.ModificationDate, err = r.PTPString()
	if err != nil {
		return ds, err
	}

	return ds, nil
}
