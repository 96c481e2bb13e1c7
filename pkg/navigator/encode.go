package navigator

import (
	"encoding/binary"
	"math"

	"lukechampine.com/blake3"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// Encode serializes an artifact. The output is a pure function of the
// artifact's contents.
func Encode(a *Artifact) ([]byte, error) {
	if a == nil {
		return nil, naverrors.InternalError("encode: nil artifact", nil)
	}
	if err := a.checkEncodable(); err != nil {
		return nil, err
	}

	be := binary.BigEndian
	buf := make([]byte, 0, a.encodedSize())

	buf = append(buf, Magic...)
	buf = be.AppendUint16(buf, a.version)
	buf = be.AppendUint16(buf, a.flags)
	buf = be.AppendUint32(buf, uint32(len(a.languages)))
	buf = be.AppendUint32(buf, uint32(len(a.strings)))
	buf = be.AppendUint32(buf, uint32(len(a.platforms)))
	buf = be.AppendUint32(buf, uint32(len(a.items)))
	buf = be.AppendUint32(buf, uint32(len(a.children)))
	buf = be.AppendUint32(buf, uint32(len(a.availability)))
	buf = be.AppendUint32(buf, uint32(len(a.bundle)))
	buf = append(buf, a.bundle...)

	for _, s := range a.strings {
		buf = be.AppendUint32(buf, uint32(len(s)))
		buf = append(buf, s...)
	}

	for _, p := range a.platforms {
		buf = be.AppendUint32(buf, p.Name)
		buf = be.AppendUint16(buf, p.Major)
		buf = be.AppendUint16(buf, p.Minor)
		buf = be.AppendUint16(buf, p.Patch)
		buf = append(buf, boolByte(p.Beta), 0)
	}

	for _, l := range a.languages {
		buf = be.AppendUint32(buf, l.Name)
		buf = be.AppendUint32(buf, l.First)
		buf = be.AppendUint32(buf, l.Count)
	}

	for _, it := range a.items {
		buf = be.AppendUint32(buf, it.Title)
		buf = be.AppendUint32(buf, it.Path)
		buf = be.AppendUint32(buf, it.Reference)
		buf = append(buf, byte(it.Kind), 0)
		buf = be.AppendUint16(buf, it.Language)
		buf = be.AppendUint64(buf, it.Availability)
		buf = be.AppendUint32(buf, it.Parent)
		buf = be.AppendUint32(buf, it.ChildOffset)
		buf = be.AppendUint32(buf, it.ChildCount)
	}

	for _, c := range a.children {
		buf = be.AppendUint32(buf, c)
	}
	for _, p := range a.availability {
		buf = be.AppendUint32(buf, p)
	}

	sum := blake3.Sum256(buf)
	return append(buf, sum[:]...), nil
}

func (a *Artifact) encodedSize() int {
	n := HeaderSize + len(a.bundle)
	for _, s := range a.strings {
		n += 4 + len(s)
	}
	n += len(a.platforms) * platformRecordSize
	n += len(a.languages) * languageRecordSize
	n += len(a.items) * itemRecordSize
	n += 4 * (len(a.children) + len(a.availability))
	return n + TrailerSize
}

// checkEncodable rejects artifacts whose sizes do not fit the fixed-width fields.
func (a *Artifact) checkEncodable() error {
	if len(a.languages) > math.MaxUint16 {
		return naverrors.Newf(naverrors.ErrCodeInvalidInput, "%d languages exceed the format limit of %d", len(a.languages), math.MaxUint16)
	}
	if uint64(len(a.items)) >= math.MaxUint32 || uint64(len(a.strings)) > math.MaxUint32 || uint64(len(a.bundle)) > math.MaxUint32 {
		return naverrors.Newf(naverrors.ErrCodeInvalidInput, "artifact too large to encode")
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
