package navigator

// Navigator index file layout. All integers are big endian.
//
// Header
//
// .        | magic | version | flags | langs | strings | platforms | items | children | avail | bundle len |
// .        | 0   7 | 8     9 | 10 11 | 12 15 | 16   19 | 20     23 | 24 27 | 28    31 | 32 35 | 36      39 |
// bytes    |   8   |    2    |   2   |   4   |    4    |     4     |   4   |     4    |   4   |      4     |
//
// followed by
//
//	bundle identifier  bundle len bytes
//	string pool        per entry: u32 length, bytes
//	platform pool      per entry: platformRecordSize bytes
//	language table     per entry: languageRecordSize bytes
//	item table         per entry: itemRecordSize bytes
//	child id array     u32 per entry
//	availability array u32 per entry (list mode only, else empty)
//	trailer            BLAKE3-256 over every preceding byte
//
// The version is checked before anything after the header is read. A
// reader refuses any version outside [MinSupportedVersion, MaxSupportedVersion].

const (
	// Magic identifies a navigator index file.
	Magic = "NAVINDEX"

	// FormatVersion is the version this package writes.
	FormatVersion       = uint16(1)
	MinSupportedVersion = uint16(1)
	MaxSupportedVersion = uint16(1)

	HeaderMagicFirstByte     = 0
	HeaderMagicSize          = 8
	HeaderVersionFirstByte   = HeaderMagicFirstByte + HeaderMagicSize
	HeaderFlagsFirstByte     = HeaderVersionFirstByte + 2
	HeaderLanguagesFirstByte = HeaderFlagsFirstByte + 2
	HeaderStringsFirstByte   = HeaderLanguagesFirstByte + 4
	HeaderPlatformsFirstByte = HeaderStringsFirstByte + 4
	HeaderItemsFirstByte     = HeaderPlatformsFirstByte + 4
	HeaderChildrenFirstByte  = HeaderItemsFirstByte + 4
	HeaderAvailFirstByte     = HeaderChildrenFirstByte + 4
	HeaderBundleLenFirstByte = HeaderAvailFirstByte + 4
	HeaderSize               = HeaderBundleLenFirstByte + 4 // 40

	// platform record: name u32, major u16, minor u16, patch u16, beta u8, pad u8
	platformRecordSize = 12

	// language record: name u32, first item u32, item count u32
	languageRecordSize = 12

	// item record
	//
	// .     | title | path | ref | kind | pad | lang | availability | parent | child off | child count |
	// .     | 0   3 | 4  7 | 8 11|  12  | 13  |14 15 | 16        23 | 24  27 | 28     31 | 32       35 |
	itemRecordSize = 36

	// TrailerSize is the length of the BLAKE3-256 digest.
	TrailerSize = 32

	// flagMaskMode marks availability stored as a bitmask over the platform pool.
	flagMaskMode = uint16(1 << 0)
	knownFlags   = flagMaskMode
)
