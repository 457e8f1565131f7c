package val

// Layout of the tagged word and the inline/object boundary. These are
// host-defined limits: a value within the small ranges below is encoded
// entirely inline, anything larger goes through an object handle. Kept as
// named constants so the boundary can be checked against the host's actual
// value-representation limits rather than assumed.
const (
	// TagBits is the width of the tag in the low end of the word.
	TagBits = 8

	// BodyBits is the width of the inline payload.
	BodyBits = 64 - TagBits

	// BodyMask masks the body after shifting the tag away.
	BodyMask = uint64(1)<<BodyBits - 1

	// MaxU64Small is the largest uint64 that encodes inline.
	MaxU64Small = uint64(1)<<BodyBits - 1

	// MaxI64Small and MinI64Small bound the inline two's complement range.
	MaxI64Small = int64(1)<<(BodyBits-1) - 1
	MinI64Small = -(int64(1) << (BodyBits - 1))

	// MaxSymbolSmallChars is the longest symbol that packs inline at
	// SymbolCharBits per character.
	MaxSymbolSmallChars = 9
	SymbolCharBits      = 6

	// MaxSymbolChars bounds symbol length overall, inline or object.
	MaxSymbolChars = 32
)

// AddressLen is the byte length of a contract address.
const AddressLen = 32
