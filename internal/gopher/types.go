package gopher

// Type is the single-character item type that classifies a menu entry.
type Type byte

// Item types from RFC 1436 plus the common de facto extensions.
const (
	TypeText       Type = '0'
	TypeMenu       Type = '1'
	TypeCSO        Type = '2'
	TypeError      Type = '3'
	TypeBinHex     Type = '4'
	TypeDOS        Type = '5'
	TypeUUEncoded  Type = '6'
	TypeSearch     Type = '7'
	TypeTelnet     Type = '8'
	TypeBinary     Type = '9'
	TypeMirror     Type = '+'
	TypeGIF        Type = 'g'
	TypeImage      Type = 'I'
	TypeTelnet3270 Type = 'T'
	TypeSound      Type = 's'
	TypeDocument   Type = 'd'
	TypeHTML       Type = 'h'
	TypeInfo       Type = 'i'
)

// IsText reports whether the item body is plain text.
func (t Type) IsText() bool {
	return t == TypeText
}

// IsMenu reports whether the item body is a gopher menu listing.
func (t Type) IsMenu() bool {
	return t == TypeMenu || t == TypeSearch
}

// IsBinary reports whether the item body is an opaque byte blob that
// should never be rendered to the terminal.
func (t Type) IsBinary() bool {
	switch t {
	case TypeBinHex, TypeDOS, TypeUUEncoded, TypeBinary, TypeGIF, TypeImage, TypeSound, TypeDocument:
		return true
	}
	return false
}

// IsLink reports whether a menu item of this type points somewhere the
// user can navigate to. Info and error lines are display-only.
func (t Type) IsLink() bool {
	switch t {
	case TypeInfo, TypeError, TypeCSO, TypeTelnet, TypeTelnet3270:
		return false
	}
	return true
}

// Valid reports whether t is one of the known item types.
func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeMenu, TypeCSO, TypeError, TypeBinHex, TypeDOS,
		TypeUUEncoded, TypeSearch, TypeTelnet, TypeBinary, TypeMirror,
		TypeGIF, TypeImage, TypeTelnet3270, TypeSound, TypeDocument,
		TypeHTML, TypeInfo:
		return true
	}
	return false
}
