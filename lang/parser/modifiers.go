package parser

import "strings"

// Modifier is a bit set of declaration modifiers.
type Modifier uint32

const (
	ModNew Modifier = 1 << iota
	ModPublic
	ModProtected
	ModInternal
	ModPrivate
	ModAbstract
	ModSealed
	ModStatic
	ModReadonly
	ModVolatile
	ModVirtual
	ModOverride
	ModExtern
	ModUnsafe
	ModPartial
)

const ModAccessibility = ModPublic | ModProtected | ModInternal | ModPrivate

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{ModNew, "new"},
	{ModPublic, "public"},
	{ModProtected, "protected"},
	{ModInternal, "internal"},
	{ModPrivate, "private"},
	{ModAbstract, "abstract"},
	{ModSealed, "sealed"},
	{ModStatic, "static"},
	{ModReadonly, "readonly"},
	{ModVolatile, "volatile"},
	{ModVirtual, "virtual"},
	{ModOverride, "override"},
	{ModExtern, "extern"},
	{ModUnsafe, "unsafe"},
	{ModPartial, "partial"},
}

var modifierByToken = map[TokenKind]Modifier{
	TokenNew:       ModNew,
	TokenPublic:    ModPublic,
	TokenProtected: ModProtected,
	TokenInternal:  ModInternal,
	TokenPrivate:   ModPrivate,
	TokenAbstract:  ModAbstract,
	TokenSealed:    ModSealed,
	TokenStatic:    ModStatic,
	TokenReadonly:  ModReadonly,
	TokenVolatile:  ModVolatile,
	TokenVirtual:   ModVirtual,
	TokenOverride:  ModOverride,
	TokenExtern:    ModExtern,
	TokenUnsafe:    ModUnsafe,
}

func (m Modifier) Has(flag Modifier) bool { return m&flag != 0 }

// Accessibility returns only the accessibility bits.
func (m Modifier) Accessibility() Modifier { return m & ModAccessibility }

func (m Modifier) String() string {
	var names []string
	for _, mn := range modifierNames {
		if m&mn.mod != 0 {
			names = append(names, mn.name)
		}
	}
	return strings.Join(names, " ")
}
