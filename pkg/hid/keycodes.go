package hid

// Stroke is a single key press: a modifier byte and a HID usage ID from the
// keyboard/keypad usage page.
type Stroke struct {
	Mod  byte
	Code byte
}

// Modifier bits of the boot keyboard report.
const (
	ModNone      byte = 0x00
	ModLeftShift byte = 0x02
)

// Usage IDs referenced outside the table.
const (
	KeyEnter byte = 0x28
	KeySpace byte = 0x2c
)

// strokes maps ASCII characters to boot keyboard report contents, US layout.
var strokes = map[rune]Stroke{
	' ':  {ModNone, KeySpace},
	'\n': {ModNone, KeyEnter},
	'\t': {ModNone, 0x2b},

	'-':  {ModNone, 0x2d},
	'=':  {ModNone, 0x2e},
	'[':  {ModNone, 0x2f},
	']':  {ModNone, 0x30},
	'\\': {ModNone, 0x31},
	';':  {ModNone, 0x33},
	'\'': {ModNone, 0x34},
	'`':  {ModNone, 0x35},
	',':  {ModNone, 0x36},
	'.':  {ModNone, 0x37},
	'/':  {ModNone, 0x38},

	'!': {ModLeftShift, 0x1e},
	'@': {ModLeftShift, 0x1f},
	'#': {ModLeftShift, 0x20},
	'$': {ModLeftShift, 0x21},
	'%': {ModLeftShift, 0x22},
	'^': {ModLeftShift, 0x23},
	'&': {ModLeftShift, 0x24},
	'*': {ModLeftShift, 0x25},
	'(': {ModLeftShift, 0x26},
	')': {ModLeftShift, 0x27},

	'_': {ModLeftShift, 0x2d},
	'+': {ModLeftShift, 0x2e},
	'{': {ModLeftShift, 0x2f},
	'}': {ModLeftShift, 0x30},
	'|': {ModLeftShift, 0x31},
	':': {ModLeftShift, 0x33},
	'"': {ModLeftShift, 0x34},
	'~': {ModLeftShift, 0x35},
	'<': {ModLeftShift, 0x36},
	'>': {ModLeftShift, 0x37},
	'?': {ModLeftShift, 0x38},
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		code := byte(0x04 + c - 'a')
		strokes[c] = Stroke{ModNone, code}
		strokes[c-'a'+'A'] = Stroke{ModLeftShift, code}
	}
	for c := '1'; c <= '9'; c++ {
		strokes[c] = Stroke{ModNone, byte(0x1e + c - '1')}
	}
	strokes['0'] = Stroke{ModNone, 0x27}
}

// StrokeFor returns the keyboard stroke for a character, if one exists in
// the US layout table.
func StrokeFor(r rune) (Stroke, bool) {
	s, ok := strokes[r]
	return s, ok
}
