package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the maximum avatar name length in characters.
const MaxNameLength = 12

// Appearance field keys, as sent by the view layer's selector buttons.
const (
	FieldSkinTone      = "skinTone"
	FieldSkinUndertone = "skinUndertone"
	FieldFaceShape     = "faceShape"
	FieldHairStyle     = "hairStyle"
	FieldHairColor     = "hairColor"
	FieldEyes          = "eyes"
	FieldBrows         = "brows"
	FieldMouth         = "mouth"
	FieldBeard         = "beard"
)

// ErrUnknownField is returned when cycling a field that isn't in the Catalog.
var ErrUnknownField = errors.New("unknown appearance field")

// Profile is the avatar identity. It is frozen once SaveState.ProfileLocked is set.
type Profile struct {
	Name          string `json:"name" validate:"max=12"`
	SkinTone      int    `json:"skinTone" validate:"gte=0,lt=8"`
	SkinUndertone int    `json:"skinUndertone" validate:"gte=0,lt=3"`
	FaceShape     int    `json:"faceShape" validate:"gte=0,lt=4"`
	HairStyle     int    `json:"hairStyle" validate:"gte=0,lt=8"`
	HairColor     int    `json:"hairColor" validate:"gte=0,lt=6"`
	Eyes          int    `json:"eyes" validate:"gte=0,lt=4"`
	Brows         int    `json:"brows" validate:"gte=0,lt=4"`
	Mouth         int    `json:"mouth" validate:"gte=0,lt=4"`
	Beard         int    `json:"beard" validate:"gte=0,lt=4"`
}

// DefaultProfile returns the editor's starting look.
func DefaultProfile() Profile {
	return Profile{
		SkinTone:      3,
		SkinUndertone: 1,
		FaceShape:     1,
	}
}

// Option is one selectable appearance field with its labels.
type Option struct {
	Field  string   `json:"field"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// Catalog lists every appearance field in editor order.
var Catalog = []Option{
	{Field: FieldFaceShape, Label: "Face shape", Values: []string{"Round", "Oval", "Square", "V-shape"}},
	{Field: FieldEyes, Label: "Eyes", Values: []string{"Calm", "Sharp", "Wide", "Tired"}},
	{Field: FieldBrows, Label: "Brows", Values: []string{"Soft", "Straight", "Angled", "Thick"}},
	{Field: FieldMouth, Label: "Mouth", Values: []string{"Neutral", "Smile", "Grin", "Serious"}},
	{Field: FieldBeard, Label: "Beard", Values: []string{"None", "Stubble", "Goatee", "Full"}},
	{Field: FieldHairStyle, Label: "Hair style", Values: []string{"Buzz", "Short", "Side Part", "Messy", "Wavy", "Curly", "Slick Back", "Medium"}},
	{Field: FieldHairColor, Label: "Hair color", Values: []string{"Color 1", "Color 2", "Color 3", "Color 4", "Color 5", "Color 6"}},
	{Field: FieldSkinTone, Label: "Skin tone", Values: []string{"Tone 1", "Tone 2", "Tone 3", "Tone 4", "Tone 5", "Tone 6", "Tone 7", "Tone 8"}},
	{Field: FieldSkinUndertone, Label: "Undertone", Values: []string{"Cool", "Neutral", "Warm"}},
}

// OptionCount returns how many values a field has, or 0 for unknown fields.
func OptionCount(field string) int {
	for _, o := range Catalog {
		if o.Field == field {
			return len(o.Values)
		}
	}
	return 0
}

func (p *Profile) fieldPtr(field string) *int {
	switch field {
	case FieldSkinTone:
		return &p.SkinTone
	case FieldSkinUndertone:
		return &p.SkinUndertone
	case FieldFaceShape:
		return &p.FaceShape
	case FieldHairStyle:
		return &p.HairStyle
	case FieldHairColor:
		return &p.HairColor
	case FieldEyes:
		return &p.Eyes
	case FieldBrows:
		return &p.Brows
	case FieldMouth:
		return &p.Mouth
	case FieldBeard:
		return &p.Beard
	}
	return nil
}

// Cycle steps an appearance field by dir (normally -1 or +1), wrapping at
// both ends of the option list.
func (p *Profile) Cycle(field string, dir int) error {
	ptr := p.fieldPtr(field)
	n := OptionCount(field)
	if ptr == nil || n == 0 {
		return fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	*ptr = ((*ptr+dir)%n + n) % n
	return nil
}

// NormalizeName trims whitespace and truncates to MaxNameLength characters.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}
