package style

import (
	"fmt"
	"strings"
)

// Labels holds the Korean display label of each style.
var Labels = map[Code]string{
	MinimalModern:  "미니멀 & 모던",
	Scandinavian:   "북유럽 (스칸디나비안)",
	NaturalWood:    "내추럴 & 우드",
	VintageAntique: "빈티지 & 앤티크",
	Pastel:         "파스텔",
	Industrial:     "인더스트리얼",
	Midcentury:     "미드센츄리",
	Planterior:     "플랜테리어",
}

// Label returns the display label for c, or the raw code when none is known.
func Label(c Code) string {
	if l, ok := Labels[c]; ok {
		return l
	}
	return string(c)
}

var compatible = map[Code][]Code{
	MinimalModern:  {Scandinavian, NaturalWood},
	Scandinavian:   {MinimalModern, NaturalWood},
	NaturalWood:    {Scandinavian, Planterior},
	VintageAntique: {Midcentury, Industrial},
	Pastel:         {Scandinavian, Planterior},
	Industrial:     {MinimalModern, VintageAntique},
	Midcentury:     {VintageAntique, Scandinavian},
	Planterior:     {NaturalWood, Pastel},
}

var opposite = map[Code]Code{
	MinimalModern:  VintageAntique,
	Scandinavian:   Industrial,
	NaturalWood:    Industrial,
	VintageAntique: MinimalModern,
	Pastel:         Industrial,
	Industrial:     Pastel,
	Midcentury:     MinimalModern,
	Planterior:     Industrial,
}

// Compatible returns the styles that pair well with c.
func Compatible(c Code) []Code {
	src := compatible[c]
	out := make([]Code, len(src))
	copy(out, src)
	return out
}

// Opposite returns the style that clashes most with c.
func Opposite(c Code) (Code, bool) {
	o, ok := opposite[c]
	return o, ok
}

// Detail describes how a style looks, used to build image prompts.
type Detail struct {
	RoomMood    string `json:"roomMood"`
	Colors      string `json:"colors"`
	Materials   string `json:"materials"`
	Lighting    string `json:"lighting"`
	Furniture   string `json:"furniture"`
	Decor       string `json:"decor"`
	Composition string `json:"composition"`
}

var details = map[Code]Detail{
	MinimalModern: {
		RoomMood:    "clean, refined, uncluttered modern home",
		Colors:      "white, gray, black, subtle neutrals",
		Materials:   "matte surfaces, metal, glass, engineered wood",
		Lighting:    "soft indirect lighting, LED lines, natural light",
		Furniture:   "sleek geometric furniture with simple forms",
		Decor:       "minimal art, one statement piece, functional decor",
		Composition: "open layout, high balance, clean symmetry",
	},
	Scandinavian: {
		RoomMood:    "warm, bright, inviting nordic home",
		Colors:      "white, beige, light oak, soft pastel tones",
		Materials:   "linen, cotton, natural wood",
		Lighting:    "soft warm ambient lights",
		Furniture:   "light wood furniture with soft edges",
		Decor:       "plants, woven baskets, cozy accents",
		Composition: "airy structure with gentle curves",
	},
	NaturalWood: {
		RoomMood:    "earthy, warm, peaceful nature-inspired space",
		Colors:      "brown, beige, oak, muted earthy palette",
		Materials:   "wood, rattan, linen fabric",
		Lighting:    "warm soft daylight",
		Furniture:   "solid wood with soft round shapes",
		Decor:       "pottery, plants, natural decor",
		Composition: "organic arrangement with warm tones",
	},
	VintageAntique: {
		RoomMood:    "retro, nostalgic, antique atmosphere",
		Colors:      "deep brown, navy, mustard, antique gold",
		Materials:   "leather, brass, vintage wood",
		Lighting:    "warm vintage bulbs and classic lamps",
		Furniture:   "antique chairs, retro cabinets",
		Decor:       "classic posters, vinyl, retro ornaments",
		Composition: "rich layering and nostalgic balance",
	},
	Pastel: {
		RoomMood:    "soft, dreamy, gentle pastel interior",
		Colors:      "pink, lavender, mint, baby blue",
		Materials:   "soft fabrics and smooth surfaces",
		Lighting:    "soft ambient glow",
		Furniture:   "round cozy furniture",
		Decor:       "cute posters, minimal aesthetic props",
		Composition: "gentle gradients and rounded shapes",
	},
	Industrial: {
		RoomMood:    "raw, urban, loft industrial style",
		Colors:      "black, gray, brick red",
		Materials:   "concrete, brick, steel pipes",
		Lighting:    "warm tungsten industrial lights",
		Furniture:   "leather sofa, metal furniture",
		Decor:       "industrial frames, vintage posters",
		Composition: "loft open plan with textured surfaces",
	},
	Midcentury: {
		RoomMood:    "classic 1950s retro elegance",
		Colors:      "walnut, orange, olive green",
		Materials:   "walnut wood, velvet, brass",
		Lighting:    "chrome lamps, warm lighting",
		Furniture:   "curved midcentury furniture",
		Decor:       "retro clocks, geometric patterns",
		Composition: "bold shapes and stylish layout",
	},
	Planterior: {
		RoomMood:    "fresh, green, plant-filled interior",
		Colors:      "green, beige, natural wood",
		Materials:   "terracotta, plant textures",
		Lighting:    "bright daylight",
		Furniture:   "light wood furniture",
		Decor:       "various plants and greenery",
		Composition: "balanced plant placement",
	},
}

// Details returns the visual description of c.
func Details(c Code) (Detail, bool) {
	d, ok := details[c]
	return d, ok
}

// RenderPrompt builds the image-generation prompt for c from its details.
func RenderPrompt(c Code) (string, error) {
	d, ok := details[c]
	if !ok {
		return "", fmt.Errorf("no render details for style %q", c)
	}
	return fmt.Sprintf(
		"%s, colors: %s, materials: %s, lighting: %s, furniture: %s, decor: %s, composition: %s, "+
			"ultra high quality interior render, 4K, photorealistic",
		d.RoomMood, d.Colors, d.Materials, d.Lighting, d.Furniture, d.Decor, d.Composition,
	), nil
}

// themeIDs maps style codes and the aliases the AI tends to return to the
// persisted style_theme ids.
var themeIDs = map[string]int64{
	"MINIMAL":        1,
	"MINIMAL_MODERN": 1,
	"MODERN":         1,
	"SIMPLE":         1,
	"CLEAN":          1,

	"NORDIC":       2,
	"SCANDI":       2,
	"SCANDINAVIAN": 2,

	"NATURAL":      3,
	"WOOD":         3,
	"NATURAL_WOOD": 3,
	"WARM_WOOD":    3,

	"VINTAGE":         4,
	"ANTIQUE":         4,
	"CLASSIC_VINTAGE": 4,
	"VINTAGE_ANTIQUE": 4,

	"PASTEL":      5,
	"SOFT_TONE":   5,
	"LIGHT_COLOR": 5,

	"INDUSTRIAL":    6,
	"IRON_METAL":    6,
	"FACTORY_STYLE": 6,

	"MIDCENTURY":        7,
	"RETRO":             7,
	"MIDCENTURY_MODERN": 7,

	"PLANT":          8,
	"PLANTERIOR":     8,
	"BOTANIC":        8,
	"GREEN_INTERIOR": 8,
}

// ThemeID resolves a style code or alias to its style_theme id. Matching is
// case-insensitive and ignores surrounding whitespace.
func ThemeID(name string) (int64, bool) {
	id, ok := themeIDs[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}
