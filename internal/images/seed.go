package images

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

// PlaceholderProductName is the draft name given to images with generated keys
const PlaceholderProductName = "Product Name (Update Me)"

var nameSeparators = strings.NewReplacer("-", " ", "_", " ")

// DraftProductName derives a product name from a stored image key
func DraftProductName(key string) string {
	base := path.Base(key)
	if IsGeneratedKey(base) {
		return PlaceholderProductName
	}

	base = strings.TrimSuffix(base, path.Ext(base))
	words := strings.Fields(nameSeparators.Replace(base))
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	if len(words) == 0 {
		return PlaceholderProductName
	}
	return strings.Join(words, " ")
}

// SeedStatement renders an INSERT that registers key as a draft product
func SeedStatement(key string) string {
	quote := func(s string) string {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	return fmt.Sprintf(
		"INSERT INTO products (name, price, image, brand) VALUES (%s, %s, %s, %s);",
		quote(DraftProductName(key)),
		quote("$0"),
		quote(key),
		quote("Unknown"),
	)
}
