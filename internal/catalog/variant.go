package catalog

// FindVariant searches the product's variants depth-first, descending into each
// variant's options before moving on to its next sibling.
func FindVariant(p Product, variantID string) (Variant, bool) {
	if variantID == "" {
		return Variant{}, false
	}
	return findVariant(p.Variants, variantID)
}

func findVariant(variants []Variant, variantID string) (Variant, bool) {
	for _, v := range variants {
		if v.VariantID == variantID {
			return v, true
		}
		if found, ok := findVariant(v.Options, variantID); ok {
			return found, true
		}
	}
	return Variant{}, false
}
