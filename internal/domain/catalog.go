package domain

// Tag is an entry of the fixed product tag vocabulary
type Tag struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ProductTags is the vocabulary products may be tagged with
var ProductTags = []Tag{
	{Value: "zapato", Label: "Zapato"},
	{Value: "camisa", Label: "Camisa"},
	{Value: "media", Label: "Media"},
	{Value: "gorra", Label: "Gorra"},
	{Value: "bolsa", Label: "Bolsa"},
	{Value: "accesorio", Label: "Accesorio"},
	{Value: "pantalon", Label: "Pantalon"},
	{Value: "sudadera", Label: "Sudadera"},
	{Value: "camiseta", Label: "Camiseta"},
	{Value: "chaqueta", Label: "Chaqueta"},
	{Value: "correa", Label: "Correa"},
	{Value: "pantalla", Label: "Pantalla"},
}

var tagValues = func() map[string]struct{} {
	values := make(map[string]struct{}, len(ProductTags))
	for _, tag := range ProductTags {
		values[tag.Value] = struct{}{}
	}
	return values
}()

// IsKnownTag reports whether value belongs to the tag vocabulary
func IsKnownTag(value string) bool {
	_, ok := tagValues[value]
	return ok
}

// Brand is a storefront brand entry
type Brand struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// BrandGroup groups brands the way the storefront navigation does
type BrandGroup struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Brands []Brand `json:"brands"`
}

var (
	sneakerBrands = []Brand{
		{Name: "Asics", Path: "/brands/asics"},
		{Name: "Jordan", Path: "/brands/jordan"},
		{Name: "New Balance", Path: "/brands/new-balance"},
		{Name: "Nike", Path: "/brands/nike"},
	}

	luxuryBrands = []Brand{
		{Name: "Alexander McQueen", Path: "/brands/alexander-mcqueen"},
		{Name: "Amiri", Path: "/brands/amiri"},
		{Name: "Balenciaga", Path: "/brands/balenciaga"},
		{Name: "Bape", Path: "/brands/bape"},
		{Name: "Dior", Path: "/brands/dior"},
		{Name: "Dolce & Gabbana", Path: "/brands/dolce-gabana"},
		{Name: "Fendi", Path: "/brands/fendi"},
		{Name: "Givenchy", Path: "/brands/givenchy"},
		{Name: "Gucci", Path: "/brands/gucci"},
		{Name: "Hermes Paris", Path: "/brands/hermes-paris"},
		{Name: "Louis Vuitton", Path: "/brands/louis-vuitton"},
		{Name: "Prada", Path: "/brands/prada"},
		{Name: "Tory Burch", Path: "/brands/tory-burch"},
		{Name: "Versace", Path: "/brands/versace"},
	}

	urbanBrands = []Brand{
		{Name: "Godspeed", Path: "/brands/godspeed"},
		{Name: "Gallery Dept.", Path: "/brands/gallery-dept"},
		{Name: "Hellstar", Path: "/brands/hellstar"},
		{Name: "Mixed Emotions", Path: "/brands/mixed-emotions"},
		{Name: "RoughPlay", Path: "/brands/roughplay"},
		{Name: "Life Hustlers", Path: "/brands/life-hustlers"},
		{Name: "Essentials", Path: "/brands/essentials"},
		{Name: "Anti Social Club", Path: "/brands/anti-social-club"},
	}

	capBrands = []Brand{
		{Name: "Barbashats", Path: "/brands/barbashats"},
		{Name: "Dandihats", Path: "/brands/dandihats"},
		{Name: "31 Hats", Path: "/brands/31-hats"},
		{Name: "Jordan", Path: "/brands/jordan-gorras"},
	}

	accessoryBrands = []Brand{
		{Name: "Correas", Path: "/brands/correas"},
		{Name: "Pantallas", Path: "/brands/pantallas"},
		{Name: "Medias", Path: "/brands/medias"},
	}
)

// BrandDirectory returns the brand groups in navigation order
func BrandDirectory() []BrandGroup {
	luxuryStyle := append(append([]Brand{}, sneakerBrands...), luxuryBrands...)

	return []BrandGroup{
		{Key: "estilo-lujo", Title: "Estilo Lujo", Brands: luxuryStyle},
		{Key: "estilo-urbano", Title: "Estilo Urbano", Brands: urbanBrands},
		{Key: "gorras", Title: "Gorras", Brands: capBrands},
		{Key: "accesorios", Title: "Accesorios", Brands: accessoryBrands},
	}
}
