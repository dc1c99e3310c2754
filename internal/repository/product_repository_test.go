package repository

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"aura-hype/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetTables(t *testing.T) {
	t.Helper()
	requireDB(t)

	_, err := testDB.Exec("TRUNCATE extra_images, products RESTART IDENTITY")
	require.NoError(t, err)
}

func strPtr(s string) *string {
	return &s
}

var reflectCriteria = reflect.TypeOf(domain.ListCriteria{})

// matches evaluates criteria against a product in memory
func matches(product *domain.Product, criteria domain.ListCriteria) bool {
	if criteria.Brand != "" && product.Brand != criteria.Brand {
		return false
	}
	if criteria.Gender != "" && (product.Gender == nil || *product.Gender != criteria.Gender) {
		return false
	}
	if criteria.Search != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(criteria.Search)) {
		return false
	}
	if criteria.Tag != "" {
		found := false
		for _, tag := range product.Tags {
			if tag == criteria.Tag {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func sneaker(name, brand string) *domain.ProductInput {
	return &domain.ProductInput{
		Name:  name,
		Price: "$130",
		Image: "k1.jpg",
		Brand: brand,
	}
}

func TestProductRepository_CreateAndList_AirMax90(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	input := sneaker("Air Max 90", "Nike")
	input.Category = strPtr("Sneakers")

	created, err := repo.Create(ctx, input)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	nike, err := repo.List(ctx, domain.ListCriteria{Brand: "Nike"})
	require.NoError(t, err)
	require.Len(t, nike, 1)
	assert.Equal(t, "Air Max 90", nike[0].Name)
	assert.Equal(t, "$130", nike[0].Price)
	require.NotNil(t, nike[0].Category)
	assert.Equal(t, "Sneakers", *nike[0].Category)
	assert.Nil(t, nike[0].Gender)
	assert.Empty(t, nike[0].ExtraImages)

	adidas, err := repo.List(ctx, domain.ListCriteria{Brand: "Adidas"})
	require.NoError(t, err)
	assert.Empty(t, adidas)
	assert.NotNil(t, adidas)
}

func TestProductRepository_ListNewestFirst(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"first", "second", "third"} {
		product, err := repo.Create(ctx, sneaker(name, "Nike"))
		require.NoError(t, err)
		ids = append(ids, product.ID)
	}

	products, err := repo.List(ctx, domain.ListCriteria{})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, ids[2], products[0].ID)
	assert.Equal(t, ids[1], products[1].ID)
	assert.Equal(t, ids[0], products[2].ID)

	newest, err := repo.Create(ctx, sneaker("fourth", "Adidas"))
	require.NoError(t, err)

	products, err = repo.List(ctx, domain.ListCriteria{})
	require.NoError(t, err)
	require.Len(t, products, 4)
	assert.Equal(t, newest.ID, products[0].ID)
}

func TestProductRepository_CreateWithExtraImagesAndTags(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	input := sneaker("Dunk Low", "Nike")
	input.Gender = strPtr(domain.GenderMen)
	input.Description = strPtr("Panda colorway")
	input.Tags = []string{"zapato", "media"}
	input.ExtraImages = []string{"a.jpg", "b.jpg"}

	created, err := repo.Create(ctx, input)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"zapato", "media"}, found.Tags)
	require.Len(t, found.ExtraImages, 2)
	assert.Equal(t, "a.jpg", found.ExtraImages[0].Image)
	assert.Equal(t, "b.jpg", found.ExtraImages[1].Image)
	for _, extra := range found.ExtraImages {
		assert.Equal(t, created.ID, extra.ProductID)
	}
	assert.Equal(t, "Panda colorway", *found.Description)
}

func TestProductRepository_FindByIDNotFound(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)

	product, err := repo.FindByID(context.Background(), 424242)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)
}

func TestProductRepository_UpdateReplacesExtraImages(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, sneaker("Jordan 1", "Jordan"))
	require.NoError(t, err)

	first := sneaker("Jordan 1", "Jordan")
	first.ExtraImages = []string{"a.jpg", "b.jpg"}
	updated, err := repo.Update(ctx, created.ID, first)
	require.NoError(t, err)
	require.Len(t, updated.ExtraImages, 2)

	second := sneaker("Jordan 1", "Jordan")
	second.ExtraImages = []string{"c.jpg"}
	updated, err = repo.Update(ctx, created.ID, second)
	require.NoError(t, err)
	require.Len(t, updated.ExtraImages, 1)
	assert.Equal(t, "c.jpg", updated.ExtraImages[0].Image)

	var count int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM extra_images WHERE product_id = $1", created.ID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestProductRepository_UpdateOverwritesOptionalFields(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	input := sneaker("Yeezy 350", "Adidas")
	input.Category = strPtr("Sneakers")
	input.Gender = strPtr(domain.GenderWomen)
	input.Tags = []string{"zapato"}

	created, err := repo.Create(ctx, input)
	require.NoError(t, err)

	replacement := sneaker("Yeezy 350 V2", "Adidas")
	replacement.Price = "$230"
	updated, err := repo.Update(ctx, created.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, "Yeezy 350 V2", updated.Name)
	assert.Equal(t, "$230", updated.Price)
	assert.Nil(t, updated.Category)
	assert.Nil(t, updated.Gender)
	assert.Nil(t, updated.Tags)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
}

func TestProductRepository_UpdateUnknownProduct(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)

	input := sneaker("Ghost", "Nike")
	input.ExtraImages = []string{"ghost.jpg"}

	product, err := repo.Update(context.Background(), 999, input)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)

	var count int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM extra_images").Scan(&count))
	assert.Zero(t, count)
}

func TestProductRepository_DeleteRemovesExtraImages(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	input := sneaker("Samba", "Adidas")
	input.ExtraImages = []string{"a.jpg", "b.jpg", "c.jpg"}
	created, err := repo.Create(ctx, input)
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	var count int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM extra_images WHERE product_id = $1", created.ID).Scan(&count))
	assert.Zero(t, count)
}

func TestProductRepository_DeleteUnknownIsNoop(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)

	deleted, err := repo.Delete(context.Background(), 31337)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestProductRepository_SearchIsLiteralContains(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	for _, name := range []string{"100% Cotton Tee", "1000 Cotton Tee", "Air_Force 1", "AirXForce 1"} {
		_, err := repo.Create(ctx, sneaker(name, "Nike"))
		require.NoError(t, err)
	}

	percent, err := repo.List(ctx, domain.ListCriteria{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, percent, 1)
	assert.Equal(t, "100% Cotton Tee", percent[0].Name)

	underscore, err := repo.List(ctx, domain.ListCriteria{Search: "air_force"})
	require.NoError(t, err)
	require.Len(t, underscore, 1)
	assert.Equal(t, "Air_Force 1", underscore[0].Name)

	insensitive, err := repo.List(ctx, domain.ListCriteria{Search: "COTTON"})
	require.NoError(t, err)
	assert.Len(t, insensitive, 2)
}

func TestProductRepository_TagMembership(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	capInput := sneaker("Logo Cap", "New Era")
	capInput.Tags = []string{"gorra", "accesorio"}
	_, err := repo.Create(ctx, capInput)
	require.NoError(t, err)

	// "camisa" is a substring of "camiseta" but must not match it.
	teeInput := sneaker("Basic Tee", "Essentials")
	teeInput.Tags = []string{"camiseta"}
	_, err = repo.Create(ctx, teeInput)
	require.NoError(t, err)

	_, err = repo.Create(ctx, sneaker("Untagged", "Nike"))
	require.NoError(t, err)

	accessories, err := repo.List(ctx, domain.ListCriteria{Tag: "accesorio"})
	require.NoError(t, err)
	require.Len(t, accessories, 1)
	assert.Equal(t, "Logo Cap", accessories[0].Name)

	shirts, err := repo.List(ctx, domain.ListCriteria{Tag: "camisa"})
	require.NoError(t, err)
	assert.Empty(t, shirts)
}

// Property: every listed product satisfies all supplied criteria and no
// matching product is left out
func TestProperty_ListCombinesCriteriaWithAnd(t *testing.T) {
	resetTables(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	type variant struct {
		brand  string
		gender *string
		tag    string
	}
	variants := []variant{
		{"Nike", strPtr(domain.GenderMen), "zapato"},
		{"Nike", strPtr(domain.GenderWomen), "zapato"},
		{"Nike", nil, "gorra"},
		{"Adidas", strPtr(domain.GenderMen), "zapato"},
		{"Adidas", strPtr(domain.GenderWomen), "camiseta"},
		{"Adidas", nil, "gorra"},
	}

	criteriaGen := gen.Struct(reflectCriteria, map[string]gopter.Gen{
		"Brand":  gen.OneConstOf("", "Nike", "Adidas"),
		"Gender": gen.OneConstOf("", domain.GenderMen, domain.GenderWomen),
		"Search": gen.OneConstOf("", "runner", "RUN", "classic"),
		"Tag":    gen.OneConstOf("", "zapato", "gorra", "camiseta"),
	})

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("listing returns exactly the products matching every criterion", prop.ForAll(
		func(picks []int, criteria domain.ListCriteria) bool {
			_, _ = testDB.Exec("TRUNCATE extra_images, products RESTART IDENTITY")

			var stored []*domain.Product
			for i, pick := range picks {
				v := variants[pick]
				name := "classic"
				if i%2 == 0 {
					name = "Runner"
				}
				input := sneaker(name, v.brand)
				input.Gender = v.gender
				input.Tags = []string{v.tag}

				product, err := repo.Create(ctx, input)
				if err != nil {
					t.Logf("FAIL: Failed to create product: %v", err)
					return false
				}
				stored = append(stored, product)
			}

			expected := 0
			for _, product := range stored {
				if matches(product, criteria) {
					expected++
				}
			}

			listed, err := repo.List(ctx, criteria)
			if err != nil {
				t.Logf("FAIL: Failed to list products: %v", err)
				return false
			}

			if len(listed) != expected {
				t.Logf("FAIL: Expected %d products for %+v, got %d", expected, criteria, len(listed))
				return false
			}

			for i, product := range listed {
				if !matches(product, criteria) {
					t.Logf("FAIL: Product %d does not satisfy %+v", product.ID, criteria)
					return false
				}
				if i > 0 && listed[i-1].ID < product.ID {
					t.Logf("FAIL: Products not ordered newest first")
					return false
				}
			}

			return true
		},
		gen.SliceOfN(8, gen.IntRange(0, len(variants)-1)),
		criteriaGen,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
