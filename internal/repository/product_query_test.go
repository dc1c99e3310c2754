package repository

import (
	"strings"
	"testing"

	"aura-hype/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery_NoCriteria(t *testing.T) {
	query, args := buildListQuery(domain.ListCriteria{})

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY created_at DESC, id DESC")
	assert.Empty(t, args)
}

func TestBuildListQuery_OnePredicatePerCriterion(t *testing.T) {
	tests := []struct {
		name       string
		criteria   domain.ListCriteria
		predicates []string
		args       []interface{}
	}{
		{
			name:       "brand only",
			criteria:   domain.ListCriteria{Brand: "Nike"},
			predicates: []string{"brand = $1"},
			args:       []interface{}{"Nike"},
		},
		{
			name:       "brand and gender",
			criteria:   domain.ListCriteria{Brand: "Nike", Gender: "Hombre"},
			predicates: []string{"brand = $1", "gender = $2"},
			args:       []interface{}{"Nike", "Hombre"},
		},
		{
			name:       "search and tag",
			criteria:   domain.ListCriteria{Search: "air", Tag: "zapato"},
			predicates: []string{"name ILIKE $1", "tags @> jsonb_build_array($2::text)"},
			args:       []interface{}{"%air%", "zapato"},
		},
		{
			name:     "all criteria",
			criteria: domain.ListCriteria{Brand: "Gucci", Gender: "Mujer", Search: "bag", Tag: "bolsa"},
			predicates: []string{
				"brand = $1",
				"gender = $2",
				"name ILIKE $3",
				"tags @> jsonb_build_array($4::text)",
			},
			args: []interface{}{"Gucci", "Mujer", "%bag%", "bolsa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.criteria)

			assert.Contains(t, query, "WHERE "+strings.Join(tt.predicates, " AND "))
			assert.Equal(t, len(tt.predicates)-1, strings.Count(query, " AND "))
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"air max", "air max"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`c:\dir`, `c:\\dir`},
		{`%_\`, `\%\_\\`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in), "escapeLike(%q)", tt.in)
	}
}

func TestBuildExtraImagesInsert(t *testing.T) {
	query, args := buildExtraImagesInsert(7, []string{"a.jpg", "b.jpg"})

	assert.Equal(t, "INSERT INTO extra_images (image, product_id) VALUES ($1, $2), ($3, $4)", query)
	assert.Equal(t, []interface{}{"a.jpg", int64(7), "b.jpg", int64(7)}, args)
}
