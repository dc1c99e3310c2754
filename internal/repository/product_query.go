package repository

import (
	"fmt"
	"strings"

	"aura-hype/internal/domain"
)

const productColumns = `id, name, price, image, brand, category, gender, description, tags, created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes every character of s match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// buildListQuery composes the catalog listing statement. Every supplied
// criterion adds exactly one predicate and they are joined with AND.
func buildListQuery(criteria domain.ListCriteria) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	add := func(predicate string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(predicate, len(args)))
	}

	if criteria.Brand != "" {
		add("brand = $%d", criteria.Brand)
	}
	if criteria.Gender != "" {
		add("gender = $%d", criteria.Gender)
	}
	if criteria.Search != "" {
		add("name ILIKE $%d", "%"+escapeLike(criteria.Search)+"%")
	}
	if criteria.Tag != "" {
		add("tags @> jsonb_build_array($%d::text)", criteria.Tag)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY created_at DESC, id DESC
	`, productColumns, whereClause)

	return query, args
}

// buildExtraImagesInsert builds a multi-row insert of extra images for one product
func buildExtraImagesInsert(productID int64, images []string) (string, []interface{}) {
	values := make([]string, 0, len(images))
	args := make([]interface{}, 0, len(images)*2)

	for _, image := range images {
		args = append(args, image, productID)
		values = append(values, fmt.Sprintf("($%d, $%d)", len(args)-1, len(args)))
	}

	query := "INSERT INTO extra_images (image, product_id) VALUES " + strings.Join(values, ", ")
	return query, args
}
